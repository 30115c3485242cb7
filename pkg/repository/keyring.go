package repository

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/interfaces"
	"github.com/secmon-lab/ghauth/pkg/domain/model/credential"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/utils/errutil"
	"github.com/zalando/go-keyring"
)

// DefaultNamespace prefixes keyring service names so entries of this tool
// do not collide with other credential helpers.
const DefaultNamespace = "com.secmon-lab.ghauth"

// Keyring stores credentials in the OS secret facility (macOS Keychain,
// Windows Credential Manager, Secret Service on Linux).
type Keyring struct {
	namespace string
}

var _ interfaces.CredentialStore = &Keyring{}

func NewKeyring(namespace string) *Keyring {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Keyring{namespace: namespace}
}

func (r *Keyring) service(realm string) string {
	return r.namespace + ":" + realm
}

func (r *Keyring) Get(ctx context.Context, realm, account string) (*credential.Credential, error) {
	secret, err := keyring.Get(r.service(realm), account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read keyring",
			goerr.T(errs.TagCredentialRepo),
			goerr.TV(errutil.RealmKey, realm),
			goerr.TV(errutil.AccountKey, account),
		)
	}

	return &credential.Credential{
		Realm:   realm,
		Account: account,
		Secret:  secret,
	}, nil
}

func (r *Keyring) Put(ctx context.Context, cred *credential.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	if err := keyring.Set(r.service(cred.Realm), cred.Account, cred.Secret); err != nil {
		return goerr.Wrap(err, "failed to write keyring",
			goerr.T(errs.TagCredentialRepo),
			goerr.TV(errutil.RealmKey, cred.Realm),
			goerr.TV(errutil.AccountKey, cred.Account),
		)
	}
	return nil
}

func (r *Keyring) Delete(ctx context.Context, realm, account string) error {
	if err := keyring.Delete(r.service(realm), account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return goerr.Wrap(err, "failed to delete keyring entry",
			goerr.T(errs.TagCredentialRepo),
			goerr.TV(errutil.RealmKey, realm),
			goerr.TV(errutil.AccountKey, account),
		)
	}
	return nil
}
