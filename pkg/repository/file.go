package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/interfaces"
	"github.com/secmon-lab/ghauth/pkg/domain/model/credential"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/utils/errutil"
)

// File stores each credential as a 0600 JSON file in dir. It serves hosts
// without an OS secret service.
type File struct {
	dir string
}

var _ interfaces.CredentialStore = &File{}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to create credential directory",
			goerr.T(errs.TagCredentialRepo),
			goerr.TV(errutil.FilePathKey, dir),
		)
	}
	return &File{dir: dir}, nil
}

// DefaultFileDir returns the credential directory under the user config dir.
func DefaultFileDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to locate user config directory")
	}
	return filepath.Join(base, "ghauth", "credentials"), nil
}

func (r *File) path(realm, account string) string {
	sum := sha256.Sum256([]byte(realm + "\x00" + account))
	return filepath.Join(r.dir, hex.EncodeToString(sum[:16])+".json")
}

func (r *File) Get(ctx context.Context, realm, account string) (*credential.Credential, error) {
	path := r.path(realm, account)

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read credential",
			goerr.T(errs.TagCredentialRepo),
			goerr.TV(errutil.FilePathKey, path),
		)
	}

	var cred credential.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, goerr.Wrap(err, "corrupted credential file",
			goerr.T(errs.TagCredentialRepo),
			goerr.TV(errutil.FilePathKey, path),
		)
	}
	return &cred, nil
}

func (r *File) Put(ctx context.Context, cred *credential.Credential) error {
	if err := cred.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(cred)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal credential", goerr.T(errs.TagCredentialRepo))
	}

	path := r.path(cred.Realm, cred.Account)
	tmp, err := os.CreateTemp(r.dir, ".credential-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary file",
			goerr.T(errs.TagCredentialRepo),
			goerr.TV(errutil.FilePathKey, r.dir),
		)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to write credential", goerr.T(errs.TagCredentialRepo))
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to restrict credential permissions", goerr.T(errs.TagCredentialRepo))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close credential file", goerr.T(errs.TagCredentialRepo))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return goerr.Wrap(err, "failed to store credential",
			goerr.T(errs.TagCredentialRepo),
			goerr.TV(errutil.FilePathKey, path),
		)
	}
	return nil
}

func (r *File) Delete(ctx context.Context, realm, account string) error {
	path := r.path(realm, account)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(err, "failed to delete credential",
			goerr.T(errs.TagCredentialRepo),
			goerr.TV(errutil.FilePathKey, path),
		)
	}
	return nil
}
