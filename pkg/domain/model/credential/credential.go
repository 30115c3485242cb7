package credential

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
)

// GitHubRealm is the realm under which GitHub OAuth tokens are stored.
const GitHubRealm = "https://github.com"

// Credential is a secret stored for (Realm, Account). For OAuth apps the
// account is the client ID.
type Credential struct {
	Realm   string `json:"realm"`
	Account string `json:"account"`
	Secret  string `json:"secret" masq:"secret"`
}

func (x *Credential) Validate() error {
	if x.Realm == "" {
		return goerr.New("realm is required", goerr.T(errs.TagValidation))
	}
	if x.Account == "" {
		return goerr.New("account is required", goerr.T(errs.TagValidation))
	}
	if x.Secret == "" {
		return goerr.New("secret is required", goerr.T(errs.TagValidation))
	}
	return nil
}

func (x Credential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("realm", x.Realm),
		slog.String("account", x.Account),
	)
}
