package interfaces

import (
	"context"
	"net/http"

	"github.com/m-mizutani/opaq"
	"github.com/secmon-lab/ghauth/pkg/domain/model/credential"
)

type PolicyClient interface {
	Query(context.Context, string, any, any, ...opaq.QueryOption) error
	Sources() map[string]string
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// CredentialStore persists secrets keyed by (realm, account). Get returns
// nil without error when nothing is stored. Put overwrites.
type CredentialStore interface {
	Get(ctx context.Context, realm, account string) (*credential.Credential, error)
	Put(ctx context.Context, cred *credential.Credential) error
	Delete(ctx context.Context, realm, account string) error
}
