// Package authn resolves the caller identity of an inbound HTTP request.
package authn

import (
	"context"
	"net/http"

	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
)

// Resolver derives an identity from one kind of request credential. It
// returns false when its credential is absent, malformed or rejected; it
// never fails the request.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, r *http.Request) (*principal.Identity, bool)
}

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
