package auth

import (
	"context"
	"net/http"

	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
	"github.com/secmon-lab/ghauth/pkg/utils/reqctx"
)

// Context is the input document of authorization policies (data.auth).
type Context struct {
	Identity *principal.Identity `json:"identity"`
	Req      *HTTPRequest        `json:"req"`
}

type HTTPRequest struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Host   string `json:"host"`
}

// BuildContext assembles the policy input from the resolved identity of ctx
// and the request line of r.
func BuildContext(ctx context.Context, r *http.Request) Context {
	identity, ok := reqctx.CurrentIdentity(ctx)
	if !ok {
		identity = principal.Anonymous()
	}

	return Context{
		Identity: identity,
		Req: &HTTPRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Host:   r.Host,
		},
	}
}
