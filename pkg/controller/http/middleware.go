package http

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/interfaces"
	"github.com/secmon-lab/ghauth/pkg/domain/model/auth"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/service/authn"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/secmon-lab/ghauth/pkg/utils/reqctx"
	"github.com/secmon-lab/ghauth/pkg/utils/request_id"
)

// errorMiddleware reports panics raised by downstream handlers and then
// re-raises them, leaving the final fault handling to net/http. In
// development the stack trace is included in the report.
func errorMiddleware(development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				opts := []goerr.Option{
					goerr.V("method", r.Method),
					goerr.V("path", r.URL.Path),
				}
				if development {
					opts = append(opts,
						goerr.V("panic", fmt.Sprintf("%+v", rec)),
						goerr.V("stack", string(debug.Stack())),
					)
				}
				msg := "handler panicked"
				if !development {
					msg = fmt.Sprintf("handler panicked: %v", rec)
				}
				errs.Handle(r.Context(), goerr.New(msg, opts...))

				panic(rec)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// resolveIdentity attaches a RequestContext for the lifetime of the request
// and fills its identity. It never rejects a request.
func resolveIdentity(pipeline *authn.Pipeline) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			rc := reqctx.New(request_id.FromContext(ctx))
			ctx = reqctx.Attach(ctx, rc)
			defer reqctx.Detach(ctx)

			state := pipeline.Run(ctx, rc, r)
			identity, _ := rc.Identity()
			logging.From(ctx).Debug("identity resolution finished",
				"state", state.String(),
				"identity", identity,
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authorizeWithPolicy(policy interfaces.PolicyClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy == nil {
				next.ServeHTTP(w, r)
				return
			}

			var result struct {
				Allow bool `json:"allow"`
			}

			ctx := r.Context()
			authCtx := auth.BuildContext(ctx, r)
			if err := policy.Query(ctx, "data.auth", authCtx, &result); err != nil {
				handleError(w, r, goerr.Wrap(err, "failed to authorize request"))
				return
			}

			logging.From(ctx).Debug("authorization result", "input", authCtx, "output", result)

			if !result.Allow {
				logging.From(ctx).Warn("authorization failed", "auth", authCtx)
				http.Error(w, "Authorization failed. Check your policy.", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
