package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/secmon-lab/ghauth/pkg/utils/reqctx"
	"github.com/secmon-lab/ghauth/pkg/utils/safe"
)

func versionHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, []byte(version))
	}
}

// meHandler echoes the caller identity. Anonymous browsers are redirected to
// the GitHub sign-in page, other anonymous clients get 401.
func meHandler(uc MeUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, _ := reqctx.CurrentIdentity(ctx)

		if (identity == nil || !identity.IsAuthenticated()) && !acceptsJSON(r) {
			if loginURL, ok := uc.LoginURL(r.Host); ok {
				http.Redirect(w, r, loginURL, http.StatusFound)
				return
			}
		}

		resp, err := uc.Me(ctx, identity, r.Header)
		if err != nil {
			handleError(w, r, err)
			return
		}

		body, err := json.Marshal(resp)
		if err != nil {
			handleError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.Status)
		safe.Write(ctx, w, body)
		logging.From(ctx).Debug("identity echoed", "status", resp.Status)
	}
}

func acceptsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
