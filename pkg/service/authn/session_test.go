package authn_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghauth/pkg/service/authn"
)

func newSessionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.auth/me" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		c, err := r.Cookie(authn.SessionCookieName)
		if err != nil || c.Value != "session-value" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sessionRequest(srv *httptest.Server) *http.Request {
	host := strings.TrimPrefix(srv.URL, "https://")
	r := httptest.NewRequest(http.MethodGet, "https://"+host+"/api/me", nil)
	r.AddCookie(&http.Cookie{Name: authn.SessionCookieName, Value: "session-value"})
	return r
}

func TestSessionCookieResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("first session record is used", func(t *testing.T) {
		srv := newSessionServer(t, http.StatusOK, `[
			{"access_token":"gho_session","provider_name":"github","user_claims":[{"typ":"name","val":"Mona"}]},
			{"access_token":"other","provider_name":"aad","user_claims":[]}
		]`)
		resolver := authn.NewSessionCookieResolver(srv.Client())

		id, ok := resolver.Resolve(ctx, sessionRequest(srv))
		gt.True(t, ok)
		gt.Equal(t, id.AuthenticationType(), "github")
		gt.Equal(t, id.AccessToken(), "gho_session")
		name, found := id.First("name")
		gt.True(t, found)
		gt.Equal(t, name, "Mona")
	})

	t.Run("session header fallback", func(t *testing.T) {
		srv := newSessionServer(t, http.StatusOK, `[{"access_token":"t","provider_name":"github","user_claims":[]}]`)
		resolver := authn.NewSessionCookieResolver(srv.Client())

		host := strings.TrimPrefix(srv.URL, "https://")
		r := httptest.NewRequest(http.MethodGet, "https://"+host+"/", nil)
		r.Header.Set(authn.SessionCookieName, "session-value")

		_, ok := resolver.Resolve(ctx, r)
		gt.True(t, ok)
	})

	t.Run("empty session list", func(t *testing.T) {
		srv := newSessionServer(t, http.StatusOK, `[]`)
		resolver := authn.NewSessionCookieResolver(srv.Client())

		_, ok := resolver.Resolve(ctx, sessionRequest(srv))
		gt.False(t, ok)
	})

	t.Run("record without provider is not applicable", func(t *testing.T) {
		srv := newSessionServer(t, http.StatusOK, `[{"access_token":"t","provider_name":"","user_claims":[]}]`)
		resolver := authn.NewSessionCookieResolver(srv.Client())

		id, ok := resolver.Resolve(ctx, sessionRequest(srv))
		gt.False(t, ok)
		gt.Nil(t, id)
	})

	t.Run("endpoint error", func(t *testing.T) {
		srv := newSessionServer(t, http.StatusInternalServerError, `oops`)
		resolver := authn.NewSessionCookieResolver(srv.Client())

		_, ok := resolver.Resolve(ctx, sessionRequest(srv))
		gt.False(t, ok)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := newSessionServer(t, http.StatusOK, `{"not":"a list"}`)
		resolver := authn.NewSessionCookieResolver(srv.Client())

		_, ok := resolver.Resolve(ctx, sessionRequest(srv))
		gt.False(t, ok)
	})

	t.Run("no cookie", func(t *testing.T) {
		resolver := authn.NewSessionCookieResolver(nil)
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		_, ok := resolver.Resolve(ctx, r)
		gt.False(t, ok)
	})

	t.Run("no host", func(t *testing.T) {
		resolver := authn.NewSessionCookieResolver(nil)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Host = ""
		r.AddCookie(&http.Cookie{Name: authn.SessionCookieName, Value: "session-value"})

		_, ok := resolver.Resolve(ctx, r)
		gt.False(t, ok)
	})
}
