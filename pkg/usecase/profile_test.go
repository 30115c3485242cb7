package usecase_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghauth/pkg/repository"
	"github.com/secmon-lab/ghauth/pkg/usecase"
)

func newProfileServer(t *testing.T) *httptest.Server {
	t.Helper()
	authorized := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer gho_token" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/me", authorized(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"claims":{"login":"octocat"}}`))
	}))
	mux.HandleFunc("/user", authorized(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"login":"octocat"}`))
	}))
	mux.HandleFunc("/user/memberships/orgs", authorized(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"organization":{"login":"github"},"role":"member"}]`))
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProfile(t *testing.T) {
	srv := newProfileServer(t)
	baseURL, err := url.Parse(srv.URL + "/")
	gt.NoError(t, err).Required()

	uc := usecase.NewLoginUseCase(repository.NewMemory(), &fakeAuthorizer{}, clientID,
		usecase.WithLoginHTTPClient(srv.Client()),
		usecase.WithLoginGitHubBaseURL(baseURL),
	)

	t.Run("server and GitHub documents", func(t *testing.T) {
		docs, err := uc.Profile(context.Background(), "gho_token", srv.URL+"/api/me")
		gt.NoError(t, err)
		gt.A(t, docs).Length(3)

		gt.Equal(t, docs[0].Title, "Server")
		gt.S(t, string(docs[0].Body)).Contains(`"login":"octocat"`)
		gt.Equal(t, docs[1].Title, "GitHub user")
		gt.Equal(t, docs[1].Status, http.StatusOK)
		gt.S(t, string(docs[2].Body)).Contains(`"role":"member"`)
	})

	t.Run("without server", func(t *testing.T) {
		docs, err := uc.Profile(context.Background(), "gho_token", "")
		gt.NoError(t, err)
		gt.A(t, docs).Length(2)
	})

	t.Run("rejected token is relayed", func(t *testing.T) {
		docs, err := uc.Profile(context.Background(), "gho_other", "")
		gt.NoError(t, err)
		gt.Equal(t, docs[0].Status, http.StatusUnauthorized)
		gt.S(t, string(docs[0].Body)).Contains("Bad credentials")
	})
}
