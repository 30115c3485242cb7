package usecase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/migueleliasweb/go-github-mock/src/mock"
	"github.com/secmon-lab/ghauth/pkg/adapter/outbound"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
	"github.com/secmon-lab/ghauth/pkg/usecase"
	"github.com/secmon-lab/ghauth/pkg/utils/reqctx"
	"github.com/tidwall/gjson"
)

func mockGitHubForMe() *http.Client {
	requireToken := func(body string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-OAuth-Scopes", "read:user, user:email")
			if r.Header.Get("Authorization") != "Bearer gho_caller" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Requires authentication"}`))
				return
			}
			_, _ = w.Write([]byte(body))
		})
	}

	return mock.NewMockedHTTPClient(
		mock.WithRequestMatchHandler(mock.GetUser, requireToken(`{"login":"octocat","id":1}`)),
		mock.WithRequestMatchHandler(mock.GetUserEmails, requireToken(`[{"email":"octocat@github.com","primary":true}]`)),
	)
}

func callerContext(identity *principal.Identity) context.Context {
	rc := reqctx.New("req")
	rc.SetIdentity(identity)
	return reqctx.Attach(context.Background(), rc)
}

func TestMe(t *testing.T) {
	platform := usecase.PlatformAuth{Enabled: true, ClientID: "Iv1.platform"}
	caller := principal.New("github", []principal.Claim{
		{Type: "login", Value: "octocat"},
		{Type: "roles", Value: "a"},
		{Type: "roles", Value: "b"},
	}, "gho_caller")

	t.Run("echoes GitHub user with emails and claims", func(t *testing.T) {
		uc := usecase.NewMeUseCase(platform, outbound.NewClient(mockGitHubForMe()))

		header := http.Header{}
		header.Set("Authorization", "Bearer gho_caller")
		header.Set("Accept", "application/json")

		resp, err := uc.Me(callerContext(caller), caller, header)
		gt.NoError(t, err)
		gt.Equal(t, resp.Status, http.StatusOK)

		gt.Equal(t, gjson.GetBytes(resp.Body, "login").String(), "octocat")
		gt.Equal(t, gjson.GetBytes(resp.Body, "emails.0.email").String(), "octocat@github.com")
		gt.V(t, resp.Claims["client_id"]).Equal("Iv1.platform")
		gt.V(t, resp.Claims["roles"]).Equal([]string{"a", "b"})
		gt.Equal(t, resp.Request["Authorization"], "[REDACTED]")
		gt.Equal(t, resp.Request["Accept"], "application/json")
		gt.Equal(t, resp.Response["X-Oauth-Scopes"], "read:user, user:email")

		raw, err := json.Marshal(resp)
		gt.NoError(t, err)
		gt.S(t, string(raw)).NotContains("gho_caller")
	})

	t.Run("GitHub status is relayed", func(t *testing.T) {
		other := principal.New("github", nil, "gho_other")
		uc := usecase.NewMeUseCase(platform, outbound.NewClient(mockGitHubForMe()))

		resp, err := uc.Me(callerContext(other), other, http.Header{})
		gt.NoError(t, err)
		gt.Equal(t, resp.Status, http.StatusUnauthorized)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		uc := usecase.NewMeUseCase(platform, nil)
		_, err := uc.Me(context.Background(), principal.Anonymous(), http.Header{})
		gt.True(t, goerr.HasTag(err, errs.TagUnauthorized))
	})

	t.Run("platform authentication disabled", func(t *testing.T) {
		uc := usecase.NewMeUseCase(usecase.PlatformAuth{}, nil)
		_, err := uc.Me(context.Background(), caller, http.Header{})
		gt.True(t, goerr.HasTag(err, errs.TagNotConfigured))
	})
}

func TestLoginURL(t *testing.T) {
	uc := usecase.NewMeUseCase(usecase.PlatformAuth{Enabled: true, ClientID: "Iv1.platform"}, nil)

	u, ok := uc.LoginURL("ghauth.example.net")
	gt.True(t, ok)
	gt.S(t, u).
		Contains("https://github.com/login/oauth/authorize?").
		Contains("client_id=Iv1.platform").
		Contains("scope=read%3Auser%20read%3Aorg%20user%3Aemail").
		Contains("redirect_uri=https%3A%2F%2Fghauth.example.net%2F.auth%2Flogin%2Fgithub%2Fcallback").
		Contains("state=redir%3D%2Fme")

	_, ok = usecase.NewMeUseCase(usecase.PlatformAuth{Enabled: true}, nil).LoginURL("h")
	gt.False(t, ok)

	_, ok = usecase.NewMeUseCase(usecase.PlatformAuth{ClientID: "Iv1.platform"}, nil).LoginURL("h")
	gt.False(t, ok)
}
