package principal_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
)

func TestIdentity(t *testing.T) {
	t.Run("authenticated identity", func(t *testing.T) {
		id := principal.New("github", []principal.Claim{
			{Type: "login", Value: "octocat"},
			{Type: "id", Value: "1"},
		}, "gho_abc")

		gt.True(t, id.IsAuthenticated())
		gt.Equal(t, id.AuthenticationType(), "github")
		gt.Equal(t, id.AccessToken(), "gho_abc")

		login, ok := id.First("login")
		gt.True(t, ok)
		gt.Equal(t, login, "octocat")
	})

	t.Run("empty auth type is anonymous even with claims", func(t *testing.T) {
		id := principal.New("", []principal.Claim{{Type: "login", Value: "octocat"}}, "")
		gt.False(t, id.IsAuthenticated())
	})

	t.Run("anonymous", func(t *testing.T) {
		id := principal.Anonymous()
		gt.False(t, id.IsAuthenticated())
		gt.A(t, id.Claims()).Length(0)
		gt.Equal(t, id.AccessToken(), "")
	})

	t.Run("claims are copied on construction and read", func(t *testing.T) {
		claims := []principal.Claim{{Type: "login", Value: "octocat"}}
		id := principal.New("github", claims, "")
		claims[0].Value = "mallory"

		got := id.Claims()
		gt.Equal(t, got[0].Value, "octocat")

		got[0].Value = "eve"
		gt.Equal(t, id.Claims()[0].Value, "octocat")
	})

	t.Run("claim order is preserved", func(t *testing.T) {
		id := principal.New("aad", []principal.Claim{
			{Type: "roles", Value: "b"},
			{Type: "name", Value: "x"},
			{Type: "roles", Value: "a"},
		}, "")

		gt.Equal(t, id.Values("roles"), []string{"b", "a"})
		gt.Equal(t, id.Claims()[1].Type, "name")
	})
}

func TestIdentityClaimMap(t *testing.T) {
	id := principal.New("github", []principal.Claim{
		{Type: "login", Value: "octocat"},
		{Type: "roles", Value: "admin"},
		{Type: "roles", Value: "reader"},
	}, "")

	m := id.ClaimMap()
	gt.V(t, m["login"]).Equal("octocat")
	gt.V(t, m["roles"]).Equal([]string{"admin", "reader"})
}

func TestIdentityMarshalJSON(t *testing.T) {
	id := principal.New("github", []principal.Claim{{Type: "login", Value: "octocat"}}, "gho_secret")

	raw, err := json.Marshal(id)
	gt.NoError(t, err)
	gt.S(t, string(raw)).
		Contains(`"authentication_type":"github"`).
		Contains(`"authenticated":true`).
		Contains(`"typ":"login"`).
		NotContains("gho_secret")
}
