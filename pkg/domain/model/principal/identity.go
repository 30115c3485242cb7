package principal

import (
	"encoding/json"
	"log/slog"
	"slices"
)

// Claim is a single (type, value) assertion about the caller. The JSON form
// follows the platform principal header ({"typ": ..., "val": ...}).
type Claim struct {
	Type  string `json:"typ"`
	Value string `json:"val"`
}

// Identity is the resolved caller of a request. It is immutable once built.
// An identity with an empty authentication type is anonymous regardless of
// the claims it carries.
type Identity struct {
	authenticationType string
	claims             []Claim
	accessToken        string
}

// New builds an identity. claims are copied, so later changes by the caller
// are not observed.
func New(authenticationType string, claims []Claim, accessToken string) *Identity {
	return &Identity{
		authenticationType: authenticationType,
		claims:             slices.Clone(claims),
		accessToken:        accessToken,
	}
}

// Anonymous returns an unauthenticated identity without claims.
func Anonymous() *Identity {
	return &Identity{}
}

func (x *Identity) AuthenticationType() string { return x.authenticationType }

func (x *Identity) IsAuthenticated() bool { return x.authenticationType != "" }

func (x *Identity) AccessToken() string { return x.accessToken }

// Claims returns the claims in the order the resolver produced them.
func (x *Identity) Claims() []Claim {
	return slices.Clone(x.claims)
}

// Values returns all values of claims with the given type.
func (x *Identity) Values(typ string) []string {
	var values []string
	for _, c := range x.claims {
		if c.Type == typ {
			values = append(values, c.Value)
		}
	}
	return values
}

// First returns the value of the first claim with the given type.
func (x *Identity) First(typ string) (string, bool) {
	for _, c := range x.claims {
		if c.Type == typ {
			return c.Value, true
		}
	}
	return "", false
}

// ClaimMap groups claims by type. A type with one value maps to a string and
// a type with several values maps to a []string.
func (x *Identity) ClaimMap() map[string]any {
	grouped := make(map[string][]string)
	for _, c := range x.claims {
		grouped[c.Type] = append(grouped[c.Type], c.Value)
	}

	result := make(map[string]any, len(grouped))
	for typ, values := range grouped {
		if len(values) == 1 {
			result[typ] = values[0]
		} else {
			result[typ] = values
		}
	}
	return result
}

type identityJSON struct {
	AuthenticationType string  `json:"authentication_type"`
	Authenticated      bool    `json:"authenticated"`
	Claims             []Claim `json:"claims"`
}

// MarshalJSON never emits the access token.
func (x *Identity) MarshalJSON() ([]byte, error) {
	claims := x.claims
	if claims == nil {
		claims = []Claim{}
	}
	return json.Marshal(identityJSON{
		AuthenticationType: x.authenticationType,
		Authenticated:      x.IsAuthenticated(),
		Claims:             claims,
	})
}

func (x *Identity) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("auth_type", x.authenticationType),
		slog.Int("claims", len(x.claims)),
		slog.Bool("has_token", x.accessToken != ""),
	)
}
