package authn

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v74/github"
	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/tidwall/gjson"
)

// GitHubAuthType is the authentication type of identities validated against GitHub.
const GitHubAuthType = "github"

// BearerTokenResolver validates a GitHub bearer token by fetching the
// authenticated user and turns the scalar properties of the user document
// into claims.
type BearerTokenResolver struct {
	httpClient  *http.Client
	baseURL     *url.URL
	claimPrefix string
}

type BearerOption func(*BearerTokenResolver)

// WithClaimPrefix namespaces claim types, e.g. "urn:github:".
func WithClaimPrefix(prefix string) BearerOption {
	return func(x *BearerTokenResolver) {
		x.claimPrefix = prefix
	}
}

// WithGitHubBaseURL points the resolver at a GitHub Enterprise API endpoint.
func WithGitHubBaseURL(u *url.URL) BearerOption {
	return func(x *BearerTokenResolver) {
		x.baseURL = u
	}
}

// NewBearerTokenResolver creates a resolver. httpClient must not carry
// outbound credentials of its own; nil uses http.DefaultClient.
func NewBearerTokenResolver(httpClient *http.Client, opts ...BearerOption) *BearerTokenResolver {
	x := &BearerTokenResolver{httpClient: httpClient}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *BearerTokenResolver) Name() string { return "bearer" }

func (x *BearerTokenResolver) Resolve(ctx context.Context, r *http.Request) (*principal.Identity, bool) {
	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return nil, false
	}
	logger := logging.From(ctx).With("resolver", x.Name())

	client := github.NewClient(x.httpClient).WithAuthToken(token)
	if x.baseURL != nil {
		client.BaseURL = x.baseURL
	}

	req, err := client.NewRequest(http.MethodGet, "user", nil)
	if err != nil {
		logger.Warn("failed to build GitHub user request", logging.ErrAttr(err))
		return nil, false
	}

	var body json.RawMessage
	if _, err := client.Do(ctx, req, &body); err != nil {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil {
			logger.Warn("GitHub rejected bearer token",
				"status", errResp.Response.StatusCode,
				"message", errResp.Message,
			)
		} else {
			logger.Warn("failed to validate bearer token", logging.ErrAttr(err))
		}
		return nil, false
	}

	claims := ScalarClaims(body, x.claimPrefix)
	logger.Debug("resolved identity from bearer token", "claims", len(claims))

	return principal.New(GitHubAuthType, claims, token), true
}

// bearerToken extracts the credential of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ScalarClaims converts the top-level string, number and boolean properties of
// a JSON object into claims, in document order. Nested objects, arrays, nulls
// and empty values are skipped.
func ScalarClaims(doc []byte, prefix string) []principal.Claim {
	parsed := gjson.ParseBytes(doc)
	if !parsed.IsObject() {
		return nil
	}

	var claims []principal.Claim
	parsed.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.String, gjson.Number, gjson.True, gjson.False:
			if v := value.String(); v != "" {
				claims = append(claims, principal.Claim{Type: prefix + key.String(), Value: v})
			}
		}
		return true
	})
	return claims
}
