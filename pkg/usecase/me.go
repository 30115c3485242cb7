package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// LoginScope is requested when redirecting anonymous browsers to GitHub.
const LoginScope = "read:user read:org user:email"

// PlatformAuth is the hosting platform's authentication configuration.
type PlatformAuth struct {
	Enabled  bool
	ClientID string
}

// MeUseCase echoes the caller's identity together with what GitHub reports
// for the caller's token.
type MeUseCase struct {
	platform   PlatformAuth
	httpClient *http.Client
	baseURL    *url.URL
}

type MeOption func(*MeUseCase)

func WithMeGitHubBaseURL(u *url.URL) MeOption {
	return func(uc *MeUseCase) {
		uc.baseURL = u
	}
}

// NewMeUseCase takes the client used for GitHub calls. It is expected to
// attach the caller's token itself (see outbound.NewClient).
func NewMeUseCase(platform PlatformAuth, httpClient *http.Client, opts ...MeOption) *MeUseCase {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	uc := &MeUseCase{platform: platform, httpClient: httpClient}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type MeResponse struct {
	Status   int               `json:"-"`
	Body     json.RawMessage   `json:"body"`
	Claims   map[string]any    `json:"claims"`
	Request  map[string]string `json:"request"`
	Response map[string]string `json:"response"`
}

// LoginURL returns where an anonymous browser is sent to sign in, or false
// when platform authentication is off or no GitHub client ID is configured.
func (uc *MeUseCase) LoginURL(host string) (string, bool) {
	if !uc.platform.Enabled || uc.platform.ClientID == "" {
		return "", false
	}

	q := url.Values{
		"client_id":    {uc.platform.ClientID},
		"scope":        {LoginScope},
		"redirect_uri": {"https://" + host + "/.auth/login/github/callback"},
		"state":        {"redir=/me"},
	}
	return "https://github.com/login/oauth/authorize?" + strings.ReplaceAll(q.Encode(), "+", "%20"), true
}

func (uc *MeUseCase) Me(ctx context.Context, identity *principal.Identity, header http.Header) (*MeResponse, error) {
	if !uc.platform.Enabled {
		return nil, goerr.Wrap(errs.ErrPlatformAuthDisabled, "cannot serve identity echo", goerr.T(errs.TagNotConfigured))
	}
	if identity == nil || !identity.IsAuthenticated() {
		return nil, goerr.New("caller is not authenticated", goerr.T(errs.TagUnauthorized))
	}

	gh := newGitHubClient(uc.httpClient, uc.baseURL)

	user, err := fetchRaw(ctx, gh, uc.httpClient, "user")
	if err != nil {
		return nil, err
	}

	body := []byte(user.Body)
	emails, err := fetchRaw(ctx, gh, uc.httpClient, "user/emails")
	switch {
	case err != nil:
		logging.From(ctx).Warn("failed to fetch emails", logging.ErrAttr(err))
	case gjson.ParseBytes(body).IsObject() && gjson.ValidBytes(emails.Body):
		if updated, err := sjson.SetRawBytes(body, "emails", emails.Body); err == nil {
			body = updated
		}
	}

	claims := identity.ClaimMap()
	claims["client_id"] = uc.platform.ClientID

	resp := &MeResponse{
		Status:   user.Status,
		Claims:   claims,
		Request:  flattenHeader(header, true),
		Response: flattenHeader(user.Header, false),
	}
	if gjson.ValidBytes(body) {
		resp.Body = body
	} else {
		resp.Body, _ = json.Marshal(string(body))
	}
	return resp, nil
}

// flattenHeader joins multi-valued headers. When redact is set, headers
// carrying credentials are masked.
func flattenHeader(h http.Header, redact bool) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if redact && isCredentialHeader(k) {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func isCredentialHeader(name string) bool {
	name = strings.ToLower(name)
	switch name {
	case "authorization", "cookie", "appserviceauthsession":
		return true
	}
	return strings.HasPrefix(name, "x-ms-token-")
}
