package authn

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
	"github.com/secmon-lab/ghauth/pkg/utils/errutil"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/secmon-lab/ghauth/pkg/utils/safe"
)

const SessionCookieName = "AppServiceAuthSession"

// SessionCookieResolver exchanges the platform session cookie for the session
// record exposed at https://{host}/.auth/me.
type SessionCookieResolver struct {
	client HTTPClient
	scheme string
}

type SessionOption func(*SessionCookieResolver)

// WithSessionScheme overrides the scheme used to reach the session endpoint.
func WithSessionScheme(scheme string) SessionOption {
	return func(x *SessionCookieResolver) {
		x.scheme = scheme
	}
}

func NewSessionCookieResolver(client HTTPClient, opts ...SessionOption) *SessionCookieResolver {
	if client == nil {
		client = http.DefaultClient
	}
	x := &SessionCookieResolver{client: client, scheme: "https"}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *SessionCookieResolver) Name() string { return "session" }

type sessionRecord struct {
	AccessToken  string            `json:"access_token"`
	ProviderName string            `json:"provider_name"`
	UserClaims   []principal.Claim `json:"user_claims"`
}

func (x *SessionCookieResolver) Resolve(ctx context.Context, r *http.Request) (*principal.Identity, bool) {
	session := sessionValue(r)
	if session == "" {
		return nil, false
	}
	logger := logging.From(ctx).With("resolver", x.Name())

	if r.Host == "" {
		logger.Warn("session cookie present without host")
		return nil, false
	}

	record, err := x.fetch(ctx, r.Host, session)
	if err != nil {
		logger.Warn("failed to resolve session", logging.ErrAttr(err))
		return nil, false
	}
	if record == nil {
		logger.Warn("session endpoint returned no session", "host", r.Host)
		return nil, false
	}
	if record.ProviderName == "" {
		logger.Warn("session record has no provider", "host", r.Host)
		return nil, false
	}

	logger.Debug("resolved identity from session",
		"provider", record.ProviderName,
		"claims", len(record.UserClaims),
	)
	return principal.New(record.ProviderName, record.UserClaims, record.AccessToken), true
}

func (x *SessionCookieResolver) fetch(ctx context.Context, host, session string) (*sessionRecord, error) {
	endpoint := x.scheme + "://" + host + "/.auth/me"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create session request", goerr.TV(errutil.URLKey, endpoint))
	}
	req.Header.Set("Cookie", (&http.Cookie{Name: SessionCookieName, Value: session}).String())
	req.Header.Set("Accept", "application/json")

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call session endpoint", goerr.TV(errutil.URLKey, endpoint))
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read session response", goerr.TV(errutil.URLKey, endpoint))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, goerr.New("session endpoint returned error",
			goerr.TV(errutil.URLKey, endpoint),
			goerr.TV(errutil.HTTPStatusKey, resp.StatusCode),
			goerr.TV(errutil.BodyKey, string(body)),
		)
	}

	var records []sessionRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, goerr.Wrap(err, "invalid session response", goerr.TV(errutil.URLKey, endpoint))
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func sessionValue(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(SessionCookieName)
}
