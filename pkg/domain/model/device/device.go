package device

import (
	"fmt"
	"log/slog"
	"time"
)

// GrantType is the OAuth grant type of device code polling requests.
const GrantType = "urn:ietf:params:oauth:grant-type:device_code"

// DefaultInterval is used when the authorization server omits an interval.
const DefaultInterval = 5 * time.Second

// Session is the device authorization response.
type Session struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	Interval        int    `json:"interval"`
	ExpiresIn       int    `json:"expires_in"`
}

// PollInterval is the server-requested delay between polls.
func (x *Session) PollInterval() time.Duration {
	if x.Interval <= 0 {
		return DefaultInterval
	}
	return time.Duration(x.Interval) * time.Second
}

func (x *Session) ExpiresAfter() time.Duration {
	return time.Duration(x.ExpiresIn) * time.Second
}

func (x Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user_code", x.UserCode),
		slog.String("verification_uri", x.VerificationURI),
		slog.Int("interval", x.Interval),
		slog.Int("expires_in", x.ExpiresIn),
	)
}

// PollResult is the token endpoint response to a polling request.
type PollResult struct {
	AccessToken      string    `json:"access_token"`
	TokenType        string    `json:"token_type"`
	Scope            string    `json:"scope"`
	Error            ErrorCode `json:"error"`
	ErrorDescription string    `json:"error_description"`
	ErrorURI         string    `json:"error_uri"`
	Interval         int       `json:"interval"`
}

// Token is the outcome of a completed device authorization.
type Token struct {
	AccessToken string
	TokenType   string
	Scope       string
}

func (x Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("token_type", x.TokenType),
		slog.String("scope", x.Scope),
	)
}

// State is the position of a device authorization in its lifecycle.
type State int

const (
	StateRequestingCode State = iota
	StateAwaitingAuthorization
	StatePolling
	StateAuthorized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRequestingCode:
		return "requesting_code"
	case StateAwaitingAuthorization:
		return "awaiting_authorization"
	case StatePolling:
		return "polling"
	case StateAuthorized:
		return "authorized"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
