// Package deviceflow implements the OAuth 2.0 device authorization grant
// against GitHub.
package deviceflow

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/model/device"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/utils/clock"
	"github.com/secmon-lab/ghauth/pkg/utils/errutil"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/secmon-lab/ghauth/pkg/utils/safe"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// SlowDownStep is added to the polling interval when a slow_down response
// carries no interval of its own.
const SlowDownStep = 5 * time.Second

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Presenter shows the user code and verification URI to the user. It is
// called once per issued code, including codes reissued after expiry.
type Presenter interface {
	Present(ctx context.Context, session *device.Session) error
}

type PresenterFunc func(ctx context.Context, session *device.Session) error

func (f PresenterFunc) Present(ctx context.Context, session *device.Session) error {
	return f(ctx, session)
}

type Client struct {
	clientID   string
	scope      string
	endpoint   oauth2.Endpoint
	httpClient HTTPClient
	presenter  Presenter
	observer   func(device.State)
}

type Option func(*Client)

func WithScope(scope string) Option {
	return func(c *Client) {
		c.scope = scope
	}
}

// WithEndpoint overrides the GitHub endpoints. Only DeviceAuthURL and
// TokenURL are used.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

func WithHTTPClient(client HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func WithPresenter(presenter Presenter) Option {
	return func(c *Client) {
		c.presenter = presenter
	}
}

// WithStateObserver receives every state transition of Authorize.
func WithStateObserver(fn func(device.State)) Option {
	return func(c *Client) {
		c.observer = fn
	}
}

func New(clientID string, opts ...Option) *Client {
	c := &Client{
		clientID:   clientID,
		endpoint:   githuboauth.Endpoint,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) transition(s device.State) {
	if c.observer != nil {
		c.observer(s)
	}
}

// Authorize runs the device flow until the user approves, a terminal error is
// returned by GitHub, or ctx ends. The returned token has not been persisted.
func (c *Client) Authorize(ctx context.Context) (*device.Token, error) {
	logger := logging.From(ctx).With("client_id", c.clientID)

	session, err := c.start(ctx)
	if err != nil {
		c.transition(device.StateFailed)
		return nil, err
	}
	interval := session.PollInterval()

	var (
		lastErr  error
		needCode bool
	)
	for {
		if needCode {
			next, err := c.start(ctx)
			switch {
			case err == nil:
				session, interval, needCode = next, next.PollInterval(), false
			case ctx.Err() != nil:
				c.transition(device.StateFailed)
				return nil, c.interrupted(ctx.Err(), err)
			case !renewalRetryable(err):
				c.transition(device.StateFailed)
				return nil, err
			default:
				logger.Warn("failed to renew device code, will retry", logging.ErrAttr(err), "interval", interval)
				lastErr = err
			}
		}

		if err := clock.Sleep(ctx, interval); err != nil {
			c.transition(device.StateFailed)
			return nil, c.interrupted(err, lastErr)
		}
		if needCode {
			continue
		}

		c.transition(device.StatePolling)
		result, err := c.poll(ctx, session)
		if err != nil {
			if ctx.Err() != nil {
				c.transition(device.StateFailed)
				return nil, c.interrupted(ctx.Err(), err)
			}
			logger.Warn("transient failure while polling, will retry", logging.ErrAttr(err), "interval", interval)
			lastErr = err
			continue
		}

		if result.AccessToken != "" {
			c.transition(device.StateAuthorized)
			token := &device.Token{
				AccessToken: result.AccessToken,
				TokenType:   result.TokenType,
				Scope:       result.Scope,
			}
			logger.Debug("device authorized", "token", token)
			return token, nil
		}

		switch code := result.Error.Normalize(); code {
		case device.ErrorAuthorizationPending:
			logger.Debug("authorization pending")

		case device.ErrorSlowDown:
			if result.Interval > 0 {
				interval = time.Duration(result.Interval) * time.Second
			} else {
				interval += SlowDownStep
			}
			logger.Debug("slowing down", "interval", interval)

		case device.ErrorExpiredToken:
			logger.Info("device code expired, requesting a new one")
			needCode = true

		case device.ErrorUnknown:
			if result.Error == "" {
				lastErr = goerr.New("token endpoint returned neither token nor error")
				logger.Warn("unexpected token response, will retry", logging.ErrAttr(lastErr))
				continue
			}
			c.transition(device.StateFailed)
			return nil, flowFailure(code, result)

		default:
			c.transition(device.StateFailed)
			return nil, flowFailure(code, result)
		}
	}
}

// start requests a device code and presents it.
func (c *Client) start(ctx context.Context) (*device.Session, error) {
	c.transition(device.StateRequestingCode)
	session, err := c.requestCode(ctx)
	if err != nil {
		return nil, err
	}

	c.transition(device.StateAwaitingAuthorization)
	logging.From(ctx).Debug("device code issued", "session", session)
	if c.presenter != nil {
		if err := c.presenter.Present(ctx, session); err != nil {
			return nil, goerr.Wrap(err, "failed to present device code")
		}
	}
	return session, nil
}

// renewalRetryable reports whether a failed code renewal was a transport or
// decoding failure. Error codes returned by GitHub and presenter failures end
// the flow.
func renewalRetryable(err error) bool {
	var flowErr *device.FlowError
	if errors.As(err, &flowErr) {
		return false
	}
	return goerr.HasTag(err, errs.TagExternal)
}

func (c *Client) interrupted(cause, lastErr error) error {
	opts := []goerr.Option{goerr.TV(errutil.ClientIDKey, c.clientID)}
	if errors.Is(cause, context.DeadlineExceeded) {
		opts = append(opts, goerr.T(errs.TagTimeout))
	}
	if lastErr != nil {
		opts = append(opts, goerr.V("last_error", lastErr.Error()))
	}
	return goerr.Wrap(cause, "device authorization did not complete", opts...)
}

func flowFailure(code device.ErrorCode, result *device.PollResult) error {
	flowErr := &device.FlowError{
		Code:        code,
		Description: result.ErrorDescription,
		Raw:         string(result.Error),
		URI:         result.ErrorURI,
	}

	opts := []goerr.Option{goerr.TV(errutil.ErrorCodeKey, string(result.Error))}
	if result.ErrorURI != "" {
		opts = append(opts, goerr.V("error_uri", result.ErrorURI))
	}
	switch {
	case code == device.ErrorAccessDenied:
		opts = append(opts, goerr.T(errs.TagAccessDenied))
	case code.Misconfiguration():
		opts = append(opts, goerr.T(errs.TagMisconfigured))
	default:
		opts = append(opts, goerr.T(errs.TagExternal))
	}
	return goerr.Wrap(flowErr, "device authorization failed", opts...)
}

type codeResponse struct {
	device.Session
	Error            device.ErrorCode `json:"error"`
	ErrorDescription string           `json:"error_description"`
	ErrorURI         string           `json:"error_uri"`
}

func (c *Client) requestCode(ctx context.Context) (*device.Session, error) {
	params := url.Values{
		"client_id": {c.clientID},
	}
	if c.scope != "" {
		params.Set("scope", c.scope)
	}

	body, status, err := c.post(ctx, c.endpoint.DeviceAuthURL, params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to request device code", goerr.T(errs.TagExternal))
	}

	var resp codeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, goerr.Wrap(err, "invalid device code response",
			goerr.T(errs.TagExternal),
			goerr.TV(errutil.HTTPStatusKey, status),
			goerr.TV(errutil.BodyKey, string(body)),
		)
	}
	if resp.Error != "" {
		return nil, flowFailure(resp.Error.Normalize(), &device.PollResult{
			Error:            resp.Error,
			ErrorDescription: resp.ErrorDescription,
			ErrorURI:         resp.ErrorURI,
		})
	}
	if status < 200 || status >= 300 || resp.DeviceCode == "" {
		return nil, goerr.New("unexpected device code response",
			goerr.T(errs.TagExternal),
			goerr.TV(errutil.HTTPStatusKey, status),
			goerr.TV(errutil.BodyKey, string(body)),
		)
	}

	return &resp.Session, nil
}

func (c *Client) poll(ctx context.Context, session *device.Session) (*device.PollResult, error) {
	params := url.Values{
		"client_id":   {c.clientID},
		"device_code": {session.DeviceCode},
		"grant_type":  {device.GrantType},
	}

	body, status, err := c.post(ctx, c.endpoint.TokenURL, params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to poll token endpoint")
	}

	var result device.PollResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, goerr.Wrap(err, "invalid token response",
			goerr.TV(errutil.HTTPStatusKey, status),
		)
	}
	return &result, nil
}

// post sends params in the query string, as GitHub documents for both
// device flow endpoints, and returns the raw body.
func (c *Client) post(ctx context.Context, endpoint string, params url.Values) ([]byte, int, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "invalid endpoint", goerr.TV(errutil.URLKey, endpoint))
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to create request", goerr.TV(errutil.URLKey, endpoint))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, goerr.Wrap(err, "request failed", goerr.TV(errutil.URLKey, endpoint))
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, goerr.Wrap(err, "failed to read response", goerr.TV(errutil.URLKey, endpoint))
	}
	return body, resp.StatusCode, nil
}
