// Package outbound attaches the caller's access token to requests the service
// makes on the caller's behalf.
package outbound

import (
	"context"
	"net/http"

	"github.com/secmon-lab/ghauth/pkg/utils/reqctx"
)

// TokenFunc returns the access token to attach for ctx, or "" for none.
type TokenFunc func(ctx context.Context) string

// CurrentToken reads the access token of the identity in the current
// RequestContext.
func CurrentToken(ctx context.Context) string {
	id, ok := reqctx.CurrentIdentity(ctx)
	if !ok {
		return ""
	}
	return id.AccessToken()
}

// Transport sets "Authorization: Bearer <token>" on every outgoing request
// when a token is available. It performs no retry or refresh.
type Transport struct {
	Base  http.RoundTripper
	Token TokenFunc
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	tokenFn := t.Token
	if tokenFn == nil {
		tokenFn = CurrentToken
	}

	if token := tokenFn(req.Context()); token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return t.base().RoundTrip(req)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

type Option func(*Transport)

// WithToken replaces the RequestContext lookup, e.g. with a fixed token in tests.
func WithToken(fn TokenFunc) Option {
	return func(t *Transport) {
		t.Token = fn
	}
}

// NewClient wraps base so that requests carry the caller's token. base is not
// modified; nil uses http.DefaultClient.
func NewClient(base *http.Client, opts ...Option) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	t := &Transport{Base: base.Transport}
	for _, opt := range opts {
		opt(t)
	}

	client := *base
	client.Transport = t
	return &client
}
