// Package reqctx carries the per-request RequestContext through a call chain.
//
// The context.Context stores a holder rather than the RequestContext itself.
// Attaching a new RequestContext clears any holder already on the chain, and
// Detach clears the holder once the request completes, so work that outlives
// the request observes no context instead of a stale one.
package reqctx

import (
	"context"
	"sync"

	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
)

// RequestContext is the per-request record. Its identity slot can be written
// exactly once.
type RequestContext struct {
	id string

	mu       sync.RWMutex
	identity *principal.Identity
}

func New(id string) *RequestContext {
	return &RequestContext{id: id}
}

func (x *RequestContext) ID() string { return x.id }

// SetIdentity installs identity. It returns false and leaves the slot untouched
// when an identity is already present or identity is nil.
func (x *RequestContext) SetIdentity(identity *principal.Identity) bool {
	if identity == nil {
		return false
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.identity != nil {
		return false
	}
	x.identity = identity
	return true
}

func (x *RequestContext) Identity() (*principal.Identity, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.identity, x.identity != nil
}

type holder struct {
	mu sync.RWMutex
	rc *RequestContext
}

func (h *holder) get() *RequestContext {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rc
}

func (h *holder) clear() {
	h.mu.Lock()
	h.rc = nil
	h.mu.Unlock()
}

type ctxHolderKey struct{}

func holderFrom(ctx context.Context) *holder {
	h, _ := ctx.Value(ctxHolderKey{}).(*holder)
	return h
}

// Attach installs rc as the current RequestContext for ctx and everything
// derived from the returned context.
func Attach(ctx context.Context, rc *RequestContext) context.Context {
	if h := holderFrom(ctx); h != nil {
		h.clear()
	}
	return context.WithValue(ctx, ctxHolderKey{}, &holder{rc: rc})
}

// Current returns the RequestContext attached to ctx, or nil.
func Current(ctx context.Context) *RequestContext {
	if h := holderFrom(ctx); h != nil {
		return h.get()
	}
	return nil
}

// Detach ends the RequestContext lifetime for every context sharing the holder.
func Detach(ctx context.Context) {
	if h := holderFrom(ctx); h != nil {
		h.clear()
	}
}

// CurrentIdentity is a shortcut for Current(ctx).Identity().
func CurrentIdentity(ctx context.Context) (*principal.Identity, bool) {
	rc := Current(ctx)
	if rc == nil {
		return nil, false
	}
	return rc.Identity()
}
