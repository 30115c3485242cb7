package authn

import (
	"context"
	"net/http"

	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/secmon-lab/ghauth/pkg/utils/reqctx"
)

type State int

const (
	StateUnresolved State = iota
	StateResolving
	StateResolved
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Pipeline runs resolvers in a fixed priority order and installs the first
// identity produced, or the anonymous identity, into the RequestContext.
type Pipeline struct {
	resolvers []Resolver
	observer  func(State)
}

// NewPipeline fixes the order: platform header, bearer token, session cookie.
// A nil resolver is skipped.
func NewPipeline(platform *PlatformHeaderResolver, bearer *BearerTokenResolver, session *SessionCookieResolver) *Pipeline {
	p := &Pipeline{}
	if platform != nil {
		p.resolvers = append(p.resolvers, platform)
	}
	if bearer != nil {
		p.resolvers = append(p.resolvers, bearer)
	}
	if session != nil {
		p.resolvers = append(p.resolvers, session)
	}
	return p
}

// OnTransition registers fn to receive the states a Run passes through.
func (p *Pipeline) OnTransition(fn func(State)) *Pipeline {
	p.observer = fn
	return p
}

func (p *Pipeline) transition(ctx context.Context, s State) State {
	logging.From(ctx).Debug("identity resolution state", "state", s.String())
	if p.observer != nil {
		p.observer(s)
	}
	return s
}

// Resolvers returns the names of the configured resolvers in evaluation order.
func (p *Pipeline) Resolvers() []string {
	names := make([]string, len(p.resolvers))
	for i, r := range p.resolvers {
		names[i] = r.Name()
	}
	return names
}

// Run resolves the identity of r into rc. A request starts Unresolved and
// moves through Resolving to Resolved or Anonymous. An identity already
// present in rc is kept and no resolver is invoked.
func (p *Pipeline) Run(ctx context.Context, rc *reqctx.RequestContext, r *http.Request) State {
	if _, ok := rc.Identity(); ok {
		return StateResolved
	}
	logger := logging.From(ctx)
	p.transition(ctx, StateResolving)

	for _, resolver := range p.resolvers {
		identity, ok := resolver.Resolve(ctx, r)
		if !ok {
			continue
		}
		if rc.SetIdentity(identity) {
			logger.Debug("identity resolved", "resolver", resolver.Name(), "identity", identity)
		}
		return p.transition(ctx, StateResolved)
	}

	rc.SetIdentity(principal.Anonymous())
	logger.Debug("no credential applied, continuing as anonymous")
	return p.transition(ctx, StateAnonymous)
}
