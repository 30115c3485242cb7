package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/ghauth/pkg/domain/interfaces"
	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
	"github.com/secmon-lab/ghauth/pkg/service/authn"
	"github.com/secmon-lab/ghauth/pkg/usecase"
)

// MeUseCase is implemented by usecase.MeUseCase.
type MeUseCase interface {
	LoginURL(host string) (string, bool)
	Me(ctx context.Context, identity *principal.Identity, header http.Header) (*usecase.MeResponse, error)
}

type Server struct {
	router      *chi.Mux
	pipeline    *authn.Pipeline
	policy      interfaces.PolicyClient
	meUC        MeUseCase
	version     string
	development bool
}

type Options func(*Server)

func WithPolicy(policy interfaces.PolicyClient) Options {
	return func(s *Server) {
		s.policy = policy
	}
}

func WithMeUseCase(uc MeUseCase) Options {
	return func(s *Server) {
		s.meUC = uc
	}
}

func WithVersion(version string) Options {
	return func(s *Server) {
		s.version = version
	}
}

// WithDevelopment makes the error middleware log full panic details.
func WithDevelopment(enabled bool) Options {
	return func(s *Server) {
		s.development = enabled
	}
}

func New(pipeline *authn.Pipeline, opts ...Options) *Server {
	r := chi.NewRouter()
	s := &Server{
		router:   r,
		pipeline: pipeline,
		version:  "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(loggingMiddleware)
	r.Use(errorMiddleware(s.development))
	r.Use(resolveIdentity(s.pipeline))

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", versionHandler(s.version))

		if s.meUC != nil {
			r.Group(func(r chi.Router) {
				r.Use(authorizeWithPolicy(s.policy))
				r.Get("/me", meHandler(s.meUC))
			})
		}
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
