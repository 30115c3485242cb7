package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/secmon-lab/ghauth/pkg/adapter/outbound"
	"github.com/secmon-lab/ghauth/pkg/cli/config"
	server "github.com/secmon-lab/ghauth/pkg/controller/http"
	"github.com/secmon-lab/ghauth/pkg/domain/types"
	"github.com/secmon-lab/ghauth/pkg/service/authn"
	"github.com/secmon-lab/ghauth/pkg/usecase"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		addr          string
		development   bool
		sessionScheme string
		githubCfg     config.GitHub
		platformCfg   config.Platform
		policyCfg     config.Policy
		sentryCfg     config.Sentry
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Sources:     cli.EnvVars("GHAUTH_ADDR", "FUNCTIONS_CUSTOMHANDLER_PORT"),
				Usage:       "Listen address (default: 127.0.0.1:8080)",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.BoolFlag{
				Name:        "development",
				Usage:       "Report handler panics with stack traces",
				Sources:     cli.EnvVars("GHAUTH_DEVELOPMENT"),
				Destination: &development,
			},
			&cli.StringFlag{
				Name:        "session-scheme",
				Usage:       "Scheme used to query the platform session endpoint [https|http]",
				Category:    "Platform",
				Sources:     cli.EnvVars("GHAUTH_SESSION_SCHEME"),
				Value:       "https",
				Destination: &sessionScheme,
			},
		},
		githubCfg.Flags(),
		platformCfg.Flags(),
		policyCfg.Flags(),
		sentryCfg.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run the HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Default().Info("starting server",
				"addr", addr,
				"development", development,
				"session_scheme", sessionScheme,
				"github", githubCfg,
				"platform", platformCfg,
				"policy", policyCfg,
				"sentry", sentryCfg,
			)

			if err := sentryCfg.Configure(types.Version); err != nil {
				return err
			}

			policyClient, err := policyCfg.Configure()
			if err != nil {
				return err
			}

			baseURL, err := githubCfg.BaseURL()
			if err != nil {
				return err
			}

			httpClient := &http.Client{Timeout: 30 * time.Second}
			pipeline := authn.NewPipeline(
				authn.NewPlatformHeaderResolver(),
				authn.NewBearerTokenResolver(httpClient,
					authn.WithClaimPrefix(githubCfg.ClaimPrefix()),
					authn.WithGitHubBaseURL(baseURL),
				),
				authn.NewSessionCookieResolver(httpClient, authn.WithSessionScheme(sessionScheme)),
			)

			meUC := usecase.NewMeUseCase(platformCfg.Configure(),
				outbound.NewClient(httpClient),
				usecase.WithMeGitHubBaseURL(baseURL),
			)

			serverOptions := []server.Options{
				server.WithMeUseCase(meUC),
				server.WithVersion(types.Version),
				server.WithDevelopment(development),
			}
			if policyClient != nil {
				serverOptions = append(serverOptions, server.WithPolicy(policyClient))
			} else {
				logging.From(ctx).Warn("no policy given, requests are not authorized")
			}

			logging.From(ctx).Info("identity resolution configured", "resolvers", pipeline.Resolvers())

			httpServer := http.Server{
				Addr:              listenAddr(addr),
				Handler:           server.New(pipeline, serverOptions...),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpServer.Shutdown(ctx)
			}
		},
	}
}

// listenAddr accepts a bare port, as given by the functions host.
func listenAddr(addr string) string {
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	if _, err := net.LookupPort("tcp", addr); err == nil {
		return ":" + addr
	}
	return addr
}
