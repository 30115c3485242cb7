package cli

import (
	"context"
	"io"
	"os"

	"github.com/secmon-lab/ghauth/pkg/cli/config"
	"github.com/secmon-lab/ghauth/pkg/usecase"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// loginConfig is shared by the commands acting on a stored GitHub token.
type loginConfig struct {
	clientID   string
	noBrowser  bool
	github     config.GitHub
	deviceFlow config.DeviceFlow
	credential config.CredentialStore

	stdin  io.Reader
	stdout io.Writer
	open   browserOpener
}

func newLoginConfig() *loginConfig {
	return &loginConfig{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		open:   openBrowser,
	}
}

func (x *loginConfig) Flags() []cli.Flag {
	return joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "client-id",
				Usage:       "GitHub OAuth app client ID (also accepted as the first argument)",
				Sources:     cli.EnvVars("GHAUTH_CLIENT_ID"),
				Destination: &x.clientID,
			},
			&cli.BoolFlag{
				Name:        "no-browser",
				Usage:       "Do not open the verification page automatically",
				Sources:     cli.EnvVars("GHAUTH_NO_BROWSER"),
				Destination: &x.noBrowser,
			},
		},
		x.github.Flags(),
		x.deviceFlow.Flags(),
		x.credential.Flags(),
	)
}

func (x *loginConfig) useCase(c *cli.Command) (*usecase.LoginUseCase, error) {
	clientID, err := resolveClientID(c, x.clientID, x.stdin, x.stdout)
	if err != nil {
		return nil, err
	}

	store, err := x.credential.Configure()
	if err != nil {
		return nil, err
	}

	baseURL, err := x.github.BaseURL()
	if err != nil {
		return nil, err
	}

	presenter := &consolePresenter{out: x.stdout}
	if !x.noBrowser {
		presenter.open = x.open
	}

	return usecase.NewLoginUseCase(store,
		x.deviceFlow.Configure(clientID, presenter),
		clientID,
		usecase.WithLoginGitHubBaseURL(baseURL),
	), nil
}

// login returns a usable token, running the device flow only when the
// stored one is missing or rejected.
func (x *loginConfig) login(ctx context.Context, uc *usecase.LoginUseCase) (*usecase.LoginResult, error) {
	if timeout := x.deviceFlow.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := uc.Login(ctx)
	if err != nil {
		return nil, err
	}
	printLoggedIn(x.stdout, result.Login, result.Cached)
	return result, nil
}

func cmdLogin() *cli.Command {
	cfg := newLoginConfig()

	return &cli.Command{
		Name:      "login",
		Usage:     "Sign in to GitHub with the device flow and store the token",
		ArgsUsage: "[client-id]",
		Flags:     cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.From(ctx).Debug("login options",
				"github", cfg.github,
				"device_flow", cfg.deviceFlow,
				"credential", cfg.credential,
			)

			uc, err := cfg.useCase(c)
			if err != nil {
				return err
			}
			_, err = cfg.login(ctx, uc)
			return err
		},
	}
}

func cmdLogout() *cli.Command {
	cfg := newLoginConfig()

	return &cli.Command{
		Name:      "logout",
		Usage:     "Remove the stored token",
		ArgsUsage: "[client-id]",
		Flags:     cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.useCase(c)
			if err != nil {
				return err
			}
			if err := uc.Logout(ctx); err != nil {
				return err
			}
			logging.From(ctx).Info("stored token removed")
			return nil
		},
	}
}
