package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/ghauth/pkg/service/deviceflow"
	"github.com/urfave/cli/v3"
)

type DeviceFlow struct {
	scope   string
	timeout time.Duration
}

func (x *DeviceFlow) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "scope",
			Usage:       "OAuth scopes requested by the device flow",
			Category:    "Device flow",
			Sources:     cli.EnvVars("GHAUTH_SCOPE"),
			Value:       "read:user,read:org",
			Destination: &x.scope,
		},
		&cli.DurationFlag{
			Name:        "login-timeout",
			Usage:       "Give up waiting for authorization after this long (0 waits until the code is denied)",
			Category:    "Device flow",
			Sources:     cli.EnvVars("GHAUTH_LOGIN_TIMEOUT"),
			Value:       15 * time.Minute,
			Destination: &x.timeout,
		},
	}
}

func (x DeviceFlow) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("scope", x.scope),
		slog.Duration("timeout", x.timeout),
	)
}

func (x *DeviceFlow) Timeout() time.Duration {
	return x.timeout
}

func (x *DeviceFlow) Configure(clientID string, presenter deviceflow.Presenter) *deviceflow.Client {
	opts := []deviceflow.Option{
		deviceflow.WithScope(x.scope),
	}
	if presenter != nil {
		opts = append(opts, deviceflow.WithPresenter(presenter))
	}
	return deviceflow.New(clientID, opts...)
}
