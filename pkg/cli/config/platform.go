package config

import (
	"log/slog"
	"strconv"

	"github.com/secmon-lab/ghauth/pkg/usecase"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
)

// Platform reads the hosting platform's authentication settings. The
// platform publishes them as WEBSITE_AUTH_ENABLED and
// WEBSITE_AUTH_V2_CONFIG_JSON.
type Platform struct {
	enabled    string
	configJSON string
	clientID   string
}

func (x *Platform) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "platform-auth-enabled",
			Usage:       "Whether the hosting platform authenticates requests [true|false]",
			Category:    "Platform",
			Sources:     cli.EnvVars("GHAUTH_PLATFORM_AUTH_ENABLED", "WEBSITE_AUTH_ENABLED"),
			Destination: &x.enabled,
		},
		&cli.StringFlag{
			Name:        "platform-auth-config",
			Usage:       "Platform authentication settings document (JSON)",
			Category:    "Platform",
			Sources:     cli.EnvVars("GHAUTH_PLATFORM_AUTH_CONFIG", "WEBSITE_AUTH_V2_CONFIG_JSON"),
			Destination: &x.configJSON,
		},
		&cli.StringFlag{
			Name:        "github-client-id",
			Usage:       "GitHub OAuth app client ID (overrides the platform settings document)",
			Category:    "Platform",
			Sources:     cli.EnvVars("GHAUTH_GITHUB_CLIENT_ID"),
			Destination: &x.clientID,
		},
	}
}

func (x Platform) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("enabled", x.enabled),
		slog.Bool("has_config", x.configJSON != ""),
		slog.String("client_id", x.clientID),
	)
}

// Configure never fails. Incomplete settings yield a disabled PlatformAuth,
// which makes the identity echo answer 500.
func (x *Platform) Configure() usecase.PlatformAuth {
	logger := logging.Default()

	if enabled, err := strconv.ParseBool(x.enabled); err != nil || !enabled {
		logger.Warn("platform authentication is not enabled", "enabled", x.enabled)
		return usecase.PlatformAuth{ClientID: x.clientID}
	}

	clientID := x.clientID
	if clientID == "" {
		provider := gjson.Get(x.configJSON, "identityProviders.gitHub")
		if !provider.Exists() || !provider.Get("enabled").Bool() {
			logger.Warn("GitHub identity provider is not configured in the platform settings")
			return usecase.PlatformAuth{}
		}
		clientID = provider.Get("registration.clientId").String()
	}

	if clientID == "" {
		logger.Warn("GitHub client ID is not configured")
		return usecase.PlatformAuth{}
	}

	return usecase.PlatformAuth{Enabled: true, ClientID: clientID}
}
