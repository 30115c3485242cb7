package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghauth/pkg/cli/config"
	"github.com/secmon-lab/ghauth/pkg/usecase"
	"github.com/urfave/cli/v3"
)

const platformSettings = `{
  "platform": {"enabled": true},
  "identityProviders": {
    "gitHub": {
      "enabled": true,
      "registration": {"clientId": "Iv1.platform", "clientSecretSettingName": "GITHUB_SECRET"}
    }
  }
}`

func configurePlatform(t *testing.T, args ...string) usecase.PlatformAuth {
	t.Helper()
	unsetEnv(t,
		"GHAUTH_PLATFORM_AUTH_ENABLED", "WEBSITE_AUTH_ENABLED",
		"GHAUTH_PLATFORM_AUTH_CONFIG", "WEBSITE_AUTH_V2_CONFIG_JSON",
		"GHAUTH_GITHUB_CLIENT_ID",
	)

	var cfg config.Platform
	var result usecase.PlatformAuth
	cmd := &cli.Command{
		Name:  "test",
		Flags: cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			result = cfg.Configure()
			return nil
		},
	}
	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return result
}

func TestPlatform(t *testing.T) {
	t.Run("reads the client ID from the settings document", func(t *testing.T) {
		auth := configurePlatform(t,
			"--platform-auth-enabled", "true",
			"--platform-auth-config", platformSettings,
		)
		gt.True(t, auth.Enabled)
		gt.Equal(t, auth.ClientID, "Iv1.platform")
	})

	t.Run("platform variables are honored", func(t *testing.T) {
		var cfg config.Platform
		var result usecase.PlatformAuth
		unsetEnv(t, "GHAUTH_PLATFORM_AUTH_ENABLED", "GHAUTH_PLATFORM_AUTH_CONFIG", "GHAUTH_GITHUB_CLIENT_ID")
		t.Setenv("WEBSITE_AUTH_ENABLED", "True")
		t.Setenv("WEBSITE_AUTH_V2_CONFIG_JSON", platformSettings)

		cmd := &cli.Command{
			Name:  "test",
			Flags: cfg.Flags(),
			Action: func(ctx context.Context, c *cli.Command) error {
				result = cfg.Configure()
				return nil
			},
		}
		gt.NoError(t, cmd.Run(context.Background(), []string{"test"}))
		gt.True(t, result.Enabled)
		gt.Equal(t, result.ClientID, "Iv1.platform")
	})

	t.Run("disabled platform authentication", func(t *testing.T) {
		auth := configurePlatform(t,
			"--platform-auth-enabled", "false",
			"--platform-auth-config", platformSettings,
		)
		gt.False(t, auth.Enabled)
	})

	t.Run("missing enabled flag", func(t *testing.T) {
		auth := configurePlatform(t, "--platform-auth-config", platformSettings)
		gt.False(t, auth.Enabled)
	})

	t.Run("GitHub provider disabled", func(t *testing.T) {
		auth := configurePlatform(t,
			"--platform-auth-enabled", "true",
			"--platform-auth-config", `{"identityProviders":{"gitHub":{"enabled":false,"registration":{"clientId":"x"}}}}`,
		)
		gt.False(t, auth.Enabled)
	})

	t.Run("GitHub provider without client ID", func(t *testing.T) {
		auth := configurePlatform(t,
			"--platform-auth-enabled", "true",
			"--platform-auth-config", `{"identityProviders":{"gitHub":{"enabled":true}}}`,
		)
		gt.False(t, auth.Enabled)
	})

	t.Run("explicit client ID overrides the document", func(t *testing.T) {
		auth := configurePlatform(t,
			"--platform-auth-enabled", "true",
			"--github-client-id", "Iv1.override",
		)
		gt.True(t, auth.Enabled)
		gt.Equal(t, auth.ClientID, "Iv1.override")
	})
}
