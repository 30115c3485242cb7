package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
)

func TestLoggerRedaction(t *testing.T) {
	t.Run("secret prefixed attribute", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON, false)
		logger.Info("hello",
			slog.String("secret_token", "gho_xxxxxxxx"),
			slog.String("login", "octocat"),
		)

		gt.S(t, buf.String()).Contains("octocat").NotContains("gho_xxxxxxxx")
	})

	t.Run("credential struct fields", func(t *testing.T) {
		type session struct {
			AccessToken string
			Cookie      string
			Login       string
		}

		var buf bytes.Buffer
		logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON, false)
		logger.Info("session", slog.Any("session", session{
			AccessToken: "gho_token_value",
			Cookie:      "AppServiceAuthSession=abc",
			Login:       "hubot",
		}))

		gt.S(t, buf.String()).
			Contains("hubot").
			NotContains("gho_token_value").
			NotContains("AppServiceAuthSession=abc")
	})
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelDebug, logging.FormatJSON, false)
	ctx := logging.With(context.Background(), logger)

	logging.From(ctx).Debug("from context")
	gt.S(t, buf.String()).Contains("from context")

	gt.Equal(t, logging.From(context.Background()), logging.Default())
}
