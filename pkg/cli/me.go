package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/usecase"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func cmdMe() *cli.Command {
	cfg := newLoginConfig()
	var (
		serverURL string
		format    string
	)

	return &cli.Command{
		Name:      "me",
		Usage:     "Sign in and show what the service and GitHub know about you",
		ArgsUsage: "[client-id]",
		Flags: joinFlags(
			[]cli.Flag{
				&cli.StringFlag{
					Name:        "server",
					Usage:       "URL of the service identity echo (e.g. https://example.net/api/me)",
					Sources:     cli.EnvVars("GHAUTH_SERVER_URL"),
					Destination: &serverURL,
				},
				&cli.StringFlag{
					Name:        "format",
					Usage:       "Output format [json|yaml]",
					Sources:     cli.EnvVars("GHAUTH_FORMAT"),
					Value:       "json",
					Destination: &format,
				},
			},
			cfg.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			if format != "json" && format != "yaml" {
				return goerr.New("invalid output format", goerr.T(errs.TagValidation), goerr.V("format", format))
			}

			uc, err := cfg.useCase(c)
			if err != nil {
				return err
			}
			result, err := cfg.login(ctx, uc)
			if err != nil {
				return err
			}

			docs, err := uc.Profile(ctx, result.AccessToken, serverURL)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				if err := printDocument(cfg.stdout, doc, format); err != nil {
					return err
				}
			}

			color.New(color.FgGreen, color.Bold).Fprintln(cfg.stdout, "Success!")
			return nil
		},
	}
}

func printDocument(w io.Writer, doc usecase.Document, format string) error {
	color.New(color.FgBlue, color.Bold).Fprintf(w, "%s (%d)\n", doc.Title, doc.Status)

	var body any
	if err := json.Unmarshal(doc.Body, &body); err != nil {
		return goerr.Wrap(err, "failed to decode document", goerr.V("title", doc.Title))
	}

	var out []byte
	var err error
	switch format {
	case "yaml":
		out, err = yaml.Marshal(body)
	default:
		out, err = json.MarshalIndent(body, "", "  ")
		out = append(out, '\n')
	}
	if err != nil {
		return goerr.Wrap(err, "failed to encode document", goerr.V("format", format))
	}

	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}
