package config

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
)

// GitHub holds where the GitHub REST API lives and how its user attributes
// are named as claims.
type GitHub struct {
	apiURL      string
	claimPrefix string
}

func (x *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub REST API base URL (set for GitHub Enterprise Server)",
			Category:    "GitHub",
			Sources:     cli.EnvVars("GHAUTH_GITHUB_API_URL"),
			Value:       "https://api.github.com/",
			Destination: &x.apiURL,
		},
		&cli.StringFlag{
			Name:        "github-claim-prefix",
			Usage:       "Prefix of claim types derived from the GitHub user of a bearer token",
			Category:    "GitHub",
			Sources:     cli.EnvVars("GHAUTH_GITHUB_CLAIM_PREFIX"),
			Value:       "urn:github:",
			Destination: &x.claimPrefix,
		},
	}
}

func (x GitHub) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("api_url", x.apiURL),
		slog.String("claim_prefix", x.claimPrefix),
	)
}

func (x *GitHub) ClaimPrefix() string {
	return x.claimPrefix
}

// BaseURL parses the API URL. The path always ends with a slash.
func (x *GitHub) BaseURL() (*url.URL, error) {
	raw := x.apiURL
	if raw == "" {
		raw = "https://api.github.com/"
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid GitHub API URL", goerr.T(errs.TagValidation), goerr.TV(errutil.URLKey, x.apiURL))
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, goerr.New("GitHub API URL must be http(s)", goerr.T(errs.TagValidation), goerr.TV(errutil.URLKey, x.apiURL))
	}
	return u, nil
}
