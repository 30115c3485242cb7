package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/google/go-github/v74/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/utils/errutil"
	"github.com/secmon-lab/ghauth/pkg/utils/safe"
	"golang.org/x/oauth2"
)

// tokenClient returns an HTTP client that authenticates every request with
// token. base is not modified.
func tokenClient(base *http.Client, token string) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	client := *base
	client.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
		Base:   base.Transport,
	}
	return &client
}

func newGitHubClient(httpClient *http.Client, baseURL *url.URL) *github.Client {
	client := github.NewClient(httpClient)
	if baseURL != nil {
		client.BaseURL = baseURL
	}
	return client
}

// rawDocument is a JSON document fetched as-is together with its response.
type rawDocument struct {
	Status int
	Header http.Header
	Body   json.RawMessage
}

// fetchRaw issues GET path against the GitHub API without interpreting the
// status code, so that callers can relay GitHub's answer verbatim.
func fetchRaw(ctx context.Context, gh *github.Client, httpClient *http.Client, path string) (*rawDocument, error) {
	req, err := gh.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build GitHub request", goerr.TV(errutil.PathKey, path))
	}

	resp, err := httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call GitHub",
			goerr.T(errs.TagGitHubError),
			goerr.TV(errutil.URLKey, req.URL.String()),
		)
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GitHub response",
			goerr.T(errs.TagGitHubError),
			goerr.TV(errutil.URLKey, req.URL.String()),
		)
	}

	return &rawDocument{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   body,
	}, nil
}
