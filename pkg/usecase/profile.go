package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/utils/errutil"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
	"github.com/secmon-lab/ghauth/pkg/utils/safe"
)

// Document is a titled JSON document shown to the CLI user.
type Document struct {
	Title  string
	Status int
	Body   json.RawMessage
}

// Profile collects what the service and GitHub report about the owner of
// token: the service's /api/me echo (when serverURL is set), the GitHub user
// and the user's organization memberships.
func (uc *LoginUseCase) Profile(ctx context.Context, token, serverURL string) ([]Document, error) {
	client := tokenClient(uc.httpClient, token)
	var docs []Document

	if serverURL != "" {
		doc, err := fetchServer(ctx, client, serverURL)
		if err != nil {
			logging.From(ctx).Warn("failed to query server", logging.ErrAttr(err), "url", serverURL)
		} else {
			docs = append(docs, *doc)
		}
	}

	gh := newGitHubClient(client, uc.baseURL)
	for _, target := range []struct{ title, path string }{
		{"GitHub user", "user"},
		{"GitHub organizations", "user/memberships/orgs"},
	} {
		raw, err := fetchRaw(ctx, gh, client, target.path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Title: target.title, Status: raw.Status, Body: raw.Body})
	}

	return docs, nil
}

func fetchServer(ctx context.Context, client *http.Client, serverURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid server URL", goerr.T(errs.TagValidation), goerr.TV(errutil.URLKey, serverURL))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call server", goerr.T(errs.TagExternal), goerr.TV(errutil.URLKey, serverURL))
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read server response", goerr.T(errs.TagExternal), goerr.TV(errutil.URLKey, serverURL))
	}
	if !json.Valid(body) {
		quoted, _ := json.Marshal(string(body))
		body = quoted
	}

	return &Document{Title: "Server", Status: resp.StatusCode, Body: body}, nil
}
