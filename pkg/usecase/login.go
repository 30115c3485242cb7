package usecase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghauth/pkg/domain/interfaces"
	"github.com/secmon-lab/ghauth/pkg/domain/model/credential"
	"github.com/secmon-lab/ghauth/pkg/domain/model/device"
	"github.com/secmon-lab/ghauth/pkg/domain/model/errs"
	"github.com/secmon-lab/ghauth/pkg/utils/errutil"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
)

// DeviceAuthorizer obtains a fresh token interactively.
type DeviceAuthorizer interface {
	Authorize(ctx context.Context) (*device.Token, error)
}

type LoginUseCase struct {
	store      interfaces.CredentialStore
	authorizer DeviceAuthorizer
	clientID   string
	realm      string
	httpClient *http.Client
	baseURL    *url.URL
}

type LoginOption func(*LoginUseCase)

// WithLoginHTTPClient sets the base client used for GitHub API calls.
func WithLoginHTTPClient(client *http.Client) LoginOption {
	return func(uc *LoginUseCase) {
		uc.httpClient = client
	}
}

func WithLoginGitHubBaseURL(u *url.URL) LoginOption {
	return func(uc *LoginUseCase) {
		uc.baseURL = u
	}
}

func NewLoginUseCase(store interfaces.CredentialStore, authorizer DeviceAuthorizer, clientID string, opts ...LoginOption) *LoginUseCase {
	uc := &LoginUseCase{
		store:      store,
		authorizer: authorizer,
		clientID:   clientID,
		realm:      credential.GitHubRealm,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type LoginResult struct {
	AccessToken string `masq:"secret"`
	Login       string
	// Cached is true when the stored token was still valid and the device
	// flow was skipped.
	Cached bool
}

// Login returns a valid token for the client ID, reusing the stored one when
// GitHub still accepts it. A new token is stored only after the user
// authorized the device.
func (uc *LoginUseCase) Login(ctx context.Context) (*LoginResult, error) {
	logger := logging.From(ctx).With("client_id", uc.clientID)

	cred, err := uc.store.Get(ctx, uc.realm, uc.clientID)
	if err != nil {
		logger.Warn("failed to read stored credential, starting device flow", logging.ErrAttr(err))
	} else if cred != nil {
		login, err := uc.CurrentLogin(ctx, cred.Secret)
		if err == nil {
			logger.Debug("stored token is valid", "login", login)
			return &LoginResult{AccessToken: cred.Secret, Login: login, Cached: true}, nil
		}
		logger.Info("stored token is no longer valid, starting device flow", logging.ErrAttr(err))
	}

	token, err := uc.authorizer.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	// A token GitHub does not accept is never persisted.
	login, err := uc.CurrentLogin(ctx, token.AccessToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to validate authorized token",
			goerr.TV(errutil.ClientIDKey, uc.clientID),
		)
	}

	if err := uc.store.Put(ctx, &credential.Credential{
		Realm:   uc.realm,
		Account: uc.clientID,
		Secret:  token.AccessToken,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to store token",
			goerr.TV(errutil.RealmKey, uc.realm),
			goerr.TV(errutil.AccountKey, uc.clientID),
		)
	}
	logger.Debug("stored authorized token", "login", login)

	return &LoginResult{AccessToken: token.AccessToken, Login: login}, nil
}

// Logout removes the stored token.
func (uc *LoginUseCase) Logout(ctx context.Context) error {
	return uc.store.Delete(ctx, uc.realm, uc.clientID)
}

// CurrentLogin validates token with a single GitHub API call and returns the
// login of its owner.
func (uc *LoginUseCase) CurrentLogin(ctx context.Context, token string) (string, error) {
	gh := newGitHubClient(tokenClient(uc.httpClient, token), uc.baseURL)

	user, resp, err := gh.Users.Get(ctx, "")
	if err != nil {
		opts := []goerr.Option{goerr.T(errs.TagGitHubError)}
		if resp != nil {
			opts = append(opts, goerr.TV(errutil.HTTPStatusKey, resp.StatusCode))
			if resp.StatusCode == http.StatusUnauthorized {
				opts = append(opts, goerr.T(errs.TagUnauthorized))
			}
		}
		return "", goerr.Wrap(err, "failed to get authenticated user", opts...)
	}
	return user.GetLogin(), nil
}
