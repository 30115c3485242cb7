package authn

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/secmon-lab/ghauth/pkg/domain/model/principal"
	"github.com/secmon-lab/ghauth/pkg/utils/logging"
)

const (
	PrincipalHeader = "X-MS-CLIENT-PRINCIPAL"
)

// TokenHeader returns the name of the header through which the hosting
// platform forwards the provider access token for authType.
func TokenHeader(authType string) string {
	return "X-MS-TOKEN-" + strings.ToUpper(authType) + "-ACCESS-TOKEN"
}

// PlatformHeaderResolver reads the identity asserted by the hosting platform's
// authentication layer.
type PlatformHeaderResolver struct{}

func NewPlatformHeaderResolver() *PlatformHeaderResolver {
	return &PlatformHeaderResolver{}
}

func (x *PlatformHeaderResolver) Name() string { return "platform" }

type clientPrincipal struct {
	AuthType *string            `json:"auth_typ"`
	Claims   *[]principal.Claim `json:"claims"`
}

func (x *PlatformHeaderResolver) Resolve(ctx context.Context, r *http.Request) (*principal.Identity, bool) {
	encoded := r.Header.Get(PrincipalHeader)
	if encoded == "" {
		return nil, false
	}
	logger := logging.From(ctx).With("resolver", x.Name())

	raw, err := decodeBase64(encoded)
	if err != nil {
		logger.Warn("principal header is not valid base64", logging.ErrAttr(err))
		return nil, false
	}

	var cp clientPrincipal
	if err := json.Unmarshal(raw, &cp); err != nil {
		logger.Warn("principal header is not valid JSON", logging.ErrAttr(err))
		return nil, false
	}
	if cp.AuthType == nil || *cp.AuthType == "" || cp.Claims == nil {
		logger.Warn("principal header lacks required fields",
			"has_auth_type", cp.AuthType != nil,
			"has_claims", cp.Claims != nil,
		)
		return nil, false
	}

	token := r.Header.Get(TokenHeader(*cp.AuthType))
	logger.Debug("resolved identity from principal header",
		"auth_type", *cp.AuthType,
		"claims", len(*cp.Claims),
		"has_token", token != "",
	)

	return principal.New(*cp.AuthType, *cp.Claims, token), true
}

func decodeBase64(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return raw, nil
	}
	if raw, rawErr := base64.RawStdEncoding.DecodeString(s); rawErr == nil {
		return raw, nil
	}
	return nil, err
}
