package errutil

import (
	"github.com/m-mizutani/goerr/v2"
)

var (
	// Identity and request
	RequestIDKey   = goerr.NewTypedKey[string]("request_id")
	ResolverKey    = goerr.NewTypedKey[string]("resolver")
	AuthTypeKey    = goerr.NewTypedKey[string]("auth_type")
	LoginKey       = goerr.NewTypedKey[string]("login")
	HostKey        = goerr.NewTypedKey[string]("host")
	MethodKey      = goerr.NewTypedKey[string]("method")
	PathKey        = goerr.NewTypedKey[string]("path")

	// OAuth device flow
	ClientIDKey  = goerr.NewTypedKey[string]("client_id")
	ScopeKey     = goerr.NewTypedKey[string]("scope")
	ErrorCodeKey = goerr.NewTypedKey[string]("error_code")
	IntervalKey  = goerr.NewTypedKey[int]("interval")

	// Credential storage
	RealmKey    = goerr.NewTypedKey[string]("realm")
	AccountKey  = goerr.NewTypedKey[string]("account")
	BackendKey  = goerr.NewTypedKey[string]("backend")
	FilePathKey = goerr.NewTypedKey[string]("file_path")

	// External services
	URLKey        = goerr.NewTypedKey[string]("url")
	HTTPStatusKey = goerr.NewTypedKey[int]("http_status")
	BodyKey       = goerr.NewTypedKey[string]("body")
)
