package errs

import "github.com/m-mizutani/goerr/v2"

var (
	// Client errors (4xx)
	TagNotFound     = goerr.NewTag("not_found")    // 404
	TagValidation   = goerr.NewTag("validation")   // 400
	TagUnauthorized = goerr.NewTag("unauthorized") // 401
	TagForbidden    = goerr.NewTag("forbidden")    // 403

	// Server errors (5xx)
	TagInternal       = goerr.NewTag("internal")        // 500
	TagNotConfigured  = goerr.NewTag("not_configured")  // 500
	TagExternal       = goerr.NewTag("external")        // 502
	TagTimeout        = goerr.NewTag("timeout")         // 504
	TagGitHubError    = goerr.NewTag("github_error")    // 502
	TagCredentialRepo = goerr.NewTag("credential_repo") // 500

	// Device authorization outcomes
	TagAccessDenied  = goerr.NewTag("access_denied")
	TagMisconfigured = goerr.NewTag("misconfigured")
)
