package http

var (
	ErrorMiddleware     = errorMiddleware
	ResolveIdentity     = resolveIdentity
	AuthorizeWithPolicy = authorizeWithPolicy
	LoggingMiddleware   = loggingMiddleware
	HandleError         = handleError
)
