package errs

import (
	"errors"
)

var ErrPlatformAuthDisabled = errors.New("platform authentication is not enabled")
