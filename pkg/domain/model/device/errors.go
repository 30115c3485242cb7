package device

import "fmt"

// ErrorCode is the closed set of device flow error codes. Codes outside the
// set are reported as ErrorUnknown.
type ErrorCode string

const (
	ErrorAuthorizationPending       ErrorCode = "authorization_pending"
	ErrorSlowDown                   ErrorCode = "slow_down"
	ErrorExpiredToken               ErrorCode = "expired_token"
	ErrorUnsupportedGrantType       ErrorCode = "unsupported_grant_type"
	ErrorIncorrectClientCredentials ErrorCode = "incorrect_client_credentials"
	ErrorIncorrectDeviceCode        ErrorCode = "incorrect_device_code"
	ErrorAccessDenied               ErrorCode = "access_denied"
	ErrorDeviceFlowDisabled         ErrorCode = "device_flow_disabled"
	ErrorUnknown                    ErrorCode = "unknown"
)

var knownCodes = map[ErrorCode]struct{}{
	ErrorAuthorizationPending:       {},
	ErrorSlowDown:                   {},
	ErrorExpiredToken:               {},
	ErrorUnsupportedGrantType:       {},
	ErrorIncorrectClientCredentials: {},
	ErrorIncorrectDeviceCode:        {},
	ErrorAccessDenied:               {},
	ErrorDeviceFlowDisabled:         {},
}

// Normalize maps codes outside the closed set to ErrorUnknown.
func (c ErrorCode) Normalize() ErrorCode {
	if _, ok := knownCodes[c]; ok {
		return c
	}
	return ErrorUnknown
}

// Retryable reports whether polling continues after this code.
func (c ErrorCode) Retryable() bool {
	switch c {
	case ErrorAuthorizationPending, ErrorSlowDown, ErrorExpiredToken:
		return true
	}
	return false
}

// Misconfiguration reports whether the code points at the application setup
// rather than the user's decision.
func (c ErrorCode) Misconfiguration() bool {
	switch c {
	case ErrorUnsupportedGrantType, ErrorIncorrectClientCredentials,
		ErrorIncorrectDeviceCode, ErrorDeviceFlowDisabled:
		return true
	}
	return false
}

// FlowError is the terminal failure of a device authorization.
type FlowError struct {
	Code        ErrorCode
	Description string
	// Raw is the code as sent by the server, which differs from Code for
	// codes outside the closed set.
	Raw string
	// URI points at GitHub's documentation of the error, when sent.
	URI string
}

func (e *FlowError) Error() string {
	var msg string
	switch e.Code {
	case ErrorAccessDenied:
		msg = "authorization was denied by the user"
	case ErrorIncorrectClientCredentials:
		msg = "the OAuth application client ID is not valid"
	case ErrorDeviceFlowDisabled:
		msg = "device flow is not enabled for the OAuth application"
	case ErrorUnsupportedGrantType:
		msg = "the authorization server rejected the device code grant type"
	case ErrorIncorrectDeviceCode:
		msg = "the device code is not valid"
	default:
		msg = fmt.Sprintf("device authorization failed with %q", e.Raw)
	}

	if e.Description != "" {
		return msg + ": " + e.Description
	}
	return msg
}
