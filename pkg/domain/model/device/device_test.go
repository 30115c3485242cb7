package device_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ghauth/pkg/domain/model/device"
)

func TestErrorCodeClassification(t *testing.T) {
	testCases := []struct {
		code             device.ErrorCode
		normalized       device.ErrorCode
		retryable        bool
		misconfiguration bool
	}{
		{device.ErrorAuthorizationPending, device.ErrorAuthorizationPending, true, false},
		{device.ErrorSlowDown, device.ErrorSlowDown, true, false},
		{device.ErrorExpiredToken, device.ErrorExpiredToken, true, false},
		{device.ErrorAccessDenied, device.ErrorAccessDenied, false, false},
		{device.ErrorIncorrectClientCredentials, device.ErrorIncorrectClientCredentials, false, true},
		{device.ErrorIncorrectDeviceCode, device.ErrorIncorrectDeviceCode, false, true},
		{device.ErrorUnsupportedGrantType, device.ErrorUnsupportedGrantType, false, true},
		{device.ErrorDeviceFlowDisabled, device.ErrorDeviceFlowDisabled, false, true},
		{"server_error", device.ErrorUnknown, false, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.code), func(t *testing.T) {
			gt.Equal(t, tc.code.Normalize(), tc.normalized)
			gt.Equal(t, tc.normalized.Retryable(), tc.retryable)
			gt.Equal(t, tc.normalized.Misconfiguration(), tc.misconfiguration)
		})
	}
}

func TestSessionPollInterval(t *testing.T) {
	gt.Equal(t, (&device.Session{Interval: 8}).PollInterval(), 8*time.Second)
	gt.Equal(t, (&device.Session{}).PollInterval(), device.DefaultInterval)
	gt.Equal(t, (&device.Session{ExpiresIn: 900}).ExpiresAfter(), 15*time.Minute)
}

func TestFlowErrorMessage(t *testing.T) {
	err := &device.FlowError{Code: device.ErrorUnknown, Raw: "server_error", Description: "try later"}
	gt.S(t, err.Error()).Contains("server_error").Contains("try later")

	denied := &device.FlowError{Code: device.ErrorAccessDenied, Raw: "access_denied"}
	gt.Equal(t, denied.Error(), "authorization was denied by the user")
}
