package config_test

import (
	"os"
	"testing"

	"github.com/m-mizutani/gt"
)

// unsetEnv removes keys for the duration of the test so flag defaults apply.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		gt.NoError(t, os.Unsetenv(key))
	}
}
