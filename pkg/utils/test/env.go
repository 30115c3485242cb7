// Package test holds helpers for tests that talk to real services.
package test

import (
	"os"
	"testing"
)

// EnvVars holds variables a live test depends on.
type EnvVars map[string]string

// NewEnvVars skips the test unless every key is set to a non-empty value.
func NewEnvVars(t *testing.T, keys ...string) EnvVars {
	t.Helper()

	var missing []string
	vars := EnvVars{}
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			vars[key] = value
		} else {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		t.Skipf("skipping live test, not set: %v", missing)
	}
	return vars
}

// Get returns the value of key, which must have been requested.
func (e EnvVars) Get(key string) string {
	v, ok := e[key]
	if !ok {
		panic("env var " + key + " was not requested")
	}
	return v
}
