package testutil

import (
	"os"
	"testing"
)

// SkipIfNoNetwork skips the test if OFFERCHAT_TEST_SKIP_NETWORK is set.
// Use this for tests that listen on TCP, which may not be available in
// sandboxed environments.
//
// Note: packages that testutil imports (devserver, chat) cannot use this
// helper from their own tests. Define a local skipIfNoNetwork there.
func SkipIfNoNetwork(t *testing.T) {
	t.Helper()
	if os.Getenv("OFFERCHAT_TEST_SKIP_NETWORK") != "" {
		t.Skip("skipping network test: OFFERCHAT_TEST_SKIP_NETWORK is set")
	}
}
