// Package testutil provides shared skip helpers for integration tests.
//
// Each helper calls t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
package testutil

import (
	"os"
	"testing"
)

// RequireONNXRuntime skips the test if no ONNX Runtime shared library can be
// located. It checks (in order): the ORT_LIBRARY_PATH env var, then the
// SUPERTONIC_ORT_LIB env var, then common system library paths.
func RequireONNXRuntime(tb testing.TB) {
	tb.Helper()
	for _, env := range []string{"ORT_LIBRARY_PATH", "SUPERTONIC_ORT_LIB"} {
		if p := os.Getenv(env); p != "" {
			if _, err := os.Stat(p); err == nil {
				return // found
			}
			tb.Skipf("ONNX Runtime library not found at %s=%q", env, p)
		}
	}
	// Fall back to common system locations.
	candidates := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/usr/lib/x86_64-linux-gnu/libonnxruntime.so",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return // found
		}
	}
	tb.Skip("ONNX Runtime shared library not found; set ORT_LIBRARY_PATH or SUPERTONIC_ORT_LIB")
}

// RequireAssetRoot skips the test if root does not look like a populated
// synthesis asset directory (missing tts.json).
func RequireAssetRoot(tb testing.TB, root string) {
	tb.Helper()

	if _, err := os.Stat(root + "/tts.json"); err != nil {
		tb.Skipf("synthesis assets not available under %q: %v", root, err)
	}
}
