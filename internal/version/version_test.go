package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKeepsLdflagsValues(t *testing.T) {
	in := Info{Version: "1.2.0", Commit: "abc123", BuildTime: "2026-01-02", GoVersion: "go1.23.5"}
	assert.Equal(t, in, Resolve(in))
}

func TestResolveFillsPlaceholders(t *testing.T) {
	got := Resolve(Info{Version: "dev", Commit: "unknown", BuildTime: "unknown", GoVersion: "unknown"})
	assert.Equal(t, runtime.Version(), got.GoVersion)
}

func TestInfoString(t *testing.T) {
	out := Info{Version: "1.2.0", Commit: "abc123"}.String()
	assert.Contains(t, out, "Version:    1.2.0")
	assert.Contains(t, out, "Commit:     abc123")
	assert.Contains(t, out, "Built:      unknown")
}

func TestIsDev(t *testing.T) {
	cases := map[string]bool{"": true, "dev": true, "1.0.0": false, "1.0.0-dirty": true}
	for v, want := range cases {
		assert.Equal(t, want, Info{Version: v}.IsDev(), v)
	}
}

func TestShortRevision(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortRevision("0123456789abcdef"))
	assert.Equal(t, "abc", shortRevision("abc"))
}
