// Package version reports build information.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Info describes a plotdeck build
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
}

// Resolve fills fields left at their ldflags placeholders from the module
// build info embedded by the Go toolchain
func Resolve(i Info) Info {
	if isUnset(i.GoVersion) {
		i.GoVersion = runtime.Version()
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}
	if isUnset(i.Version) && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if isUnset(i.Commit) {
				i.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if isUnset(i.BuildTime) {
				i.BuildTime = s.Value
			}
		}
	}
	return i
}

// IsDev reports whether this is a local development build
func (i Info) IsDev() bool {
	return isUnset(i.Version) || strings.Contains(i.Version, "-dirty")
}

// String renders the multi-line version banner
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plotdeck - Themed chart dashboards\n")
	fmt.Fprintf(&b, "  Version:    %s\n", orUnknown(i.Version, "dev"))
	fmt.Fprintf(&b, "  Commit:     %s\n", orUnknown(i.Commit, "unknown"))
	fmt.Fprintf(&b, "  Built:      %s\n", orUnknown(i.BuildTime, "unknown"))
	fmt.Fprintf(&b, "  Go version: %s\n", orUnknown(i.GoVersion, "unknown"))
	return b.String()
}

func isUnset(s string) bool {
	return s == "" || s == "dev" || s == "unknown"
}

func orUnknown(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
