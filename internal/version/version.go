package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/soyeahso/toolchat/internal/version.Version=1.0.0
//	  -X github.com/soyeahso/toolchat/internal/version.Commit=abc123
//	  -X github.com/soyeahso/toolchat/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info returns a formatted version string.
func Info() string {
	return fmt.Sprintf("toolchat %s (commit: %s, built: %s, %s/%s)",
		Version, short(Commit), Date, runtime.GOOS, runtime.GOARCH)
}

// UserAgent is sent by the tool servers on every outbound request.
// Wikimedia rejects anonymous clients, so this must stay non-empty.
func UserAgent() string {
	return fmt.Sprintf("toolchat/%s (+https://github.com/soyeahso/toolchat)", Version)
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
