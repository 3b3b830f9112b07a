package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".toolchat"

// Paths holds resolved filesystem paths for toolchat data.
type Paths struct {
	Base   string // ~/.toolchat
	Config string // ~/.toolchat/config.yaml
	DotEnv string // ~/.toolchat/.env
	Logs   string // ~/.toolchat/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If TOOLCHAT_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("TOOLCHAT_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		DotEnv: filepath.Join(base, ".env"),
		Logs:   filepath.Join(base, "logs"),
	}, nil
}
