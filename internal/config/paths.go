package config

import (
	"os"
	"path/filepath"
)

// GetHome returns DEVBOARD_HOME or the ~/.devboard default
func GetHome() string {
	home := os.Getenv("DEVBOARD_HOME")
	if home == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".devboard"
		}
		return filepath.Join(homeDir, ".devboard")
	}
	return ExpandPath(home)
}

// GetDBPath returns $DEVBOARD_HOME/devboard.db
func GetDBPath() string {
	return filepath.Join(GetHome(), "devboard.db")
}

// GetSettingsPath returns $DEVBOARD_HOME/settings.json
func GetSettingsPath() string {
	return filepath.Join(GetHome(), "settings.json")
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			if len(path) == 1 {
				return homeDir
			}
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
