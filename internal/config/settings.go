package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultBusyTimeoutMs is how long a connection waits on a locked database
const DefaultBusyTimeoutMs = 5000

// Settings represents the structure of $DEVBOARD_HOME/settings.json
type Settings struct {
	BusyTimeoutMs *int   `json:"busy_timeout_ms,omitempty"`
	DBPath        string `json:"db_path,omitempty"`
	Debug         *bool  `json:"debug,omitempty"`
	MaxLogFiles   *int   `json:"max_log_files,omitempty"`
}

// LoadSettings loads settings from $DEVBOARD_HOME/settings.json.
// Returns empty Settings if the file doesn't exist (not an error).
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(GetSettingsPath())
}

// LoadSettingsFrom loads settings from an explicit path
func LoadSettingsFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("invalid settings.json: %w", err)
	}

	if settings.DBPath != "" {
		settings.DBPath = ExpandPath(settings.DBPath)
	}
	if settings.BusyTimeoutMs != nil && *settings.BusyTimeoutMs < 0 {
		return nil, fmt.Errorf("invalid settings.json: busy_timeout_ms must not be negative")
	}

	return &settings, nil
}

// ResolveDBPath applies flag > env > settings > default precedence
func (s *Settings) ResolveDBPath(flagValue string) string {
	if flagValue != "" {
		return ExpandPath(flagValue)
	}
	if env := os.Getenv("DEVBOARD_DB"); env != "" {
		return ExpandPath(env)
	}
	if s != nil && s.DBPath != "" {
		return s.DBPath
	}
	return GetDBPath()
}

// ResolveBusyTimeout returns the configured busy timeout in milliseconds
func (s *Settings) ResolveBusyTimeout() int {
	if s != nil && s.BusyTimeoutMs != nil {
		return *s.BusyTimeoutMs
	}
	return DefaultBusyTimeoutMs
}
