package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultBaseURL  = "https://tdx.transportdata.tw/api/basic"
	DefaultAuthURL  = "https://tdx.transportdata.tw/auth/realms/TDXConnect/protocol/openid-connect/token"
	DefaultTimeZone = "Asia/Taipei"
)

// Token store kinds understood by the wiring layer.
const (
	TokenStoreFile   = "file"
	TokenStoreMemory = "memory"
	TokenStoreSQLite = "sqlite"
)

// Window is a clock range such as 07:40-08:10, stored as "HH:MM" strings.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AppConfig holds all user-defined persistent settings
type AppConfig struct {
	CommuteOrigin      string            `json:"commute_origin,omitempty"`
	CommuteDestination string            `json:"commute_destination,omitempty"`
	MorningWindow      Window            `json:"morning_window,omitempty"`
	EveningWindow      Window            `json:"evening_window,omitempty"`
	TimeZone           string            `json:"time_zone,omitempty"`
	ExtraStations      map[string]string `json:"extra_stations,omitempty"`
	TokenStore         string            `json:"token_store,omitempty"`
	TokenPath          string            `json:"token_path,omitempty"`
	AccentColor        string            `json:"accent_color,omitempty"`
}

// Credentials are never persisted; they come from the environment (or a .env file).
type Credentials struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	AuthURL      string
}

// Defaults returns the settings used when no config file exists.
func Defaults() *AppConfig {
	return &AppConfig{
		CommuteOrigin:      "鶯歌",
		CommuteDestination: "台北",
		MorningWindow:      Window{Start: "07:40", End: "08:10"},
		EveningWindow:      Window{Start: "18:00", End: "18:50"},
		TimeZone:           DefaultTimeZone,
		TokenStore:         TokenStoreFile,
	}
}

// getConfigPath returns the absolute path to ~/.railctl.json
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".railctl.json"), nil
}

// Load reads the application configuration from disk.
// Missing fields are filled from Defaults, and environment overrides are applied last.
func Load() (*AppConfig, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var stored AppConfig
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	cfg.merge(&stored)
	cfg.applyEnv()

	return cfg, nil
}

// Save writes the application configuration back to disk.
func Save(cfg *AppConfig) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Location resolves the configured time zone.
func (c *AppConfig) Location() (*time.Location, error) {
	name := c.TimeZone
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("could not load time zone %q: %w", name, err)
	}
	return loc, nil
}

// ResolvedTokenPath returns where file and sqlite token stores keep their data.
func (c *AppConfig) ResolvedTokenPath() (string, error) {
	if c.TokenPath != "" {
		return c.TokenPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find user home directory: %w", err)
	}
	name := "tdx_token.json"
	if c.TokenStore == TokenStoreSQLite {
		name = "tdx_token.db"
	}
	return filepath.Join(homeDir, ".railctl_cache", name), nil
}

// LoadCredentials reads the TDX client credentials from the environment.
func LoadCredentials() Credentials {
	return Credentials{
		ClientID:     getEnv("TDX_CLIENT_ID", ""),
		ClientSecret: getEnv("TDX_CLIENT_SECRET", ""),
		BaseURL:      getEnv("TDX_BASE_URL", DefaultBaseURL),
		AuthURL:      getEnv("TDX_AUTH_URL", DefaultAuthURL),
	}
}

// Configured reports whether both client id and secret are present.
func (c Credentials) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func (c *AppConfig) merge(o *AppConfig) {
	if o.CommuteOrigin != "" {
		c.CommuteOrigin = o.CommuteOrigin
	}
	if o.CommuteDestination != "" {
		c.CommuteDestination = o.CommuteDestination
	}
	if o.MorningWindow.Start != "" && o.MorningWindow.End != "" {
		c.MorningWindow = o.MorningWindow
	}
	if o.EveningWindow.Start != "" && o.EveningWindow.End != "" {
		c.EveningWindow = o.EveningWindow
	}
	if o.TimeZone != "" {
		c.TimeZone = o.TimeZone
	}
	if len(o.ExtraStations) > 0 {
		c.ExtraStations = o.ExtraStations
	}
	if o.TokenStore != "" {
		c.TokenStore = o.TokenStore
	}
	c.TokenPath = o.TokenPath
	c.AccentColor = o.AccentColor
}

func (c *AppConfig) applyEnv() {
	c.TokenStore = strings.ToLower(getEnv("RAILCTL_TOKEN_STORE", c.TokenStore))
	c.TokenPath = getEnv("RAILCTL_TOKEN_PATH", c.TokenPath)
	c.TimeZone = getEnv("RAILCTL_TIME_ZONE", c.TimeZone)
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
