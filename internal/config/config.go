package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultGeneratePath = "/admin/coloring_pages/coloringpage/generate/"
	DefaultConfirmPath  = "/admin/coloring_pages/coloringpage/confirm/"
	DefaultTimeUnitMS   = 1000
	DefaultBaseURL      = "http://localhost:8000"
)

// Profile points the client at one Ausmalbar admin.
type Profile struct {
	BaseURL      string `json:"base_url"`
	SessionID    string `json:"session_id,omitempty"`
	CSRFToken    string `json:"csrf_token,omitempty"`
	GeneratePath string `json:"generate_path,omitempty"`
	ConfirmPath  string `json:"confirm_path,omitempty"`
	TimeUnitMS   int    `json:"time_unit_ms,omitempty"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	currentProfile *Profile
}

func DefaultProfile() Profile {
	return Profile{
		BaseURL:      DefaultBaseURL,
		GeneratePath: DefaultGeneratePath,
		ConfirmPath:  DefaultConfirmPath,
		TimeUnitMS:   DefaultTimeUnitMS,
	}
}

func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config directory exists
	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// Load existing config or create default
	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Validate and set current profile
	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

// UseProfile makes name the current profile for this process without saving.
func (c *Config) UseProfile(name string) error {
	profile, exists := c.Profiles[name]
	if !exists {
		return fmt.Errorf("profile '%s' does not exist", name)
	}
	c.ActiveProfile = name
	c.currentProfile = &profile
	return nil
}

func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.currentProfile.SessionID != ""
}

func (c *Config) GetBaseURL() string {
	if c.currentProfile == nil || c.currentProfile.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.currentProfile.BaseURL
}

func (c *Config) GetSessionID() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.SessionID
}

func (c *Config) GetCSRFToken() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.CSRFToken
}

func (c *Config) GetGeneratePath() string {
	if c.currentProfile == nil || c.currentProfile.GeneratePath == "" {
		return DefaultGeneratePath
	}
	return c.currentProfile.GeneratePath
}

func (c *Config) GetConfirmPath() string {
	if c.currentProfile == nil || c.currentProfile.ConfirmPath == "" {
		return DefaultConfirmPath
	}
	return c.currentProfile.ConfirmPath
}

// GetTimeUnit is the unit the operation delays are expressed in.
func (c *Config) GetTimeUnit() time.Duration {
	if c.currentProfile == nil || c.currentProfile.TimeUnitMS <= 0 {
		return DefaultTimeUnitMS * time.Millisecond
	}
	return time.Duration(c.currentProfile.TimeUnitMS) * time.Millisecond
}

// Dir is the directory holding the config file and the log file.
func Dir() (string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

func getConfigPath() (string, error) {
	var configDir string

	// Use AUSMALBAR_HOME if set, otherwise use user's home directory
	if home := os.Getenv("AUSMALBAR_HOME"); home != "" {
		configDir = home
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".ausmalbar", "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	// If config file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			"default": DefaultProfile(),
		},
		ActiveProfile: "default",
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	// The file holds a session cookie.
	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if c.Profiles == nil {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// If active profile doesn't exist, try to use the first available profile
		for name, p := range c.Profiles {
			c.ActiveProfile = name
			profile = p
			exists = true
			break
		}
	}

	if !exists {
		return fmt.Errorf("no valid profiles found")
	}

	c.currentProfile = &profile
	return nil
}
