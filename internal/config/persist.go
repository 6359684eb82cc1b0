package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigFilename is the name of the config file
const ConfigFilename = "config"

// ConfigType is the type of config file (yaml, json, toml)
const ConfigType = "yaml"

// InitViper initializes Viper with proper search paths and defaults
// Priority (highest to lowest):
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (QBATCH_*)
// 3. User config file (~/.config/qbatch/config.yaml)
// 4. System config file (/etc/qbatch/config.yaml)
// 5. Defaults
func InitViper() error {
	viper.SetConfigName(ConfigFilename)
	viper.SetConfigType(ConfigType)

	// Set config search paths (order matters)
	// User config (highest priority)
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(userConfigDir, "qbatch"))
	}

	// Home directory fallback
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".qbatch"))
	}

	// System-wide config (lower priority)
	viper.AddConfigPath("/etc/qbatch")

	// Current directory (for development)
	viper.AddConfigPath(".")

	// Environment variables
	viper.SetEnvPrefix("QBATCH")
	viper.AutomaticEnv()

	// Set defaults (lowest priority)
	setDefaults()

	// Read config file (non-fatal if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; will use defaults
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// setDefaults sets default values for all config keys
func setDefaults() {
	viper.SetDefault("preset", "k4")
	viper.SetDefault("time_hours", 72)
	viper.SetDefault("profile_file", "~/.bashrc")
	viper.SetDefault("group_list", "")
	viper.SetDefault("account", "")
	viper.SetDefault("mpiexec", "")

	// Batch defaults
	viper.SetDefault("batch.poll_seconds", 30)
	viper.SetDefault("batch.max_active", 20)
	viper.SetDefault("batch.separate_dirs", true)
}

// GetUserConfigPath returns the path to the user config file
func GetUserConfigPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".qbatch", ConfigFilename+"."+ConfigType), nil
	}

	return filepath.Join(userConfigDir, "qbatch", ConfigFilename+"."+ConfigType), nil
}

// SaveConfig saves current Viper config to user config file
func SaveConfig() error {
	configPath, err := GetUserConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config file
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadFromViper loads config from Viper into Global struct
func LoadFromViper() {
	if preset := viper.GetString("preset"); preset != "" {
		Global.Preset = preset
	}
	if hours := viper.GetInt("time_hours"); hours > 0 {
		Global.TimeHours = hours
	}
	if viper.IsSet("profile_file") {
		Global.ProfileFile = viper.GetString("profile_file")
	}
	if groupList := viper.GetString("group_list"); groupList != "" {
		Global.GroupList = groupList
	}
	if account := viper.GetString("account"); account != "" {
		Global.Account = account
	}
	if mpiexec := viper.GetString("mpiexec"); mpiexec != "" {
		Global.Mpiexec = mpiexec
	}

	if poll := viper.GetInt("batch.poll_seconds"); poll > 0 {
		Global.PollSeconds = poll
	}
	if maxActive := viper.GetInt("batch.max_active"); maxActive > 0 {
		Global.MaxActive = maxActive
	}
	Global.SeparateDirs = viper.GetBool("batch.separate_dirs")
}
