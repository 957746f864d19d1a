/*
Package config manages TOML config for histcomp.

The file lives in [UserConfigDir]/histcomp/config.toml and is created with
defaults the first time it is looked for:

	[history]
	path = ""
	max_bytes = 204800

	[model]
	bigram_weight = 2.0

	[popup]
	max_width = 40
	max_height = 8
	border = "rounded"

	[keys]
	next = ["tab", "ctrl-n"]
	accept = ["enter"]

A file that fails to parse is recovered section by section; anything that
still cannot be read falls back to the builtin defaults.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/histcomp/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	History HistoryConfig `toml:"history"`
	Model   ModelConfig   `toml:"model"`
	Popup   PopupConfig   `toml:"popup"`
	Keys    KeysConfig    `toml:"keys"`
	CLI     CliConfig     `toml:"cli"`
}

// HistoryConfig says where the history comes from and how much of it is read.
type HistoryConfig struct {
	Path     string `toml:"path"`
	MaxBytes int    `toml:"max_bytes"`
}

// ModelConfig tunes suggestion scoring.
type ModelConfig struct {
	BigramWeight float64 `toml:"bigram_weight"`
}

// PopupConfig holds popup layout and colors.
type PopupConfig struct {
	MaxWidth     int    `toml:"max_width"`
	MaxHeight    int    `toml:"max_height"`
	Border       string `toml:"border"`
	ColorProfile string `toml:"color_profile"`
	Fg           string `toml:"fg"`
	Bg           string `toml:"bg"`
	SelectedFg   string `toml:"selected_fg"`
	SelectedBg   string `toml:"selected_bg"`
	SelectedBold bool   `toml:"selected_bold"`
}

// KeysConfig maps each request to the key names that trigger it.
type KeysConfig struct {
	Next        []string `toml:"next"`
	Prev        []string `toml:"prev"`
	Accept      []string `toml:"accept"`
	Quit        []string `toml:"quit"`
	DeleteLeft  []string `toml:"delete_left"`
	DeleteRight []string `toml:"delete_right"`
	Start       []string `toml:"start"`
	End         []string `toml:"end"`
	Left        []string `toml:"left"`
	Right       []string `toml:"right"`
}

// CliConfig holds command line defaults.
type CliConfig struct {
	Mode    string `toml:"mode"`
	LogFile string `toml:"log_file"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. $XDG_CONFIG_HOME/histcomp
// 2. ~/.config/histcomp
// 3. Current executable dir
func GetConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		primaryPath := filepath.Join(xdg, "histcomp")
		if result := utils.CheckDirStatus(primaryPath); result.Writable {
			return primaryPath, nil
		}
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "histcomp")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from -config flag
// 2. Default path: [UserConfigDir]/histcomp/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		History: HistoryConfig{
			Path:     "",
			MaxBytes: 200 * 1024,
		},
		Model: ModelConfig{
			BigramWeight: 2.0,
		},
		Popup: PopupConfig{
			MaxWidth:     40,
			MaxHeight:    8,
			Border:       "rounded",
			ColorProfile: "ansi256",
			Fg:           "252",
			Bg:           "237",
			SelectedFg:   "255",
			SelectedBg:   "60",
			SelectedBold: true,
		},
		Keys: KeysConfig{
			Next:        []string{"tab", "ctrl-n"},
			Prev:        []string{"ctrl-p"},
			Accept:      []string{"enter"},
			Quit:        []string{"ctrl-g", "ctrl-c", "esc"},
			DeleteLeft:  []string{"backspace", "ctrl-h"},
			DeleteRight: []string{"ctrl-d"},
			Start:       []string{"ctrl-a"},
			End:         []string{"ctrl-e"},
			Left:        []string{"ctrl-b"},
			Right:       []string{"ctrl-f"},
		},
		CLI: CliConfig{
			Mode:    "interactive",
			LogFile: "",
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "history"); ok {
		extractHistoryConfig(section, &config.History)
	}
	if section, ok := utils.ExtractSection(tempConfig, "model"); ok {
		extractModelConfig(section, &config.Model)
	}
	if section, ok := utils.ExtractSection(tempConfig, "popup"); ok {
		extractPopupConfig(section, &config.Popup)
	}
	if section, ok := utils.ExtractSection(tempConfig, "keys"); ok {
		extractKeysConfig(section, &config.Keys)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractHistoryConfig(data map[string]any, history *HistoryConfig) {
	if val, ok := utils.ExtractString(data, "path"); ok {
		history.Path = val
	}
	if val, ok := utils.ExtractInt(data, "max_bytes"); ok {
		history.MaxBytes = val
	}
}

func extractModelConfig(data map[string]any, model *ModelConfig) {
	if val, ok := utils.ExtractFloat(data, "bigram_weight"); ok {
		model.BigramWeight = val
	}
}

func extractPopupConfig(data map[string]any, popup *PopupConfig) {
	if val, ok := utils.ExtractInt(data, "max_width"); ok {
		popup.MaxWidth = val
	}
	if val, ok := utils.ExtractInt(data, "max_height"); ok {
		popup.MaxHeight = val
	}
	if val, ok := utils.ExtractString(data, "border"); ok {
		popup.Border = val
	}
	if val, ok := utils.ExtractString(data, "color_profile"); ok {
		popup.ColorProfile = val
	}
	for key, dst := range map[string]*string{
		"fg":          &popup.Fg,
		"bg":          &popup.Bg,
		"selected_fg": &popup.SelectedFg,
		"selected_bg": &popup.SelectedBg,
	} {
		if val, ok := utils.ExtractString(data, key); ok {
			*dst = val
		}
	}
	if val, ok := utils.ExtractBool(data, "selected_bold"); ok {
		popup.SelectedBold = val
	}
}

func extractKeysConfig(data map[string]any, keys *KeysConfig) {
	for key, dst := range map[string]*[]string{
		"next":         &keys.Next,
		"prev":         &keys.Prev,
		"accept":       &keys.Accept,
		"quit":         &keys.Quit,
		"delete_left":  &keys.DeleteLeft,
		"delete_right": &keys.DeleteRight,
		"start":        &keys.Start,
		"end":          &keys.End,
		"left":         &keys.Left,
		"right":        &keys.Right,
	} {
		if val, ok := utils.ExtractStrings(data, key); ok {
			*dst = val
		}
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractString(data, "mode"); ok {
		cli.Mode = val
	}
	if val, ok := utils.ExtractString(data, "log_file"); ok {
		cli.LogFile = val
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}
