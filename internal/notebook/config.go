package notebook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/notebook/internal/autosave"
	"github.com/calvinalkan/notebook/internal/logging"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	NotebookDir string `json:"notebook_dir"`
	Backend     string `json:"backend,omitempty"`
	Editor      string `json:"editor,omitempty"`
	AutosaveMS  int    `json:"autosave_ms,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd   string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	NotebookDirAbs string `json:"-"` // Absolute path to notebook directory

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// AutosaveDelay returns the configured debounce window.
func (c Config) AutosaveDelay() time.Duration {
	return time.Duration(c.AutosaveMS) * time.Millisecond
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		NotebookDir: ".notebook",
		Backend:     BackendFile,
		AutosaveMS:  int(autosave.DefaultDelay / time.Millisecond),
		LogLevel:    logging.DefaultLevel,
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".nb.json"

// EnvLogLevel overrides the configured log level.
const EnvLogLevel = "NB_LOG_LEVEL"

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/nb/config.json if set, otherwise ~/.config/nb/config.json.
// Returns empty string if home directory cannot be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "nb", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "nb", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride     string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath          string            // -c/--config flag value
	NotebookDirOverride string            // --dir flag value; empty means no override
	BackendOverride     string            // --backend flag value; empty means no override
	Env                 map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/nb/config.json or $XDG_CONFIG_HOME/nb/config.json)
// 3. Project config file at default location (.nb.json, if exists)
// 4. Explicit config file via configPath (if non-empty)
// 5. Environment ($NB_LOG_LEVEL)
// 6. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := DefaultConfig()

	globalCfg, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg)

	projectCfg, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg)

	if level := input.Env[EnvLogLevel]; level != "" {
		cfg.LogLevel = level
	}

	if input.NotebookDirOverride != "" {
		cfg.NotebookDir = input.NotebookDirOverride
	}

	if input.BackendOverride != "" {
		cfg.Backend = input.BackendOverride
	}

	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, validateErr
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.NotebookDir) {
		cfg.NotebookDirAbs = cfg.NotebookDir
	} else {
		cfg.NotebookDirAbs = filepath.Join(workDir, cfg.NotebookDir)
	}

	return cfg, nil
}

// loadGlobalConfig loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobalConfig(env map[string]string) (Config, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, "", nil
	}

	globalCfg, explicitEmpty, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["notebook_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, globalCfgPath, ErrNotebookDirEmpty)
	}

	return globalCfg, globalCfgPath, nil
}

// loadProjectConfig loads the project config file (.nb.json) or an explicit config file.
// Returns the config, the path if loaded, and any error.
func loadProjectConfig(workDir, configPath string) (Config, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		cfgFile = configPath
		if !filepath.IsAbs(cfgFile) {
			cfgFile = filepath.Join(workDir, cfgFile)
		}

		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		cfgFile = filepath.Join(workDir, ConfigFileName)
		mustExist = false
	}

	fileCfg, explicitEmpty, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, "", err
	}

	if !loaded {
		return Config{}, "", nil
	}

	if explicitEmpty["notebook_dir"] {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrConfigInvalid, cfgFile, ErrNotebookDirEmpty)
	}

	return fileCfg, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files return zero config.
// Returns the config, a map of explicitly empty fields, whether file was loaded, and any error.
func loadConfigFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, nil, false, nil
		}

		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, explicitEmpty, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, explicitEmpty, true, nil
}

func parseConfig(data []byte) (Config, map[string]bool, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	// Check which fields were explicitly set to empty
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	explicitEmpty := make(map[string]bool)

	if val, exists := raw["notebook_dir"]; exists {
		if str, ok := val.(string); ok && str == "" {
			explicitEmpty["notebook_dir"] = true
		}
	}

	if val, exists := raw["autosave_ms"]; exists {
		if num, ok := val.(float64); ok && num <= 0 {
			return Config{}, nil, ErrInvalidAutosave
		}
	}

	return cfg, explicitEmpty, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.NotebookDir != "" {
		base.NotebookDir = overlay.NotebookDir
	}

	if overlay.Backend != "" {
		base.Backend = overlay.Backend
	}

	if overlay.Editor != "" {
		base.Editor = overlay.Editor
	}

	if overlay.AutosaveMS != 0 {
		base.AutosaveMS = overlay.AutosaveMS
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.NotebookDir == "" {
		return ErrNotebookDirEmpty
	}

	if cfg.Backend != BackendFile && cfg.Backend != BackendSQLite {
		return fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}

	if cfg.AutosaveMS <= 0 {
		return ErrInvalidAutosave
	}

	_, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	return nil
}

// FormatConfig renders the serialized part of cfg as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format config: %w", err)
	}

	return string(data), nil
}
