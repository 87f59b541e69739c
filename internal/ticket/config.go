package ticket

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds the engine and server configuration.
type Config struct {
	RootDir string `json:"root_dir"`
	Strict  *bool  `json:"strict,omitempty"`
	Host    string `json:"host,omitempty"`
	Port    int    `json:"port,omitempty"`
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".tickets.json"

// DefaultConfig returns the default configuration: tickets under .tickets,
// strict mode on, server on localhost:7077.
func DefaultConfig() Config {
	strict := true

	return Config{
		RootDir: ".tickets",
		Strict:  &strict,
		Host:    "127.0.0.1",
		Port:    7077,
	}
}

// StrictMode reports the effective strict flag.
func (c Config) StrictMode() bool {
	return c.Strict == nil || *c.Strict
}

// LoadConfig loads configuration with the following precedence (highest
// wins): defaults, project config file (.tickets.json in workDir, or the
// explicit configPath), then CLI overrides.
//
// Config files are JSONC: comments and trailing commas are allowed.
func LoadConfig(workDir, configPath string, overrides Config) (Config, error) {
	cfg := DefaultConfig()

	cfgFile := configPath
	mustExist := configPath != ""

	if cfgFile == "" {
		cfgFile = filepath.Join(workDir, ConfigFileName)
	} else if !filepath.IsAbs(cfgFile) {
		cfgFile = filepath.Join(workDir, cfgFile)
	}

	fileCfg, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg = mergeConfig(cfg, overrides)

	if cfg.RootDir == "" {
		return Config{}, ErrRootDirEmpty
	}

	if !filepath.IsAbs(cfg.RootDir) {
		cfg.RootDir = filepath.Join(workDir, cfg.RootDir)
	}

	return cfg, nil
}

func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, unmarshalErr)
	}

	return cfg, true, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.RootDir != "" {
		base.RootDir = overlay.RootDir
	}

	if overlay.Strict != nil {
		base.Strict = overlay.Strict
	}

	if overlay.Host != "" {
		base.Host = overlay.Host
	}

	if overlay.Port != 0 {
		base.Port = overlay.Port
	}

	return base
}
