// Package config resolves nmsq settings from defaults, JSONC config files, a
// .env file, the environment and command line overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files and environment (serialized)
	Database string `json:"database"            env:"NMSQ_DATABASE"  validate:"required"`
	Format   string `json:"format,omitempty"    env:"NMSQ_FORMAT"    validate:"omitempty,oneof=table json"`
	LogLevel string `json:"log_level,omitempty" env:"NMSQ_LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	DatabaseAbs  string `json:"-"` // Absolute path to the database file

	// Sources tracks which files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project or explicit config if loaded, empty otherwise
	Dotenv  string // Path to .env if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Database: "nms.db",
		Format:   "table",
		LogLevel: "warn",
	}
}

// FileName is the project config file looked up in the working directory.
const FileName = ".nmsq.json"

// DotenvFileName is the dotenv file looked up in the working directory.
const DotenvFileName = ".env"

// globalPath returns the global config file path.
// Uses $XDG_CONFIG_HOME/nmsq/config.json if set, otherwise ~/.config/nmsq/config.json.
// Returns empty string if home directory cannot be determined.
func globalPath(environ map[string]string) string {
	if xdgConfig := environ["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "nmsq", "config.json")
	}

	if home := environ["HOME"]; home != "" {
		return filepath.Join(home, ".config", "nmsq", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDirOverride string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath      string            // -c/--config flag value
	Overrides       Config            // --db/--format/--log-level values; empty fields are ignored
	Env             map[string]string // process environment
}

// Load resolves configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/nmsq/config.json or $XDG_CONFIG_HOME/nmsq/config.json)
// 3. Project config file (.nmsq.json) or the explicit -c file, which must exist
// 4. .env file in the working directory
// 5. Process environment (NMSQ_DATABASE, NMSQ_FORMAT, NMSQ_LOG_LEVEL)
// 6. CLI overrides.
//
// The database path in the returned Config is resolved against the working directory.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := Default()

	globalCfg, globalFile, err := loadGlobal(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalFile
	cfg = merge(cfg, globalCfg)

	projectCfg, projectFile, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectFile
	cfg = merge(cfg, projectCfg)

	dotenvCfg, dotenvFile, err := loadDotenv(workDir)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Dotenv = dotenvFile
	cfg = merge(cfg, dotenvCfg)

	envCfg, err := fromEnv(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg = merge(cfg, envCfg)
	cfg = merge(cfg, input.Overrides)

	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}

	cfg.EffectiveCwd = workDir

	if filepath.IsAbs(cfg.Database) {
		cfg.DatabaseAbs = cfg.Database
	} else {
		cfg.DatabaseAbs = filepath.Join(workDir, cfg.Database)
	}

	return cfg, nil
}

// loadGlobal loads the global user config file if it exists.
// Returns the config, the path if loaded, and any error.
func loadGlobal(environ map[string]string) (Config, string, error) {
	path := globalPath(environ)
	if path == "" {
		return Config{}, "", nil
	}

	cfg, loaded, err := loadFile(path, false)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadProject loads the project config file (.nmsq.json) or an explicit config file.
// Returns the config, the path if loaded, and any error.
func loadProject(workDir, configPath string) (Config, string, error) {
	path := filepath.Join(workDir, FileName)
	mustExist := false

	if configPath != "" {
		path = configPath
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}

		mustExist = true

		_, statErr := os.Stat(path)
		if statErr != nil {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	}

	cfg, loaded, err := loadFile(path, mustExist)
	if err != nil || !loaded {
		return Config{}, "", err
	}

	return cfg, path, nil
}

// loadFile loads a config file. If mustExist is false, missing files return zero config.
// Returns the config, whether the file was loaded, and any error.
func loadFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from flags or well-known locations
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !mustExist {
			return Config{}, false, nil
		}

		return Config{}, false, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := parse(data)
	if err != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return cfg, true, nil
}

func parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	// An explicit "database": "" would otherwise be indistinguishable from unset.
	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	if val, exists := raw["database"]; exists {
		if str, ok := val.(string); ok && str == "" {
			return Config{}, ErrDatabaseEmpty
		}
	}

	return cfg, nil
}

// loadDotenv reads .env from workDir when present and decodes its NMSQ_*
// entries. The file does not touch the process environment.
func loadDotenv(workDir string) (Config, string, error) {
	path := filepath.Join(workDir, DotenvFileName)

	_, statErr := os.Stat(path)
	if statErr != nil {
		return Config{}, "", nil //nolint:nilerr // a missing .env is not an error
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return Config{}, "", fmt.Errorf("%w %s: %w", ErrDotenvInvalid, path, err)
	}

	cfg, err := fromEnv(values)
	if err != nil {
		return Config{}, "", fmt.Errorf("%s: %w", path, err)
	}

	return cfg, path, nil
}

// fromEnv decodes NMSQ_* variables from environ. Unset variables leave the
// corresponding field empty so merge keeps the lower layer.
func fromEnv(environ map[string]string) (Config, error) {
	var cfg Config

	err := env.ParseWithOptions(&cfg, env.Options{Environment: environ})
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	return cfg, nil
}

func merge(base, overlay Config) Config {
	if overlay.Database != "" {
		base.Database = overlay.Database
	}

	if overlay.Format != "" {
		base.Format = overlay.Format
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	return base
}
