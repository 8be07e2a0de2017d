// Package config loads dwq settings from config files, .env files, the
// environment and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/dwq/internal/debug"
	"github.com/satishbabariya/dwq/query/summary"
)

var AppFs = afero.NewOsFs()

const (
	// FileName is the config file name without extension
	FileName = ".dwq"
	// EnvPrefix prefixes every environment variable read
	EnvPrefix = "DWQ"
)

// Config holds the application configuration
type Config struct {
	URL      string `mapstructure:"url"`
	Dialect  string `mapstructure:"dialect"`
	HeadRows int    `mapstructure:"head_rows"`
	Debug    bool   `mapstructure:"debug"`
}

// New returns a viper instance with the dwq search paths, environment
// bindings and defaults. Flags can be bound to it before Load.
func New() (*viper.Viper, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "dwq"))

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// DATABASE_URL is honoured when DWQ_URL is unset
	if err := v.BindEnv("url", EnvPrefix+"_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}

	v.SetDefault("url", "")
	v.SetDefault("dialect", "")
	v.SetDefault("head_rows", summary.DefaultHeadRows)
	v.SetDefault("debug", false)
	return v, nil
}

// Load reads .env files and the config file into v and decodes the result.
// A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if err := loadEnv(".env", false); err != nil {
		return nil, err
	}
	// .env.local wins over .env and the environment
	if err := loadEnv(".env.local", true); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		debug.Debug("config loaded", "file", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.HeadRows < 1 {
		return nil, fmt.Errorf("head_rows must be positive, got %d", cfg.HeadRows)
	}
	return &cfg, nil
}

// loadEnv sets the variables of an env file found on AppFs. Variables that
// are already set and non-empty are kept unless overload is set.
func loadEnv(path string, overload bool) error {
	data, err := afero.ReadFile(AppFs, path)
	if err != nil {
		// absent or unreadable env files are skipped
		return nil
	}
	vars, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for k, val := range vars {
		if cur := os.Getenv(k); cur != "" && !overload {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	debug.Debug("env file loaded", "path", path, "vars", len(vars))
	return nil
}

// Save writes the connection settings of cfg to ~/.config/dwq/.dwq.yaml and
// returns the file written
func Save(cfg *Config) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.Set("url", cfg.URL)
	if cfg.Dialect != "" {
		v.Set("dialect", cfg.Dialect)
	}

	dir := filepath.Join(home, ".config", "dwq")
	if err := AppFs.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	file := filepath.Join(dir, FileName+".yaml")
	if err := v.WriteConfigAs(file); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return file, nil
}
