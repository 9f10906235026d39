// Package config loads estatelens settings from flags, environment, an
// optional .env file and an optional YAML config file, in that priority.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/estatelens/estatelens/internal/export"
	"github.com/estatelens/estatelens/internal/model"
)

// AppName names the config, state and env namespaces.
const AppName = "estatelens"

// Config is the resolved runtime configuration.
type Config struct {
	APIBase          string        `mapstructure:"api-base"`
	RequestTimeout   time.Duration `mapstructure:"request-timeout"`
	ExportDir        string        `mapstructure:"export-dir"`
	XLSXFormat       string        `mapstructure:"xlsx-format"`
	Theme            string        `mapstructure:"theme"`
	Skin             string        `mapstructure:"skin"`
	ListenAddr       string        `mapstructure:"listen-addr"`
	WorkspacePath    string        `mapstructure:"workspace-path"`
	WorkspaceMaxRows int           `mapstructure:"workspace-max-rows"`
	ConfigPath       string        `mapstructure:"-"` // not from config file
}

// Dark reports whether the dark theme is configured.
func (c Config) Dark() bool {
	return strings.EqualFold(c.Theme, "dark")
}

// Dir returns the directory holding config.yml and skins.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+AppName)
	}
	return filepath.Join(home, ".config", AppName)
}

// Options tells Load where to look.
type Options struct {
	ConfigPath string         // default $HOME/.config/estatelens/config.yml
	EnvFile    string         // default .env in the working directory
	Flags      *pflag.FlagSet // flags named after config keys override everything
}

// Load resolves the configuration.
func Load(opts Options) (Config, error) {
	var cfg Config

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config: load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("api-base", model.DefaultAPIBase)
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("export-dir", model.DefaultExportDir)
	v.SetDefault("xlsx-format", export.FormatWorkbook)
	v.SetDefault("theme", "light")
	v.SetDefault("skin", model.DefaultSkin)
	v.SetDefault("listen-addr", model.DefaultListenAddr)
	v.SetDefault("workspace-path", "")
	v.SetDefault("workspace-max-rows", model.DefaultWorkspaceRows)

	if opts.Flags != nil {
		if err := v.BindPFlags(opts.Flags); err != nil {
			return cfg, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	if opts.ConfigPath != "" {
		v.SetConfigFile(opts.ConfigPath)
	} else {
		v.SetConfigFile(filepath.Join(Dir(), "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode: %w", err)
	}
	if _, err := os.Stat(v.ConfigFileUsed()); err == nil {
		cfg.ConfigPath = v.ConfigFileUsed()
	}

	if strings.HasPrefix(cfg.ExportDir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.ExportDir = filepath.Join(home, cfg.ExportDir[2:])
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: api-base %q must be an absolute http(s) url", c.APIBase)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request-timeout must be positive, got %s", c.RequestTimeout)
	}
	if !export.ValidFormat(c.XLSXFormat) {
		return fmt.Errorf("config: xlsx-format must be %q or %q, got %q", export.FormatWorkbook, export.FormatMarkup, c.XLSXFormat)
	}
	switch strings.ToLower(c.Theme) {
	case "light", "dark":
	default:
		return fmt.Errorf("config: theme must be light or dark, got %q", c.Theme)
	}
	if c.WorkspaceMaxRows <= 0 {
		return fmt.Errorf("config: workspace-max-rows must be positive, got %d", c.WorkspaceMaxRows)
	}
	return nil
}
