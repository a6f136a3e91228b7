// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/osa030/ytplayer/internal/domain/player"
)

// Environment variables overriding file values.
const (
	EnvAddr     = "YTPLAYER_ADDR"
	EnvBaseURL  = "YTPLAYER_BASE_URL"
	EnvTemplate = "YTPLAYER_TEMPLATE"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Player   PlayerConfig   `yaml:"player"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	OEmbed   OEmbedConfig   `yaml:"oembed"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:"127.0.0.1:8080" validate:"required"`
}

// PlayerConfig represents the player document configuration.
// At most one of VideoID, VideoURL and PlaylistID is loaded on start.
type PlayerConfig struct {
	BaseURL      string         `yaml:"base_url" default:"about:blank" validate:"required"`
	TemplatePath string         `yaml:"template_path"` // Embedded template when empty
	VideoID      string         `yaml:"video_id"`
	VideoURL     string         `yaml:"video_url" validate:"omitempty,url"`
	PlaylistID   string         `yaml:"playlist_id"`
	Parameters   map[string]any `yaml:"parameters"`
}

// ScriptTimeoutDisabled turns off the script timeout.
const ScriptTimeoutDisabled = -1

// DispatchConfig represents command dispatch configuration.
// A zero ScriptTimeoutMs takes the default; ScriptTimeoutDisabled waits forever.
type DispatchConfig struct {
	VoidErrorCodes  []int `yaml:"void_error_codes" default:"[5]" validate:"dive,gte=0"`
	ScriptTimeoutMs int   `yaml:"script_timeout_ms" default:"5000" validate:"gte=-1,lte=60000"`
}

// OEmbedConfig represents video metadata lookup configuration.
type OEmbedConfig struct {
	Endpoint  string `yaml:"endpoint" default:"https://www.youtube.com/oembed" validate:"required,url"`
	TimeoutMs int    `yaml:"timeout_ms" default:"10000" validate:"gt=0,lte=60000"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	var cfg Config
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) finish() error {
	c.overrideFromEnv()

	if err := defaults.Set(c); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	if err := c.Validate(); err != nil {
		return errors.Wrap(err, "config validation failed")
	}
	return nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Player.BaseURL = v
	}
	if v := os.Getenv(EnvTemplate); v != "" {
		c.Player.TemplatePath = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validateStartupSource(); err != nil {
		return err
	}

	if _, err := c.PlayerParameters(); err != nil {
		return err
	}
	return nil
}

// validateStartupSource checks that at most one startup source is configured.
func (c *Config) validateStartupSource() error {
	var set []string
	if c.Player.VideoID != "" {
		set = append(set, "video_id")
	}
	if c.Player.VideoURL != "" {
		set = append(set, "video_url")
	}
	if c.Player.PlaylistID != "" {
		set = append(set, "playlist_id")
	}
	if len(set) > 1 {
		return errors.Newf("player: only one of video_id, video_url and playlist_id may be set (got %s)", strings.Join(set, ", "))
	}
	return nil
}

// PlayerParameters decodes player.parameters. Without a parameters block the
// default parameter set applies.
func (c *Config) PlayerParameters() (player.Parameters, error) {
	if c.Player.Parameters == nil {
		return player.DefaultParameters(), nil
	}
	params, err := player.DecodeParameters(c.Player.Parameters)
	if err != nil {
		return player.Parameters{}, errors.Wrap(err, "invalid player.parameters")
	}
	return params, nil
}

// ScriptTimeout returns the script timeout, zero when disabled.
func (c *Config) ScriptTimeout() time.Duration {
	if c.Dispatch.ScriptTimeoutMs == ScriptTimeoutDisabled {
		return 0
	}
	return time.Duration(c.Dispatch.ScriptTimeoutMs) * time.Millisecond
}

// OEmbedTimeout returns the metadata lookup timeout.
func (c *Config) OEmbedTimeout() time.Duration {
	return time.Duration(c.OEmbed.TimeoutMs) * time.Millisecond
}
