package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the uniform configuration structure for docweave.
type Config struct {
	// Google credential fields. TokenPath (an authorized-user token
	// file) takes precedence over CredentialsPath (a service-account
	// key file).
	CredentialsPath string
	TokenPath       string

	// Drive fields.
	FolderID  string
	ShareWith string
	ShareRole string

	// Synthesis fields. These pace the mutation traffic and should be
	// sized from the remote API's documented write quota.
	BatchLimit        int
	RequestsPerMinute int
	RetryDelay        time.Duration

	// Log related fields.
	LogEnabled bool
	LogPath    string
	LogVerbose bool
}

func Default() *Config {
	return &Config{
		CredentialsPath:   "google_credentials.json",
		TokenPath:         "token.json",
		ShareRole:         "writer",
		BatchLimit:        30,
		RequestsPerMinute: 50,
		RetryDelay:        2 * time.Second,
	}
}

type configYAML struct {
	Credentials string `yaml:"credentials"`
	Token       string `yaml:"token"`

	Folder    string `yaml:"folder"`
	ShareWith string `yaml:"share_with"`
	ShareRole string `yaml:"share_role"`

	BatchLimit        int    `yaml:"batch_limit"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	RetryDelay        string `yaml:"retry_delay"`

	Log struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
		Verbose bool   `yaml:"verbose"`
	} `yaml:"log"`
}

func ParseYAML(data []byte) (*Config, error) {
	var raw configYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	cfg := Default()
	if raw.Credentials != "" {
		cfg.CredentialsPath = raw.Credentials
	}
	if raw.Token != "" {
		cfg.TokenPath = raw.Token
	}
	cfg.FolderID = raw.Folder
	cfg.ShareWith = raw.ShareWith
	if raw.ShareRole != "" {
		cfg.ShareRole = raw.ShareRole
	}
	if raw.BatchLimit != 0 {
		cfg.BatchLimit = raw.BatchLimit
	}
	if raw.RequestsPerMinute != 0 {
		cfg.RequestsPerMinute = raw.RequestsPerMinute
	}
	if raw.RetryDelay != "" {
		d, err := time.ParseDuration(raw.RetryDelay)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse retry_delay %q", raw.RetryDelay)
		}
		cfg.RetryDelay = d
	}
	cfg.LogEnabled = raw.Log.Enabled
	cfg.LogPath = raw.Log.Path
	cfg.LogVerbose = raw.Log.Verbose

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to validate config")
	}
	return cfg, nil
}

// Load reads the config file at path; a missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrapf(err, "failed to read config %q", path)
	}
	return ParseYAML(data)
}

func validateConfig(cfg *Config) error {
	if cfg.BatchLimit < 1 {
		return errors.New("batch_limit must be positive")
	}
	if cfg.RequestsPerMinute < 1 {
		return errors.New("requests_per_minute must be positive")
	}
	if cfg.RetryDelay < 0 {
		return errors.New("retry_delay must not be negative")
	}
	switch cfg.ShareRole {
	case "reader", "writer", "owner":
	default:
		return errors.Errorf("unknown share_role %q", cfg.ShareRole)
	}
	return nil
}
