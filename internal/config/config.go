// Package config loads CLI and sandbox settings. Values are layered:
// defaults, then an optional YAML file, then EINVOICE_ environment
// variables. Command-line flags are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/rezonia/einvoice-client/pkg/einvoice"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "EINVOICE"

// Config holds the client settings and the sandbox section.
type Config struct {
	Token              string        `yaml:"token" envconfig:"TOKEN"`
	BaseURL            string        `yaml:"base_url" envconfig:"BASE_URL"`
	Timeout            time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" envconfig:"INSECURE"`
	Debug              bool          `yaml:"debug" envconfig:"DEBUG"`
	LogLevel           string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogPretty          bool          `yaml:"log_pretty" envconfig:"LOG_PRETTY"`

	Sandbox Sandbox `yaml:"sandbox" envconfig:"SANDBOX"`
}

// Sandbox configures the local emulation of the API.
type Sandbox struct {
	Address      string        `yaml:"address" envconfig:"ADDRESS"`
	Token        string        `yaml:"token" envconfig:"TOKEN"`
	Tenant       string        `yaml:"tenant" envconfig:"TENANT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		LogLevel: "info",
		Sandbox: Sandbox{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	return LoadFs(afero.NewOsFs(), path)
}

// LoadFs is Load reading the YAML file from fs.
func LoadFs(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	return cfg, nil
}

var logLevels = []any{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.LogLevel, validation.Required, validation.In(logLevels...)),
	)
}

// ValidateSandbox checks the sandbox section. Empty token and tenant are
// allowed; EnsureSandboxIdentity fills them in.
func (c *Config) ValidateSandbox() error {
	if err := c.Validate(); err != nil {
		return err
	}
	s := &c.Sandbox
	return validation.ValidateStruct(s,
		validation.Field(&s.Address, validation.Required),
		validation.Field(&s.Token, validation.By(func(any) error {
			if s.Token == "" {
				return nil
			}
			return einvoice.ValidateToken(s.Token)
		})),
		validation.Field(&s.Tenant, is.UUID),
		validation.Field(&s.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&s.WriteTimeout, validation.Min(time.Duration(0))),
	)
}

// EnsureSandboxIdentity generates a token and tenant for the sandbox when
// none were configured.
func (c *Config) EnsureSandboxIdentity() {
	if c.Sandbox.Token == "" {
		c.Sandbox.Token = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	}
	if c.Sandbox.Tenant == "" {
		c.Sandbox.Tenant = uuid.NewString()
	}
}

// SandboxTenant parses the configured tenant.
func (c *Config) SandboxTenant() (uuid.UUID, error) {
	if c.Sandbox.Tenant == "" {
		return uuid.Nil, errors.New("sandbox tenant is not set")
	}
	return uuid.Parse(c.Sandbox.Tenant)
}
