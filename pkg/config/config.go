// Package config holds the settings a host uses to build a VM context.
package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "ASVM"

// Config describes the language version and limits of one VM instance.
type Config struct {
	// SWFVersion is the version of the movie hosting the code. It gates
	// visibility, case sensitivity and several coercion rules.
	SWFVersion int `yaml:"swfVersion" envconfig:"SWF_VERSION"`

	// MaxPrototypeDepth caps prototype chain walks.
	MaxPrototypeDepth int `yaml:"maxPrototypeDepth" envconfig:"MAX_PROTOTYPE_DEPTH"`

	LogLevel string `yaml:"logLevel" envconfig:"LOG_LEVEL"`

	// VerboseASCodingErrors enables reports of script mistakes that the
	// engine tolerates, such as writes to read-only members.
	VerboseASCodingErrors bool `yaml:"verboseASCodingErrors" envconfig:"VERBOSE_AS_CODING_ERRORS"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		SWFVersion:        8,
		MaxPrototypeDepth: 256,
		LogLevel:          "info",
	}
}

// Load reads the optional YAML file at path, applies ASVM_* environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "reading config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing config file %s", path)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, errors.Wrap(err, "reading environment")
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the engine cannot honour.
func (c Config) Validate() error {
	if c.SWFVersion < 1 || c.SWFVersion > 10 {
		return errors.Errorf("swfVersion %d out of range 1..10", c.SWFVersion)
	}
	if c.MaxPrototypeDepth < 1 {
		return errors.Errorf("maxPrototypeDepth must be positive, got %d", c.MaxPrototypeDepth)
	}
	return nil
}
