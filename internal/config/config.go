// Package config holds the templates and verbosity for a run. Defaults come
// from the environment (IND_*) and are overridden by command-line flags.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/PiranhaCodes/ind/internal/format"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "ind"

// Config is the parsed configuration of one invocation.
type Config struct {
	Prefix     string `envconfig:"PREFIX" default:"  "`
	Postfix    string `envconfig:"POSTFIX"`
	ErrPrefix  string `envconfig:"ERR_PREFIX" default:">>"`
	ErrPostfix string `envconfig:"ERR_POSTFIX"`
	Verbose    int    `envconfig:"VERBOSE"`
}

// Load reads the environment on top of the built-in defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

// Templates returns the stdout prefix and postfix, then the stderr ones.
func (c *Config) Templates() (outPre, outPost, errPre, errPost format.Template) {
	return format.Template(c.Prefix), format.Template(c.Postfix),
		format.Template(c.ErrPrefix), format.Template(c.ErrPostfix)
}

// Validate reports malformed directives in every template to warn and
// returns how many there were. Malformed templates are still usable.
func (c *Config) Validate(warn format.WarnFunc) int {
	outPre, outPost, errPre, errPost := c.Templates()
	n := 0
	for _, t := range []format.Template{outPre, outPost, errPre, errPost} {
		n += t.Validate(warn)
	}
	return n
}
