package core

import (
	"fmt"
	"strings"
)

type DirectTokenConfig struct {
	// ValidateByDefault is a pointer so a configured false survives layer
	// merging; nil means the knob was never set.
	ValidateByDefault *bool `koanf:"validate_by_default" mapstructure:"validate_by_default"`
}

// ValidationEnabled reports the effective default. Unset keeps validation on,
// so skipping the live probe stays an explicit choice.
func (c DirectTokenConfig) ValidationEnabled() bool {
	if c.ValidateByDefault == nil {
		return true
	}
	return *c.ValidateByDefault
}

type Config struct {
	ServiceName string            `koanf:"service_name" mapstructure:"service_name"`
	DirectToken DirectTokenConfig `koanf:"direct_token" mapstructure:"direct_token"`
}

func DefaultConfig() Config {
	validate := true
	return Config{
		ServiceName: "connections",
		DirectToken: DirectTokenConfig{ValidateByDefault: &validate},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	return nil
}
