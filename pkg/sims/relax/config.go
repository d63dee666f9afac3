package relax

import (
	"strconv"

	"firescar/pkg/core"
)

const component = "relax"

// Config holds the fixed parameters of an Integrator.
type Config struct {
	// TimeConstant is the relaxation time τ.
	TimeConstant float64 `yaml:"time_constant"`
	// Baseline is the equilibrium value K0 every node relaxes toward.
	Baseline float64 `yaml:"baseline"`
}

// DefaultConfig returns unit relaxation time and unit baseline.
func DefaultConfig() Config {
	return Config{TimeConstant: 1, Baseline: 1}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	return DefaultConfig().ApplyMap(cfg)
}

// ApplyMap returns a copy of c with the recognised keys of cfg applied.
func (c Config) ApplyMap(cfg map[string]string) Config {
	if v, ok := cfg["decay_time"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.TimeConstant = parsed
		}
	}
	if v, ok := cfg["baseline"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Baseline = parsed
		}
	}
	return c
}

// Validate rejects non-positive relaxation times and non-finite values.
func (c Config) Validate() error {
	if err := core.CheckFinite(component, "time_constant", c.TimeConstant); err != nil {
		return err
	}
	if err := core.CheckFinite(component, "baseline", c.Baseline); err != nil {
		return err
	}
	if c.TimeConstant <= 0 {
		return &core.ConfigError{Component: component, Field: "time_constant", Value: c.TimeConstant, Reason: "must be > 0"}
	}
	return nil
}
