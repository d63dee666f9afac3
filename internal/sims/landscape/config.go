package landscape

import (
	"fmt"
	"strconv"

	"firescar/pkg/core"
	"firescar/pkg/sims/fire"
	"firescar/pkg/sims/relax"
)

// Order selects how fire and decay are composed inside one step. The two do
// not commute, so the choice is part of the model.
type Order string

const (
	// OrderFireFirst burns, then relaxes the burned field.
	OrderFireFirst Order = "fire-first"
	// OrderDecayFirst relaxes, then burns, leaving the full boost visible at
	// the end of the step.
	OrderDecayFirst Order = "decay-first"
)

// ParseOrder converts a string into an Order.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case OrderFireFirst, OrderDecayFirst:
		return o, nil
	}
	return "", fmt.Errorf("unknown order %q", s)
}

// FireConfig holds the fire parameters owned by the landscape. The step and
// cell size come from the enclosing Config.
type FireConfig struct {
	Frequency  float64 `yaml:"frequency"`
	MeanRadius float64 `yaml:"mean_radius"`
	Boost      float64 `yaml:"boost"`
	AreaScale  float64 `yaml:"area_scale"`
}

// Config controls the landscape simulation. Dt and CellSize apply to both
// components.
type Config struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"`

	Dt       float64 `yaml:"dt"`
	CellSize float64 `yaml:"cell_size"`
	Initial  float64 `yaml:"initial"`
	Order    Order   `yaml:"order"`

	Fire  FireConfig   `yaml:"fire"`
	Decay relax.Config `yaml:"decay"`
}

// DefaultConfig returns the standard configuration: a 128x128 raster of 10 m
// cells starting at baseline, with rare fires that relax over ~20 steps.
func DefaultConfig() Config {
	fc := fire.DefaultConfig()

	return Config{
		Width:    128,
		Height:   128,
		Seed:     1337,
		Dt:       1,
		CellSize: 10,
		Initial:  1,
		Order:    OrderFireFirst,
		Fire: FireConfig{
			Frequency:  0.05,
			MeanRadius: 50,
			Boost:      fc.Boost,
			AreaScale:  fc.AreaScale,
		},
		Decay:    relax.Config{TimeConstant: 20, Baseline: 1},
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	return DefaultConfig().ApplyMap(cfg)
}

// ApplyMap returns a copy of c with the recognised keys of cfg applied.
// Unparsable values are ignored.
func (c Config) ApplyMap(cfg map[string]string) Config {
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["dt"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Dt = parsed
		}
	}
	if v, ok := cfg["dx"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.CellSize = parsed
		}
	}
	if v, ok := cfg["initial"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Initial = parsed
		}
	}
	if v, ok := cfg["order"]; ok {
		if parsed, err := ParseOrder(v); err == nil {
			c.Order = parsed
		}
	}
	fc := c.fireConfig().ApplyMap(cfg)
	c.Fire = FireConfig{
		Frequency:  fc.Frequency,
		MeanRadius: fc.MeanRadius,
		Boost:      fc.Boost,
		AreaScale:  fc.AreaScale,
	}
	c.Decay = c.Decay.ApplyMap(cfg)
	return c
}

// Map renders c in the key/value form read by FromMap.
func (c Config) Map() map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return map[string]string{
		"w":                strconv.Itoa(c.Width),
		"h":                strconv.Itoa(c.Height),
		"seed":             strconv.FormatInt(c.Seed, 10),
		"dt":               f(c.Dt),
		"dx":               f(c.CellSize),
		"initial":          f(c.Initial),
		"order":            string(c.Order),
		"fire_freq":        f(c.Fire.Frequency),
		"fire_radius_mean": f(c.Fire.MeanRadius),
		"fire_boost":       f(c.Fire.Boost),
		"area_scale":       f(c.Fire.AreaScale),
		"decay_time":       f(c.Decay.TimeConstant),
		"baseline":         f(c.Decay.Baseline),
	}
}

// fireConfig combines Fire with the shared step and spacing.
func (c Config) fireConfig() fire.Config {
	return fire.Config{
		Frequency:  c.Fire.Frequency,
		MeanRadius: c.Fire.MeanRadius,
		Boost:      c.Fire.Boost,
		Dt:         c.Dt,
		CellSize:   c.CellSize,
		AreaScale:  c.Fire.AreaScale,
	}
}

// Validate checks the world-level fields, both component configs, and that
// Dt is a stable explicit step for the relaxation time.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("landscape: %w: size %dx%d must be positive", core.ErrInvalidConfig, c.Width, c.Height)
	}
	if err := core.CheckFinite("landscape", "initial", c.Initial); err != nil {
		return err
	}
	if err := core.CheckFinite("landscape", "cell_size", c.CellSize); err != nil {
		return err
	}
	if c.CellSize <= 0 {
		return &core.ConfigError{Component: "landscape", Field: "cell_size", Value: c.CellSize, Reason: "must be > 0"}
	}
	if _, err := ParseOrder(string(c.Order)); err != nil {
		return fmt.Errorf("landscape: %w: %v", core.ErrInvalidConfig, err)
	}
	if err := c.fireConfig().Validate(); err != nil {
		return err
	}
	decay, err := relax.NewIntegrator(c.Decay)
	if err != nil {
		return err
	}
	if err := decay.CheckStep(c.Dt); err != nil {
		return fmt.Errorf("landscape: %w", err)
	}
	return nil
}
