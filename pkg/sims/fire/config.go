package fire

import (
	"strconv"

	"firescar/pkg/core"
)

const component = "fire"

// Config holds the fixed parameters of a Generator.
type Config struct {
	// Frequency is the mean number of fires per unit simulated time.
	Frequency float64 `yaml:"frequency"`
	// MeanRadius is the mean fire radius, in the length units of the topology.
	MeanRadius float64 `yaml:"mean_radius"`
	// Boost is added to the field at every node inside a fire.
	Boost float64 `yaml:"boost"`
	// Dt is the interval over which one Advance call evaluates occurrence.
	Dt float64 `yaml:"dt"`
	// CellSize is the grid spacing used to turn node counts into area.
	CellSize float64 `yaml:"cell_size"`
	// AreaScale converts CellSize² into the reporting unit.
	AreaScale float64 `yaml:"area_scale"`
}

// SquareMetersToKm2 converts m² to km², the default reporting unit.
const SquareMetersToKm2 = 1e-6

// DefaultConfig returns the standard configuration: one fire per unit time of
// unit mean radius, unit boost and unit spacing, with areas in km².
func DefaultConfig() Config {
	return Config{
		Frequency:  1,
		MeanRadius: 1,
		Boost:      1,
		Dt:         1,
		CellSize:   1,
		AreaScale:  SquareMetersToKm2,
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
// Unparsable values keep their defaults; range checks happen in Validate.
func FromMap(cfg map[string]string) Config {
	return DefaultConfig().ApplyMap(cfg)
}

// ApplyMap returns a copy of c with the recognised keys of cfg applied.
func (c Config) ApplyMap(cfg map[string]string) Config {
	setFloat(cfg, "fire_freq", &c.Frequency)
	setFloat(cfg, "fire_radius_mean", &c.MeanRadius)
	setFloat(cfg, "fire_boost", &c.Boost)
	setFloat(cfg, "dt", &c.Dt)
	setFloat(cfg, "dx", &c.CellSize)
	setFloat(cfg, "area_scale", &c.AreaScale)
	return c
}

func setFloat(cfg map[string]string, key string, dst *float64) {
	v, ok := cfg[key]
	if !ok {
		return
	}
	if parsed, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = parsed
	}
}

// Validate rejects configurations that have no physical meaning.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"frequency", c.Frequency},
		{"mean_radius", c.MeanRadius},
		{"boost", c.Boost},
		{"dt", c.Dt},
		{"cell_size", c.CellSize},
		{"area_scale", c.AreaScale},
	}
	for _, f := range fields {
		if err := core.CheckFinite(component, f.name, f.v); err != nil {
			return err
		}
	}
	switch {
	case c.Frequency < 0:
		return invalid("frequency", c.Frequency, "must be >= 0")
	case c.MeanRadius < 0:
		return invalid("mean_radius", c.MeanRadius, "must be >= 0")
	case c.Dt <= 0:
		return invalid("dt", c.Dt, "must be > 0")
	case c.CellSize < 0:
		return invalid("cell_size", c.CellSize, "must be >= 0")
	case c.AreaScale < 0:
		return invalid("area_scale", c.AreaScale, "must be >= 0")
	}
	return nil
}

func invalid(field string, v float64, reason string) error {
	return &core.ConfigError{Component: component, Field: field, Value: v, Reason: reason}
}
