package landscape

import (
	"strconv"

	"firescar/internal/core"
)

// Parameters reports the active configuration grouped for display.
func (w *World) Parameters() core.ParameterSnapshot {
	fc := w.cfg.fireConfig()
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", w.cfg.Width),
				intParam("h", "Height", w.cfg.Height),
				int64Param("seed", "Seed", w.cfg.Seed),
				floatParam("dt", "Timestep", w.cfg.Dt),
				floatParam("dx", "Cell size", w.cfg.CellSize),
				floatParam("initial", "Initial erodibility", w.cfg.Initial),
				stringParam("order", "Step order", string(w.cfg.Order)),
			},
		},
		{
			Name:    "Fire",
			Summary: "Poisson-thinned fires with exponential radii",
			Params: []core.Parameter{
				floatParam("fire_freq", "Fire frequency", fc.Frequency),
				floatParam("fire_radius_mean", "Mean fire radius", fc.MeanRadius),
				floatParam("fire_boost", "Erodibility boost", fc.Boost),
				floatParam("area_scale", "Area unit scale", fc.AreaScale),
			},
		},
		{
			Name:    "Decay",
			Summary: "Explicit Euler relaxation toward baseline",
			Params: []core.Parameter{
				floatParam("decay_time", "Relaxation time", w.cfg.Decay.TimeConstant),
				floatParam("baseline", "Baseline erodibility", w.cfg.Decay.Baseline),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func stringParam(key, label, value string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeString,
		Value: value,
	}
}
