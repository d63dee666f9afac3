// Package landscape drives the fire generator and the erodibility decay on a
// raster field. It stands in for the outer landscape-evolution loop.
package landscape

import (
	"io"
	"log/slog"

	"firescar/internal/core"
	pcore "firescar/pkg/core"
	"firescar/pkg/sims/fire"
	"firescar/pkg/sims/relax"
)

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger handed to the fire generator.
func WithLogger(logger *slog.Logger) Option {
	return func(w *World) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithSink registers a fire event sink.
func WithSink(s fire.Sink) Option {
	return func(w *World) {
		if s != nil {
			w.sinks = append(w.sinks, s)
		}
	}
}

// World stores the erodibility field and the two processes acting on it.
type World struct {
	cfg Config

	field *core.FloatGrid
	topo  *core.RasterGrid
	clock *core.Clock
	rng   *pcore.RNG

	gen   *fire.Generator
	decay *relax.Integrator

	// history holds events of generators replaced by SetFloatParameter.
	history []fire.Event

	logger *slog.Logger
	sinks  []fire.Sink
}

// NewWithConfig validates cfg and returns a world reset with the config seed.
func NewWithConfig(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	decay, err := relax.NewIntegrator(cfg.Decay)
	if err != nil {
		return nil, err
	}

	w := &World{
		cfg:    cfg,
		field:  core.NewFloatGrid(cfg.Width, cfg.Height),
		topo:   core.NewRasterGrid(cfg.Width, cfg.Height, cfg.CellSize),
		clock:  core.NewClock(cfg.Dt),
		decay:  decay,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.Reset(0)
	return w, nil
}

// SimName is the registry name of the landscape simulation.
const SimName = "landscape"

// Name returns the simulation identifier.
func (w *World) Name() string { return SimName }

// Size reports the grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.cfg.Width, H: w.cfg.Height} }

// Config returns the active configuration.
func (w *World) Config() Config { return w.cfg }

// Values exposes the erodibility field.
func (w *World) Values() []float64 { return w.field.Cells() }

// Field exposes the erodibility grid.
func (w *World) Field() *core.FloatGrid { return w.field }

// Time returns the simulated time.
func (w *World) Time() float64 { return w.clock.Now() }

// Steps returns the number of completed steps.
func (w *World) Steps() int { return w.clock.Steps() }

// Reset restores the initial field and clears the event history. A zero seed
// reuses the configured seed.
func (w *World) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	w.rng = pcore.NewRNG(effective)
	w.field.Fill(w.cfg.Initial)
	w.clock.Reset()
	w.history = nil

	gen, err := w.newGenerator(w.cfg.fireConfig())
	if err != nil {
		// The config was validated at construction.
		panic(err)
	}
	w.gen = gen
}

func (w *World) newGenerator(cfg fire.Config) (*fire.Generator, error) {
	opts := []fire.Option{fire.WithLogger(w.logger)}
	for _, s := range w.sinks {
		opts = append(opts, fire.WithSink(s))
	}
	return fire.NewGenerator(cfg, w.rng, opts...)
}

// Step advances the world by Dt. Fires are stamped with the time at the
// start of the step.
func (w *World) Step() {
	now := w.clock.Now()
	dt := w.clock.Dt()
	switch w.cfg.Order {
	case OrderDecayFirst:
		w.decay.Advance(w.field, dt)
		w.gen.Advance(w.field, w.topo, now)
	default:
		w.gen.Advance(w.field, w.topo, now)
		w.decay.Advance(w.field, dt)
	}
	w.clock.Tick()
}

// Events returns every fire since the last reset, oldest first.
func (w *World) Events() []fire.Event {
	out := append([]fire.Event(nil), w.history...)
	return append(out, w.gen.Log()...)
}

// Summary aggregates the state of a world.
type Summary struct {
	Steps      int
	Time       float64
	Fires      int
	BurnedArea float64
	Mean       float64
	Max        float64
}

// Summary reports run statistics and the current field mean and maximum.
func (w *World) Summary() Summary {
	s := Summary{Steps: w.clock.Steps(), Time: w.clock.Now()}
	for _, ev := range w.Events() {
		s.Fires++
		s.BurnedArea += ev.Area
	}
	s.Mean, s.Max = w.field.Stats()
	return s
}

// SetFloatParameter replaces the affected component with one built from the
// updated configuration. It reports false for unknown keys and for values the
// component rejects, leaving the world unchanged.
func (w *World) SetFloatParameter(key string, value float64) bool {
	next := w.cfg
	switch key {
	case "fire_freq":
		next.Fire.Frequency = value
	case "fire_radius_mean":
		next.Fire.MeanRadius = value
	case "fire_boost":
		next.Fire.Boost = value
	case "area_scale":
		next.Fire.AreaScale = value
	case "decay_time":
		next.Decay.TimeConstant = value
	case "baseline":
		next.Decay.Baseline = value
	default:
		return false
	}

	if next.Decay != w.cfg.Decay {
		decay, err := relax.NewIntegrator(next.Decay)
		if err != nil || decay.CheckStep(w.cfg.Dt) != nil {
			return false
		}
		w.decay = decay
		w.cfg = next
		return true
	}

	gen, err := w.newGenerator(next.fireConfig())
	if err != nil {
		return false
	}
	w.history = append(w.history, w.gen.Log()...)
	w.gen = gen
	w.cfg = next
	return true
}

func init() {
	core.Register(SimName, func(cfg map[string]string) (core.Sim, error) {
		w, err := NewWithConfig(FromMap(cfg))
		if err != nil {
			return nil, err
		}
		return w, nil
	})
}
