// Package fire generates randomly timed, placed and sized fires that boost a
// per-node erodibility field.
//
// Occurrence uses a single-step thinning of a Poisson process: each Advance
// call fires at most once, with probability 1 - exp(-Frequency*Dt). The
// approximation degrades as Frequency*Dt grows.
package fire

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"firescar/pkg/core"
)

// Event records one fire.
type Event struct {
	Time   float64 `json:"time" yaml:"time"`
	Center int     `json:"center" yaml:"center"`
	Radius float64 `json:"radius" yaml:"radius"`
	Area   float64 `json:"area" yaml:"area"`
	Boost  float64 `json:"boost" yaml:"boost"`
	// Nodes is the number of nodes strictly inside Radius of Center.
	Nodes int `json:"nodes" yaml:"nodes"`
}

// Sink receives every event after it has been applied and logged.
type Sink func(Event)

// Option configures a Generator.
type Option func(*Generator)

// WithSink registers an event sink. Sinks run in registration order.
func WithSink(s Sink) Option {
	return func(g *Generator) {
		if s != nil {
			g.sinks = append(g.sinks, s)
		}
	}
}

// WithLogger sets the logger used for per-fire notifications.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator decides per call whether a fire occurs and applies it.
// It is not safe for concurrent use.
type Generator struct {
	cfg     Config
	rng     core.Rand
	noEvent float64

	log    []Event
	sinks  []Sink
	logger *slog.Logger
}

// NewGenerator validates cfg and returns a Generator drawing from rng.
func NewGenerator(cfg Config, rng core.Rand, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%s: %w: random source is required", component, core.ErrInvalidConfig)
	}
	g := &Generator{
		cfg:     cfg,
		rng:     rng,
		noEvent: math.Exp(-cfg.Frequency * cfg.Dt),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the generator configuration.
func (g *Generator) Config() Config { return g.cfg }

// Advance evaluates one interval of length Dt ending at now. When a fire
// occurs, every node strictly closer than the drawn radius to a uniformly
// chosen center node gets Boost added, and the event is returned.
//
// Draw order is fixed: occurrence, radius, center.
func (g *Generator) Advance(field core.Field, topo core.Topology, now float64) (Event, bool) {
	if g.rng.Float64() <= g.noEvent {
		return Event{}, false
	}
	n := field.Len()
	if n == 0 {
		return Event{}, false
	}

	radius := g.rng.ExpFloat64() * g.cfg.MeanRadius
	center := g.rng.IntN(n)
	at := topo.Coordinates(center)

	affected := Within(topo, at, radius)
	for _, i := range affected {
		field.SetValue(i, field.Value(i)+g.cfg.Boost)
	}

	ev := Event{
		Time:   now,
		Center: center,
		Radius: radius,
		Area:   float64(len(affected)) * g.cfg.CellSize * g.cfg.CellSize * g.cfg.AreaScale,
		Boost:  g.cfg.Boost,
		Nodes:  len(affected),
	}
	g.log = append(g.log, ev)

	g.logger.Info("fire",
		"x", at.X,
		"y", at.Y,
		"area", math.Round(ev.Area*100)/100,
		"radius", radius,
		"nodes", ev.Nodes,
		"time", now,
	)
	for _, s := range g.sinks {
		s(ev)
	}
	return ev, true
}

// Within returns the indices of all nodes whose distance to p is strictly
// less than radius, in ascending order. A zero radius selects nothing.
func Within(topo core.Topology, p core.Point, radius float64) []int {
	dists := topo.DistancesTo(p)
	var out []int
	for i, d := range dists {
		if d < radius {
			out = append(out, i)
		}
	}
	return out
}

// Log returns a copy of every event generated so far, oldest first.
func (g *Generator) Log() []Event {
	return append([]Event(nil), g.log...)
}

// Len reports how many events have been generated.
func (g *Generator) Len() int { return len(g.log) }

// Times returns the time of every logged event.
func (g *Generator) Times() []float64 {
	out := make([]float64, len(g.log))
	for i, ev := range g.log {
		out[i] = ev.Time
	}
	return out
}

// Areas returns the area of every logged event.
func (g *Generator) Areas() []float64 {
	out := make([]float64, len(g.log))
	for i, ev := range g.log {
		out[i] = ev.Area
	}
	return out
}
