package fire

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"testing"

	"firescar/internal/core"
	pcore "firescar/pkg/core"
)

// scriptedRand replays fixed draws.
type scriptedRand struct {
	floats []float64
	exps   []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) ExpFloat64() float64 {
	v := r.exps[0]
	r.exps = r.exps[1:]
	return v
}

func (r *scriptedRand) IntN(n int) int {
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

type sliceField []float64

func (f sliceField) Len() int                  { return len(f) }
func (f sliceField) Value(i int) float64       { return f[i] }
func (f sliceField) SetValue(i int, v float64) { f[i] = v }

// lineTopology places node i at (i, 0).
type lineTopology int

func (l lineTopology) Coordinates(i int) pcore.Point { return pcore.Point{X: float64(i)} }

func (l lineTopology) DistancesTo(p pcore.Point) []float64 {
	out := make([]float64, int(l))
	for i := range out {
		out[i] = math.Hypot(float64(i)-p.X, p.Y)
	}
	return out
}

func testConfig() Config {
	c := DefaultConfig()
	c.Frequency = 1
	c.MeanRadius = 1
	c.Boost = 0.5
	c.CellSize = 10
	return c
}

func mustGenerator(t *testing.T, cfg Config, rng pcore.Rand, opts ...Option) *Generator {
	t.Helper()
	gen, err := NewGenerator(cfg, rng, opts...)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	return gen
}

func TestLineScenarioBoostsNeighbours(t *testing.T) {
	rng := &scriptedRand{floats: []float64{0.99}, exps: []float64{1.5}, ints: []int{2}}
	gen := mustGenerator(t, testConfig(), rng)

	field := sliceField{1, 1, 1, 1, 1}
	ev, ok := gen.Advance(field, lineTopology(5), 7)
	if !ok {
		t.Fatal("expected a fire")
	}

	if want := []float64{1, 1.5, 1.5, 1.5, 1}; !slices.Equal([]float64(field), want) {
		t.Fatalf("field %v, expected %v", field, want)
	}
	if ev.Time != 7 || ev.Center != 2 || ev.Radius != 1.5 || ev.Nodes != 3 || ev.Boost != 0.5 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if want := 3 * 10 * 10 * SquareMetersToKm2; math.Abs(ev.Area-want) > 1e-15 {
		t.Fatalf("area %g, expected %g", ev.Area, want)
	}
	if log := gen.Log(); !slices.Equal(log, []Event{ev}) {
		t.Fatalf("log %+v, expected the single event", log)
	}
}

func TestNoOccurrenceLeavesFieldUntouched(t *testing.T) {
	noEvent := math.Exp(-1)
	rng := &scriptedRand{floats: []float64{0.1, noEvent}}
	gen := mustGenerator(t, testConfig(), rng)

	field := sliceField{2, 2, 2}
	for i := 0; i < 2; i++ {
		if _, ok := gen.Advance(field, lineTopology(3), float64(i)); ok {
			t.Fatalf("call %d fired", i)
		}
	}
	if !slices.Equal(field, sliceField{2, 2, 2}) || gen.Len() != 0 {
		t.Fatalf("field %v and %d events after no occurrence", field, gen.Len())
	}
}

func TestZeroFrequencyNeverFires(t *testing.T) {
	cfg := testConfig()
	cfg.Frequency = 0
	gen := mustGenerator(t, cfg, pcore.NewRNG(5))

	field := make(sliceField, 16)
	for i := 0; i < 20000; i++ {
		if _, ok := gen.Advance(field, lineTopology(16), float64(i)); ok {
			t.Fatalf("fire at call %d with zero frequency", i)
		}
	}
	if !slices.Equal(field, make(sliceField, 16)) {
		t.Fatalf("field changed without fires: %v", field)
	}
}

func TestZeroRadiusExcludesCenter(t *testing.T) {
	cfg := testConfig()
	cfg.MeanRadius = 0
	rng := &scriptedRand{floats: []float64{0.99}, exps: []float64{2}, ints: []int{1}}
	gen := mustGenerator(t, cfg, rng)

	field := sliceField{1, 1, 1}
	ev, ok := gen.Advance(field, lineTopology(3), 0)
	if !ok {
		t.Fatal("expected a fire")
	}
	if ev.Radius != 0 || ev.Nodes != 0 || ev.Area != 0 {
		t.Fatalf("zero-radius event %+v", ev)
	}
	if !slices.Equal(field, sliceField{1, 1, 1}) {
		t.Fatalf("zero radius changed the field: %v", field)
	}
	if gen.Len() != 1 {
		t.Fatalf("zero-radius fire must still be logged, log has %d", gen.Len())
	}
}

func TestShrinkingRadiusShrinksFootprint(t *testing.T) {
	topo := lineTopology(9)
	at := topo.Coordinates(4)
	prev := len(Within(topo, at, 10))
	for _, r := range []float64{3.5, 1.5, 0.5, 1e-9, 0} {
		n := len(Within(topo, at, r))
		if n > prev {
			t.Fatalf("radius %g selects %d nodes, more than %d", r, n, prev)
		}
		prev = n
	}
	if n := len(Within(topo, at, 1e-9)); n != 1 {
		t.Fatalf("tiny radius selects %d nodes, expected the center only", n)
	}
	if got := Within(topo, at, 0); len(got) != 0 {
		t.Fatalf("zero radius selects %v", got)
	}
}

func TestBoostsStackWithoutClamping(t *testing.T) {
	rng := &scriptedRand{
		floats: []float64{0.99, 0.99, 0.99},
		exps:   []float64{100, 100, 100},
		ints:   []int{0, 1, 2},
	}
	gen := mustGenerator(t, testConfig(), rng)

	field := sliceField{0, 0}
	for i := 0; i < 3; i++ {
		if _, ok := gen.Advance(field, lineTopology(2), float64(i)); !ok {
			t.Fatalf("call %d did not fire", i)
		}
	}
	if !slices.Equal(field, sliceField{1.5, 1.5}) {
		t.Fatalf("field %v after three fires, expected [1.5 1.5]", field)
	}
	if times := gen.Times(); !slices.Equal(times, []float64{0, 1, 2}) {
		t.Fatalf("times %v", times)
	}
	if n := len(gen.Areas()); n != 3 {
		t.Fatalf("%d areas, expected 3", n)
	}
}

func TestSeededRunsReproduce(t *testing.T) {
	run := func() ([]Event, []float64) {
		cfg := testConfig()
		cfg.Frequency = 0.3
		cfg.MeanRadius = 25
		gen := mustGenerator(t, cfg, pcore.NewRNG(42))
		grid := core.NewFloatGrid(16, 16)
		topo := core.NewRasterGrid(16, 16, 10)
		for i := 0; i < 300; i++ {
			gen.Advance(grid, topo, float64(i))
		}
		return gen.Log(), slices.Clone(grid.Cells())
	}

	eventsA, fieldA := run()
	eventsB, fieldB := run()
	if len(eventsA) == 0 {
		t.Fatal("expected fires in 300 calls")
	}
	if !slices.Equal(eventsA, eventsB) || !slices.Equal(fieldA, fieldB) {
		t.Fatal("same seed produced different fires")
	}
}

func TestAffectedSetMatchesDistanceQuery(t *testing.T) {
	cfg := testConfig()
	cfg.Frequency = 2
	cfg.MeanRadius = 30
	cfg.Boost = 0.25
	gen := mustGenerator(t, cfg, pcore.NewRNG(7))

	grid := core.NewFloatGrid(20, 12)
	topo := core.NewRasterGrid(20, 12, 10)
	fired := 0
	for step := 0; step < 200; step++ {
		before := slices.Clone(grid.Cells())
		ev, ok := gen.Advance(grid, topo, float64(step))
		if !ok {
			if !slices.Equal(before, grid.Cells()) {
				t.Fatalf("step %d changed the field without a fire", step)
			}
			continue
		}
		fired++

		dists := topo.DistancesTo(topo.Coordinates(ev.Center))
		want := 0
		for i, d := range dists {
			delta := grid.Cells()[i] - before[i]
			if d < ev.Radius {
				want++
				if math.Abs(delta-cfg.Boost) > 1e-12 {
					t.Fatalf("step %d node %d inside radius changed by %g", step, i, delta)
				}
			} else if delta != 0 {
				t.Fatalf("step %d node %d outside radius changed by %g", step, i, delta)
			}
		}
		if ev.Nodes != want {
			t.Fatalf("step %d event reports %d nodes, distance query gives %d", step, ev.Nodes, want)
		}
	}
	if fired == 0 {
		t.Fatal("expected fires in 200 steps")
	}
}

func TestOccurrenceRateMatchesThinning(t *testing.T) {
	cfg := testConfig()
	cfg.Frequency = 0.25
	cfg.Dt = 2
	gen := mustGenerator(t, cfg, pcore.NewRNG(11))

	const calls = 20000
	field := make(sliceField, 4)
	for i := 0; i < calls; i++ {
		gen.Advance(field, lineTopology(4), float64(i))
	}
	want := 1 - math.Exp(-0.5)
	if got := float64(gen.Len()) / calls; math.Abs(got-want) > 0.02 {
		t.Fatalf("occurrence rate %.4f, expected %.4f", got, want)
	}
}

func TestEmptyFieldNeverFires(t *testing.T) {
	gen := mustGenerator(t, testConfig(), &scriptedRand{floats: []float64{0.99}})
	if _, ok := gen.Advance(sliceField{}, lineTopology(0), 0); ok {
		t.Fatal("empty field produced a fire")
	}
}

func TestSinksAndLoggerReceiveEvents(t *testing.T) {
	var buf bytes.Buffer
	var got []Event
	rng := &scriptedRand{floats: []float64{0.99}, exps: []float64{1.5}, ints: []int{2}}
	gen := mustGenerator(t, testConfig(), rng,
		WithSink(func(ev Event) { got = append(got, ev) }),
		WithSink(nil),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	ev, ok := gen.Advance(make(sliceField, 5), lineTopology(5), 3)
	if !ok {
		t.Fatal("expected a fire")
	}
	if !slices.Equal(got, []Event{ev}) {
		t.Fatalf("sink saw %+v", got)
	}
	for _, want := range []string{"msg=fire", "x=2", "area="} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("log %q missing %q", buf.String(), want)
		}
	}
}

func TestLogIsACopy(t *testing.T) {
	rng := &scriptedRand{floats: []float64{0.99}, exps: []float64{1}, ints: []int{0}}
	gen := mustGenerator(t, testConfig(), rng)
	gen.Advance(make(sliceField, 2), lineTopology(2), 0)

	log := gen.Log()
	log[0].Center = 99
	if c := gen.Log()[0].Center; c != 0 {
		t.Fatalf("mutating a copy changed the log center to %d", c)
	}
}

func TestConfigValidation(t *testing.T) {
	cases := map[string]func(*Config){
		"negative frequency":  func(c *Config) { c.Frequency = -1 },
		"negative radius":     func(c *Config) { c.MeanRadius = -0.1 },
		"zero dt":             func(c *Config) { c.Dt = 0 },
		"negative dt":         func(c *Config) { c.Dt = -1 },
		"nan boost":           func(c *Config) { c.Boost = math.NaN() },
		"infinite frequency":  func(c *Config) { c.Frequency = math.Inf(1) },
		"negative cell size":  func(c *Config) { c.CellSize = -10 },
		"negative area scale": func(c *Config) { c.AreaScale = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			_, err := NewGenerator(cfg, pcore.NewRNG(1))
			if !errors.Is(err, pcore.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var ce *pcore.ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected a *ConfigError, got %T", err)
			}
		})
	}

	t.Run("zero frequency and radius are valid", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Frequency = 0
		cfg.MeanRadius = 0
		if _, err := NewGenerator(cfg, pcore.NewRNG(1)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("nil random source", func(t *testing.T) {
		if _, err := NewGenerator(DefaultConfig(), nil); !errors.Is(err, pcore.ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestFromMap(t *testing.T) {
	cfg := FromMap(map[string]string{
		"fire_freq":        "0.2",
		"fire_radius_mean": "bogus",
		"fire_boost":       "3",
		"dx":               "30",
		"area_scale":       "1",
	})
	want := DefaultConfig()
	want.Frequency = 0.2
	want.Boost = 3
	want.CellSize = 30
	want.AreaScale = 1
	if cfg != want {
		t.Fatalf("FromMap = %+v, expected %+v", cfg, want)
	}
	if FromMap(nil) != DefaultConfig() {
		t.Fatal("FromMap(nil) must return the defaults")
	}
}
