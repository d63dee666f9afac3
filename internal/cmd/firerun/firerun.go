package firerun

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"firescar/internal/core"
	"firescar/internal/ensemble"
	"firescar/internal/metrics"
	"firescar/internal/platform/config"
	"firescar/internal/platform/logger"
	"firescar/internal/platform/otel"
	"firescar/internal/platform/random"
	"firescar/internal/scenario"
	"firescar/internal/sims/landscape"
)

// Config holds firerun command configuration. Env tags are read with the
// FIRESCAR_ prefix.
type Config struct {
	Scenario   string `env:"SCENARIO"`
	Runs       int    `env:"RUNS"`
	Steps      int    `env:"STEPS"      envDefault:"-1"`
	Workers    int    `env:"WORKERS"`
	Seed       int64  `env:"SEED"`
	RandomSeed bool   `env:"RANDOM_SEED"`
	Order      string `env:"ORDER"`
	Events     bool   `env:"EVENTS"`
	Params     bool   `env:"PARAMS"`
	MetricsOut string `env:"METRICS_OUT"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel   string `env:"LOG_LEVEL"  envDefault:"info"`

	Set  kvList
	OTel otel.Config
}

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("override %q is not key=value", value)
	}
	*l = append(*l, value)
	return nil
}

// Map returns the overrides as a key/value map; later entries win.
func (l kvList) Map() map[string]string {
	out := make(map[string]string, len(l))
	for _, kv := range l {
		parts := strings.SplitN(kv, "=", 2)
		out[parts[0]] = parts[1]
	}
	return out
}

// ParseConfig parses environment variables then flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to a YAML scenario (defaults when empty)")
	fs.IntVar(&cfg.Runs, "runs", cfg.Runs, "independent runs (0 keeps the scenario value)")
	fs.IntVar(&cfg.Steps, "steps", cfg.Steps, "steps per run (-1 keeps the scenario value)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel runs (0 keeps the scenario value)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "base seed (0 keeps the scenario value)")
	fs.BoolVar(&cfg.RandomSeed, "random-seed", cfg.RandomSeed, "draw a fresh base seed")
	fs.StringVar(&cfg.Order, "order", cfg.Order, "step order: fire-first or decay-first")
	fs.BoolVar(&cfg.Events, "events", cfg.Events, "print every fire")
	fs.BoolVar(&cfg.Params, "params", cfg.Params, "print the resolved parameters before running")
	fs.StringVar(&cfg.MetricsOut, "metrics-out", cfg.MetricsOut, "write Prometheus text metrics to this file")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.Var(&cfg.Set, "set", "landscape parameter override in key=value form (repeatable)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the firerun command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	log, err := logger.New(errOut, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}

	sc, err := resolveScenario(cfg)
	if err != nil {
		return err
	}
	log.Info("scenario loaded",
		"path", cfg.Scenario,
		"seed", sc.Landscape.Seed,
		"runs", sc.Runs,
		"steps", sc.Steps,
		"order", sc.Landscape.Order,
	)

	if cfg.Params {
		sim, err := core.Build(landscape.SimName, sc.Landscape.Map())
		if err != nil {
			return fmt.Errorf("build %s: %w", landscape.SimName, err)
		}
		src, ok := sim.(core.ParameterSource)
		if !ok {
			return fmt.Errorf("sim %q does not report parameters", sim.Name())
		}
		if err := writeParams(out, src.Parameters()); err != nil {
			return err
		}
	}

	shutdown, err := otel.Setup(ctx, "firerun", cfg.OTel)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("tracing shutdown", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	runner := ensemble.New(
		ensemble.WithLogger(log),
		ensemble.WithMetrics(metrics.New(reg)),
	)
	report, err := runner.Run(ctx, sc.Ensemble())
	if err != nil {
		return err
	}

	if err := writeReport(out, report, cfg.Events); err != nil {
		return err
	}
	if cfg.MetricsOut != "" {
		if err := writeMetrics(cfg.MetricsOut, reg); err != nil {
			return err
		}
		log.Info("metrics written", "path", cfg.MetricsOut)
	}
	return nil
}

func resolveScenario(cfg Config) (scenario.Scenario, error) {
	sc := scenario.Default()
	if cfg.Scenario != "" {
		loaded, err := scenario.Load(cfg.Scenario)
		if err != nil {
			return scenario.Scenario{}, err
		}
		sc = loaded
	}

	sc.Landscape = sc.Landscape.ApplyMap(cfg.Set.Map())
	if cfg.Runs > 0 {
		sc.Runs = cfg.Runs
	}
	if cfg.Steps >= 0 {
		sc.Steps = cfg.Steps
	}
	if cfg.Workers > 0 {
		sc.Workers = cfg.Workers
	}
	if cfg.Seed != 0 {
		sc.Landscape.Seed = cfg.Seed
	}
	if cfg.RandomSeed {
		seed, err := random.NewSeed()
		if err != nil {
			return scenario.Scenario{}, err
		}
		sc.Landscape.Seed = seed
	}
	if cfg.Order != "" {
		order, err := landscape.ParseOrder(cfg.Order)
		if err != nil {
			return scenario.Scenario{}, err
		}
		sc.Landscape.Order = order
	}
	if err := sc.Validate(); err != nil {
		return scenario.Scenario{}, err
	}
	return sc, nil
}

func writeReport(out io.Writer, report ensemble.Report, events bool) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ensemble %s\n", report.ID)
	fmt.Fprintln(tw, "run\tseed\tsteps\tfires\tburned area\tmean K\tmax K")
	for _, res := range report.Results {
		s := res.Summary
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.4f\t%.4f\t%.4f\n", res.Run, res.Seed, s.Steps, s.Fires, s.BurnedArea, s.Mean, s.Max)
	}
	fires, area := report.Totals()
	fmt.Fprintf(tw, "total\t\t\t%d\t%.4f\t\t\n", fires, area)
	if err := tw.Flush(); err != nil {
		return err
	}

	if !events {
		return nil
	}
	for _, res := range report.Results {
		for _, ev := range res.Events {
			if _, err := fmt.Fprintf(out, "run %d: fire at t=%g node %d radius %.2f area %.2f (%d nodes)\n",
				res.Run, ev.Time, ev.Center, ev.Radius, ev.Area, ev.Nodes); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeParams(out io.Writer, snap core.ParameterSnapshot) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, g := range snap.Groups {
		fmt.Fprintf(tw, "[%s]\t\t\n", g.Name)
		for _, p := range g.Params {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", p.Key, p.Value, p.Label)
		}
	}
	return tw.Flush()
}

func writeMetrics(path string, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			f.Close()
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return f.Close()
}
