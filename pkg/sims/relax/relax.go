// Package relax pulls a per-node field back toward a uniform baseline.
//
// Each Advance is one explicit Euler step of dK/dt = -(K - K0)/τ, so every
// value moves a fraction dt/τ of the way to K0. The step is monotone only for
// dt/τ < 1; larger steps overshoot and, beyond 2, diverge. Drivers can guard
// their step with CheckStep.
package relax

import (
	"fmt"

	"firescar/pkg/core"
)

// Integrator relaxes a field toward Baseline. It holds no state beyond its
// configuration.
type Integrator struct {
	cfg Config
}

// NewIntegrator validates cfg and returns an Integrator.
func NewIntegrator(cfg Config) (*Integrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Integrator{cfg: cfg}, nil
}

// Config returns the integrator configuration.
func (d *Integrator) Config() Config { return d.cfg }

// Advance applies one step of length dt to every node of field.
func (d *Integrator) Advance(field core.Field, dt float64) {
	frac := dt / d.cfg.TimeConstant
	k0 := d.cfg.Baseline
	for i, n := 0, field.Len(); i < n; i++ {
		k := field.Value(i)
		field.SetValue(i, k+frac*(k0-k))
	}
}

// CheckStep reports ErrUnstableStep when dt is not in (0, τ).
func (d *Integrator) CheckStep(dt float64) error {
	if dt <= 0 || dt/d.cfg.TimeConstant >= 1 {
		return fmt.Errorf("%s: %w: dt/τ = %g/%g must be in (0, 1)", component, core.ErrUnstableStep, dt, d.cfg.TimeConstant)
	}
	return nil
}

// Closed returns the value initial reaches after n explicit steps of
// length dt with no intervening events: K0 + (k0-K0)(1-dt/τ)^n.
func (d *Integrator) Closed(initial, dt float64, n int) float64 {
	r := 1 - dt/d.cfg.TimeConstant
	f := 1.0
	for i := 0; i < n; i++ {
		f *= r
	}
	return d.cfg.Baseline + (initial-d.cfg.Baseline)*f
}
