package core

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidConfig marks a component configuration outside its valid range.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrUnstableStep marks an explicit step too large for the relaxation time.
	ErrUnstableStep = errors.New("unstable step")
)

// ConfigError reports which parameter of which component was rejected.
type ConfigError struct {
	Component string
	Field     string
	Value     float64
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s = %g: %s", e.Component, ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// CheckFinite rejects NaN and infinite parameter values.
func CheckFinite(component, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ConfigError{Component: component, Field: field, Value: v, Reason: "must be finite"}
	}
	return nil
}
