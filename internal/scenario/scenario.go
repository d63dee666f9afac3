// Package scenario loads landscape ensembles from YAML files.
//
// Fields absent from a file keep the landscape defaults:
//
//	steps: 500
//	runs: 4
//	landscape:
//	  width: 64
//	  height: 64
//	  order: decay-first
//	  fire:
//	    frequency: 0.1
//	    mean_radius: 30
//	  decay:
//	    time_constant: 25
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"firescar/internal/ensemble"
	"firescar/internal/sims/landscape"
)

// Scenario is the on-disk description of an ensemble.
type Scenario struct {
	Steps       int              `yaml:"steps"`
	Runs        int              `yaml:"runs"`
	Workers     int              `yaml:"workers"`
	SampleEvery int              `yaml:"sample_every"`
	Landscape   landscape.Config `yaml:"landscape"`
}

// Default returns a single 200-step run of the default landscape.
func Default() Scenario {
	return Scenario{
		Steps:     200,
		Runs:      1,
		Landscape: landscape.DefaultConfig(),
	}
}

// Parse decodes a scenario over Default and validates it. Unknown keys are
// rejected.
func Parse(data []byte) (Scenario, error) {
	s := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Load reads and parses the scenario at path.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks run counts and the landscape configuration.
func (s Scenario) Validate() error {
	if s.Runs < 1 {
		return fmt.Errorf("scenario: runs must be >= 1, got %d", s.Runs)
	}
	if s.Steps < 0 {
		return fmt.Errorf("scenario: steps must be >= 0, got %d", s.Steps)
	}
	if err := s.Landscape.Validate(); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	return nil
}

// Ensemble converts the scenario into an ensemble configuration.
func (s Scenario) Ensemble() ensemble.Config {
	return ensemble.Config{
		Landscape:   s.Landscape,
		Runs:        s.Runs,
		Steps:       s.Steps,
		Workers:     s.Workers,
		SampleEvery: s.SampleEvery,
	}
}

// Marshal encodes the scenario as YAML.
func (s Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
