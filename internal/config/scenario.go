package config

import (
	"fmt"
	"os"

	"github.com/tomz197/collide/internal/sim"
	"gopkg.in/yaml.v3"
)

// Scenario is a named set of initial parameters loaded from YAML.
type Scenario struct {
	Name   string     `yaml:"name"`
	Blocks BlocksSpec `yaml:"blocks"`
}

// BlocksSpec holds the two blocks of a scenario.
type BlocksSpec struct {
	A BlockSpec `yaml:"a"`
	B BlockSpec `yaml:"b"`
}

// BlockSpec is the initial mass and velocity of one block.
type BlockSpec struct {
	Mass     float64 `yaml:"mass"`
	Velocity float64 `yaml:"velocity"`
}

// DefaultScenario returns the stock scenario.
func DefaultScenario() Scenario {
	p := sim.DefaultParams()
	return Scenario{
		Name: "default",
		Blocks: BlocksSpec{
			A: BlockSpec{Mass: p.MassA, Velocity: p.VelocityA},
			B: BlockSpec{Mass: p.MassB, Velocity: p.VelocityB},
		},
	}
}

// Params converts the scenario into simulation parameters.
func (s Scenario) Params() sim.Params {
	return sim.Params{
		MassA:     s.Blocks.A.Mass,
		MassB:     s.Blocks.B.Mass,
		VelocityA: s.Blocks.A.Velocity,
		VelocityB: s.Blocks.B.Velocity,
	}
}

// ParseScenario decodes and validates a YAML scenario. Fields missing from
// the document keep their default values.
func ParseScenario(data []byte) (Scenario, error) {
	sc := DefaultScenario()
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("config: unmarshal scenario: %w", err)
	}
	if err := sc.Params().Validate(); err != nil {
		return Scenario{}, fmt.Errorf("config: scenario %q: %w", sc.Name, err)
	}
	return sc, nil
}

// LoadScenario reads and parses the scenario file at path.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return sc, nil
}
