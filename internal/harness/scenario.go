package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies the scenario and its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Table is the CUE file declaring the command table. Relative paths
	// are resolved against the scenario file's directory.
	Table string `yaml:"table"`

	// TableName selects a table when the file declares several.
	TableName string `yaml:"table_name,omitempty"`

	// Buffer is the engine scratch size; zero uses the device minimum.
	Buffer int `yaml:"buffer,omitempty"`

	// Chunk, when > 0, delivers input Chunk bytes at a time with a
	// "no data" gap in between.
	Chunk int `yaml:"chunk,omitempty"`

	Steps []Step `yaml:"steps"`

	// Values are the expected rendered variable values after the last
	// step. Only listed variables are checked.
	Values map[string]string `yaml:"values,omitempty"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step sends raw bytes and expects an exact reply.
type Step struct {
	Send   string `yaml:"send"`
	Expect string `yaml:"expect"`
}

// Assertion validates the exchange trace.
type Assertion struct {
	// Type is one of reason_count, command_count or command_order.
	Type string `yaml:"type"`

	// Reason is used by reason_count.
	Reason string `yaml:"reason,omitempty"`

	// Command is used by command_count.
	Command string `yaml:"command,omitempty"`

	// Count is used by reason_count and command_count.
	Count int `yaml:"count,omitempty"`

	// Commands is used by command_order.
	Commands []string `yaml:"commands,omitempty"`
}

// Assertion type constants.
const (
	AssertReasonCount  = "reason_count"
	AssertCommandCount = "command_count"
	AssertCommandOrder = "command_order"
)

// LoadScenario reads a scenario YAML file. Unknown fields are rejected so
// typos fail loudly. The table path is resolved against the file's
// directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Table != "" && !filepath.IsAbs(scenario.Table) {
		scenario.Table = filepath.Join(filepath.Dir(path), scenario.Table)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Table == "" {
		return fmt.Errorf("table is required")
	}
	if _, err := os.Stat(s.Table); os.IsNotExist(err) {
		return fmt.Errorf("table file not found: %s", s.Table)
	}
	if s.Buffer < 0 {
		return fmt.Errorf("buffer must be non-negative")
	}
	if s.Chunk < 0 {
		return fmt.Errorf("chunk must be non-negative")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		if step.Send == "" {
			return fmt.Errorf("steps[%d]: send is required", i)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertReasonCount:
		if a.Reason == "" {
			return fmt.Errorf("assertions[%d]: reason is required for reason_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertCommandCount:
		if a.Command == "" {
			return fmt.Errorf("assertions[%d]: command is required for command_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertCommandOrder:
		if len(a.Commands) == 0 {
			return fmt.Errorf("assertions[%d]: commands list is required for command_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
