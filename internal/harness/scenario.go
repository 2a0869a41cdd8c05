package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tallybook/tally/internal/reorder"
)

// Scenario defines a reordering scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Kind selects the list under test: account, category or subcategory.
	Kind reorder.Kind `yaml:"kind"`

	// MaxDepth bounds the position search. Zero means the default.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// Setup lists the items present before the first step.
	Setup []SetupItem `yaml:"setup"`

	// Steps run in order, each in its own transaction.
	Steps []Step `yaml:"steps"`

	// Expect is checked after the last step.
	Expect Expect `yaml:"expect"`
}

// SetupItem is an item written verbatim before the scenario runs.
type SetupItem struct {
	ID       string  `yaml:"id"`
	Group    string  `yaml:"group"`
	Position float64 `yaml:"position"`
	Archived bool    `yaml:"archived,omitempty"`
}

// Step is one operation. Exactly one field must be set.
type Step struct {
	Move   *MoveStep   `yaml:"move,omitempty"`
	Edge   *EdgeStep   `yaml:"edge,omitempty"`
	Insert *InsertStep `yaml:"insert,omitempty"`
	Heal   *HealStep   `yaml:"heal,omitempty"`
}

// MoveStep places ID right before or after Target.
type MoveStep struct {
	ID        string `yaml:"id"`
	Target    string `yaml:"target"`
	Placement string `yaml:"placement"`
}

// EdgeStep moves ID to the first or last slot of Group, or of its own group
// when Group is empty.
type EdgeStep struct {
	ID    string `yaml:"id"`
	Group string `yaml:"group,omitempty"`
	Edge  string `yaml:"edge"`
}

// InsertStep creates a new item at an edge of Group.
type InsertStep struct {
	ID    string `yaml:"id"`
	Group string `yaml:"group"`
	Edge  string `yaml:"edge"`
}

// HealStep renumbers Group if it is unhealthy.
type HealStep struct {
	Group string `yaml:"group"`
}

// Expect holds the assertions checked after all steps.
type Expect struct {
	// Order maps a group to its IDs in display order. Groups not listed are
	// not checked.
	Order map[string][]string `yaml:"order,omitempty"`

	// Strategies lists the expected strategy of every step.
	Strategies []reorder.Strategy `yaml:"strategies,omitempty"`

	// Positions maps an ID to its exact final position.
	Positions map[string]float64 `yaml:"positions,omitempty"`
}

// Op returns the name of the step's operation.
func (s Step) Op() string {
	switch {
	case s.Move != nil:
		return "move"
	case s.Edge != nil:
		return "edge"
	case s.Insert != nil:
		return "insert"
	case s.Heal != nil:
		return "heal"
	}
	return ""
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	switch s.Kind {
	case reorder.KindAccount, reorder.KindCategory, reorder.KindSubcategory:
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", s.Kind)
	}
	if s.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	seen := make(map[string]bool)
	for i, it := range s.Setup {
		if it.ID == "" {
			return fmt.Errorf("setup[%d]: id is required", i)
		}
		if it.Group == "" {
			return fmt.Errorf("setup[%d]: group is required", i)
		}
		if seen[it.ID] {
			return fmt.Errorf("setup[%d]: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = true
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	if n := len(s.Expect.Strategies); n > 0 && n != len(s.Steps) {
		return fmt.Errorf("expect.strategies: got %d entries for %d steps", n, len(s.Steps))
	}
	for i, st := range s.Expect.Strategies {
		switch st {
		case reorder.StrategySkip, reorder.StrategySwap, reorder.StrategySearch, reorder.StrategyRenumber:
		default:
			return fmt.Errorf("expect.strategies[%d]: unknown strategy %q", i, st)
		}
	}
	return nil
}

// validateStep validates a single step based on its operation.
func validateStep(index int, step Step) error {
	set := 0
	for _, ok := range []bool{step.Move != nil, step.Edge != nil, step.Insert != nil, step.Heal != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of move, edge, insert or heal is required", index)
	}

	switch {
	case step.Move != nil:
		if step.Move.ID == "" || step.Move.Target == "" {
			return fmt.Errorf("steps[%d]: move needs id and target", index)
		}
		if _, err := reorder.ParsePlacement(step.Move.Placement); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case step.Edge != nil:
		if step.Edge.ID == "" {
			return fmt.Errorf("steps[%d]: edge needs id", index)
		}
		if _, err := reorder.ParseEdge(step.Edge.Edge); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case step.Insert != nil:
		if step.Insert.ID == "" || step.Insert.Group == "" {
			return fmt.Errorf("steps[%d]: insert needs id and group", index)
		}
		if _, err := reorder.ParseEdge(step.Insert.Edge); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case step.Heal != nil:
		if step.Heal.Group == "" {
			return fmt.Errorf("steps[%d]: heal needs group", index)
		}
	}
	return nil
}
