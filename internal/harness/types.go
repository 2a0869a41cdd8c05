package harness

import "github.com/tallybook/tally/internal/reorder"

// TraceEvent records what one step did.
type TraceEvent struct {
	Step      int              `json:"step"`
	Op        string           `json:"op"`
	ID        string           `json:"id,omitempty"`
	Group     string           `json:"group"`
	Strategy  reorder.Strategy `json:"strategy"`
	Position  float64          `json:"position,omitempty"`
	Exhausted bool             `json:"exhausted,omitempty"`
	Updated   int              `json:"updated,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation held and no step failed.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Order is the final display order of every non-empty group.
	Order map[string][]string `json:"order"`

	// Positions holds the final position of every visible item.
	Positions map[string]float64 `json:"positions"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []TraceEvent{},
		Errors:    []string{},
		Order:     make(map[string][]string),
		Positions: make(map[string]float64),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
