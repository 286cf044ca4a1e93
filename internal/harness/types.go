package harness

// TraceEvent is one completed exchange as seen by the engine observer.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Command string `json:"command,omitempty"`
	Op      string `json:"op"`
	OK      bool   `json:"ok"`
	Reason  string `json:"reason"`
}

// StepResult is the reply observed for one scripted send.
type StepResult struct {
	Send  string `json:"send"`
	Reply string `json:"reply"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every reply, assertion and value matched.
	Pass bool `json:"pass"`

	Steps []StepResult `json:"steps"`
	Trace []TraceEvent `json:"trace"`

	// Values holds every variable's rendered value after the last step.
	Values map[string]string `json:"values"`

	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepResult{},
		Trace:  []TraceEvent{},
		Values: map[string]string{},
		Errors: []string{},
	}
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
