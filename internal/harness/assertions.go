package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s %s\n", ev.Seq, displayCommand(ev.Command), ev.Op, ev.Reason)
	}

	return buf.String()
}

func displayCommand(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(trace []TraceEvent, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertReasonCount:
			err = assertReasonCount(trace, a)
		case AssertCommandCount:
			err = assertCommandCount(trace, a)
		case AssertCommandOrder:
			err = assertCommandOrder(trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertReasonCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Reason == a.Reason {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertReasonCount,
			Expected: fmt.Sprintf("%d exchanges with reason %s", a.Count, a.Reason),
			Actual:   fmt.Sprintf("%d exchanges", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertCommandCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Command == a.Command {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertCommandCount,
			Expected: fmt.Sprintf("%d exchanges resolved to %s", a.Count, a.Command),
			Actual:   fmt.Sprintf("%d exchanges", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertCommandOrder checks that the commands were first resolved in the
// given order. Other exchanges may come in between.
func assertCommandOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, ev := range trace {
		if ev.Command != "" && positions[ev.Command] == 0 {
			positions[ev.Command] = i + 1
		}
	}

	for _, cmd := range a.Commands {
		if positions[cmd] == 0 {
			return &AssertionError{
				Type:     AssertCommandOrder,
				Expected: fmt.Sprintf("all commands present: %v", a.Commands),
				Actual:   fmt.Sprintf("missing command: %s", cmd),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Commands); i++ {
		prev, curr := a.Commands[i-1], a.Commands[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertCommandOrder,
				Expected: fmt.Sprintf("commands in order: %v", a.Commands),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}
