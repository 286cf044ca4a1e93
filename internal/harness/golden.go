package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/atengine/internal/ir"
)

// Transcript renders a result as canonical JSON followed by a newline.
// Keys are sorted, so the bytes are stable across runs.
func Transcript(name string, result *Result) ([]byte, error) {
	steps := make(ir.Array, len(result.Steps))
	for i, s := range result.Steps {
		steps[i] = ir.Object{
			"send":  ir.String(s.Send),
			"reply": ir.String(s.Reply),
		}
	}

	trace := make(ir.Array, len(result.Trace))
	for i, ev := range result.Trace {
		obj := ir.Object{
			"seq":    ir.Int(ev.Seq),
			"op":     ir.String(ev.Op),
			"ok":     ir.Bool(ev.OK),
			"reason": ir.String(ev.Reason),
		}
		if ev.Command != "" {
			obj["command"] = ir.String(ev.Command)
		}
		trace[i] = obj
	}

	values := ir.Object{}
	for k, v := range result.Values {
		values[k] = ir.String(v)
	}

	data, err := ir.MarshalCanonical(ir.Object{
		"scenario_name": ir.String(name),
		"steps":         steps,
		"trace":         trace,
		"values":        values,
	})
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// RunWithGolden executes a scenario and compares its transcript against
// testdata/golden/<scenario.Name>.golden. Regenerate with -update.
//
// Reply and assertion mismatches fail t as well, so a golden file is
// never accepted for a scenario that does not pass on its own.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Transcript(name, result)
	if err != nil {
		return err
	}
	newGoldie(t).Assert(t, name, data)
	return nil
}
