package harness

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/atengine/internal/compiler"
	"github.com/roach88/atengine/internal/device"
	"github.com/roach88/atengine/internal/engine"
	"github.com/roach88/atengine/internal/host"
	"github.com/roach88/atengine/internal/ir"
	"github.com/roach88/atengine/internal/testutil"
)

// stepLimit bounds Drive per scripted send. Each input byte costs at most
// one matcher pass over the table plus the reply bytes, so this is far
// beyond anything a terminating scenario needs.
const stepLimit = 1 << 20

// recorder stamps exchanges with a deterministic logical clock.
type recorder struct {
	clock *host.Clock
	trace []TraceEvent
}

func (r *recorder) Exchange(ex engine.Exchange) {
	r.trace = append(r.trace, TraceEvent{
		Seq:     r.clock.Next(),
		Command: ex.Command,
		Op:      ex.Op.String(),
		OK:      ex.OK,
		Reason:  ex.Reason.String(),
	})
}

// LoadTable compiles and validates the scenario's table.
func LoadTable(scenario *Scenario) (*ir.TableSpec, error) {
	tables, err := compiler.CompileFile(scenario.Table)
	if err != nil {
		return nil, err
	}

	spec, err := selectTable(tables, scenario.TableName)
	if err != nil {
		return nil, err
	}

	if errs := compiler.Validate(spec); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("table %s is invalid:\n  %s", spec.Name, strings.Join(msgs, "\n  "))
	}
	return spec, nil
}

func selectTable(tables []ir.TableSpec, name string) (*ir.TableSpec, error) {
	if name == "" {
		if len(tables) != 1 {
			return nil, fmt.Errorf("file declares %d tables; set table_name", len(tables))
		}
		return &tables[0], nil
	}
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i], nil
		}
	}
	return nil, fmt.Errorf("table %q not declared", name)
}

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh device and engine, so scenarios never share
// variable state. Errors are returned only when the scenario cannot run
// at all; mismatches are reported through Result.
func Run(scenario *Scenario) (*Result, error) {
	spec, err := LoadTable(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load table: %w", err)
	}

	dev, err := device.New(spec, device.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		return nil, fmt.Errorf("failed to build device: %w", err)
	}

	size := scenario.Buffer
	if size == 0 {
		size = dev.MinBuffer()
	}

	tr := testutil.NewScriptTransport("")
	tr.Chunk = scenario.Chunk

	rec := &recorder{clock: host.NewClock()}
	e, err := engine.New(engine.Config{
		Commands: dev.Commands(),
		Buffer:   make([]byte, size),
		Observer: rec,
	}, tr)
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		tr.Feed(step.Send)
		if calls := testutil.Drive(e, tr, stepLimit); calls >= stepLimit {
			return nil, fmt.Errorf("steps[%d]: engine did not settle after %d steps", i, calls)
		}
		reply := tr.TakeOutput()

		result.Steps = append(result.Steps, StepResult{Send: step.Send, Reply: reply})
		if reply != step.Expect {
			result.AddError(fmt.Sprintf("steps[%d]: sent %q: got %q, want %q", i, step.Send, reply, step.Expect))
		}
	}

	result.Trace = append(result.Trace, rec.trace...)
	result.Values = dev.Values()

	names := make([]string, 0, len(scenario.Values))
	for name := range scenario.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		want := scenario.Values[name]
		got, ok := dev.Value(name)
		switch {
		case !ok:
			result.AddError(fmt.Sprintf("values: %s is not a variable", name))
		case got != want:
			result.AddError(fmt.Sprintf("values: %s = %q, want %q", name, got, want))
		}
	}

	for _, msg := range EvaluateAssertions(result.Trace, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}
