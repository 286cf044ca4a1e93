// Package device simulates a peripheral described by an ir.TableSpec.
//
// A Device owns typed storage for every variable in the table and hands
// out engine command tables whose callbacks operate on that storage. One
// Device may back several engines at once (one per connection); callbacks
// serialize on a single mutex.
package device

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/atengine/internal/engine"
	"github.com/roach88/atengine/internal/ir"
)

// ErrExecFailed is returned by commands declared with exec "fail".
var ErrExecFailed = errors.New("device: command failed")

// Option configures a Device.
type Option func(*Device)

// WithLogger logs variable writes and resets at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) { d.log = l }
}

// Device is a simulated peripheral.
type Device struct {
	mu   sync.Mutex
	spec *ir.TableSpec
	log  *slog.Logger

	vars     map[string]*variable
	order    []*variable
	commands []engine.Command
}

// New builds a device from spec. The spec should already have passed
// compiler.Validate; New only reports what it cannot build.
func New(spec *ir.TableSpec, opts ...Option) (*Device, error) {
	d := &Device{
		spec: spec,
		vars: make(map[string]*variable),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.commands = make([]engine.Command, len(spec.Commands))
	for i := range spec.Commands {
		cs := &spec.Commands[i]
		cmd := engine.Command{Name: cs.Name}

		if cs.Exec != "" {
			exec, err := d.execFunc(cs.Exec)
			if err != nil {
				return nil, fmt.Errorf("command %s: %w", cs.Name, err)
			}
			cmd.Execute = exec
		}

		if cs.Value != "" {
			cmd.Read = constant(cs.Value)
		}

		if cs.Var != nil {
			v, err := newVariable(cs.Name, *cs.Var)
			if err != nil {
				return nil, fmt.Errorf("command %s: %w", cs.Name, err)
			}
			d.vars[cs.Name] = v
			d.order = append(d.order, v)

			b := lockedBinding{mu: &d.mu, b: v.binding}
			cmd.Read = engine.ReadVar(b)
			if !cs.ReadOnly {
				cmd.Var = b
				cmd.Write = d.notifyWrite
			}
		}

		d.commands[i] = cmd
	}
	return d, nil
}

// Spec returns the table the device was built from.
func (d *Device) Spec() *ir.TableSpec { return d.spec }

// Commands returns a fresh command table for one engine. The callbacks
// share the device's storage.
func (d *Device) Commands() []engine.Command {
	out := make([]engine.Command, len(d.commands))
	copy(out, d.commands)
	return out
}

// MinBuffer returns the smallest scratch buffer that can hold the match
// state of every command and the largest payload or reply any command
// produces.
func (d *Device) MinBuffer() int {
	n := (len(d.commands) + 3) / 4
	for _, cs := range d.spec.Commands {
		if len(cs.Value) > n {
			n = len(cs.Value)
		}
		if cs.Var != nil {
			if w := wireSize(*cs.Var); w > n {
				n = w
			}
		}
	}
	return n
}

// Value renders the current value of a variable in wire form.
func (d *Device) Value(name string) (string, bool) {
	v, ok := d.vars[name]
	if !ok {
		return "", false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	buf := make([]byte, wireSize(v.spec))
	n, err := v.binding.Format(buf)
	if err != nil {
		return "", false
	}
	return string(buf[:n]), true
}

// Values renders every variable, keyed by command name.
func (d *Device) Values() map[string]string {
	out := make(map[string]string, len(d.order))
	for _, v := range d.order {
		if s, ok := d.Value(v.name); ok {
			out[v.name] = s
		}
	}
	return out
}

// Reset restores every variable to its declared default.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetLocked()
}

func (d *Device) resetLocked() {
	for _, v := range d.order {
		v.restore()
	}
	if d.log != nil {
		d.log.Debug("device reset", "table", d.spec.Name)
	}
}

func (d *Device) execFunc(kind string) (engine.ExecuteFunc, error) {
	switch kind {
	case ir.ExecOK:
		return func(*engine.Command) error { return nil }, nil
	case ir.ExecFail:
		return func(*engine.Command) error { return ErrExecFailed }, nil
	case ir.ExecReset:
		return func(*engine.Command) error {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.resetLocked()
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown exec kind %q", kind)
	}
}

// notifyWrite runs after the bound variable accepted a payload.
func (d *Device) notifyWrite(cmd *engine.Command, data []byte) error {
	if d.log != nil {
		d.log.Debug("variable written", "command", cmd.Name, "payload", string(data))
	}
	return nil
}

func constant(s string) engine.ReadFunc {
	return func(_ *engine.Command, out []byte) (int, error) {
		if len(out) < len(s) {
			return 0, engine.ErrShortBuffer
		}
		return copy(out, s), nil
	}
}

// lockedBinding serializes access to a variable shared by several engines.
type lockedBinding struct {
	mu *sync.Mutex
	b  engine.Binding
}

func (l lockedBinding) Parse(data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Parse(data)
}

func (l lockedBinding) Format(out []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Format(out)
}
