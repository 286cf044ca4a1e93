package device

import (
	"fmt"

	"github.com/roach88/atengine/internal/engine"
	"github.com/roach88/atengine/internal/ir"
)

// variable is the storage behind one bound command.
type variable struct {
	name    string
	spec    ir.VarSpec
	i       int64
	u       uint64
	bytes   []byte
	n       int
	binding engine.Binding
}

func newVariable(name string, spec ir.VarSpec) (*variable, error) {
	v := &variable{name: name, spec: spec}

	switch spec.Type {
	case ir.VarInt:
		v.binding = engine.IntVar{Target: &v.i, Bits: spec.Bits}
	case ir.VarUint:
		v.binding = engine.UintVar{Target: &v.u, Bits: spec.Bits}
	case ir.VarHex:
		v.binding = engine.HexVar{Target: &v.u, Bits: spec.Bits}
	case ir.VarBuf:
		v.bytes = make([]byte, spec.Size)
		v.binding = engine.BufVar{Target: v.bytes, Len: &v.n}
	case ir.VarString:
		v.bytes = make([]byte, spec.Size)
		v.binding = engine.StringVar{Target: v.bytes, Len: &v.n}
	default:
		return nil, fmt.Errorf("unknown variable type %q", spec.Type)
	}

	if spec.Default != "" {
		if err := v.binding.Parse([]byte(spec.Default)); err != nil {
			return nil, fmt.Errorf("default %q: %w", spec.Default, err)
		}
	}
	return v, nil
}

// restore puts the variable back to its declared default, or the zero
// value when none is declared.
func (v *variable) restore() {
	v.i, v.u, v.n = 0, 0, 0
	clear(v.bytes)
	if v.spec.Default != "" {
		// Already parsed successfully in newVariable.
		_ = v.binding.Parse([]byte(v.spec.Default))
	}
}

// wireSize is the longest wire form of a variable: the largest payload
// a write can carry and the largest value a read can render.
func wireSize(spec ir.VarSpec) int {
	switch spec.Type {
	case ir.VarInt, ir.VarUint:
		return 20
	case ir.VarHex:
		bits := spec.Bits
		if bits == 0 {
			bits = 64
		}
		return 2 + bits/4
	case ir.VarBuf:
		return 2 * spec.Size
	case ir.VarString:
		// Every byte may need an escape, plus the quotes.
		return 2*spec.Size + 2
	default:
		return 0
	}
}
