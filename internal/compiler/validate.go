package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/atengine/internal/engine"
	"github.com/roach88/atengine/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrNoCommands     = "E101" // at least one command required
	ErrInvalidName    = "E102" // name empty or outside [A-Z0-9+]
	ErrDuplicateName  = "E103" // duplicate command name
	ErrNoCapability   = "E104" // command offers no operation
	ErrInvalidExec    = "E105" // unknown exec kind
	ErrInvalidVarType = "E106" // unknown var.type
	ErrInvalidBits    = "E107" // bits outside {0,8,16,32,64} or on a sized type
	ErrInvalidSize    = "E108" // size missing on buf/string or set on a numeric type
	ErrInvalidDefault = "E109" // default does not parse under var.type
	ErrValueAndVar    = "E110" // value and var are mutually exclusive
	ErrReadOnlyNoVar  = "E111" // read_only without var
	ErrTableNameEmpty = "E112" // table needs a name
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled table against the engine's table contract
// and the variable typing rules. All errors are returned, not just the
// first.
func Validate(spec *ir.TableSpec) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(spec.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "table name is required",
			Code:    ErrTableNameEmpty,
		})
	}

	if len(spec.Commands) == 0 {
		errs = append(errs, ValidationError{
			Field:   "commands",
			Message: "at least one command is required",
			Code:    ErrNoCommands,
		})
	}

	seen := make(map[string]int)
	for i, cmd := range spec.Commands {
		field := fmt.Sprintf("commands[%d]", i)

		if !engine.ValidName(cmd.Name) {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("invalid command name %q: use only A-Z, 0-9 and '+'", cmd.Name),
				Code:    ErrInvalidName,
			})
		}

		key := strings.ToUpper(cmd.Name)
		if first, dup := seen[key]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate command name %q (first at commands[%d])", cmd.Name, first),
				Code:    ErrDuplicateName,
			})
		} else {
			seen[key] = i
		}

		errs = append(errs, validateCommand(field, cmd)...)
	}

	return errs
}

func validateCommand(field string, cmd ir.CommandSpec) []ValidationError {
	var errs []ValidationError

	if cmd.Exec != "" && !ir.ValidExecKinds[cmd.Exec] {
		errs = append(errs, ValidationError{
			Field:   field + ".exec",
			Message: fmt.Sprintf("invalid exec %q, must be \"ok\", \"fail\", or \"reset\"", cmd.Exec),
			Code:    ErrInvalidExec,
		})
	}

	if cmd.Value != "" && cmd.Var != nil {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: "value and var are mutually exclusive",
			Code:    ErrValueAndVar,
		})
	}

	if cmd.ReadOnly && cmd.Var == nil {
		errs = append(errs, ValidationError{
			Field:   field + ".read_only",
			Message: "read_only requires var",
			Code:    ErrReadOnlyNoVar,
		})
	}

	if !cmd.CanExecute() && !cmd.CanRead() && !cmd.CanWrite() {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("command %q declares no exec, value or var", cmd.Name),
			Code:    ErrNoCapability,
		})
	}

	if cmd.Var != nil {
		errs = append(errs, validateVar(field+".var", cmd.Var)...)
	}
	return errs
}

func validateVar(field string, v *ir.VarSpec) []ValidationError {
	var errs []ValidationError

	if !ir.ValidVarTypes[v.Type] {
		return append(errs, ValidationError{
			Field:   field + ".type",
			Message: fmt.Sprintf("invalid type %q, must be one of int, uint, hex, buf, string", v.Type),
			Code:    ErrInvalidVarType,
		})
	}

	if ir.SizedVar(v.Type) {
		if v.Bits != 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".bits",
				Message: fmt.Sprintf("bits does not apply to %s variables", v.Type),
				Code:    ErrInvalidBits,
			})
		}
		if v.Size <= 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".size",
				Message: fmt.Sprintf("%s variables need a positive size", v.Type),
				Code:    ErrInvalidSize,
			})
		}
	} else {
		if !ir.ValidBits[v.Bits] {
			errs = append(errs, ValidationError{
				Field:   field + ".bits",
				Message: fmt.Sprintf("invalid bits %d, must be 8, 16, 32 or 64", v.Bits),
				Code:    ErrInvalidBits,
			})
		}
		if v.Size != 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".size",
				Message: fmt.Sprintf("size does not apply to %s variables", v.Type),
				Code:    ErrInvalidSize,
			})
		}
	}

	if len(errs) == 0 && v.Default != "" {
		if err := checkDefault(v); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".default",
				Message: fmt.Sprintf("default %q: %v", v.Default, err),
				Code:    ErrInvalidDefault,
			})
		}
	}
	return errs
}

// checkDefault parses the default into throwaway storage using the same
// binding the device will use at runtime.
func checkDefault(v *ir.VarSpec) error {
	var b engine.Binding
	switch v.Type {
	case ir.VarInt:
		b = engine.IntVar{Target: new(int64), Bits: v.Bits}
	case ir.VarUint:
		b = engine.UintVar{Target: new(uint64), Bits: v.Bits}
	case ir.VarHex:
		b = engine.HexVar{Target: new(uint64), Bits: v.Bits}
	case ir.VarBuf:
		b = engine.BufVar{Target: make([]byte, v.Size), Len: new(int)}
	case ir.VarString:
		b = engine.StringVar{Target: make([]byte, v.Size), Len: new(int)}
	default:
		return fmt.Errorf("unknown type %q", v.Type)
	}
	return b.Parse([]byte(v.Default))
}
