package compiler

import (
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/atengine/internal/ir"
)

// CompileTable parses a CUE value into a TableSpec.
//
// The CUE value should be the table struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`table: modem: { command: "+CGMI": { value: "ACME" } }`)
//	spec, err := CompileTable(v.LookupPath(cue.ParsePath("table.modem")))
//
// Commands keep their declaration order; the engine breaks abbreviation
// ties by table position.
func CompileTable(v cue.Value) (*ir.TableSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.TableSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].Unquoted()
	}

	cmdsVal := v.LookupPath(cue.ParsePath("command"))
	if !cmdsVal.Exists() {
		return nil, &CompileError{
			Field:   "command",
			Message: "at least one command is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := cmdsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		cmd, err := parseCommand(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Commands = append(spec.Commands, cmd)
	}

	if len(spec.Commands) == 0 {
		return nil, &CompileError{
			Field:   "command",
			Message: "at least one command is required",
			Pos:     cmdsVal.Pos(),
		}
	}
	return spec, nil
}

// CompileFile compiles every table declared in a CUE file, ordered by name.
func CompileFile(path string) ([]ir.TableSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "no table declared",
			Pos:     v.Pos(),
		}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var tables []ir.TableSpec
	for iter.Next() {
		spec, err := CompileTable(iter.Value())
		if err != nil {
			return nil, err
		}
		tables = append(tables, *spec)
	}
	sort.SliceStable(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

func parseCommand(name string, v cue.Value) (ir.CommandSpec, error) {
	cmd := ir.CommandSpec{Name: name}
	field := "command." + name

	var err error
	if cmd.Description, err = optionalString(v, "description"); err != nil {
		return cmd, err
	}
	if cmd.Exec, err = optionalString(v, "exec"); err != nil {
		return cmd, err
	}
	if cmd.Value, err = optionalString(v, "value"); err != nil {
		return cmd, err
	}

	roVal := v.LookupPath(cue.ParsePath("read_only"))
	if roVal.Exists() {
		if cmd.ReadOnly, err = roVal.Bool(); err != nil {
			return cmd, formatCUEError(err)
		}
	}

	varVal := v.LookupPath(cue.ParsePath("var"))
	if varVal.Exists() {
		vs, err := parseVar(field+".var", varVal)
		if err != nil {
			return cmd, err
		}
		cmd.Var = vs
	}

	return cmd, nil
}

func parseVar(field string, v cue.Value) (*ir.VarSpec, error) {
	vs := &ir.VarSpec{}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return nil, &CompileError{
			Field:   field + ".type",
			Message: "variable type is required",
			Pos:     v.Pos(),
		}
	}
	typ, err := typeVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	vs.Type = typ

	if vs.Bits, err = optionalInt(v, "bits"); err != nil {
		return nil, err
	}
	if vs.Size, err = optionalInt(v, "size"); err != nil {
		return nil, err
	}

	// Numeric defaults may be written as CUE ints for convenience.
	defVal := v.LookupPath(cue.ParsePath("default"))
	if defVal.Exists() {
		switch defVal.IncompleteKind() {
		case cue.IntKind:
			n, err := defVal.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			vs.Default = fmt.Sprintf("%d", n)
		case cue.StringKind:
			if vs.Default, err = defVal.String(); err != nil {
				return nil, formatCUEError(err)
			}
		case cue.FloatKind, cue.NumberKind:
			return nil, &CompileError{
				Field:   field + ".default",
				Message: "float defaults are forbidden - use int instead",
				Pos:     defVal.Pos(),
			}
		default:
			return nil, &CompileError{
				Field:   field + ".default",
				Message: fmt.Sprintf("unsupported default kind: %v", defVal.IncompleteKind()),
				Pos:     defVal.Pos(),
			}
		}
	}

	return vs, nil
}

func optionalString(v cue.Value, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalInt(v cue.Value, path string) (int, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return 0, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
