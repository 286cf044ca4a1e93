package engine

// Operation is the form of an exchange, selected by the syntax that
// terminates the command name.
type Operation uint8

const (
	// OpExecute is a bare command: "AT<NAME>\n".
	OpExecute Operation = iota
	// OpRead queries a value: "AT<NAME>?\n".
	OpRead
	// OpWrite sets a value: "AT<NAME>=<payload>\n".
	OpWrite
)

func (op Operation) String() string {
	switch op {
	case OpExecute:
		return "execute"
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return "unknown"
	}
}

// ExecuteFunc runs a bare command. A non-nil error is reported as ERROR.
type ExecuteFunc func(cmd *Command) error

// ReadFunc renders the command's value into out and returns the number of
// bytes written. len(out) is the full scratch capacity. The bytes are sent
// verbatim between "<NAME>=" and the trailing newline.
type ReadFunc func(cmd *Command, out []byte) (int, error)

// WriteFunc receives the raw payload that followed '='. data aliases the
// scratch buffer and is only valid for the duration of the call.
type WriteFunc func(cmd *Command, data []byte) error

// Command describes one entry of the command table.
//
// Every capability is optional. A nil capability is not an error in the
// table; the engine answers ERROR when that operation is requested.
type Command struct {
	// Name is matched case-insensitively. Allowed characters: A-Z, 0-9, '+'.
	Name string

	Execute ExecuteFunc
	Read    ReadFunc
	Write   WriteFunc

	// Var, when set, receives write payloads as a typed value. Write is
	// then called afterwards (if set) as a change notification.
	Var Binding
}

// Supports reports whether the command can serve op.
func (c *Command) Supports(op Operation) bool {
	switch op {
	case OpExecute:
		return c.Execute != nil
	case OpRead:
		return c.Read != nil
	case OpWrite:
		return c.Write != nil || c.Var != nil
	default:
		return false
	}
}

// ValidName reports whether name is non-empty and made only of characters
// the name accumulator accepts.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isNameChar(name[i]) {
			return false
		}
	}
	return true
}

func isNameChar(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '+'
}

func toUpper(ch byte) byte {
	if ch >= 'a' && ch <= 'z' {
		return ch - ('a' - 'A')
	}
	return ch
}
