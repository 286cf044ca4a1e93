package ir

// TableSpec is a compiled command table.
type TableSpec struct {
	Name     string        `json:"name"`
	Commands []CommandSpec `json:"commands"` // table order, first entry wins ties
}

// CommandSpec describes one command and the capabilities it offers.
type CommandSpec struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Exec        string   `json:"exec,omitempty"`  // "ok", "fail" or "reset"
	Value       string   `json:"value,omitempty"` // constant read reply
	Var         *VarSpec `json:"var,omitempty"`
	ReadOnly    bool     `json:"read_only,omitempty"`
}

// VarSpec binds a typed variable to a command.
type VarSpec struct {
	Type    string `json:"type"`
	Bits    int    `json:"bits,omitempty"` // int, uint, hex
	Size    int    `json:"size,omitempty"` // buf, string
	Default string `json:"default,omitempty"`
}

// Exec kinds.
const (
	ExecOK    = "ok"
	ExecFail  = "fail"
	ExecReset = "reset"
)

// Variable types.
const (
	VarInt    = "int"
	VarUint   = "uint"
	VarHex    = "hex"
	VarBuf    = "buf"
	VarString = "string"
)

// ValidExecKinds defines allowed exec values.
var ValidExecKinds = map[string]bool{
	ExecOK:    true,
	ExecFail:  true,
	ExecReset: true,
}

// ValidVarTypes defines allowed var.type values.
var ValidVarTypes = map[string]bool{
	VarInt:    true,
	VarUint:   true,
	VarHex:    true,
	VarBuf:    true,
	VarString: true,
}

// ValidBits defines allowed var.bits values; 0 means 64.
var ValidBits = map[int]bool{0: true, 8: true, 16: true, 32: true, 64: true}

// SizedVar reports whether the type stores bytes and needs a Size.
func SizedVar(typ string) bool {
	return typ == VarBuf || typ == VarString
}

// CanExecute reports whether the command answers AT<NAME>.
func (c CommandSpec) CanExecute() bool { return c.Exec != "" }

// CanRead reports whether the command answers AT<NAME>?.
func (c CommandSpec) CanRead() bool { return c.Value != "" || c.Var != nil }

// CanWrite reports whether the command answers AT<NAME>=<PAYLOAD>.
func (c CommandSpec) CanWrite() bool { return c.Var != nil && !c.ReadOnly }

// Lookup returns the command with the given name.
func (t *TableSpec) Lookup(name string) (*CommandSpec, bool) {
	for i := range t.Commands {
		if t.Commands[i].Name == name {
			return &t.Commands[i], true
		}
	}
	return nil, false
}
