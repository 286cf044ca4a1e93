package ir

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface for the values that may appear in canonical
// table encodings. Floats and null are not representable.
type Value interface {
	irValue()
}

// String is a string value.
type String string

func (String) irValue() {}

// Int is an integer value.
type Int int64

func (Int) irValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) irValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) irValue() {}

// Object maps keys to values. Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) irValue() {}

// SortedKeys returns keys ordered by UTF-16 code units (RFC 8785).
// Plain string comparison orders by UTF-8 and differs above the BMP.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Canonical converts the spec to its canonical value form. Optional fields are
// omitted when empty so adding a field later does not change old hashes.
func (c CommandSpec) Canonical() Object {
	obj := Object{"name": String(c.Name)}
	if c.Description != "" {
		obj["description"] = String(c.Description)
	}
	if c.Exec != "" {
		obj["exec"] = String(c.Exec)
	}
	if c.Value != "" {
		obj["value"] = String(c.Value)
	}
	if c.ReadOnly {
		obj["read_only"] = Bool(true)
	}
	if c.Var != nil {
		v := Object{"type": String(c.Var.Type)}
		if c.Var.Bits != 0 {
			v["bits"] = Int(c.Var.Bits)
		}
		if c.Var.Size != 0 {
			v["size"] = Int(c.Var.Size)
		}
		if c.Var.Default != "" {
			v["default"] = String(c.Var.Default)
		}
		obj["var"] = v
	}
	return obj
}

// Canonical converts the table to its canonical value form.
func (t *TableSpec) Canonical() Object {
	cmds := make(Array, len(t.Commands))
	for i, c := range t.Commands {
		cmds[i] = c.Canonical()
	}
	return Object{
		"name":     String(t.Name),
		"commands": cmds,
	}
}
