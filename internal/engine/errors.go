package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("engine: invalid config")

// Errors returned by Binding implementations. The engine only reports
// them as ERROR on the wire; hosts and tests can inspect them directly.
var (
	ErrEmptyValue   = errors.New("engine: empty value")
	ErrSyntax       = errors.New("engine: invalid value syntax")
	ErrRange        = errors.New("engine: value out of range")
	ErrValueTooLong = errors.New("engine: value too long")
	ErrShortBuffer  = errors.New("engine: output buffer too small")
)

// ConfigError reports a construction-time contract violation.
//
// These are programming errors in the command table or buffer setup; they
// are checked once in New and never tolerated at runtime.
type ConfigError struct {
	// Index is the offending command slot, or -1 when the error is not
	// tied to a single command.
	Index   int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%v: command[%d]: %s", ErrInvalidConfig, e.Index, e.Message)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidConfig, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// Reason classifies how an exchange ended. Every non-None reason is sent
// as "\nERROR\n"; the distinction is only visible to an Observer.
type Reason uint8

const (
	ReasonNone Reason = iota
	// ReasonPrefix: the exchange did not start with the AT prefix.
	ReasonPrefix
	// ReasonEmptyName: '?' or '=' arrived before any name character.
	ReasonEmptyName
	// ReasonInvalidChar: a byte outside the name alphabet.
	ReasonInvalidChar
	// ReasonAmbiguous: the name abbreviates more than one command.
	ReasonAmbiguous
	// ReasonNotFound: no command matches the name.
	ReasonNotFound
	// ReasonUnsupported: the command lacks the requested capability.
	ReasonUnsupported
	// ReasonCallback: a callback returned an error or a bad length.
	ReasonCallback
	// ReasonOverflow: the write payload exceeded the scratch buffer.
	ReasonOverflow
	// ReasonBadValue: a bound variable rejected the payload.
	ReasonBadValue
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonPrefix:
		return "prefix"
	case ReasonEmptyName:
		return "empty_name"
	case ReasonInvalidChar:
		return "invalid_char"
	case ReasonAmbiguous:
		return "ambiguous"
	case ReasonNotFound:
		return "not_found"
	case ReasonUnsupported:
		return "unsupported"
	case ReasonCallback:
		return "callback"
	case ReasonOverflow:
		return "overflow"
	case ReasonBadValue:
		return "bad_value"
	default:
		return "unknown"
	}
}
