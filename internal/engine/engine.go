package engine

// Prefix letters every exchange starts with, matched case-insensitively.
const (
	prefixFirst  = 'A'
	prefixSecond = 'T'
)

// Acknowledgements written at the end of every exchange.
const (
	ackOK    = "\nOK\n"
	ackError = "\nERROR\n"
)

type state uint8

const (
	statePrefix state = iota
	stateName
	stateMatch
	stateAck
	stateResolve
	stateFound
	stateNotFound
	stateArgs
	stateError
)

func (s state) String() string {
	switch s {
	case statePrefix:
		return "prefix"
	case stateName:
		return "name"
	case stateMatch:
		return "match"
	case stateAck:
		return "ack"
	case stateResolve:
		return "resolve"
	case stateFound:
		return "found"
	case stateNotFound:
		return "not_found"
	case stateArgs:
		return "args"
	case stateError:
		return "error"
	default:
		return "unknown"
	}
}

type prefixState uint8

const (
	waitFirst prefixState = iota
	waitSecond
)

// Exchange summarizes one completed request/response cycle.
type Exchange struct {
	// Command is the resolved command name, empty when none was resolved.
	Command string
	Op      Operation
	OK      bool
	Reason  Reason
}

// Observer is notified once per completed exchange, right before the
// engine resets. It runs on the goroutine calling Step.
type Observer interface {
	Exchange(ex Exchange)
}

// Config is the static setup of an Engine.
type Config struct {
	// Commands is the command table. It is referenced, not copied, and must
	// not change while the engine is alive.
	Commands []Command

	// Buffer is the scratch area shared by the matcher and by argument and
	// reply payloads. len(Buffer)*4 must be at least len(Commands).
	Buffer []byte

	// Observer is optional.
	Observer Observer
}

// Engine is the AT command state machine.
//
// All mutation happens inside Step. The engine holds no command-specific
// state between exchanges.
type Engine struct {
	commands []Command
	arena    arena
	io       Transport
	observer Observer

	state  state
	prefix prefixState
	ch     byte
	index  int // table cursor for matcher and resolver
	length int // name characters, later payload bytes
	op     Operation
	cmd    *Command
	reason Reason
}

// New validates cfg and returns an engine in its initial state.
//
// Violations of the table or buffer contract are returned as *ConfigError;
// no engine is built in that case.
func New(cfg Config, io Transport) (*Engine, error) {
	if io == nil {
		return nil, &ConfigError{Index: -1, Message: "transport is nil"}
	}
	if len(cfg.Commands) == 0 {
		return nil, &ConfigError{Index: -1, Message: "command table is empty"}
	}
	if len(cfg.Buffer) == 0 {
		return nil, &ConfigError{Index: -1, Message: "scratch buffer is empty"}
	}
	if len(cfg.Buffer)*4 < len(cfg.Commands) {
		return nil, &ConfigError{
			Index:   -1,
			Message: "scratch buffer too small for command table",
		}
	}
	for i := range cfg.Commands {
		if !ValidName(cfg.Commands[i].Name) {
			return nil, &ConfigError{Index: i, Message: "name must be non-empty and use only A-Z, 0-9, '+'"}
		}
	}

	e := &Engine{
		commands: cfg.Commands,
		arena:    arena{buf: cfg.Buffer},
		io:       io,
		observer: cfg.Observer,
	}
	e.reset()
	return e, nil
}

// Step performs one bounded unit of work.
//
// It returns false only when the engine needed an input byte and the
// transport had none; in that case nothing changed. Writing a response may
// retry PutByte until the transport accepts each byte.
func (e *Engine) Step() bool {
	switch e.state {
	case statePrefix:
		return e.parsePrefix()
	case stateName:
		return e.parseName()
	case stateMatch:
		return e.updateMatch()
	case stateAck:
		return e.waitAck()
	case stateResolve:
		return e.resolve()
	case stateFound:
		return e.dispatch()
	case stateNotFound:
		if e.op == OpWrite {
			// Discard the payload so the line gets a single answer.
			e.fail(e.reason)
			return true
		}
		e.ackError(e.reason)
		return true
	case stateArgs:
		return e.collectArgs()
	case stateError:
		return e.drainError()
	default:
		e.reset()
		return true
	}
}

// Idle reports whether no exchange is in progress.
func (e *Engine) Idle() bool {
	return e.state == statePrefix && e.prefix == waitFirst
}

// Reset abandons any exchange in progress without writing a response.
func (e *Engine) Reset() {
	e.reset()
}

func (e *Engine) reset() {
	e.state = statePrefix
	e.prefix = waitFirst
	e.ch = 0
	e.index = 0
	e.length = 0
	e.op = OpExecute
	e.cmd = nil
	e.reason = ReasonNone
	e.arena.reset()
}

// readChar takes the next byte from the transport into e.ch.
func (e *Engine) readChar() bool {
	b, ok := e.io.GetByte()
	if !ok {
		return false
	}
	e.ch = b
	return true
}

// fail moves to the error sink; the response is written once the
// offending line ends.
func (e *Engine) fail(r Reason) {
	e.reason = r
	e.state = stateError
}

func (e *Engine) ackOK() {
	e.writeString(ackOK)
	e.complete(ReasonNone)
}

func (e *Engine) ackError(r Reason) {
	e.writeString(ackError)
	e.complete(r)
}

func (e *Engine) complete(r Reason) {
	if e.observer != nil {
		ex := Exchange{Op: e.op, OK: r == ReasonNone, Reason: r}
		if e.cmd != nil {
			ex.Command = e.cmd.Name
		}
		e.observer.Exchange(ex)
	}
	e.reset()
}
