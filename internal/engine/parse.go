package engine

// parsePrefix waits for the two prefix letters. Blank lines before the
// prefix are ignored; a newline between the two letters is an error.
func (e *Engine) parsePrefix() bool {
	if !e.readChar() {
		return false
	}
	ch := toUpper(e.ch)

	switch e.prefix {
	case waitFirst:
		switch ch {
		case prefixFirst:
			e.prefix = waitSecond
		case '\n', '\r':
		default:
			e.fail(ReasonPrefix)
		}
	case waitSecond:
		switch ch {
		case prefixSecond:
			e.beginName()
		case '\n':
			e.ackError(ReasonPrefix)
		case '\r':
		default:
			e.fail(ReasonPrefix)
		}
	}
	return true
}

func (e *Engine) beginName() {
	e.arena.beginMatch()
	e.index = 0
	e.length = 0
	e.op = OpExecute
	e.state = stateName
}

// parseName accumulates name characters. Each accepted character hands
// control to the matcher, which visits one table slot per Step.
func (e *Engine) parseName() bool {
	if !e.readChar() {
		return false
	}
	ch := toUpper(e.ch)

	switch ch {
	case '\n':
		if e.length == 0 {
			// Bare "AT" is a liveness probe.
			e.ackOK()
			break
		}
		e.op = OpExecute
		e.beginResolve()
	case '\r':
	case '?':
		if e.length == 0 {
			e.fail(ReasonEmptyName)
			break
		}
		e.op = OpRead
		e.state = stateAck
	case '=':
		if e.length == 0 {
			e.fail(ReasonEmptyName)
			break
		}
		e.op = OpWrite
		e.beginResolve()
	default:
		if !isNameChar(ch) {
			e.fail(ReasonInvalidChar)
			break
		}
		e.ch = ch
		e.length++
		e.state = stateMatch
	}
	return true
}

// waitAck expects the newline that closes a read request.
func (e *Engine) waitAck() bool {
	if !e.readChar() {
		return false
	}

	switch e.ch {
	case '\n':
		e.beginResolve()
	case '\r':
	default:
		e.fail(ReasonInvalidChar)
	}
	return true
}

// drainError discards input up to the end of the line, then answers ERROR.
func (e *Engine) drainError() bool {
	if !e.readChar() {
		return false
	}
	if e.ch == '\n' {
		e.ackError(e.reason)
	}
	return true
}
