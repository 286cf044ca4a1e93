package engine

// dispatch runs the resolved command in the requested form.
func (e *Engine) dispatch() bool {
	cmd := e.cmd

	if !cmd.Supports(e.op) {
		if e.op == OpWrite {
			// The payload is still on the wire; answer once it ends.
			e.fail(ReasonUnsupported)
			return true
		}
		e.ackError(ReasonUnsupported)
		return true
	}

	switch e.op {
	case OpExecute:
		if err := cmd.Execute(cmd); err != nil {
			e.ackError(ReasonCallback)
			return true
		}
		e.ackOK()
	case OpRead:
		out := e.arena.beginPayload()
		n, err := cmd.Read(cmd, out)
		if err != nil || n < 0 || n > len(out) {
			e.ackError(ReasonCallback)
			return true
		}
		e.writeString("\n")
		e.writeString(cmd.Name)
		e.writeString("=")
		e.writeBytes(out[:n])
		// The acknowledgement's leading newline terminates the reply line.
		e.ackOK()
	case OpWrite:
		e.arena.beginPayload()
		e.length = 0
		e.state = stateArgs
	}
	return true
}

// collectArgs appends payload bytes to the scratch buffer until newline.
// Payload bytes are stored as received, without case folding.
func (e *Engine) collectArgs() bool {
	if !e.readChar() {
		return false
	}

	switch e.ch {
	case '\n':
		e.commitWrite()
	case '\r':
	default:
		buf := e.arena.payload()
		if e.length >= len(buf) {
			e.fail(ReasonOverflow)
			break
		}
		buf[e.length] = e.ch
		e.length++
	}
	return true
}

// commitWrite hands the collected payload to the command: first to its
// bound variable, then to its write callback.
func (e *Engine) commitWrite() {
	cmd := e.cmd
	data := e.arena.payload()[:e.length]

	if cmd.Var != nil {
		if err := cmd.Var.Parse(data); err != nil {
			e.ackError(ReasonBadValue)
			return
		}
	}
	if cmd.Write != nil {
		if err := cmd.Write(cmd, data); err != nil {
			e.ackError(ReasonCallback)
			return
		}
	}
	e.ackOK()
}
