package engine

// updateMatch checks the newest name character against one table slot.
//
// A name of length L against N commands costs L*N steps of O(1) each.
// When the cursor wraps, control returns to the name accumulator.
func (e *Engine) updateMatch() bool {
	m := e.arena.matches()

	if m.get(e.index) != matchNone {
		name := e.commands[e.index].Name
		switch {
		case e.length > len(name):
			m.set(e.index, matchNone)
		case toUpper(name[e.length-1]) != e.ch:
			m.set(e.index, matchNone)
		case e.length == len(name):
			m.set(e.index, matchFull)
		}
	}

	e.index++
	if e.index >= len(e.commands) {
		e.index = 0
		e.state = stateName
	}
	return true
}

func (e *Engine) beginResolve() {
	e.index = 0
	e.cmd = nil
	e.reason = ReasonNone
	e.state = stateResolve
}

// resolve scans one slot of the match states per step.
//
// A full match wins immediately, even over earlier partial candidates. A
// single partial match is accepted as an abbreviation. Two or more partial
// matches with no full match anywhere in the table are ambiguous and
// resolve to "not found".
func (e *Engine) resolve() bool {
	m := e.arena.matches()

	switch m.get(e.index) {
	case matchFull:
		e.cmd = &e.commands[e.index]
		e.reason = ReasonNone
		e.state = stateFound
		return true
	case matchPartial:
		if e.cmd == nil {
			e.cmd = &e.commands[e.index]
		} else {
			e.reason = ReasonAmbiguous
		}
	}

	e.index++
	if e.index < len(e.commands) {
		return true
	}

	switch {
	case e.reason == ReasonAmbiguous:
		e.cmd = nil
		e.state = stateNotFound
	case e.cmd == nil:
		e.reason = ReasonNotFound
		e.state = stateNotFound
	default:
		e.state = stateFound
	}
	return true
}
