package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// namedTable builds execute-only commands that record which one ran.
func namedTable(ran *string, names ...string) []Command {
	cmds := make([]Command, len(names))
	for i, n := range names {
		cmds[i] = Command{
			Name: n,
			Execute: func(c *Command) error {
				*ran = c.Name
				return nil
			},
		}
	}
	return cmds
}

func TestResolve_FullMatchBeatsPartial(t *testing.T) {
	// The exact name wins wherever it sits relative to longer names that
	// share it as a prefix.
	tables := [][]string{
		{"+CGM", "+CGMR", "+CGMI"},
		{"+CGMR", "+CGM", "+CGMI"},
		{"+CGMR", "+CGMI", "+CGM"},
		{"+CGMR", "+CGMI", "+CGSN", "+CGM", "+CSQ"},
	}

	for _, names := range tables {
		var ran string
		e, tr, rec := newTestEngine(t, namedTable(&ran, names...), 2)

		assert.Equal(t, "\nOK\n", run(e, tr, "AT+CGM\n"), "table %v", names)
		assert.Equal(t, "+CGM", ran, "table %v", names)
		assert.Equal(t, "+CGM", rec.last(t).Command)
	}
}

func TestResolve_AmbiguousAbbreviation(t *testing.T) {
	var ran string
	e, tr, rec := newTestEngine(t, namedTable(&ran, "+CGMI", "+CGMR", "+CSQ"), 1)

	assert.Equal(t, "\nERROR\n", run(e, tr, "AT+CGM\n"))
	assert.Empty(t, ran, "ambiguous names never pick a command")
	assert.Equal(t, ReasonAmbiguous, rec.last(t).Reason)
	assert.Empty(t, rec.last(t).Command)

	assert.Equal(t, "\nERROR\n", run(e, tr, "AT+C\n"))
	assert.Equal(t, ReasonAmbiguous, rec.last(t).Reason)
}

func TestResolve_UniqueAbbreviation(t *testing.T) {
	var ran string
	e, tr, _ := newTestEngine(t, namedTable(&ran, "+CGMI", "+CSQ", "+COPS"), 1)

	assert.Equal(t, "\nOK\n", run(e, tr, "AT+CG\n"))
	assert.Equal(t, "+CGMI", ran)

	assert.Equal(t, "\nOK\n", run(e, tr, "AT+CS\n"))
	assert.Equal(t, "+CSQ", ran)
}

func TestResolve_NotFound(t *testing.T) {
	var ran string
	e, tr, rec := newTestEngine(t, namedTable(&ran, "+CGMI", "+CSQ"), 1)

	assert.Equal(t, "\nERROR\n", run(e, tr, "AT+CX\n"))
	assert.Equal(t, ReasonNotFound, rec.last(t).Reason)
	assert.Empty(t, ran)
}

func TestResolve_WriteToUnknownAnswersOnce(t *testing.T) {
	var ran string
	e, tr, rec := newTestEngine(t, namedTable(&ran, "+CSQ"), 1)

	assert.Equal(t, "\nERROR\n", run(e, tr, "AT+NOPE=1,2,3\n"))
	require.Len(t, rec.exchanges, 1)
	assert.Equal(t, ReasonNotFound, rec.last(t).Reason)
	assert.Equal(t, OpWrite, rec.last(t).Op)
}

func TestUpdateMatch_Transitions(t *testing.T) {
	e, tr, _ := newTestEngine(t, namedTable(new(string), "AB", "A", "ABC", "X"), 1)

	tr.Feed("ATA")
	for tr.Pending() > 0 || e.state == stateMatch {
		e.Step()
	}
	m := e.arena.matches()
	assert.Equal(t, matchPartial, m.get(0))
	assert.Equal(t, matchFull, m.get(1))
	assert.Equal(t, matchPartial, m.get(2))
	assert.Equal(t, matchNone, m.get(3))

	tr.Feed("B")
	for tr.Pending() > 0 || e.state == stateMatch {
		e.Step()
	}
	assert.Equal(t, matchFull, m.get(0))
	assert.Equal(t, matchNone, m.get(1), "longer input than the name")
	assert.Equal(t, matchPartial, m.get(2))
	assert.Equal(t, matchNone, m.get(3), "no-match is sticky")
}

func TestUpdateMatch_OneSlotPerStep(t *testing.T) {
	e, tr, _ := newTestEngine(t, namedTable(new(string), "+A", "+B", "+C"), 1)

	tr.Feed("AT+")
	e.Step()
	e.Step()
	e.Step()
	require.Equal(t, stateMatch, e.state)

	for i := 1; i <= 2; i++ {
		e.Step()
		assert.Equal(t, stateMatch, e.state)
		assert.Equal(t, i, e.index)
	}
	e.Step()
	assert.Equal(t, stateName, e.state)
	assert.Equal(t, 0, e.index)
}
