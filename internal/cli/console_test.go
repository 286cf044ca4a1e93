package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/atengine/internal/device"
)

func newTestConsole(t *testing.T) (*console, *bytes.Buffer) {
	t.Helper()
	spec, err := LoadTable(writeTestTable(t), "")
	require.NoError(t, err)
	dev, err := device.New(spec)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	c, err := newConsole(dev, 0, out)
	require.NoError(t, err)
	return c, out
}

func TestConsole_SendsLinesAndPrintsReplies(t *testing.T) {
	c, out := newTestConsole(t)
	editor := NewLineEditor(strings.NewReader("ATI?\nAT+LVL=9\nat+lvl?\nATQ\n"), out, "")
	require.False(t, editor.Interactive())

	require.NoError(t, c.run(editor))

	got := out.String()
	assert.Contains(t, got, "at> I=atengine\nOK\n")
	assert.Contains(t, got, "at> +LVL=9\nOK\n")
	assert.Contains(t, got, "at> ERROR\n")
	assert.True(t, strings.HasSuffix(got, "at> "), "prompt printed before EOF")
}

func TestConsole_MetaCommands(t *testing.T) {
	c, out := newTestConsole(t)
	input := strings.Join([]string{
		"AT+LVL=9",
		".values",
		".reset",
		".values",
		".bogus",
		".help",
		".quit",
		"AT+CSQ?",
	}, "\n")

	require.NoError(t, c.run(NewLineEditor(strings.NewReader(input), out, "")))

	got := out.String()
	assert.Contains(t, got, "+LVL=9\n")
	assert.Contains(t, got, "variables reset\n")
	assert.Contains(t, got, "+LVL=1\n")
	assert.Contains(t, got, "unknown console command .bogus")
	assert.Contains(t, got, ".values  show every variable")
	assert.NotContains(t, got, "+CSQ=", "nothing runs after .quit")
}

func TestConsole_VerboseShowsExchange(t *testing.T) {
	c, out := newTestConsole(t)
	c.verbose = true

	c.send("ATQ")
	c.send("AT+CSQ?")

	got := out.String()
	assert.Contains(t, got, "  [- execute: not_found]\n")
	assert.Contains(t, got, "  [+CSQ read: none]\n")
}

func TestConsole_Command(t *testing.T) {
	cmd := NewConsoleCommand(&RootOptions{Format: "text"})
	cmd.SetIn(strings.NewReader("AT+CSQ?\n"))

	out, err := execute(t, cmd, "--history", "", writeTestTable(t))
	require.NoError(t, err)
	assert.Contains(t, out, "+CSQ=21,99\nOK\n")
}

func TestConsole_CommandErrors(t *testing.T) {
	cmd := NewConsoleCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, "/nonexistent/modem.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	cmd = NewConsoleCommand(&RootOptions{Format: "text"})
	_, err = execute(t, cmd, "--buffer", "1", writeTestTable(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build engine")
}
