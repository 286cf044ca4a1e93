package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const testTable = `table: modem: {
	command: E: exec: "ok"
	command: I: value: "atengine"
	command: Z: exec: "reset"
	command: "+CSQ": value: "21,99"
	command: "+LVL": var: {type: "uint", bits: 8, default: 1}
}
`

const invalidTable = `table: broken: {
	command: "X!": exec: "ok"
	command: Y: exec: "explode"
}
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func writeTestTable(t *testing.T) string {
	t.Helper()
	return writeFile(t, t.TempDir(), "modem.cue", testTable)
}

// execute runs cmd with args and returns what it wrote to stdout.
// Logs and other stderr output are discarded.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
