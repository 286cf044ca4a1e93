package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const testScenario = `name: basic
table: ../tables/modem.cue
steps:
  - send: "ATI?\r\n"
    expect: "\nI=atengine\nOK\n"
  - send: "AT+LVL=3\r\n"
    expect: "\nOK\n"
values:
  "+LVL": "3"
`

// writeScenarioTree lays out scenarios/, tables/ and (later) golden/
// side by side, the way testdata directories are arranged.
func writeScenarioTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "tables/modem.cue", testTable)
	writeFile(t, root, "scenarios/basic.yaml", testScenario)
	return root
}

func TestTestCommand_HarnessScenariosPass(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, harnessScenarios)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ modem_basic\n")
	assert.Contains(t, out, "✓ modem_chunked\n")
	assert.Contains(t, out, "✓ modem_recovery\n")
	assert.Contains(t, out, "3 passed, 0 failed, 3 total")
}

func TestTestCommand_FilterJSON(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, "--filter", "*recovery", harnessScenarios)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "modem_recovery", resp.Data.Scenarios[0].Name)
	assert.Equal(t, "match", resp.Data.Scenarios[0].Golden)
}

func TestTestCommand_UpdateThenMatch(t *testing.T) {
	root := writeScenarioTree(t)
	scenarios := filepath.Join(root, "scenarios")

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ basic (no golden file)")

	cmd = NewTestCommand(&RootOptions{Format: "text"})
	out, err = execute(t, cmd, "--update", scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ basic (golden updated)")

	golden := filepath.Join(root, "golden", "basic.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name":"basic"`)

	cmd = NewTestCommand(&RootOptions{Format: "text"})
	out, err = execute(t, cmd, scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ basic\n")

	require.NoError(t, os.WriteFile(golden, []byte("{}\n"), 0o644))
	cmd = NewTestCommand(&RootOptions{Format: "text"})
	out, err = execute(t, cmd, scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommand_GoldenDirFlag(t *testing.T) {
	root := writeScenarioTree(t)
	goldenDir := filepath.Join(root, "elsewhere")

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, "--update", "--golden-dir", goldenDir, filepath.Join(root, "scenarios", "basic.yaml"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(goldenDir, "basic.golden"))
}

func TestTestCommand_FailingScenarioNotBlessed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "tables/modem.cue", testTable)
	writeFile(t, root, "scenarios/wrong.yaml", `name: wrong
table: ../tables/modem.cue
steps:
  - send: "ATI?\r\n"
    expect: "\nOK\n"
`)

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--update", filepath.Join(root, "scenarios"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")
	assert.NoFileExists(t, filepath.Join(root, "golden", "wrong.golden"))
}

func TestTestCommand_LoadErrorsFailScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\nsteps: []\n")

	cmd := NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, dir)
	require.Error(t, err)
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommand_PathErrors(t *testing.T) {
	cmd := NewTestCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd)
	require.Error(t, err, "at least one path is required")

	cmd = NewTestCommand(&RootOptions{Format: "text"})
	_, err = execute(t, cmd, "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	cmd = NewTestCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modem_basic.yaml", "")
	writeFile(t, dir, "sub/modem_extra.yml", "")
	writeFile(t, dir, "gps_fix.yaml", "")
	writeFile(t, dir, "README.md", "")

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = findScenarioFiles(dir, "modem_*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	assert.ErrorContains(t, err, "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	got := goldenFilePath(filepath.Join("testdata", "scenarios", "basic.yaml"), "basic", "")
	assert.Equal(t, filepath.Join("testdata", "golden", "basic.golden"), got)

	got = goldenFilePath("x/basic.yaml", "renamed", "/tmp/g")
	assert.Equal(t, filepath.Join("/tmp/g", "renamed.golden"), got)
}
