package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		s, err := LoadScenario(path)
		require.NoError(t, err)
		t.Run(s.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}

func TestTranscript_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "modem_chunked")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := Transcript(s.Name, first)
	require.NoError(t, err)
	b, err := Transcript(s.Name, second)
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b))
	assert.True(t, strings.HasSuffix(string(a), "}\n"))
	assert.True(t, strings.HasPrefix(string(a), `{"scenario_name":"modem_chunked","steps":[`))
}

func TestTranscript_OmitsEmptyCommand(t *testing.T) {
	r := NewResult()
	r.Trace = []TraceEvent{{Seq: 1, Op: "execute", Reason: "prefix"}}

	data, err := Transcript("x", r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"x","steps":[],"trace":[{"ok":false,"op":"execute","reason":"prefix","seq":1}],"values":{}}`+"\n",
		string(data))
}
