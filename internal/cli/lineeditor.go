package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

const (
	historyFileName = ".atengine_history"
	historySize     = 500
)

// LineEditor reads console lines. On a terminal it uses readline with
// history; otherwise (pipes, tests) it scans lines and echoes the prompt.
type LineEditor struct {
	rl      *readline.Instance
	scanner *bufio.Scanner
	out     io.Writer
}

// NewLineEditor picks readline when in is a terminal. historyPath may be
// empty to disable persistent history.
func NewLineEditor(in io.Reader, out io.Writer, historyPath string) *LineEditor {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		rl, err := readline.NewFromConfig(&readline.Config{
			HistoryFile:            historyPath,
			HistoryLimit:           historySize,
			DisableAutoSaveHistory: true,
			Stdin:                  f,
			Stdout:                 out,
		})
		if err == nil {
			return &LineEditor{rl: rl, out: out}
		}
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
	}
	return &LineEditor{scanner: bufio.NewScanner(in), out: out}
}

// defaultHistoryPath returns ~/.atengine_history, or "" without a home.
func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}

// GetLine returns the next line without its terminator. Ctrl-C and
// Ctrl-D both end input with io.EOF.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if le.rl != nil {
		le.rl.SetPrompt(prompt)
		line, err := le.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				return "", io.EOF
			}
			return "", err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			le.rl.SaveToHistory(trimmed)
		}
		return line, nil
	}

	fmt.Fprint(le.out, prompt)
	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

// Interactive reports whether readline is in use.
func (le *LineEditor) Interactive() bool {
	return le.rl != nil
}

// Close saves history and releases the terminal. It is idempotent.
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}
