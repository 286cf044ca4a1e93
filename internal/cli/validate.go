package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/atengine/internal/compiler"
)

// TableError is a validation error tagged with its table.
type TableError struct {
	Table string `json:"table,omitempty"`
	compiler.ValidationError
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool         `json:"valid"`
	Tables []string     `json:"tables,omitempty"`
	Errors []TableError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <table.cue|dir>",
		Short: "Validate command tables",
		Long: `Compile CUE command tables and check them against the engine's
table contract: valid and unique names, at least one capability per
command, known variable types and defaults that parse.

Exit codes:
  0 - All tables valid
  1 - One or more tables invalid
  2 - Command error (missing path, no tables)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result, err := LoadTables(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Code == ErrCodeBuildFailed {
			// A table that does not compile is invalid, not a usage error.
			return outputValidationErrors(formatter, []TableError{{
				ValidationError: compiler.ValidationError{
					Field:   "cue",
					Message: loadErr.Message,
					Code:    loadErr.Code,
					Line:    lineOf(loadErr),
				},
			}})
		}
		code, msg := loadErrorCode(err)
		_ = formatter.Error(code, msg, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, msg))
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.FileCount, path)

	var all []TableError
	names := make([]string, 0, len(result.Tables))
	for i := range result.Tables {
		spec := &result.Tables[i]
		names = append(names, spec.Name)
		formatter.VerboseLog("Validating table: %s (%d commands)", spec.Name, len(spec.Commands))
		for _, e := range compiler.Validate(spec) {
			all = append(all, TableError{Table: spec.Name, ValidationError: e})
		}
	}

	if len(all) > 0 {
		return outputValidationErrors(formatter, all)
	}

	if formatter.JSON() {
		return formatter.Success(ValidationResult{Valid: true, Tables: names})
	}
	fmt.Fprintf(formatter.Writer, "✓ %d table(s) valid\n", len(names))
	return nil
}

func lineOf(e *LoadError) int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

func outputValidationErrors(formatter *OutputFormatter, errs []TableError) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range errs {
		switch {
		case e.Table != "" && e.Line > 0:
			fmt.Fprintf(formatter.Writer, "%s (line %d)\n", e.Table, e.Line)
		case e.Table != "":
			fmt.Fprintln(formatter.Writer, e.Table)
		case e.Line > 0:
			fmt.Fprintf(formatter.Writer, "line %d\n", e.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", e.Code, e.Field, e.Message)
	}
	return failure
}
