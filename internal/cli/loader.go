package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/atengine/internal/compiler"
	"github.com/roach88/atengine/internal/ir"
)

// LoadResult holds every table found under a path.
type LoadResult struct {
	Tables    []ir.TableSpec
	Sources   map[string]string // table name -> file it was declared in
	FileCount int
}

// LoadError is a table loading failure with an optional CUE position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes shared by all commands. Table validation codes (E1xx) come
// from the compiler package.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files or tables found
	ErrCodeAmbiguous     = "E004" // Several tables, none selected
	ErrCodeNotFound      = "E005" // Path or table not found
	ErrCodeBuildFailed   = "E006" // CUE compile failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeInvalidTable  = "E008" // Table failed validation
	ErrCodeDatabase      = "E009" // Journal open/read error
	ErrCodeTransport     = "E010" // Transport could not be opened
	ErrCodeDuplicateName = "E011" // Same table name in two files
)

// LoadTables compiles every table declared in path, which may be a CUE
// file or a directory searched recursively. Compile errors stop the load.
func LoadTables(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("table path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}
	}

	files := []string{path}
	if info.IsDir() {
		files, err = FindCUEFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}
		}
	}

	result := &LoadResult{
		Sources:   make(map[string]string),
		FileCount: len(files),
	}
	for _, file := range files {
		tables, err := compiler.CompileFile(file)
		if err != nil {
			return nil, convertCompileError(err, file)
		}
		for _, t := range tables {
			if prev, dup := result.Sources[t.Name]; dup {
				return nil, &LoadError{
					Code:    ErrCodeDuplicateName,
					Message: fmt.Sprintf("table %q declared in both %s and %s", t.Name, prev, file),
				}
			}
			result.Sources[t.Name] = file
			result.Tables = append(result.Tables, t)
		}
	}

	if len(result.Tables) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no tables declared in %s", path)}
	}
	sort.SliceStable(result.Tables, func(i, j int) bool { return result.Tables[i].Name < result.Tables[j].Name })
	return result, nil
}

// LoadTable loads path and picks one table from it. An empty name is
// allowed only when exactly one table is declared. The chosen table must
// pass validation.
func LoadTable(path, name string) (*ir.TableSpec, error) {
	result, err := LoadTables(path)
	if err != nil {
		return nil, err
	}

	spec, err := selectTable(result.Tables, name)
	if err != nil {
		return nil, err
	}

	if errs := compiler.Validate(spec); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, &LoadError{
			Code:    ErrCodeInvalidTable,
			Message: fmt.Sprintf("table %s is invalid: %s", spec.Name, strings.Join(msgs, "; ")),
		}
	}
	return spec, nil
}

func selectTable(tables []ir.TableSpec, name string) (*ir.TableSpec, error) {
	if name == "" {
		if len(tables) != 1 {
			names := make([]string, len(tables))
			for i := range tables {
				names[i] = tables[i].Name
			}
			return nil, &LoadError{
				Code:    ErrCodeAmbiguous,
				Message: fmt.Sprintf("%d tables declared %v; choose one with --table-name", len(tables), names),
			}
		}
		return &tables[0], nil
	}
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i], nil
		}
	}
	return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("table %q not declared", name)}
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError keeps the CUE position of compiler errors.
func convertCompileError(err error, file string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeBuildFailed,
		Message: fmt.Sprintf("%s: %v", file, err),
	}
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}
