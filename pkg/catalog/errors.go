package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for catalog operations.
var (
	// ErrUnknownKind indicates an unsupported catalog kind name.
	ErrUnknownKind = errors.New("unknown catalog kind")
	// ErrInvalidPattern indicates a pattern that does not compile or backtracks catastrophically.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrInvalidStructure indicates YAML that does not have the catalog shape.
	ErrInvalidStructure = errors.New("invalid catalog structure")
)

// CompileError reports a catalog pattern that cannot be used.
// It always aborts construction.
type CompileError struct {
	File    string
	Section string
	Brand   string
	Model   string
	Pattern string
	Line    int
	Err     error
}

func (e *CompileError) Error() string {
	var loc []string
	if e.Section != "" {
		loc = append(loc, "section "+quote(e.Section))
	}
	loc = append(loc, "brand "+quote(e.Brand))
	if e.Model != "" {
		loc = append(loc, "model "+quote(e.Model))
	}
	return fmt.Sprintf("%s:%d: %s: %s: pattern %q: %v",
		fileName(e.File), e.Line, ErrInvalidPattern, strings.Join(loc, ", "), e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalidPattern) true for every CompileError.
func (e *CompileError) Is(target error) bool { return target == ErrInvalidPattern }

// StructureError reports YAML whose shape is not a catalog.
type StructureError struct {
	File string
	Line int
	Msg  string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", fileName(e.File), e.Line, ErrInvalidStructure, e.Msg)
}

func (e *StructureError) Is(target error) bool { return target == ErrInvalidStructure }

func fileName(path string) string {
	if path == "" {
		return "<input>"
	}
	return path
}

func quote(s string) string {
	return `"` + s + `"`
}
