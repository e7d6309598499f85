package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the conversion passes.
var (
	ErrStructure     = errors.New("malformed document structure")
	ErrLexical       = errors.New("lexical error in source")
	ErrAssembly      = errors.New("output assembly failed")
	ErrInvalidConfig = errors.New("invalid conversion config")
	ErrColophon      = errors.New("colophon rendering failed")
)

// location renders the optional context shared by the typed errors.
func location(unit int, element, id string, line int) string {
	var parts []string
	if unit != NoUnit {
		parts = append(parts, fmt.Sprintf("unit %d", unit))
	}
	if element != "" {
		parts = append(parts, fmt.Sprintf("element <%s>", element))
	}
	if id != "" {
		parts = append(parts, fmt.Sprintf("id %q", id))
	}
	if line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", line))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// StructureError reports unbalanced markup found by the collector.
type StructureError struct {
	Unit    int // innermost open unit or NoUnit
	Element string
	Line    int
	Msg     string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("%v: %s%s", ErrStructure, e.Msg, location(e.Unit, e.Element, "", e.Line))
}

// Is matches ErrStructure.
func (e *StructureError) Is(target error) bool { return target == ErrStructure }

// LexicalError wraps a failure reported by the Scanner.
type LexicalError struct {
	Unit int
	Line int
	Err  error
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%v: %v%s", ErrLexical, e.Err, location(e.Unit, "", "", e.Line))
}

// Unwrap returns the scanner error.
func (e *LexicalError) Unwrap() error { return e.Err }

// Is matches ErrLexical.
func (e *LexicalError) Is(target error) bool { return target == ErrLexical }

// AssemblyError reports a pass 2 failure, typically a link to an id that
// was never defined or a token stream that no longer matches pass 1.
type AssemblyError struct {
	Unit    int
	Element string
	ID      string
	Line    int
	Msg     string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("%v: %s%s", ErrAssembly, e.Msg, location(e.Unit, e.Element, e.ID, e.Line))
}

// Is matches ErrAssembly.
func (e *AssemblyError) Is(target error) bool { return target == ErrAssembly }

// UnresolvedReference is a non-fatal report about a link target that did not
// reach a concrete file by the end of pass 2.
type UnresolvedReference struct {
	ID     string
	Unit   int    // first unit that links to ID, NoUnit if none
	Reason string // "not emitted", "undefined"
}

func (w UnresolvedReference) String() string {
	return fmt.Sprintf("unresolved reference %q: %s%s", w.ID, w.Reason, location(w.Unit, "", "", 0))
}
