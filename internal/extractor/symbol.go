// Package extractor turns parsed files into per-file symbol tables. Only
// declarations at depth 0 become symbols; duplicates are kept and flagged
// rather than overwritten so that first-wins resolution stays a property
// of the data.
package extractor

import (
	"fmt"
	"sync/atomic"

	"github.com/henrythdu/GraphMigrator/internal/parser"
)

// SymbolID is a process-unique handle assigned at extraction time.
// Zero is never assigned.
type SymbolID int64

// SymbolKind is the syntactic kind of an extracted symbol.
type SymbolKind string

const (
	KindFunction SymbolKind = "function"
	KindClass    SymbolKind = "class"
)

// Symbol is one extracted top-level declaration. Shadowed is true for any
// declaration that is not the first with its name in its file; shadowed
// symbols stay in the table for diagnostics but never receive edges.
type Symbol struct {
	ID       SymbolID
	Name     string
	Kind     SymbolKind
	File     string
	Span     parser.Span
	Shadowed bool
}

// Key returns the stable human-readable form file:name:line, useful in
// diagnostics where the process-local ID means nothing.
func (s *Symbol) Key() string {
	return fmt.Sprintf("%s:%s:%d", s.File, s.Name, s.Span.StartLine)
}

var idCounter atomic.Int64

// nextID mints a process-unique SymbolID. Safe for concurrent per-file
// extraction.
func nextID() SymbolID {
	return SymbolID(idCounter.Add(1))
}

func kindOf(k parser.DeclKind) SymbolKind {
	if k == parser.DeclClass {
		return KindClass
	}
	return KindFunction
}
