package graph

import (
	"github.com/henrythdu/GraphMigrator/internal/extractor"
	"github.com/henrythdu/GraphMigrator/internal/parser"
)

// UnresolvedReason says why a call site produced no edge. The string
// values are part of the output contract.
type UnresolvedReason string

const (
	// ReasonDotted marks a module-style attribute chain callee.
	ReasonDotted UnresolvedReason = "dotted"
	// ReasonMethod marks a receiver-style callee.
	ReasonMethod UnresolvedReason = "method"
	// ReasonUnknown marks an identifier declared nowhere as a top-level
	// symbol (built-ins, imported names).
	ReasonUnknown UnresolvedReason = "unknown"
	// ReasonAmbiguous marks an identifier declared canonically in more
	// than one file. The resolver never guesses among candidates.
	ReasonAmbiguous UnresolvedReason = "ambiguous"
)

// CallEdge is one resolved call. Edges are per call site: the same
// caller/callee pair appears once per occurrence, each with its own span.
type CallEdge struct {
	Caller extractor.SymbolID
	Callee extractor.SymbolID
	File   string
	Span   parser.Span
}

// UnresolvedCall is the non-edge outcome of a call site.
type UnresolvedCall struct {
	Caller     extractor.SymbolID
	CalleeText string
	Reason     UnresolvedReason
	File       string
	Span       parser.Span
}

// FileFailure records a file excluded from extraction. Failures are
// diagnostics on the run, never fatal to it.
type FileFailure struct {
	Path string
	Err  string
}
