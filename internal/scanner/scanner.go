// Package scanner walks symbol bodies and emits classified call sites.
// Nested declarations are invisible as symbols, but the calls inside
// them still occur lexically inside the nearest top-level symbol, so the
// scan descends through them and attributes everything to the owner.
package scanner

import (
	"github.com/henrythdu/GraphMigrator/internal/extractor"
	"github.com/henrythdu/GraphMigrator/internal/parser"
)

// CallShape is the classified form of a callee expression.
type CallShape string

const (
	// ShapeIdentifier is a single bare name, eligible for resolution.
	ShapeIdentifier CallShape = "identifier"
	// ShapeDotted is a module-style attribute chain; never resolved.
	ShapeDotted CallShape = "dotted"
	// ShapeMethod is a receiver-style call; never resolved.
	ShapeMethod CallShape = "method"
)

// CallSite is one call expression attributed to its owning top-level
// symbol. Every site yields exactly one resolution outcome downstream.
type CallSite struct {
	Caller     extractor.SymbolID
	Shape      CallShape
	CalleeText string
	Span       parser.Span
}

// Scan emits the call sites of every symbol in the table, shadowed
// symbols included: a shadowed declaration still owns the calls in its
// body, it just never receives inbound edges.
func Scan(t *extractor.SymbolTable) []CallSite {
	var sites []CallSite
	for _, sym := range t.Symbols() {
		decl := t.Decl(sym.ID)
		if decl == nil {
			continue
		}
		collect(decl, sym.ID, &sites)
	}
	return sites
}

func collect(decl *parser.Decl, owner extractor.SymbolID, sites *[]CallSite) {
	for _, call := range decl.Calls {
		*sites = append(*sites, CallSite{
			Caller:     owner,
			Shape:      Classify(call),
			CalleeText: call.Text,
			Span:       call.Span,
		})
	}
	for _, child := range decl.Children {
		collect(child, owner, sites)
	}
}

// Classify maps the structural facts of a callee onto a shape.
//
// A chain hanging off a value expression is receiver-style no matter how
// long it is; so is a single attribute access on a locally-bound name.
// Any remaining attribute chain is a module-style path. The distinction
// is diagnostic only: both are permanently unresolved.
func Classify(c parser.Call) CallShape {
	if c.RootIsValue {
		return ShapeMethod
	}
	if c.AttrDepth == 0 {
		return ShapeIdentifier
	}
	if c.AttrDepth == 1 && c.RootIsLocal {
		return ShapeMethod
	}
	return ShapeDotted
}
