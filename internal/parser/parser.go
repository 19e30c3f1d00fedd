// Package parser turns source files into the language-agnostic
// declaration/call tree consumed by the extraction pipeline. One adapter
// per language; adapters hold all tree-sitter knowledge so that nothing
// downstream depends on a grammar.
package parser

import (
	"context"
	"fmt"
	"strings"
)

// DeclKind is the syntactic kind of a declaration.
type DeclKind string

const (
	DeclFunction DeclKind = "function"
	DeclClass    DeclKind = "class"
)

// Span is a source range. Lines are 1-based and inclusive; byte offsets
// are kept for ordering call sites within a line.
type Span struct {
	StartLine int
	EndLine   int
	StartByte uint32
	EndByte   uint32
}

// Call is one call expression with the structural facts of its callee.
// The scanner classifies shapes from these facts; the adapter never
// decides resolvability itself.
type Call struct {
	// Root is the leftmost name of the callee chain ("" when the chain
	// is rooted at a value expression rather than a name).
	Root string
	// AttrDepth counts attribute/selector accesses in the callee chain.
	// Zero means a bare identifier.
	AttrDepth int
	// RootIsValue is true when the chain hangs off an expression result
	// (a call, a subscript, a literal) instead of a name.
	RootIsValue bool
	// RootIsLocal is true when Root is bound inside the enclosing
	// top-level declaration (parameter or assignment target).
	RootIsLocal bool
	// Text is the whitespace-collapsed source text of the callee.
	Text string
	Span Span
}

// Decl is a declaration node. Children holds declarations nested directly
// inside this one; Calls holds call expressions lexically inside this
// declaration but outside any child declaration.
type Decl struct {
	Kind     DeclKind
	Name     string
	Span     Span
	Children []*Decl
	Calls    []Call
}

// File is one parsed source file. Decls contains only the declarations
// that are direct children of the file root (depth 0).
type File struct {
	Path     string
	Language string
	Decls    []*Decl
}

// LanguageParser is implemented by each language adapter.
type LanguageParser interface {
	Language() string
	Extensions() []string
	// Parse builds the declaration tree for one file. A nil error with a
	// non-nil File is the only success shape; adapters never return
	// partial trees alongside an error.
	Parse(ctx context.Context, path string, source []byte) (*File, error)
}

// ForLanguage returns the adapter for a language name.
func ForLanguage(name string) (LanguageParser, error) {
	switch name {
	case "python":
		return &PythonParser{}, nil
	case "go":
		return &GoParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", name)
	}
}

// SupportedLanguages lists adapter names in registration order.
func SupportedLanguages() []string {
	return []string{"python", "go"}
}

// LanguageForExtension maps a file extension (with dot) to a language
// name, or "" when no adapter handles it.
func LanguageForExtension(ext string) string {
	switch ext {
	case ".py":
		return "python"
	case ".go":
		return "go"
	default:
		return ""
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
