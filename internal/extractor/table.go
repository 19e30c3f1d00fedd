package extractor

import "github.com/henrythdu/GraphMigrator/internal/parser"

// SymbolTable is the per-file extraction result. Symbols holds every
// top-level declaration in source order, shadowed ones included; the
// canonical map holds only the first declaration per name. Tables are
// immutable once Extract returns.
type SymbolTable struct {
	File string

	symbols   []*Symbol
	canonical map[string]*Symbol
	decls     map[SymbolID]*parser.Decl
}

// Extract builds the symbol table for one parsed file. Only direct
// children of the file root are visited; nested declarations stay inside
// their subtree and are never materialized.
func Extract(file *parser.File) *SymbolTable {
	t := &SymbolTable{
		File:      file.Path,
		canonical: make(map[string]*Symbol),
		decls:     make(map[SymbolID]*parser.Decl),
	}

	for _, decl := range file.Decls {
		sym := &Symbol{
			ID:   nextID(),
			Name: decl.Name,
			Kind: kindOf(decl.Kind),
			File: file.Path,
			Span: decl.Span,
		}
		if _, exists := t.canonical[decl.Name]; exists {
			sym.Shadowed = true
		} else {
			t.canonical[decl.Name] = sym
		}
		t.symbols = append(t.symbols, sym)
		t.decls[sym.ID] = decl
	}

	return t
}

// Symbols returns all extracted symbols in source order.
func (t *SymbolTable) Symbols() []*Symbol {
	return t.symbols
}

// Lookup returns the canonical (first-declared) symbol for a name.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	s, ok := t.canonical[name]
	return s, ok
}

// Decl returns the declaration subtree backing a symbol. The scanner uses
// this to walk call expressions; it is nil for IDs not minted by this
// table.
func (t *SymbolTable) Decl(id SymbolID) *parser.Decl {
	return t.decls[id]
}

// Len returns the number of extracted symbols, shadowed ones included.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}
