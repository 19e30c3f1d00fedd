// Package index merges per-file symbol tables into the cross-file name
// lookup used during resolution. The index is a synchronization barrier:
// it is built exactly once, after every table exists, and is read-only
// from then on.
package index

import (
	"sort"

	"github.com/henrythdu/GraphMigrator/internal/extractor"
)

// GlobalIndex maps a name to every canonical symbol sharing it across
// files. Shadowed symbols are never indexed.
type GlobalIndex struct {
	byName map[string][]*extractor.Symbol
}

// Build folds all tables into one index. Tables are processed in file
// order so candidate lists are deterministic regardless of the order in
// which parallel extraction finished.
func Build(tables []*extractor.SymbolTable) *GlobalIndex {
	sorted := make([]*extractor.SymbolTable, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	idx := &GlobalIndex{byName: make(map[string][]*extractor.Symbol)}
	for _, t := range sorted {
		for _, sym := range t.Symbols() {
			if sym.Shadowed {
				continue
			}
			idx.byName[sym.Name] = append(idx.byName[sym.Name], sym)
		}
	}
	return idx
}

// Lookup returns every canonical symbol with the given name. The returned
// slice must not be mutated.
func (g *GlobalIndex) Lookup(name string) []*extractor.Symbol {
	return g.byName[name]
}

// Names returns the number of distinct indexed names.
func (g *GlobalIndex) Names() int {
	return len(g.byName)
}
