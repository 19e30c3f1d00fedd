package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrythdu/GraphMigrator/internal/parser"
)

func declAt(kind parser.DeclKind, name string, line int) *parser.Decl {
	return &parser.Decl{
		Kind: kind,
		Name: name,
		Span: parser.Span{StartLine: line, EndLine: line + 2, StartByte: uint32(line * 100)},
	}
}

func TestExtract_FirstWins(t *testing.T) {
	file := &parser.File{
		Path: "app.py",
		Decls: []*parser.Decl{
			declAt(parser.DeclFunction, "process", 1),
			declAt(parser.DeclClass, "Widget", 5),
			declAt(parser.DeclFunction, "process", 9),
			declAt(parser.DeclFunction, "process", 13),
		},
	}

	table := Extract(file)
	syms := table.Symbols()
	require.Len(t, syms, 4, "duplicates are kept, not overwritten")

	t.Run("first declaration is canonical", func(t *testing.T) {
		canon, ok := table.Lookup("process")
		require.True(t, ok)
		assert.Equal(t, 1, canon.Span.StartLine)
		assert.False(t, canon.Shadowed)
	})

	t.Run("every later duplicate is shadowed", func(t *testing.T) {
		assert.False(t, syms[0].Shadowed)
		assert.False(t, syms[1].Shadowed)
		assert.True(t, syms[2].Shadowed)
		assert.True(t, syms[3].Shadowed)
	})

	t.Run("ids are unique and nonzero", func(t *testing.T) {
		seen := make(map[SymbolID]bool)
		for _, s := range syms {
			assert.NotZero(t, s.ID)
			assert.False(t, seen[s.ID])
			seen[s.ID] = true
		}
	})

	t.Run("kinds carry through", func(t *testing.T) {
		assert.Equal(t, KindFunction, syms[0].Kind)
		assert.Equal(t, KindClass, syms[1].Kind)
	})

	t.Run("decl subtree is reachable by id", func(t *testing.T) {
		for _, s := range syms {
			d := table.Decl(s.ID)
			require.NotNil(t, d)
			assert.Equal(t, s.Name, d.Name)
		}
	})
}

func TestExtract_NestedDeclsNotMaterialized(t *testing.T) {
	outer := declAt(parser.DeclFunction, "outer", 1)
	outer.Children = []*parser.Decl{declAt(parser.DeclFunction, "inner", 2)}
	file := &parser.File{Path: "nested.py", Decls: []*parser.Decl{outer}}

	table := Extract(file)
	assert.Equal(t, 1, table.Len())
	_, ok := table.Lookup("inner")
	assert.False(t, ok, "nested declarations never become symbols")
}

func TestSymbol_Key(t *testing.T) {
	s := &Symbol{Name: "process", File: "app.py", Span: parser.Span{StartLine: 42}}
	assert.Equal(t, "app.py:process:42", s.Key())
}
