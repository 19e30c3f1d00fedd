package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrythdu/GraphMigrator/internal/extractor"
	"github.com/henrythdu/GraphMigrator/internal/graph"
	"github.com/henrythdu/GraphMigrator/internal/parser"
)

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	file := &parser.File{
		Path: "a.py",
		Decls: []*parser.Decl{
			{Kind: parser.DeclFunction, Name: "f", Span: parser.Span{StartLine: 1, EndLine: 3, StartByte: 0, EndByte: 40}},
			{Kind: parser.DeclClass, Name: "C", Span: parser.Span{StartLine: 5, EndLine: 9, StartByte: 50, EndByte: 120}},
			{Kind: parser.DeclFunction, Name: "f", Span: parser.Span{StartLine: 11, EndLine: 12, StartByte: 130, EndByte: 160}},
		},
	}
	table := extractor.Extract(file)

	g := graph.New()
	g.AddSymbols(table)

	f, _ := table.Lookup("f")
	c, _ := table.Lookup("C")
	require.NoError(t, g.AddEdge(graph.CallEdge{
		Caller: f.ID, Callee: c.ID, File: "a.py",
		Span: parser.Span{StartLine: 2, EndLine: 2, StartByte: 10, EndByte: 15},
	}))
	require.NoError(t, g.AddUnresolved(graph.UnresolvedCall{
		Caller: f.ID, CalleeText: "os.getcwd", Reason: graph.ReasonDotted, File: "a.py",
		Span: parser.Span{StartLine: 3, EndLine: 3, StartByte: 20, EndByte: 30},
	}))
	g.Failures = append(g.Failures, graph.FileFailure{Path: "broken.py", Err: "read failed"})
	g.Finalize()
	return g
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "graph.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	saved := sampleGraph(t)
	require.NoError(t, store.SaveGraph(ctx, saved))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)

	t.Run("symbols survive with spans and flags", func(t *testing.T) {
		require.Len(t, loaded.Nodes, 3)
		for i, want := range saved.Nodes {
			got := loaded.Nodes[i]
			assert.Equal(t, want.ID, got.ID)
			assert.Equal(t, want.Name, got.Name)
			assert.Equal(t, want.Kind, got.Kind)
			assert.Equal(t, want.Span, got.Span)
			assert.Equal(t, want.Shadowed, got.Shadowed)
		}
	})

	t.Run("edges and unresolved survive", func(t *testing.T) {
		require.Len(t, loaded.Edges, 1)
		assert.Equal(t, saved.Edges[0], loaded.Edges[0])
		require.Len(t, loaded.Unresolved, 1)
		assert.Equal(t, saved.Unresolved[0], loaded.Unresolved[0])
	})

	t.Run("failures survive", func(t *testing.T) {
		require.Len(t, loaded.Failures, 1)
		assert.Equal(t, "broken.py", loaded.Failures[0].Path)
	})

	t.Run("loaded graph answers queries", func(t *testing.T) {
		c := loaded.FindByName("C")
		require.Len(t, c, 1)
		assert.Len(t, loaded.CallersOf(c[0].ID), 1)
	})
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "graph.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.SaveGraph(ctx, sampleGraph(t)))
	require.NoError(t, store.SaveGraph(ctx, sampleGraph(t)))

	loaded, err := store.LoadGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Nodes, 3, "second save replaces the first, never appends")
	assert.Len(t, loaded.Edges, 1)
}

func TestSQLiteStore_EmptyDatabase(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.LoadGraph(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded.Nodes)
	assert.Empty(t, loaded.Edges)
}
