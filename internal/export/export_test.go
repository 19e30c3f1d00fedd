package export

import (
	"bytes"
	"encoding/json"
	"os"
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
			{Kind: parser.DeclFunction, Name: "f", Span: parser.Span{StartLine: 1, EndLine: 3, EndByte: 40}},
			{Kind: parser.DeclFunction, Name: "g", Span: parser.Span{StartLine: 5, EndLine: 7, StartByte: 50, EndByte: 90}},
		},
	}
	table := extractor.Extract(file)

	g := graph.New()
	g.AddSymbols(table)
	f, _ := table.Lookup("f")
	gg, _ := table.Lookup("g")
	require.NoError(t, g.AddEdge(graph.CallEdge{
		Caller: f.ID, Callee: gg.ID, File: "a.py",
		Span: parser.Span{StartLine: 2, EndLine: 2, StartByte: 10},
	}))
	require.NoError(t, g.AddUnresolved(graph.UnresolvedCall{
		Caller: gg.ID, CalleeText: "self.run", Reason: graph.ReasonMethod, File: "a.py",
		Span: parser.Span{StartLine: 6, EndLine: 6, StartByte: 60},
	}))
	g.Finalize()
	return g
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(sampleGraph(t), "/proj")

	assert.Equal(t, SchemaVersion, doc.SchemaVersion)
	assert.Equal(t, "/proj", doc.Root)
	require.Len(t, doc.Nodes, 2)
	require.Len(t, doc.Edges, 1)
	require.Len(t, doc.Unresolved, 1)
	assert.Equal(t, "method", doc.Unresolved[0].Reason)
	assert.NotNil(t, doc.Failures, "empty lists serialize as [], not null")
}

func TestValidate(t *testing.T) {
	t.Run("well-formed document passes", func(t *testing.T) {
		assert.NoError(t, Validate(BuildDocument(sampleGraph(t), "/proj")))
	})

	t.Run("unknown reason fails", func(t *testing.T) {
		doc := BuildDocument(sampleGraph(t), "/proj")
		doc.Unresolved[0].Reason = "mystery"
		assert.Error(t, Validate(doc))
	})

	t.Run("zero symbol id fails", func(t *testing.T) {
		doc := BuildDocument(sampleGraph(t), "/proj")
		doc.Nodes[0].ID = 0
		assert.Error(t, Validate(doc))
	})

	t.Run("wrong schema version fails", func(t *testing.T) {
		doc := BuildDocument(sampleGraph(t), "/proj")
		doc.SchemaVersion = 99
		assert.Error(t, Validate(doc))
	})
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, BuildDocument(sampleGraph(t), "/proj")))

	var round map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &round))
	assert.Equal(t, float64(1), round["schema_version"])
	assert.Len(t, round["nodes"], 2)
	assert.IsType(t, []any{}, round["failures"])
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, Save(path, BuildDocument(sampleGraph(t), "/proj")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NoError(t, Validate(mustDecode(t, data)))
}

func mustDecode(t *testing.T, data []byte) *Document {
	t.Helper()
	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	return &doc
}
