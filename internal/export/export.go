// Package export writes the assembled graph as JSON. The document is
// validated against the embedded schema before anything touches disk, so
// a malformed export is an error, never a bad artifact.
package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/henrythdu/GraphMigrator/internal/graph"
)

//go:embed callgraph.schema.json
var schemaJSON []byte

// SchemaVersion of the export document format.
const SchemaVersion = 1

// Document is the serialized form of one run's graph. Field names and
// the reason enumeration are the stable contract consumers rely on.
type Document struct {
	SchemaVersion int                `json:"schema_version"`
	Root          string             `json:"root"`
	Nodes         []NodeRecord       `json:"nodes"`
	Edges         []EdgeRecord       `json:"edges"`
	Unresolved    []UnresolvedRecord `json:"unresolved"`
	Failures      []FailureRecord    `json:"failures"`
}

type NodeRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Shadowed  bool   `json:"shadowed"`
}

type EdgeRecord struct {
	CallerID  int64  `json:"caller_id"`
	CalleeID  int64  `json:"callee_id"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

type UnresolvedRecord struct {
	CallerID   int64  `json:"caller_id"`
	CalleeText string `json:"callee_text"`
	Reason     string `json:"reason"`
	File       string `json:"file"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
}

type FailureRecord struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// BuildDocument flattens a finalized graph into the export shape.
func BuildDocument(g *graph.Graph, root string) *Document {
	doc := &Document{
		SchemaVersion: SchemaVersion,
		Root:          root,
		Nodes:         make([]NodeRecord, 0, len(g.Nodes)),
		Edges:         make([]EdgeRecord, 0, len(g.Edges)),
		Unresolved:    make([]UnresolvedRecord, 0, len(g.Unresolved)),
		Failures:      make([]FailureRecord, 0, len(g.Failures)),
	}
	for _, n := range g.Nodes {
		doc.Nodes = append(doc.Nodes, NodeRecord{
			ID:        int64(n.ID),
			Name:      n.Name,
			Kind:      string(n.Kind),
			File:      n.File,
			StartLine: n.Span.StartLine,
			EndLine:   n.Span.EndLine,
			Shadowed:  n.Shadowed,
		})
	}
	for _, e := range g.Edges {
		doc.Edges = append(doc.Edges, EdgeRecord{
			CallerID:  int64(e.Caller),
			CalleeID:  int64(e.Callee),
			File:      e.File,
			StartLine: e.Span.StartLine,
			EndLine:   e.Span.EndLine,
		})
	}
	for _, u := range g.Unresolved {
		doc.Unresolved = append(doc.Unresolved, UnresolvedRecord{
			CallerID:   int64(u.Caller),
			CalleeText: u.CalleeText,
			Reason:     string(u.Reason),
			File:       u.File,
			StartLine:  u.Span.StartLine,
			EndLine:    u.Span.EndLine,
		})
	}
	for _, f := range g.Failures {
		doc.Failures = append(doc.Failures, FailureRecord{File: f.Path, Error: f.Err})
	}
	return doc
}

// Validate checks a document against the embedded schema.
func Validate(doc *Document) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	if err := schema.Validate(generic); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("callgraph.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile("callgraph.schema.json")
}

// Write validates doc and streams it as indented JSON.
func Write(w io.Writer, doc *Document) error {
	if err := Validate(doc); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Save validates doc and writes it to path.
func Save(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, doc)
}
