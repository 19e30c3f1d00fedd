// Package storage persists call graphs to SQLite so that query commands
// can run without re-scanning the project.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/henrythdu/GraphMigrator/internal/extractor"
	"github.com/henrythdu/GraphMigrator/internal/graph"
	"github.com/henrythdu/GraphMigrator/internal/parser"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS symbols (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			file TEXT NOT NULL,
			start_line INTEGER,
			end_line INTEGER,
			start_byte INTEGER,
			end_byte INTEGER,
			shadowed INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS edges (
			caller_id INTEGER NOT NULL,
			callee_id INTEGER NOT NULL,
			file TEXT NOT NULL,
			start_line INTEGER,
			end_line INTEGER,
			start_byte INTEGER,
			end_byte INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS unresolved (
			caller_id INTEGER NOT NULL,
			callee_text TEXT NOT NULL,
			reason TEXT NOT NULL,
			file TEXT NOT NULL,
			start_line INTEGER,
			end_line INTEGER,
			start_byte INTEGER,
			end_byte INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS failures (
			file TEXT NOT NULL,
			error TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file);`,
		`CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);`,
		`CREATE INDEX IF NOT EXISTS idx_edges_callee ON edges(callee_id);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveGraph replaces the stored graph with g inside one transaction.
func (s *SQLiteStore) SaveGraph(ctx context.Context, g *graph.Graph) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"symbols", "edges", "unresolved", "failures"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	symStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO symbols (id, name, kind, file, start_line, end_line, start_byte, end_byte, shadowed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer symStmt.Close()
	for _, n := range g.Nodes {
		shadowed := 0
		if n.Shadowed {
			shadowed = 1
		}
		if _, err := symStmt.ExecContext(ctx, int64(n.ID), n.Name, string(n.Kind), n.File,
			n.Span.StartLine, n.Span.EndLine, n.Span.StartByte, n.Span.EndByte, shadowed); err != nil {
			return err
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (caller_id, callee_id, file, start_line, end_line, start_byte, end_byte)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()
	for _, e := range g.Edges {
		if _, err := edgeStmt.ExecContext(ctx, int64(e.Caller), int64(e.Callee), e.File,
			e.Span.StartLine, e.Span.EndLine, e.Span.StartByte, e.Span.EndByte); err != nil {
			return err
		}
	}

	unresStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO unresolved (caller_id, callee_text, reason, file, start_line, end_line, start_byte, end_byte)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer unresStmt.Close()
	for _, u := range g.Unresolved {
		if _, err := unresStmt.ExecContext(ctx, int64(u.Caller), u.CalleeText, string(u.Reason), u.File,
			u.Span.StartLine, u.Span.EndLine, u.Span.StartByte, u.Span.EndByte); err != nil {
			return err
		}
	}

	for _, f := range g.Failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO failures (file, error) VALUES (?, ?)`, f.Path, f.Err); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadGraph reads the stored graph back. Edge references are re-validated
// on load; a dangling reference means the database was written by a buggy
// or foreign process and is reported as an error.
func (s *SQLiteStore) LoadGraph(ctx context.Context) (*graph.Graph, error) {
	g := graph.New()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, file, start_line, end_line, start_byte, end_byte, shadowed
		FROM symbols ORDER BY file, start_byte
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id               int64
			name, kind, file string
			span             parser.Span
			shadowed         int
		)
		if err := rows.Scan(&id, &name, &kind, &file,
			&span.StartLine, &span.EndLine, &span.StartByte, &span.EndByte, &shadowed); err != nil {
			return nil, err
		}
		g.Nodes = append(g.Nodes, &extractor.Symbol{
			ID:       extractor.SymbolID(id),
			Name:     name,
			Kind:     extractor.SymbolKind(kind),
			File:     file,
			Span:     span,
			Shadowed: shadowed != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	g.RebuildIndex()

	edgeRows, err := s.db.QueryContext(ctx, `
		SELECT caller_id, callee_id, file, start_line, end_line, start_byte, end_byte
		FROM edges ORDER BY file, start_byte
	`)
	if err != nil {
		return nil, err
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var (
			caller, callee int64
			e              graph.CallEdge
		)
		if err := edgeRows.Scan(&caller, &callee, &e.File,
			&e.Span.StartLine, &e.Span.EndLine, &e.Span.StartByte, &e.Span.EndByte); err != nil {
			return nil, err
		}
		e.Caller = extractor.SymbolID(caller)
		e.Callee = extractor.SymbolID(callee)
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("load edges: %w", err)
		}
	}
	if err := edgeRows.Err(); err != nil {
		return nil, err
	}

	unresRows, err := s.db.QueryContext(ctx, `
		SELECT caller_id, callee_text, reason, file, start_line, end_line, start_byte, end_byte
		FROM unresolved ORDER BY file, start_byte
	`)
	if err != nil {
		return nil, err
	}
	defer unresRows.Close()
	for unresRows.Next() {
		var (
			caller int64
			u      graph.UnresolvedCall
			reason string
		)
		if err := unresRows.Scan(&caller, &u.CalleeText, &reason, &u.File,
			&u.Span.StartLine, &u.Span.EndLine, &u.Span.StartByte, &u.Span.EndByte); err != nil {
			return nil, err
		}
		u.Caller = extractor.SymbolID(caller)
		u.Reason = graph.UnresolvedReason(reason)
		if err := g.AddUnresolved(u); err != nil {
			return nil, fmt.Errorf("load unresolved: %w", err)
		}
	}
	if err := unresRows.Err(); err != nil {
		return nil, err
	}

	failRows, err := s.db.QueryContext(ctx, `SELECT file, error FROM failures ORDER BY file`)
	if err != nil {
		return nil, err
	}
	defer failRows.Close()
	for failRows.Next() {
		var f graph.FileFailure
		if err := failRows.Scan(&f.Path, &f.Err); err != nil {
			return nil, err
		}
		g.Failures = append(g.Failures, f)
	}
	if err := failRows.Err(); err != nil {
		return nil, err
	}

	return g, nil
}
