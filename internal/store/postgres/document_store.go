// Package postgres implements the document store contract on top of
// PostgreSQL, with one JSONB row per document.
package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SaveNTravel/saventravel-backend/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool used by the store. Tests substitute a
// pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// DocumentStore implements store.DocumentStore using a documents table keyed
// by (collection, id) with the document body in a JSONB column.
type DocumentStore struct {
	db DB
}

// NewDocumentStore creates a DocumentStore over the given pool.
func NewDocumentStore(db DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Query returns all documents in a collection matching every predicate.
// Equality predicates compile to JSONB containment on the document; array
// membership compiles to containment on the field. Both forms are served by
// the GIN index on doc.
func (s *DocumentStore) Query(ctx context.Context, collection string, preds ...store.Predicate) ([]store.Document, error) {
	query := `SELECT id, doc FROM documents WHERE collection = $1`
	args := []interface{}{collection}

	for _, p := range preds {
		switch p.Op {
		case store.OpEqual:
			probe, err := json.Marshal(map[string]interface{}{p.Field: p.Value})
			if err != nil {
				return nil, fmt.Errorf("encode predicate %q: %w", p.Field, err)
			}
			args = append(args, string(probe))
			query += fmt.Sprintf(" AND doc @> $%d::jsonb", len(args))
		case store.OpArrayContains:
			probe, err := json.Marshal([]interface{}{p.Value})
			if err != nil {
				return nil, fmt.Errorf("encode predicate %q: %w", p.Field, err)
			}
			args = append(args, p.Field, string(probe))
			query += fmt.Sprintf(" AND doc->$%d @> $%d::jsonb", len(args)-1, len(args))
		default:
			return nil, fmt.Errorf("unsupported predicate operator %q", p.Op)
		}
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		data, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, store.Document{ID: id, Data: data})
	}
	return docs, rows.Err()
}

// Get returns one document by ID.
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	query := `SELECT doc FROM documents WHERE collection = $1 AND id = $2`

	var raw []byte
	err := s.db.QueryRow(ctx, query, collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Document{}, store.ErrNotFound
		}
		return store.Document{}, err
	}

	data, err := decodeDoc(raw)
	if err != nil {
		return store.Document{}, err
	}
	return store.Document{ID: id, Data: data}, nil
}

// Set creates or fully replaces a document.
func (s *DocumentStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, doc)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`

	_, err = s.db.Exec(ctx, query, collection, id, string(raw))
	return err
}

// Update merges partial data into an existing document.
func (s *DocumentStore) Update(ctx context.Context, collection, id string, partial map[string]interface{}) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("encode partial document: %w", err)
	}

	query := `
		UPDATE documents
		SET doc = doc || $3::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2`

	tag, err := s.db.Exec(ctx, query, collection, id, string(raw))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes a document. Missing documents are not an error.
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	_, err := s.db.Exec(ctx, query, collection, id)
	return err
}

// Add creates a document under a generated UUID and returns it.
func (s *DocumentStore) Add(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// decodeDoc unmarshals a JSONB body preserving numeric precision: numbers
// come back as json.Number, never float64.
func decodeDoc(raw []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]interface{}
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return data, nil
}
