package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentStore implements domain.DocumentStore on a jsonb documents table
type DocumentStore struct {
	pool *pgxpool.Pool
}

// NewDocumentStore creates a document store on an open pool, which it takes ownership of
func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

// Get retrieves a document by collection and id
func (s *DocumentStore) Get(ctx context.Context, collection, id string) (*domain.Document, error) {
	query := `
		SELECT id, payload
		FROM documents
		WHERE collection = $1 AND id = $2
	`

	var doc domain.Document
	err := s.pool.QueryRow(ctx, query, collection, id).Scan(&doc.ID, &doc.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// Set upserts a document. With merge the stored payload is combined with jsonb concatenation,
// which replaces top-level keys.
func (s *DocumentStore) Set(ctx context.Context, collection, id string, payload []byte, merge bool) error {
	if err := domain.ValidatePayload(payload); err != nil {
		return err
	}

	update := "EXCLUDED.payload"
	if merge {
		update = "documents.payload || EXCLUDED.payload"
	}

	query := `
		INSERT INTO documents (collection, id, payload, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, NOW(), NOW())
		ON CONFLICT (collection, id) DO UPDATE
		SET payload = ` + update + `,
		    updated_at = NOW()
	`

	_, err := s.pool.Exec(ctx, query, collection, id, string(payload))
	if err != nil {
		return fmt.Errorf("failed to set document: %w", err)
	}

	return nil
}

// Update merges patch into an existing document with jsonb concatenation
func (s *DocumentStore) Update(ctx context.Context, collection, id string, patch []byte) (bool, error) {
	if err := domain.ValidatePayload(patch); err != nil {
		return false, err
	}

	query := `
		UPDATE documents
		SET payload = payload || $3::jsonb,
		    updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`

	tag, err := s.pool.Exec(ctx, query, collection, id, string(patch))
	if err != nil {
		return false, fmt.Errorf("failed to update document: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete deletes a document
func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`

	_, err := s.pool.Exec(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

// List retrieves the documents of a collection matching every equality filter, in insertion order
func (s *DocumentStore) List(ctx context.Context, collection string, filters ...domain.Filter) ([]domain.Document, error) {
	query, args := buildListQuery(collection, filters)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// Ping verifies database connectivity
func (s *DocumentStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the underlying pool
func (s *DocumentStore) Close() error {
	s.pool.Close()
	return nil
}

// buildListQuery binds field names as parameters so they never reach the SQL text
func buildListQuery(collection string, filters []domain.Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT id, payload FROM documents WHERE collection = $1")

	args := []any{collection}
	for _, f := range filters {
		args = append(args, f.Field, f.Value)
		fmt.Fprintf(&b, " AND payload->>$%d = $%d", len(args)-1, len(args))
	}
	b.WriteString(" ORDER BY seq ASC")

	return b.String(), args
}
