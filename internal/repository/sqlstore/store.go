package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/sitepublish/internal/domain"
)

// Store implements domain.DocumentStore over database/sql
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the database and creates the documents table when missing
func Open(ctx context.Context, dialect Dialect, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s dsn is required", dialect.Name)
	}

	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect.MaxOpenConns > 0 {
		db.SetMaxOpenConns(dialect.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &Store{db: db, dialect: dialect}, nil
}

// Get retrieves a document by collection and id
func (s *Store) Get(ctx context.Context, collection, id string) (*domain.Document, error) {
	query := `SELECT id, payload FROM documents WHERE collection = ? AND id = ?`

	var doc domain.Document
	var payload string
	err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&doc.ID, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc.Data = []byte(payload)

	return &doc, nil
}

// Set upserts a document. Merges are read-modify-write inside a transaction.
func (s *Store) Set(ctx context.Context, collection, id string, payload []byte, merge bool) error {
	if err := domain.ValidatePayload(payload); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE collection = ? AND id = ?`+s.dialect.LockClause,
		collection, id,
	).Scan(&current)

	now := time.Now().UTC()
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx,
			`INSERT INTO documents (collection, id, payload, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			collection, id, string(payload), now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read document: %w", err)
	default:
		if merge {
			payload, err = domain.MergePayload([]byte(current), payload)
			if err != nil {
				return err
			}
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE documents SET payload = ?, updated_at = ? WHERE collection = ? AND id = ?`,
			string(payload), now, collection, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}
	return nil
}

// Update merges patch into an existing document inside a transaction
func (s *Store) Update(ctx context.Context, collection, id string, patch []byte) (bool, error) {
	if err := domain.ValidatePayload(patch); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT payload FROM documents WHERE collection = ? AND id = ?`+s.dialect.LockClause,
		collection, id,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read document: %w", err)
	}

	merged, err := domain.MergePayload([]byte(current), patch)
	if err != nil {
		return false, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET payload = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		string(merged), time.Now().UTC(), collection, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit document: %w", err)
	}
	return true, nil
}

// Delete deletes a document
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// List retrieves the documents of a collection matching every equality filter, in insertion order
func (s *Store) List(ctx context.Context, collection string, filters ...domain.Filter) ([]domain.Document, error) {
	query, args := s.buildListQuery(collection, filters)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		var payload string
		if err := rows.Scan(&doc.ID, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.Data = []byte(payload)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) buildListQuery(collection string, filters []domain.Filter) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT id, payload FROM documents WHERE collection = ?")

	args := []any{collection}
	for _, f := range filters {
		b.WriteString(" AND ")
		b.WriteString(s.dialect.FieldExpr)
		args = append(args, jsonPath(f.Field), f.Value)
	}
	b.WriteString(" ORDER BY seq ASC")

	return b.String(), args
}
