// Package sqlite provides a concrete implementation of the persistence.Store
// interface for SQLite databases. Documents are stored one table per
// collection, as JSON bodies keyed by id; no filter is ever pushed down into
// SQL — the filtering pass above this layer works in memory.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/SpectralDragon/percy/core/persistence"
	"github.com/SpectralDragon/percy/core/schema"
	"go.uber.org/zap"
)

// dbRunner abstracts the common methods of *sql.DB and *sql.Tx, allowing the
// same code to be used for both transactional and non-transactional
// operations.
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Store is the SQLite-backed document store. It can operate in both
// transactional and non-transactional modes.
type Store struct {
	db     *sql.DB
	tx     *sql.Tx
	logger *zap.Logger
}

var _ persistence.Store = (*Store)(nil)

// NewStore creates a new SQLite store over an open database handle. Passing a
// non-nil *sql.Tx scopes the store to that transaction.
func NewStore(db *sql.DB, logger *zap.Logger, tx *sql.Tx) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, tx: tx, logger: logger}
}

// runner returns the appropriate dbRunner for the current context, either the
// database connection pool or the active transaction.
func (s *Store) runner() dbRunner {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// CreateCollection ensures the collection table exists.
func (s *Store) CreateCollection(ctx context.Context, collection string) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (id TEXT PRIMARY KEY, body TEXT NOT NULL)`, collection)
	s.logger.Debug("Executing SQL CREATE TABLE", zap.String("sql", query))

	if _, err := s.runner().ExecContext(ctx, query); err != nil {
		s.logger.Error("Failed to create collection table", zap.Error(err), zap.String("collection", collection))
		return fmt.Errorf("failed to create collection '%s': %w", collection, err)
	}
	return nil
}

// SelectDocuments returns every document in the collection in insertion
// (rowid) order.
func (s *Store) SelectDocuments(ctx context.Context, collection string) ([]schema.Document, error) {
	query := fmt.Sprintf(`SELECT body FROM %q ORDER BY rowid`, collection)
	s.logger.Debug("Executing SQL SELECT", zap.String("sql", query))

	rows, err := s.runner().QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", query))
		return nil, fmt.Errorf("failed to select documents from '%s': %w", collection, err)
	}
	defer rows.Close()

	var docs []schema.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var doc schema.Document
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document body: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return docs, nil
}

// InsertDocuments persists the given documents. Every document must carry a
// string id.
func (s *Store) InsertDocuments(ctx context.Context, collection string, docs []schema.Document) error {
	if len(docs) == 0 {
		return nil
	}
	query := fmt.Sprintf(`INSERT INTO %q (id, body) VALUES (?, ?)`, collection)

	for _, doc := range docs {
		id, ok := doc[persistence.DocumentIDField].(string)
		if !ok || id == "" {
			return fmt.Errorf("document for collection '%s' has no '%s' field", collection, persistence.DocumentIDField)
		}
		body, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode document '%s': %w", id, err)
		}

		s.logger.Debug("Executing SQL INSERT", zap.String("sql", query), zap.String("id", id))
		if _, err := s.runner().ExecContext(ctx, query, id, string(body)); err != nil {
			s.logger.Error("Failed to execute INSERT query", zap.Error(err), zap.String("sql", query))
			return fmt.Errorf("failed to insert document '%s' into '%s': %w", id, collection, err)
		}
	}
	return nil
}

// UpdateDocument replaces the document with the given id.
func (s *Store) UpdateDocument(ctx context.Context, collection string, id string, doc schema.Document) (int64, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to encode document '%s': %w", id, err)
	}

	query := fmt.Sprintf(`UPDATE %q SET body = ? WHERE id = ?`, collection)
	s.logger.Debug("Executing SQL UPDATE", zap.String("sql", query), zap.String("id", id))

	result, err := s.runner().ExecContext(ctx, query, string(body), id)
	if err != nil {
		s.logger.Error("Failed to execute UPDATE query", zap.Error(err), zap.String("sql", query))
		return 0, fmt.Errorf("failed to update document '%s' in '%s': %w", id, collection, err)
	}
	return result.RowsAffected()
}

// DeleteDocuments removes the documents with the given ids.
func (s *Store) DeleteDocuments(ctx context.Context, collection string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	query := fmt.Sprintf(`DELETE FROM %q WHERE id IN (%s)`, collection, placeholders)
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	s.logger.Debug("Executing SQL DELETE", zap.String("sql", query), zap.Int("ids", len(ids)))
	result, err := s.runner().ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to execute DELETE query", zap.Error(err), zap.String("sql", query))
		return 0, fmt.Errorf("failed to delete documents from '%s': %w", collection, err)
	}
	return result.RowsAffected()
}

// StartTransaction begins a new database transaction and returns a new Store
// scoped to it.
func (s *Store) StartTransaction(ctx context.Context) (*Store, error) {
	if s.tx != nil {
		return nil, fmt.Errorf("cannot start a new transaction from an existing transactional store")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.logger.Debug("Transaction initiated, returning new transactional store")
	return NewStore(s.db, s.logger, tx), nil
}

// Commit commits the current transaction.
func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return fmt.Errorf("commit not applicable: not in a transactional context")
	}
	s.logger.Debug("Committing transaction")
	return s.tx.Commit()
}

// Rollback rolls back the current transaction.
func (s *Store) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return fmt.Errorf("rollback not applicable: not in a transactional context")
	}
	s.logger.Debug("Rolling back transaction")
	return s.tx.Rollback()
}
