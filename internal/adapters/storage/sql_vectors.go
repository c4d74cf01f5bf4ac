package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/llm-style-responder/internal/core"
	"go.uber.org/zap"
)

// SQL dialects supported by the SQL-backed stores
const (
	DialectSQLite = "sqlite3"
	DialectMySQL  = "mysql"
)

var vectorTableDDL = map[string]string{
	DialectSQLite: `
		CREATE TABLE IF NOT EXISTS style_documents (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			text TEXT NOT NULL,
			metadata TEXT NOT NULL,
			vector BLOB NOT NULL
		)`,
	DialectMySQL: `
		CREATE TABLE IF NOT EXISTS style_documents (
			id VARCHAR(64) PRIMARY KEY,
			position BIGINT NOT NULL,
			text LONGTEXT NOT NULL,
			metadata LONGTEXT NOT NULL,
			vector LONGBLOB NOT NULL,
			INDEX idx_position (position)
		)`,
}

// SQLVectorStore is a SQL implementation of the SimilarityStore interface.
// Vectors are stored as BLOBs and ranked in process.
type SQLVectorStore struct {
	db       *sql.DB
	dialect  string
	embedder core.Embedder
	logger   *zap.Logger
}

// NewSQLiteVectorStore opens or creates a SQLite vector store
func NewSQLiteVectorStore(dbPath string, embedder core.Embedder, logger *zap.Logger) (*SQLVectorStore, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}
	db, err := sql.Open(DialectSQLite, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return newSQLVectorStore(db, DialectSQLite, embedder, logger)
}

// NewMySQLVectorStore connects to a MySQL vector store
func NewMySQLVectorStore(dsn string, embedder core.Embedder, logger *zap.Logger) (*SQLVectorStore, error) {
	db, err := sql.Open(DialectMySQL, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}
	return newSQLVectorStore(db, DialectMySQL, embedder, logger)
}

func newSQLVectorStore(db *sql.DB, dialect string, embedder core.Embedder, logger *zap.Logger) (*SQLVectorStore, error) {
	// Create table if it doesn't exist
	if _, err := db.Exec(vectorTableDDL[dialect]); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLVectorStore{
		db:       db,
		dialect:  dialect,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// Upsert embeds and stores documents, replacing any with the same ID
func (s *SQLVectorStore) Upsert(ctx context.Context, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	vectors, err := embedDocuments(func(texts []string) ([][]float32, error) {
		return s.embedder.Embed(ctx, texts)
	}, docs)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM style_documents`).Scan(&next); err != nil {
		return fmt.Errorf("failed to read next position: %w", err)
	}

	for i, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", doc.ID, err)
		}

		// Existing rows keep their position.
		var position int64
		err = tx.QueryRowContext(ctx, `SELECT position FROM style_documents WHERE id = ?`, doc.ID).Scan(&position)
		switch {
		case err == sql.ErrNoRows:
			position = next
			next++
		case err != nil:
			return fmt.Errorf("failed to look up document %s: %w", doc.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `
			REPLACE INTO style_documents (id, position, text, metadata, vector)
			VALUES (?, ?, ?, ?, ?)
		`, doc.ID, position, doc.Text, string(meta), encodeVector(vectors[i])); err != nil {
			return fmt.Errorf("failed to store document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit documents: %w", err)
	}

	s.logger.Debug("Stored documents", zap.String("dialect", s.dialect), zap.Int("count", len(docs)))
	return nil
}

// Query returns up to k documents ranked by cosine similarity to text
func (s *SQLVectorStore) Query(ctx context.Context, text string, k int) ([]core.ScoredDocument, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, metadata, vector
		FROM style_documents
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var hits []core.ScoredDocument
	for rows.Next() {
		var (
			doc  core.Document
			meta string
			blob []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Text, &meta, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if err := json.Unmarshal([]byte(meta), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for %s: %w", doc.ID, err)
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode vector for %s: %w", doc.ID, err)
		}
		hits = append(hits, core.ScoredDocument{Document: doc, Score: cosine(vectors[0], vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	return topK(hits, k), nil
}

// Count returns the number of stored documents
func (s *SQLVectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM style_documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// Clear removes every stored document
func (s *SQLVectorStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM style_documents`); err != nil {
		return fmt.Errorf("failed to clear documents: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLVectorStore) Close() error {
	return s.db.Close()
}

// ensureDir creates the parent directory of a database file
func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create SQLite directory: %w", err)
	}
	return nil
}
