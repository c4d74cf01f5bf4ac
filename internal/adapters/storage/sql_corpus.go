package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mikey/llm-style-responder/internal/core"
	"go.uber.org/zap"
)

var corpusTableDDL = map[string]string{
	DialectSQLite: `
		CREATE TABLE IF NOT EXISTS corpus_messages (
			position INTEGER PRIMARY KEY,
			filename TEXT NOT NULL,
			sender TEXT NOT NULL,
			recipients TEXT NOT NULL,
			cc TEXT NOT NULL,
			subject TEXT NOT NULL,
			sent_at TEXT NOT NULL,
			body TEXT NOT NULL,
			message_id TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			body_status INTEGER NOT NULL,
			extracted_by TEXT NOT NULL,
			parse_error TEXT NOT NULL,
			duplicate_of TEXT NOT NULL
		)`,
	DialectMySQL: `
		CREATE TABLE IF NOT EXISTS corpus_messages (
			position BIGINT PRIMARY KEY,
			filename VARCHAR(1024) NOT NULL,
			sender VARCHAR(1024) NOT NULL,
			recipients TEXT NOT NULL,
			cc TEXT NOT NULL,
			subject TEXT NOT NULL,
			sent_at VARCHAR(255) NOT NULL,
			body LONGTEXT NOT NULL,
			message_id VARCHAR(1024) NOT NULL,
			fingerprint CHAR(32) NOT NULL,
			body_status TINYINT NOT NULL,
			extracted_by VARCHAR(32) NOT NULL,
			parse_error TEXT NOT NULL,
			duplicate_of VARCHAR(1024) NOT NULL
		)`,
}

// SQLCorpusRepository is a SQL implementation of the CorpusRepository interface
type SQLCorpusRepository struct {
	db      *sql.DB
	dialect string
	logger  *zap.Logger
}

// NewSQLiteCorpusRepository opens or creates a SQLite corpus repository
func NewSQLiteCorpusRepository(dbPath string, logger *zap.Logger) (*SQLCorpusRepository, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}
	db, err := sql.Open(DialectSQLite, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return newSQLCorpusRepository(db, DialectSQLite, logger)
}

// NewMySQLCorpusRepository connects to a MySQL corpus repository
func NewMySQLCorpusRepository(dsn string, logger *zap.Logger) (*SQLCorpusRepository, error) {
	db, err := sql.Open(DialectMySQL, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}
	return newSQLCorpusRepository(db, DialectMySQL, logger)
}

func newSQLCorpusRepository(db *sql.DB, dialect string, logger *zap.Logger) (*SQLCorpusRepository, error) {
	if _, err := db.Exec(corpusTableDDL[dialect]); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &SQLCorpusRepository{db: db, dialect: dialect, logger: logger}, nil
}

// Save replaces the stored corpus in one transaction
func (r *SQLCorpusRepository) Save(ctx context.Context, corpus core.Corpus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM corpus_messages`); err != nil {
		return fmt.Errorf("failed to clear corpus: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO corpus_messages (
			position, filename, sender, recipients, cc, subject, sent_at, body,
			message_id, fingerprint, body_status, extracted_by, parse_error, duplicate_of
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range corpus {
		msg := &corpus[i]
		recipients, err := json.Marshal(msg.Recipients)
		if err != nil {
			return fmt.Errorf("failed to encode recipients for %s: %w", msg.Filename, err)
		}
		cc, err := json.Marshal(msg.Cc)
		if err != nil {
			return fmt.Errorf("failed to encode cc for %s: %w", msg.Filename, err)
		}

		if _, err := stmt.ExecContext(ctx,
			i, msg.Filename, msg.Sender, string(recipients), string(cc), msg.Subject, msg.SentAt, msg.Body,
			msg.MessageID, msg.Fingerprint, int(msg.BodyStatus), msg.ExtractedBy, msg.ParseError, msg.DuplicateOf,
		); err != nil {
			return fmt.Errorf("failed to store message %s: %w", msg.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit corpus: %w", err)
	}

	r.logger.Debug("Saved corpus", zap.String("dialect", r.dialect), zap.Int("messages", len(corpus)))
	return nil
}

// Load returns the stored corpus in insertion order
func (r *SQLCorpusRepository) Load(ctx context.Context) (core.Corpus, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT filename, sender, recipients, cc, subject, sent_at, body,
			message_id, fingerprint, body_status, extracted_by, parse_error, duplicate_of
		FROM corpus_messages
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus: %w", err)
	}
	defer rows.Close()

	var corpus core.Corpus
	for rows.Next() {
		var (
			msg        core.NormalizedMessage
			recipients string
			cc         string
			status     int
		)
		if err := rows.Scan(
			&msg.Filename, &msg.Sender, &recipients, &cc, &msg.Subject, &msg.SentAt, &msg.Body,
			&msg.MessageID, &msg.Fingerprint, &status, &msg.ExtractedBy, &msg.ParseError, &msg.DuplicateOf,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if err := json.Unmarshal([]byte(recipients), &msg.Recipients); err != nil {
			return nil, fmt.Errorf("failed to decode recipients for %s: %w", msg.Filename, err)
		}
		if err := json.Unmarshal([]byte(cc), &msg.Cc); err != nil {
			return nil, fmt.Errorf("failed to decode cc for %s: %w", msg.Filename, err)
		}
		msg.BodyStatus = core.BodyStatus(status)
		corpus = append(corpus, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	return corpus, nil
}

// Clear removes the stored corpus
func (r *SQLCorpusRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM corpus_messages`); err != nil {
		return fmt.Errorf("failed to clear corpus: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *SQLCorpusRepository) Close() error {
	return r.db.Close()
}
