// Package vectorstore keeps embedded precedent excerpts in SQLite with sqlite-vec.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ppiankov/hanrei/internal/model"
)

func init() {
	sqlite_vec.Auto()
}

// ErrDimensionMismatch is returned when a vector does not fit the index width
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Chunk is one excerpt of a case together with its embedding
type Chunk struct {
	Source    string // Originating file or case key; chunks are replaced per source
	Position  int
	Content   string
	Metadata  model.CaseMetadata
	Embedding []float32
}

// Stats summarizes index contents
type Stats struct {
	Chunks     int `json:"chunks"`
	Embeddings int `json:"embeddings"`
	Sources    int `json:"sources"`
}

// Store is a SQLite-backed case index
type Store struct {
	db           *sql.DB
	embeddingDim int
}

// New opens (or creates) the index at dbPath. An existing index created with
// a different dimension yields ErrDimensionMismatch.
func New(dbPath string, embeddingDim int) (*Store, error) {
	if embeddingDim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension: %d", embeddingDim)
	}

	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := checkDimension(db, embeddingDim); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(schemaSQL(embeddingDim)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{db: db, embeddingDim: embeddingDim}, nil
}

// checkDimension records the dimension on first use and rejects a different one later
func checkDimension(db *sql.DB, embeddingDim int) error {
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("creating meta table: %w", err)
	}

	var stored string
	err := db.QueryRow("SELECT value FROM store_meta WHERE key = 'embedding_dim'").Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.Exec("INSERT INTO store_meta (key, value) VALUES ('embedding_dim', ?)", strconv.Itoa(embeddingDim))
		if err != nil {
			return fmt.Errorf("recording embedding dimension: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading embedding dimension: %w", err)
	}

	if stored != strconv.Itoa(embeddingDim) {
		return fmt.Errorf("%w: index has %s, configured %d", ErrDimensionMismatch, stored, embeddingDim)
	}
	return nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// EmbeddingDim returns the index vector width
func (s *Store) EmbeddingDim() int {
	return s.embeddingDim
}

// ReplaceSource deletes every chunk previously stored for source and inserts
// chunks in its place, atomically. Re-ingesting a file is therefore idempotent.
func (s *Store) ReplaceSource(ctx context.Context, source string, chunks []Chunk) error {
	for i, c := range chunks {
		if len(c.Embedding) != s.embeddingDim {
			return fmt.Errorf("%w: chunk %d has %d, index has %d", ErrDimensionMismatch, i, len(c.Embedding), s.embeddingDim)
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM vec_cases WHERE chunk_id IN (
				SELECT id FROM case_chunks WHERE source = ?
			)`, source); err != nil {
			return fmt.Errorf("deleting embeddings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM case_chunks WHERE source = ?", source); err != nil {
			return fmt.Errorf("deleting chunks: %w", err)
		}

		chunkStmt, err := tx.PrepareContext(ctx,
			"INSERT INTO case_chunks (source, position, content, metadata) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer func() { _ = chunkStmt.Close() }()

		vecStmt, err := tx.PrepareContext(ctx,
			"INSERT INTO vec_cases (chunk_id, embedding) VALUES (?, ?)")
		if err != nil {
			return err
		}
		defer func() { _ = vecStmt.Close() }()

		for _, c := range chunks {
			metadata, err := json.Marshal(c.Metadata)
			if err != nil {
				return fmt.Errorf("encoding metadata: %w", err)
			}

			res, err := chunkStmt.ExecContext(ctx, source, c.Position, c.Content, string(metadata))
			if err != nil {
				return fmt.Errorf("inserting chunk %d: %w", c.Position, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}

			if _, err := vecStmt.ExecContext(ctx, id, serializeFloat32(c.Embedding)); err != nil {
				return fmt.Errorf("inserting embedding %d: %w", c.Position, err)
			}
		}
		return nil
	})
}

// Search returns the k chunks nearest to embedding, most similar first.
// Score is the cosine similarity (1 - cosine distance).
func (s *Store) Search(ctx context.Context, embedding []float32, k int) ([]model.CaseDocument, error) {
	if len(embedding) != s.embeddingDim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(embedding), s.embeddingDim)
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.distance, c.content, c.metadata
		FROM vec_cases v
		JOIN case_chunks c ON c.id = v.chunk_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, serializeFloat32(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []model.CaseDocument
	for rows.Next() {
		var (
			doc      model.CaseDocument
			distance float64
			metadata string
		)
		if err := rows.Scan(&distance, &doc.Content, &metadata); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
		doc.Score = 1.0 - distance
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// HasSource reports whether any chunk is stored for source
func (s *Store) HasSource(ctx context.Context, source string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM case_chunks WHERE source = ?", source).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Stats counts stored chunks, embeddings and sources
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM case_chunks", &stats.Chunks},
		{"SELECT COUNT(*) FROM vec_cases", &stats.Embeddings},
		{"SELECT COUNT(DISTINCT source) FROM case_chunks", &stats.Sources},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("%s: %w", q.query, err)
		}
	}
	return stats, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// serializeFloat32 converts a float32 slice to little-endian bytes for sqlite-vec
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
