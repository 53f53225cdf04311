package vectorstore

import "fmt"

const metaSQL = `
CREATE TABLE IF NOT EXISTS store_meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

// schemaSQL returns the DDL for the case index. embeddingDim fixes the
// vec0 column width; cosine distance matches the embedding models in use.
func schemaSQL(embeddingDim int) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS case_chunks (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    source     TEXT NOT NULL,
    position   INTEGER NOT NULL,
    content    TEXT NOT NULL,
    metadata   TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    UNIQUE(source, position)
);

CREATE INDEX IF NOT EXISTS idx_case_chunks_source ON case_chunks(source);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_cases USING vec0(
    chunk_id INTEGER PRIMARY KEY,
    embedding float[%d] distance_metric=cosine
);
`, embeddingDim)
}
