package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/mcpland/internal/core/domain"
	"github.com/custodia-labs/mcpland/internal/core/ports/driven"
	"github.com/custodia-labs/mcpland/internal/logger"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// UpsertSource stores or updates a source.
func (s *chunkStore) UpsertSource(ctx context.Context, source domain.Source) error {
	meta, err := marshalMeta(source.Metadata)
	if err != nil {
		return err
	}
	if source.UpdatedAt.IsZero() {
		source.UpdatedAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sources (id, meta, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			meta = excluded.meta,
			updated_at = excluded.updated_at
	`, source.ID, meta, source.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// GetSource retrieves a source by ID.
func (s *chunkStore) GetSource(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, meta, updated_at FROM sources WHERE id = ?
	`, id)

	var source domain.Source
	var meta sql.NullString
	var updatedAt int64
	if err := row.Scan(&source.ID, &meta, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	if meta.Valid && meta.String != "" && meta.String != jsonNull {
		if err := json.Unmarshal([]byte(meta.String), &source.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling source metadata: %w", err)
		}
	}
	source.UpdatedAt = time.UnixMilli(updatedAt)

	return &source, nil
}

// HasChunkHash reports whether sourceID already holds a chunk with hash.
func (s *chunkStore) HasChunkHash(ctx context.Context, sourceID, hash string) (bool, error) {
	var one int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT 1 FROM chunks WHERE source_id = ? AND hash = ? LIMIT 1
	`, sourceID, hash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking chunk hash: %w", err)
	}
	return true, nil
}

// InsertChunk stores a new chunk. The owning source must exist.
func (s *chunkStore) InsertChunk(ctx context.Context, chunk domain.Chunk) error {
	embedding, err := json.Marshal(chunk.Embedding)
	if err != nil {
		return fmt.Errorf("marshalling embedding: %w", err)
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO chunks (id, source_id, idx, content, hash, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, chunk.ID, chunk.SourceID, chunk.Index, chunk.Content, chunk.ContentHash,
		string(embedding), chunk.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("inserting chunk: %w", err)
	}
	return nil
}

// ListChunks returns chunks in storage order, for one source or for all
// when sourceID is empty. Rows whose embedding is not valid JSON are skipped.
func (s *chunkStore) ListChunks(ctx context.Context, sourceID string) ([]domain.Chunk, error) {
	query := `
		SELECT id, source_id, idx, content, hash, embedding, created_at
		FROM chunks`
	var args []any
	if sourceID != "" {
		query += " WHERE source_id = ?"
		args = append(args, sourceID)
	}
	query += " ORDER BY rowid"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		if chunk == nil {
			continue
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// CountChunks returns the number of chunks stored for sourceID.
func (s *chunkStore) CountChunks(ctx context.Context, sourceID string) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chunks WHERE source_id = ?
	`, sourceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *chunkStore) Close() error {
	return s.store.Close()
}

// scanChunk scans a chunk from *sql.Rows. It returns nil without error when
// the stored embedding cannot be decoded.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embedding string
	var createdAt int64

	if err := rows.Scan(&chunk.ID, &chunk.SourceID, &chunk.Index, &chunk.Content,
		&chunk.ContentHash, &embedding, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	if err := json.Unmarshal([]byte(embedding), &chunk.Embedding); err != nil {
		logger.Warn("Skipping chunk %s with corrupt embedding: %v", chunk.ID, err)
		return nil, nil
	}
	chunk.CreatedAt = time.UnixMilli(createdAt)

	return &chunk, nil
}

// marshalMeta encodes source metadata, storing NULL for empty metadata.
func marshalMeta(meta map[string]any) (sql.NullString, error) {
	if len(meta) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshalling metadata: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
