package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/types"
)

// VectorConfig holds configuration for the SQLite vector store.
type VectorConfig struct {
	// Path is the database file path.
	Path string `yaml:"path" json:"path" mapstructure:"path" validate:"required"`

	// Dimensions is the embedding dimensionality of the vec0 table.
	Dimensions int `yaml:"dimensions" json:"dimensions" mapstructure:"dimensions" validate:"gt=0"`
}

// Validate checks if the VectorConfig is usable.
func (c VectorConfig) Validate() error {
	if c.Path == "" {
		return types.NewError(types.STORAGE_FAILED, "vector store path cannot be empty")
	}
	if c.Dimensions <= 0 {
		return types.NewError(types.STORAGE_FAILED,
			fmt.Sprintf("vector store dimensions must be positive, got %d", c.Dimensions))
	}
	return nil
}

// VectorStore persists chunks in SQLite and their embeddings in a vec0
// virtual table for cosine similarity search. It doubles as the source
// catalog: sources, their content hashes and active flags live here.
type VectorStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dims   int
	logger *slog.Logger
	closed bool
}

// ChunkHit is a similarity search result.
type ChunkHit struct {
	Chunk    *source.ProcessedChunk
	Distance float64
}

// SourceRecord is a catalog row for an ingested source.
type SourceRecord struct {
	ID          types.ID
	Name        string
	Type        source.SourceType
	Path        string
	ContentHash string
	IsActive    bool
	IngestedAt  time.Time
}

// NewVectorStore opens or creates the store, loading the sqlite-vec
// extension and initializing the schema.
func NewVectorStore(cfg VectorConfig, logger *slog.Logger) (*VectorStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, NewStorageError("failed to create database directory", err)
		}
	}

	// Registers the vec0 module for all future sqlite3 connections.
	sqlite_vec.Auto()

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000", cfg.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, NewStorageError("failed to open database", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStorageError("failed to ping database", err)
	}

	store := &VectorStore{
		db:     db,
		dims:   cfg.Dimensions,
		logger: logger.With("component", "vector_store"),
	}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, NewStorageError("failed to initialize schema", err)
	}
	return store, nil
}

func (s *VectorStore) initSchema() error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			source_type TEXT NOT NULL,
			source_path TEXT,
			content_hash TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			ingested_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sources_path ON sources(source_path)`,
		`CREATE INDEX IF NOT EXISTS idx_sources_hash ON sources(content_hash)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			source_id TEXT NOT NULL,
			chunk_type TEXT NOT NULL,
			content TEXT NOT NULL,
			title TEXT,
			summary TEXT,
			metadata TEXT,
			has_embedding INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source_id)`,
		fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
			chunk_id TEXT,
			embedding FLOAT[%d] distance_metric=cosine
		)`, s.dims),
	}
	for _, ddl := range schemas {
		if _, err := s.db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the storer identifier.
func (s *VectorStore) Name() string { return "vector" }

// Store persists the result's chunks in one transaction. Chunks without
// embeddings land in the chunks table only; embedded chunks additionally get
// a vec0 row.
func (s *VectorStore) Store(ctx context.Context, src *source.DataSource, result *source.ProcessingResult) (*StoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, NewStorageError("vector store is closed", nil)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewStorageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stored := 0
	for _, chunk := range result.Chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return nil, NewStorageError(fmt.Sprintf("failed to serialize chunk %s metadata", chunk.ID), err)
		}

		hasEmbedding := 0
		if chunk.HasEmbedding() {
			hasEmbedding = 1
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO chunks
				(id, source_id, chunk_type, content, title, summary, metadata, has_embedding, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			chunk.ID.String(), chunk.SourceID.String(), chunk.Type.String(),
			chunk.Content, chunk.Title, chunk.Summary, string(metadataJSON),
			hasEmbedding, chunk.CreatedAt)
		if err != nil {
			return nil, NewStorageError(fmt.Sprintf("failed to insert chunk %s", chunk.ID), err)
		}

		if chunk.HasEmbedding() {
			if len(chunk.Embedding) != s.dims {
				return nil, NewStorageError(fmt.Sprintf(
					"chunk %s embedding has %d dimensions, store expects %d",
					chunk.ID, len(chunk.Embedding), s.dims), nil)
			}
			embBytes, err := sqlite_vec.SerializeFloat32(toFloat32(chunk.Embedding))
			if err != nil {
				return nil, NewStorageError("failed to serialize embedding", err)
			}
			// vec0 has no upsert; clear any prior row so a retried write
			// stays idempotent per chunk ID.
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM vec_chunks WHERE chunk_id = ?`, chunk.ID.String()); err != nil {
				return nil, NewStorageError(fmt.Sprintf("failed to clear embedding for chunk %s", chunk.ID), err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)`,
				chunk.ID.String(), embBytes); err != nil {
				return nil, NewStorageError(fmt.Sprintf("failed to insert embedding for chunk %s", chunk.ID), err)
			}
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return nil, NewStorageError("failed to commit transaction", err)
	}

	out := NewStoreResult()
	out.AddSink(s.Name(), SinkResult{ChunksStored: stored})
	return out, nil
}

// SearchSimilar returns the chunks nearest to the query embedding by cosine
// distance.
func (s *VectorStore) SearchSimilar(ctx context.Context, embedding []float64, limit int) ([]ChunkHit, error) {
	if len(embedding) != s.dims {
		return nil, NewStorageError(fmt.Sprintf(
			"query embedding has %d dimensions, store expects %d", len(embedding), s.dims), nil)
	}
	if limit <= 0 {
		limit = 10
	}

	queryBytes, err := sqlite_vec.SerializeFloat32(toFloat32(embedding))
	if err != nil {
		return nil, NewStorageError("failed to serialize query embedding", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, NewStorageError("vector store is closed", nil)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.source_id, c.chunk_type, c.content, c.title, c.summary, c.metadata, v.distance
		FROM vec_chunks v
		JOIN chunks c ON c.id = v.chunk_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`,
		queryBytes, limit)
	if err != nil {
		return nil, NewStorageError("similarity search failed", err)
	}
	defer rows.Close()

	var hits []ChunkHit
	for rows.Next() {
		var (
			id, sourceID, chunkType, content string
			title, summary, metadataJSON     sql.NullString
			distance                         float64
		)
		if err := rows.Scan(&id, &sourceID, &chunkType, &content, &title, &summary, &metadataJSON, &distance); err != nil {
			return nil, NewStorageError("failed to scan search result", err)
		}
		chunk := &source.ProcessedChunk{
			ID:       types.ID(id),
			SourceID: types.ID(sourceID),
			Type:     source.ChunkType(chunkType),
			Content:  content,
			Title:    title.String,
			Summary:  summary.String,
		}
		if metadataJSON.Valid && metadataJSON.String != "" {
			_ = json.Unmarshal([]byte(metadataJSON.String), &chunk.Metadata)
		}
		hits = append(hits, ChunkHit{Chunk: chunk, Distance: distance})
	}
	return hits, rows.Err()
}

// RecordSource upserts the catalog row for a source.
func (s *VectorStore) RecordSource(ctx context.Context, src *source.DataSource, contentHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return NewStorageError("vector store is closed", nil)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sources (id, name, source_type, source_path, content_hash, is_active)
		VALUES (?, ?, ?, ?, ?, 1)`,
		src.ID.String(), src.Name, src.Type.String(), src.Path, contentHash)
	if err != nil {
		return NewStorageError("failed to record source", err)
	}
	return nil
}

// LookupSourceByPath returns the catalog row for a path, or nil when the
// path was never ingested.
func (s *VectorStore) LookupSourceByPath(ctx context.Context, path string) (*SourceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanSource(s.db.QueryRowContext(ctx, `
		SELECT id, name, source_type, source_path, content_hash, is_active, ingested_at
		FROM sources WHERE source_path = ?`, path))
}

// LookupSource returns the catalog row for a source ID, or nil when unknown.
func (s *VectorStore) LookupSource(ctx context.Context, id types.ID) (*SourceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanSource(s.db.QueryRowContext(ctx, `
		SELECT id, name, source_type, source_path, content_hash, is_active, ingested_at
		FROM sources WHERE id = ?`, id.String()))
}

func (s *VectorStore) scanSource(row *sql.Row) (*SourceRecord, error) {
	var rec SourceRecord
	var id, sourceType string
	var path sql.NullString
	var active int
	err := row.Scan(&id, &rec.Name, &sourceType, &path, &rec.ContentHash, &active, &rec.IngestedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, NewStorageError("failed to scan source record", err)
	}
	rec.ID = types.ID(id)
	rec.Type = source.SourceType(sourceType)
	rec.Path = path.String
	rec.IsActive = active != 0
	return &rec, nil
}

// ListSources returns all catalog rows.
func (s *VectorStore) ListSources(ctx context.Context) ([]SourceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, source_type, source_path, content_hash, is_active, ingested_at
		FROM sources ORDER BY ingested_at`)
	if err != nil {
		return nil, NewStorageError("failed to list sources", err)
	}
	defer rows.Close()

	var records []SourceRecord
	for rows.Next() {
		var rec SourceRecord
		var id, sourceType string
		var path sql.NullString
		var active int
		if err := rows.Scan(&id, &rec.Name, &sourceType, &path, &rec.ContentHash, &active, &rec.IngestedAt); err != nil {
			return nil, NewStorageError("failed to scan source record", err)
		}
		rec.ID = types.ID(id)
		rec.Type = source.SourceType(sourceType)
		rec.Path = path.String
		rec.IsActive = active != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeactivateSource marks a source inactive without deleting its chunks.
func (s *VectorStore) DeactivateSource(ctx context.Context, id types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `UPDATE sources SET is_active = 0 WHERE id = ?`, id.String())
	if err != nil {
		return NewStorageError("failed to deactivate source", err)
	}
	return nil
}

// DeleteChunksForSource removes a source's chunks and embeddings, used when
// re-ingesting changed content.
func (s *VectorStore) DeleteChunksForSource(ctx context.Context, sourceID types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM vec_chunks WHERE chunk_id IN (SELECT id FROM chunks WHERE source_id = ?)`,
		sourceID.String()); err != nil {
		return NewStorageError("failed to delete embeddings", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE source_id = ?`, sourceID.String()); err != nil {
		return NewStorageError("failed to delete chunks", err)
	}
	return nil
}

// CountChunks returns the total number of stored chunks.
func (s *VectorStore) CountChunks(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, NewStorageError("failed to count chunks", err)
	}
	return count, nil
}

// Health pings the database.
func (s *VectorStore) Health(ctx context.Context) types.HealthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return types.Unhealthy("vector store is closed")
	}
	if err := s.db.PingContext(ctx); err != nil {
		return types.Unhealthy(fmt.Sprintf("database ping failed: %v", err))
	}
	return types.Healthy("vector store operational")
}

// Close closes the underlying database.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
