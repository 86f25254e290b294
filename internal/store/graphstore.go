package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/graphlore/graphlore/internal/graph"
	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/types"
)

// GraphStore mirrors processing results into the graph database. Sources and
// chunks become nodes linked by CONTAINS edges; extracted relations become
// merged Entity nodes with typed edges, so repeated ingestion of the same
// relation stays idempotent.
type GraphStore struct {
	client graph.Client
	logger *slog.Logger
}

// NewGraphStore creates a GraphStore over a connected graph client.
func NewGraphStore(client graph.Client, logger *slog.Logger) *GraphStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphStore{
		client: client,
		logger: logger.With("component", "graph_store"),
	}
}

// Name returns the storer identifier.
func (s *GraphStore) Name() string { return "graph" }

// Store writes the source node, its chunk nodes, and all extracted entity
// relations.
func (s *GraphStore) Store(ctx context.Context, src *source.DataSource, result *source.ProcessingResult) (*StoreResult, error) {
	if _, err := s.client.Write(ctx, `
		MERGE (s:Source {id: $id})
		SET s.name = $name, s.source_type = $type, s.source_path = $path`,
		map[string]any{
			"id":   src.ID.String(),
			"name": src.Name,
			"type": src.Type.String(),
			"path": src.Path,
		}); err != nil {
		return nil, NewStorageError(fmt.Sprintf("failed to merge source node %s", src.ID), err)
	}

	chunksStored := 0
	for _, chunk := range result.Chunks {
		if _, err := s.client.Write(ctx, `
			MATCH (s:Source {id: $source_id})
			MERGE (c:Chunk {id: $id})
			SET c.chunk_type = $type, c.title = $title, c.summary = $summary, c.content = $content
			MERGE (s)-[:CONTAINS]->(c)`,
			map[string]any{
				"source_id": chunk.SourceID.String(),
				"id":        chunk.ID.String(),
				"type":      chunk.Type.String(),
				"title":     chunk.Title,
				"summary":   chunk.Summary,
				"content":   chunk.Content,
			}); err != nil {
			return nil, NewStorageError(fmt.Sprintf("failed to store chunk node %s", chunk.ID), err)
		}
		chunksStored++
	}

	relationsStored := 0
	for _, rel := range result.Relations {
		props := map[string]any{"source_id": rel.SourceID.String()}
		for k, v := range rel.Properties {
			props[k] = v
		}
		if err := s.client.MergeEntityRelation(ctx, rel.FromEntity, rel.ToEntity, rel.Type.String(), props); err != nil {
			return nil, NewStorageError(
				fmt.Sprintf("failed to store relation %s-[%s]->%s", rel.FromEntity, rel.Type, rel.ToEntity), err)
		}
		relationsStored++
	}

	out := NewStoreResult()
	out.AddSink(s.Name(), SinkResult{ChunksStored: chunksStored, RelationsStored: relationsStored})
	return out, nil
}

// Health reports the graph client's health.
func (s *GraphStore) Health(ctx context.Context) types.HealthStatus {
	return s.client.Health(ctx)
}
