package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/graphlore/graphlore/internal/config"
	"github.com/graphlore/graphlore/internal/embedding"
	"github.com/graphlore/graphlore/internal/graph"
	"github.com/graphlore/graphlore/internal/loader"
	"github.com/graphlore/graphlore/internal/pipeline"
	"github.com/graphlore/graphlore/internal/rank"
	"github.com/graphlore/graphlore/internal/store"
	"github.com/graphlore/graphlore/internal/transform"
)

// runtime holds the wired components a command needs. Close releases
// them in reverse construction order.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	embedder embedding.Embedder
	vectors  *store.VectorStore
	graph    graph.Client
	index    *rank.Index
	storer   store.Storer
}

// newRuntime builds the component graph from the loaded configuration.
// The vector store opens and the graph client connects concurrently.
func newRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, logger: logger}

	embedder, err := embedding.NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	rt.embedder = embedder

	vectorCfg := cfg.Vector
	if vectorCfg.Dimensions <= 0 {
		vectorCfg.Dimensions = embedder.Dimensions()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vectors, err := store.NewVectorStore(vectorCfg, logger)
		if err != nil {
			return err
		}
		rt.vectors = vectors
		return nil
	})
	g.Go(func() error {
		index, err := rank.OpenIndex(filepath.Join(cfg.Core.DataDir, "fulltext.bleve"))
		if err != nil {
			return err
		}
		rt.index = index
		return nil
	})
	if cfg.Graph.Enabled {
		g.Go(func() error {
			client, err := graph.NewNeo4jClient(cfg.Graph.Neo4j)
			if err != nil {
				return err
			}
			if err := client.Connect(gctx); err != nil {
				return err
			}
			rt.graph = client
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		rt.Close(ctx)
		return nil, err
	}

	sinks := []store.Storer{rt.vectors, rank.NewIndexStorer(rt.index)}
	if rt.graph != nil {
		sinks = append(sinks, store.NewGraphStore(rt.graph, logger))
	}

	registry := store.NewRegistry(logger)
	for _, sink := range sinks {
		registry.Register(sink)
	}
	registry.Register(store.NewHybridStorer(logger, sinks...))
	storer, err := registry.Get("hybrid")
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	rt.storer = storer
	return rt, nil
}

// orchestrator builds an ingestion orchestrator over the runtime's
// components.
func (rt *runtime) orchestrator(force bool) *pipeline.Orchestrator {
	generator := embedding.NewGenerator(rt.embedder, rt.logger)
	return pipeline.NewOrchestrator(
		loader.NewRegistry(rt.logger),
		transform.NewRegistry(rt.logger),
		generator,
		rt.storer,
		rt.vectors,
		rt.logger,
	).WithConcurrency(rt.cfg.Pipeline.Concurrency).WithForce(force)
}

// Close releases the runtime's resources.
func (rt *runtime) Close(ctx context.Context) {
	if rt.graph != nil {
		if err := rt.graph.Close(ctx); err != nil {
			rt.logger.Warn("failed to close graph client", "error", err)
		}
	}
	if rt.index != nil {
		if err := rt.index.Close(); err != nil {
			rt.logger.Warn("failed to close fulltext index", "error", err)
		}
	}
	if rt.vectors != nil {
		if err := rt.vectors.Close(); err != nil {
			rt.logger.Warn("failed to close vector store", "error", err)
		}
	}
}
