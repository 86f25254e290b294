package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/graphlore/graphlore/internal/source"
	"github.com/graphlore/graphlore/internal/types"
)

// HybridStorer writes each result to every underlying sink concurrently.
// Both writes always run to completion: a vector failure never cancels the
// graph write or vice versa, so one healthy sink keeps its data. The call
// succeeds only when every sink succeeds; the per-sink breakdown is in the
// StoreResult either way.
type HybridStorer struct {
	sinks  []Storer
	logger *slog.Logger
}

// NewHybridStorer creates a HybridStorer over the given sinks.
func NewHybridStorer(logger *slog.Logger, sinks ...Storer) *HybridStorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridStorer{
		sinks:  sinks,
		logger: logger.With("component", "hybrid_storer"),
	}
}

// Name returns the storer identifier.
func (h *HybridStorer) Name() string { return "hybrid" }

// Store fans the write out to all sinks and waits for every one of them.
func (h *HybridStorer) Store(ctx context.Context, src *source.DataSource, result *source.ProcessingResult) (*StoreResult, error) {
	if len(h.sinks) == 0 {
		return nil, NewStorageError("hybrid storer has no sinks", nil)
	}

	type outcome struct {
		name   string
		result *StoreResult
		err    error
	}
	outcomes := make([]outcome, len(h.sinks))

	var wg sync.WaitGroup
	for i, sink := range h.sinks {
		wg.Add(1)
		go func(i int, sink Storer) {
			defer wg.Done()
			res, err := sink.Store(ctx, src, result)
			outcomes[i] = outcome{name: sink.Name(), result: res, err: err}
		}(i, sink)
	}
	wg.Wait()

	merged := NewStoreResult()
	var failed []string
	for _, o := range outcomes {
		if o.err != nil {
			failed = append(failed, o.name)
			merged.AddSink(o.name, SinkResult{Error: o.err.Error()})
			h.logger.Error("sink write failed",
				"sink", o.name, "source_id", src.ID, "error", o.err)
			continue
		}
		for name, sink := range o.result.Sinks {
			merged.AddSink(name, sink)
		}
	}

	if len(failed) > 0 {
		sort.Strings(failed)
		return merged, NewStorageError(
			fmt.Sprintf("storage failed for sinks: %s", strings.Join(failed, ", ")), nil)
	}
	return merged, nil
}

// Health aggregates sink health: unhealthy if any sink is unhealthy,
// degraded if any is degraded.
func (h *HybridStorer) Health(ctx context.Context) types.HealthStatus {
	degraded := false
	for _, sink := range h.sinks {
		status := sink.Health(ctx)
		if status.IsUnhealthy() {
			return types.Unhealthy(fmt.Sprintf("sink %s unhealthy: %s", sink.Name(), status.Message))
		}
		if status.State == types.HealthStateDegraded {
			degraded = true
		}
	}
	if degraded {
		return types.Degraded("one or more sinks degraded")
	}
	return types.Healthy("all sinks operational")
}

// Sinks returns the underlying storers.
func (h *HybridStorer) Sinks() []Storer {
	return h.sinks
}
