package query

import (
	"context"
	"time"

	"github.com/graphlore/graphlore/internal/types"
)

// QueryStream runs one query and emits incremental events instead of a
// single response. The channel is closed after the terminal done or
// error event. The same wall-clock timeout and the same exactly-once
// cache+persist side effect apply as in Query.
func (o *Orchestrator) QueryStream(ctx context.Context, req Request) (<-chan Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)

		ctx, cancel := context.WithTimeout(ctx, o.requestTimeout(req))
		defer cancel()

		emit := func(ev Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		start := time.Now()
		resp, err := o.run(ctx, req, emit)
		if err != nil {
			coded := o.classify(err)
			emit(Event{
				Type:         EventError,
				ErrorCode:    types.CodeOf(coded),
				ErrorMessage: coded.Error(),
			})
			return
		}
		resp.ProcessingTime = time.Since(start)

		persisted := false
		o.finish(ctx, resp, &persisted)

		emit(Event{Type: EventMetadata, Metadata: map[string]any{
			"query_id":           resp.QueryID,
			"confidence":         resp.Confidence,
			"processing_time_ms": resp.ProcessingTime.Milliseconds(),
			"entity_count":       len(resp.RelatedEntities),
			"evidence_count":     len(resp.Evidence),
		}})

		// finish is idempotent here; the done event never double-writes.
		o.finish(ctx, resp, &persisted)
		emit(Event{Type: EventDone, Response: resp})
	}()
	return events, nil
}
