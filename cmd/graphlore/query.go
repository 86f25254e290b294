package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/graphlore/graphlore/internal/query"
)

var (
	querySources  []string
	queryTimeout  time.Duration
	queryLimit    int
	queryStream   bool
	queryEvidence bool
	queryContinue string
)

var queryCmd = &cobra.Command{
	Use:   "query QUESTION",
	Short: "Ask a natural-language question over ingested content",
	Long: `Answer a question by combining vector similarity search with graph
retrieval and LLM synthesis.

Examples:
  # Ask a question
  graphlore query "how does the login flow work?"

  # Restrict retrieval to specific sources and show evidence
  graphlore query "what tables store users?" --source <id> --evidence

  # Stream the answer incrementally
  graphlore query "summarize the architecture" --stream

  # Continue a previous query
  graphlore query "and how is it tested?" --continue <query-id>`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringSliceVar(&querySources, "source", nil, "Source IDs to restrict retrieval to")
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 0, "Wall-clock timeout for the whole query (default from config)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum retrieved chunks (default from config)")
	queryCmd.Flags().BoolVar(&queryStream, "stream", false, "Stream the answer incrementally")
	queryCmd.Flags().BoolVar(&queryEvidence, "evidence", false, "Include evidence anchors in the output")
	queryCmd.Flags().StringVar(&queryContinue, "continue", "", "Query ID of a prior response to continue from")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	completer, err := newCompleter()
	if err != nil {
		return err
	}

	o := query.NewOrchestrator(rt.embedder, rt.vectors, rt.vectors, rt.graph, completer, logger).
		WithTimeout(cfg.Query.Timeout).
		WithMaxResults(cfg.Query.MaxResults).
		WithIndex(rt.index)

	req := query.Request{
		Question:        args[0],
		SourceIDs:       querySources,
		Timeout:         queryTimeout,
		MaxResults:      queryLimit,
		IncludeEvidence: queryEvidence,
		ContextQueryID:  queryContinue,
	}

	if queryStream {
		return runStreamingQuery(cmd, o, req)
	}

	resp, err := o.Query(ctx, req)
	if err != nil {
		return err
	}
	printResponse(cmd, resp)
	return nil
}

// newCompleter builds the synthesis model from the configuration.
func newCompleter() (query.Completer, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set for answer synthesis")
	}
	model, err := openai.New(openai.WithModel(cfg.Query.CompletionModel))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion model: %w", err)
	}
	return query.NewLLMCompleter(model), nil
}

func runStreamingQuery(cmd *cobra.Command, o *query.Orchestrator, req query.Request) error {
	events, err := o.QueryStream(cmd.Context(), req)
	if err != nil {
		return err
	}
	for ev := range events {
		switch ev.Type {
		case query.EventStatus:
			fmt.Fprintf(os.Stderr, "[%s]\n", ev.Status)
		case query.EventTextDelta:
			cmd.Print(ev.Delta)
		case query.EventEntity:
			fmt.Fprintf(os.Stderr, "entity: %s\n", ev.Entity.Name)
		case query.EventMetadata:
			fmt.Fprintf(os.Stderr, "query %v completed in %vms\n",
				ev.Metadata["query_id"], ev.Metadata["processing_time_ms"])
		case query.EventDone:
			cmd.Println()
			if queryEvidence && ev.Response != nil {
				printEvidence(cmd, ev.Response)
			}
		case query.EventError:
			return fmt.Errorf("%s", ev.ErrorMessage)
		}
	}
	return nil
}

func printResponse(cmd *cobra.Command, resp *query.Response) {
	cmd.Println(resp.Summary)
	if len(resp.RelatedEntities) > 0 {
		cmd.Println("\nRelated entities:")
		for _, e := range resp.RelatedEntities {
			cmd.Printf("  - %s\n", e.Name)
		}
	}
	printEvidence(cmd, resp)
	cmd.Printf("\nquery_id: %s  confidence: %.2f  took: %s\n",
		resp.QueryID, resp.Confidence, resp.ProcessingTime.Round(time.Millisecond))
}

func printEvidence(cmd *cobra.Command, resp *query.Response) {
	if len(resp.Evidence) == 0 {
		return
	}
	cmd.Println("\nEvidence:")
	for _, anchor := range resp.Evidence {
		cmd.Printf("  %.2f  %s\n", anchor.Similarity, anchor.Ref)
	}
}
