package query

import (
	"fmt"
	"strings"

	"github.com/graphlore/graphlore/internal/contextpack"
	"github.com/graphlore/graphlore/internal/store"
)

const (
	// maxContextEntities caps how many prior related entities a
	// continuation carries into the new question.
	maxContextEntities = 8

	// maxContextActions caps how many prior next actions a continuation
	// carries.
	maxContextActions = 5

	// maxChunkChars truncates chunk content inside the prompt.
	maxChunkChars = 1200
)

// continuationBlocks renders a cached prior response as explicit text
// blocks prepended to a follow-up question. This is textual context
// stuffing, not a structured conversation.
func continuationBlocks(prior *Response) string {
	var b strings.Builder
	b.WriteString("Previous answer:\n")
	b.WriteString(prior.Summary)
	b.WriteString("\n")

	if len(prior.RelatedEntities) > 0 {
		entities := prior.RelatedEntities
		if len(entities) > maxContextEntities {
			entities = entities[:maxContextEntities]
		}
		b.WriteString("\nRelated entities:\n")
		for _, e := range entities {
			fmt.Fprintf(&b, "- %s\n", e.Name)
		}
	}

	if len(prior.NextActions) > 0 {
		actions := prior.NextActions
		if len(actions) > maxContextActions {
			actions = actions[:maxContextActions]
		}
		b.WriteString("\nSuggested next steps:\n")
		for _, a := range actions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	return b.String()
}

// buildPrompt assembles the synthesis prompt from the (possibly
// context-merged) question, retrieved chunks, related entities and the
// budgeted file context pack.
func buildPrompt(question string, hits []store.ChunkHit, entities []Entity, pack contextpack.ContextPack) string {
	var b strings.Builder
	b.WriteString("You are answering a question about an ingested knowledge base. ")
	b.WriteString("Use only the context below. Answer concisely.\n")

	if len(hits) > 0 {
		b.WriteString("\nContext:\n")
		for i, hit := range hits {
			content := hit.Chunk.Content
			if len(content) > maxChunkChars {
				content = content[:maxChunkChars]
			}
			title := hit.Chunk.Title
			if title == "" {
				title = string(hit.Chunk.Type)
			}
			fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, title, content)
		}
	}

	if len(pack.Items) > 0 {
		b.WriteString("Relevant files:\n")
		for _, item := range pack.Items {
			fmt.Fprintf(&b, "- %s (%s)\n", item.Summary, item.Ref)
		}
		b.WriteString("\n")
	}

	if len(entities) > 0 {
		b.WriteString("Known related entities:\n")
		for _, e := range entities {
			fmt.Fprintf(&b, "- %s\n", e.Name)
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}
