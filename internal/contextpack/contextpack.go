// Package contextpack assembles budgeted context packs from ranked
// candidates for downstream prompt construction.
package contextpack

import (
	"sort"
	"strings"

	"github.com/graphlore/graphlore/internal/rank"
)

// Item kinds.
const (
	KindFile   = "file"
	KindChunk  = "chunk"
	KindEntity = "entity"
)

// costOverhead approximates the per-item framing (kind, separators, JSON
// keys) added on top of the text fields.
const costOverhead = 50

// ContextItem is one admitted entry of a pack.
type ContextItem struct {
	Kind    string            `json:"kind"`
	Title   string            `json:"title"`
	Summary string            `json:"summary"`
	Ref     string            `json:"ref"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// ContextPack is the budgeted selection handed to the prompt layer.
type ContextPack struct {
	Items       []ContextItem `json:"items"`
	BudgetUsed  int           `json:"budget_used"`
	BudgetLimit int           `json:"budget_limit"`
	Stage       string        `json:"stage"`
	RepoID      string        `json:"repo_id"`
	Keywords    []string      `json:"keywords,omitempty"`
}

// ItemCost estimates an item's token cost: the text field lengths plus a
// fixed framing overhead, at four characters per token.
func ItemCost(item ContextItem) int {
	return (len(item.Title) + len(item.Summary) + len(item.Ref) + costOverhead) / 4
}

// Build selects ranked nodes into a pack without exceeding budget.
//
// Nodes whose path contains a focus path are admitted as a block before
// all others; within each block nodes keep score order. Admission is
// greedy and stops at the first item that would overflow the budget, so
// a pack never mixes items from beyond the cut point.
func Build(nodes []rank.RankedNode, budget int, stage, repoID string, keywords, focusPaths []string) ContextPack {
	pack := ContextPack{
		Items:       []ContextItem{},
		BudgetLimit: budget,
		Stage:       stage,
		RepoID:      repoID,
		Keywords:    keywords,
	}

	ordered := orderNodes(nodes, focusPaths)
	for _, node := range ordered {
		item := ContextItem{
			Kind:    KindFile,
			Title:   node.Path,
			Summary: node.Summary,
			Ref:     node.Ref,
		}
		if node.Lang != "" {
			item.Extra = map[string]string{"lang": node.Lang}
		}
		cost := ItemCost(item)
		if pack.BudgetUsed+cost > budget {
			break
		}
		pack.Items = append(pack.Items, item)
		pack.BudgetUsed += cost
	}
	return pack
}

// orderNodes sorts by score descending, then partitions focus-path
// matches to the front. The partition is stable, so each block keeps its
// internal score order.
func orderNodes(nodes []rank.RankedNode, focusPaths []string) []rank.RankedNode {
	ordered := make([]rank.RankedNode, len(nodes))
	copy(ordered, nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})
	if len(focusPaths) == 0 {
		return ordered
	}

	focus := make([]rank.RankedNode, 0, len(ordered))
	rest := make([]rank.RankedNode, 0, len(ordered))
	for _, node := range ordered {
		if matchesFocus(node.Path, focusPaths) {
			focus = append(focus, node)
		} else {
			rest = append(rest, node)
		}
	}
	return append(focus, rest...)
}

func matchesFocus(path string, focusPaths []string) bool {
	for _, fp := range focusPaths {
		if fp != "" && strings.Contains(path, fp) {
			return true
		}
	}
	return false
}
