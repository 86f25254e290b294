// Package rank scores candidate files against a query by combining the
// full-text base score with path-structural signals, and produces the
// summaries and stable ref handles consumed downstream.
package rank

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// PathMatchBoost is added per query term found verbatim in a candidate's
// path. Base scores are normalized to [0,1] first, so any path match
// outranks any unmatched hit regardless of raw full-text score.
const PathMatchBoost = 2.0

// maxRoleBoost caps the cumulative directory-role adjustment. Role boosts
// stay well inside the PathMatchBoost margin so a deep path can never
// out-accumulate a verbatim path match.
const maxRoleBoost = 0.5

// directoryRoleBoosts adjusts scores by the role a path segment implies.
// Primary source trees rank up; vendored and generated trees rank down.
var directoryRoleBoosts = map[string]float64{
	"src":          0.25,
	"internal":     0.25,
	"pkg":          0.2,
	"lib":          0.2,
	"cmd":          0.15,
	"docs":         0.1,
	"test":         -0.2,
	"tests":        -0.2,
	"testdata":     -0.3,
	"vendor":       -0.4,
	"node_modules": -0.4,
}

// FileHit is a candidate produced by the full-text layer.
type FileHit struct {
	Path  string
	Lang  string
	Score float64
}

// RankedNode is a scored, summarized candidate. Transient: created per
// query, discarded after the response.
type RankedNode struct {
	Path    string  `json:"path"`
	Lang    string  `json:"lang"`
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
	Ref     string  `json:"ref"`
}

// RankFiles scores and orders hits against the query. Ties keep the
// original search order. A non-positive limit returns all hits.
func RankFiles(hits []FileHit, query string, limit int) []RankedNode {
	terms := queryTerms(query)
	maxBase := 0.0
	for _, hit := range hits {
		if hit.Score > maxBase {
			maxBase = hit.Score
		}
	}

	nodes := make([]RankedNode, len(hits))
	for i, hit := range hits {
		base := hit.Score
		if maxBase > 0 {
			base = hit.Score / maxBase
		}
		score := base + pathBoost(hit.Path, terms) + roleBoost(hit.Path)
		nodes[i] = RankedNode{
			Path:    hit.Path,
			Lang:    hit.Lang,
			Score:   score,
			Summary: FileSummary(hit.Path, hit.Lang),
			Ref:     RefHandle(hit.Path),
		}
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Score > nodes[j].Score
	})
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return nodes
}

// pathBoost adds PathMatchBoost per query term appearing verbatim in the
// path (case-insensitive).
func pathBoost(path string, terms []string) float64 {
	lower := strings.ToLower(path)
	boost := 0.0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			boost += PathMatchBoost
		}
	}
	return boost
}

// roleBoost applies the directory-role heuristic over the path segments,
// clamped to [-maxRoleBoost, maxRoleBoost].
func roleBoost(path string) float64 {
	boost := 0.0
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if b, ok := directoryRoleBoosts[strings.ToLower(segment)]; ok {
			boost += b
		}
	}
	if boost > maxRoleBoost {
		return maxRoleBoost
	}
	if boost < -maxRoleBoost {
		return -maxRoleBoost
	}
	return boost
}

// queryTerms lowercases and splits the query, dropping single-character
// terms that would match almost any path.
func queryTerms(query string) []string {
	var terms []string
	for _, term := range strings.Fields(strings.ToLower(query)) {
		term = strings.Trim(term, `"'.,;:!?()`)
		if len(term) > 1 {
			terms = append(terms, term)
		}
	}
	return terms
}

// languageLabels maps detected languages to display names for summaries.
var languageLabels = map[string]string{
	"go":         "Go",
	"python":     "Python",
	"javascript": "JavaScript",
	"typescript": "TypeScript",
	"java":       "Java",
	"rust":       "Rust",
	"ruby":       "Ruby",
	"c":          "C",
	"cpp":        "C++",
	"sql":        "SQL",
	"markdown":   "Markdown",
}

// FileSummary renders a template one-liner naming the language, filename
// and parent directory.
func FileSummary(path, lang string) string {
	base := filepath.Base(path)
	dir := filepath.Dir(path)
	label, ok := languageLabels[strings.ToLower(lang)]
	if !ok {
		if lang != "" {
			label = lang
		} else {
			label = "Source"
		}
	}
	if dir == "." || dir == "/" {
		return fmt.Sprintf("%s file %s.", label, base)
	}
	return fmt.Sprintf("%s file %s in %s.", label, base, dir)
}
