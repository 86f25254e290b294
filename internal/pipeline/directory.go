package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/graphlore/graphlore/internal/source"
)

// DirectoryOptions controls directory scans.
type DirectoryOptions struct {
	// Include holds glob patterns matched against the path relative to the
	// scan root. Empty means include everything.
	Include []string

	// Exclude holds glob patterns; a match excludes the file.
	Exclude []string

	// RespectGitignore applies the root's .gitignore rules when present.
	RespectGitignore bool

	// IncludeUnknown also ingests files the classifier cannot type.
	// They go through the generic transformer.
	IncludeUnknown bool
}

// ProcessDirectory scans a directory tree, builds sources for the matching
// files, and runs them as one batch. Hidden directories and .git are always
// skipped.
func (o *Orchestrator) ProcessDirectory(ctx context.Context, root string, opts DirectoryOptions) ([]*source.ProcessingResult, error) {
	sources, err := CollectSources(root, opts)
	if err != nil {
		return nil, err
	}
	o.logger.Info("directory scan complete", "root", root, "sources", len(sources))
	return o.ProcessBatch(ctx, sources), nil
}

// CollectSources walks the tree and returns a DataSource per matching file.
func CollectSources(root string, opts DirectoryOptions) ([]*source.DataSource, error) {
	var matcher *ignore.GitIgnore
	if opts.RespectGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			matcher = gi
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	var sources []*source.DataSource
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		if !matchGlobs(rel, opts.Include, true) || matchGlobs(rel, opts.Exclude, false) {
			return nil
		}

		src := source.NewFileSource(path)
		if src.Type == source.SourceTypeUnknown && !opts.IncludeUnknown {
			return nil
		}
		src.Name = rel
		sources = append(sources, src)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// matchGlobs matches rel against the patterns, testing both the full
// relative path and the basename. emptyResult is returned for an empty
// pattern list.
func matchGlobs(rel string, patterns []string, emptyResult bool) bool {
	if len(patterns) == 0 {
		return emptyResult
	}
	base := filepath.Base(rel)
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
