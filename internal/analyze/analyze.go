// Package analyze runs the full pipeline: discover, parse, aggregate,
// resolve.
package analyze

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/callmap/internal/discover"
	"github.com/phobologic/callmap/internal/graph"
	"github.com/phobologic/callmap/internal/index"
	"github.com/phobologic/callmap/internal/model"
	"github.com/phobologic/callmap/internal/parse"
)

// Options configures one analysis run. Zero values select the documented
// defaults.
type Options struct {
	// Root is the directory to analyze.
	Root string
	// IgnoreDirs lists directory basenames to skip; nil selects
	// discover.DefaultIgnoreDirs.
	IgnoreDirs []string
	// Workers bounds the parse pool; 0 selects runtime.GOMAXPROCS(0).
	Workers int
	// MaxFileSize bounds accepted file size; 0 selects
	// parse.DefaultMaxFileSize.
	MaxFileSize int
	// UseGitignore additionally filters walked files through the root's
	// .gitignore.
	UseGitignore bool
}

// Run walks opts.Root, parses every discovered file, builds the symbol
// index, and resolves the call graph. Per-file problems are recorded in the
// result; only a missing root or context cancellation aborts the run.
func Run(ctx context.Context, opts Options) (*model.Result, error) {
	files, err := discover.Files(opts.Root, discover.Options{
		IgnoreDirs:   opts.IgnoreDirs,
		UseGitignore: opts.UseGitignore,
	})
	if err != nil {
		return nil, err
	}
	slog.Debug("discovered files", "root", opts.Root, "count", len(files))

	records, err := parseAll(ctx, opts, files)
	if err != nil {
		return nil, err
	}

	// All records are in; aggregation and resolution run single-threaded
	// over immutable inputs.
	idx := index.Build(records)
	edges := graph.Resolve(records, idx)

	byPath := make(map[string]*model.FileRecord, len(records))
	for _, rec := range records {
		byPath[rec.Path] = rec
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		root = opts.Root
	}

	return &model.Result{
		Repo:  filepath.Base(root),
		Root:  root,
		Files: byPath,
		Edges: edges,
		Index: idx,
	}, nil
}

// parseAll parses files on a bounded worker pool. Each worker owns its own
// parser, and results land in an index-addressed slice so their order
// matches the sorted file list no matter when each parse completes.
func parseAll(ctx context.Context, opts Options, files []string) ([]*model.FileRecord, error) {
	records := make([]*model.FileRecord, len(files))
	if len(files) == 0 {
		return records, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan int, len(files))
	for i := range files {
		jobs <- i
	}
	close(jobs)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			p := parse.New(opts.MaxFileSize)
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := p.File(ctx, opts.Root, files[i])
				if err != nil {
					return err
				}
				records[i] = rec
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}
