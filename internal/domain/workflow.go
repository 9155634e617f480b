package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pymute.dev/pkg/pymute/internal/adapter"
	"pymute.dev/pkg/pymute/internal/controller"
	m "pymute.dev/pkg/pymute/internal/model"
)

// TestArgs parameterizes a full mutation run.
type TestArgs struct {
	// Root is the project directory the oracle runs against.
	Root string
	// Modules is the glob, relative to Root, selecting files to mutate.
	Modules string

	Categories []m.Category

	// MaxMutants caps the catalog via seeded subsampling; zero means no cap.
	MaxMutants int
	Seed       int64

	// CacheFile and SummaryFile are resolved relative to Root unless
	// absolute. An empty SummaryFile disables the summary artifact.
	CacheFile   string
	SummaryFile string

	// UseCache enables loading and writing back the result cache.
	UseCache bool
	// SkipResolved executes only mutants without a cached verdict instead
	// of re-running the whole catalog.
	SkipResolved bool
}

// ListArgs parameterizes catalog inspection without execution.
type ListArgs struct {
	Root       string
	Modules    string
	Categories []m.Category
	MaxMutants int
	Seed       int64
	CacheFile  string
	UseCache   bool
}

// CleanArgs names the artifacts to remove.
type CleanArgs struct {
	Root        string
	CacheFile   string
	SummaryFile string
}

// Workflow is the use-case layer behind the CLI commands.
type Workflow interface {
	// Test discovers mutants, executes them against the oracle and reports
	// the results.
	Test(ctx context.Context, args TestArgs) error
	// List displays the mutant catalog, including cached verdicts, without
	// executing anything.
	List(ctx context.Context, args ListArgs) error
	// Clean removes the cache and summary artifacts.
	Clean(ctx context.Context, args CleanArgs) error
}

type workflow struct {
	scanner   Scanner
	engine    Engine
	cache     adapter.CacheStore
	summaries adapter.SummaryStore
	fs        adapter.SourceFSAdapter
	ui        controller.UI
}

// NewWorkflow wires the use-case layer.
func NewWorkflow(
	scanner Scanner,
	engine Engine,
	cache adapter.CacheStore,
	summaries adapter.SummaryStore,
	fs adapter.SourceFSAdapter,
	ui controller.UI,
) Workflow {
	return &workflow{
		scanner:   scanner,
		engine:    engine,
		cache:     cache,
		summaries: summaries,
		fs:        fs,
		ui:        ui,
	}
}

func (w *workflow) Test(ctx context.Context, args TestArgs) error {
	cachePath := resolvePath(args.Root, args.CacheFile)

	catalog, err := w.buildCatalog(ctx, catalogArgs{
		root:       args.Root,
		modules:    args.Modules,
		categories: args.Categories,
		maxMutants: args.MaxMutants,
		seed:       args.Seed,
		cachePath:  cachePath,
		useCache:   args.UseCache,
	})
	if err != nil {
		return err
	}

	w.ui.DiscoveryCompleted(len(catalog))

	toRun := catalog
	if args.SkipResolved {
		toRun = FilterUnresolved(catalog)
	}

	w.ui.RunStarted(len(toRun))

	outcomes, err := w.engine.Run(ctx, toRun, args.Root)
	if err != nil {
		return err
	}

	applyOutcomes(catalog, outcomes)

	if args.UseCache && cachePath != "" {
		if err := w.cache.Save(cachePath, catalog); err != nil {
			return err
		}
	}

	summary := buildSummary(outcomes)

	if summaryPath := resolvePath(args.Root, args.SummaryFile); summaryPath != "" {
		if err := w.summaries.Save(summaryPath, summary); err != nil {
			return err
		}
	}

	w.ui.DisplaySummary(summary)

	return nil
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	catalog, err := w.buildCatalog(ctx, catalogArgs{
		root:       args.Root,
		modules:    args.Modules,
		categories: args.Categories,
		maxMutants: args.MaxMutants,
		seed:       args.Seed,
		cachePath:  resolvePath(args.Root, args.CacheFile),
		useCache:   args.UseCache,
	})
	if err != nil {
		return err
	}

	w.ui.DiscoveryCompleted(len(catalog))
	w.ui.DisplayCatalog(catalog)

	return nil
}

func (w *workflow) Clean(_ context.Context, args CleanArgs) error {
	paths := []string{
		resolvePath(args.Root, args.CacheFile),
		resolvePath(args.Root, args.SummaryFile),
	}

	for _, path := range paths {
		if path == "" {
			continue
		}

		if err := w.fs.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}

		slog.Debug("removed artifact", "path", path)
	}

	return nil
}

type catalogArgs struct {
	root       string
	modules    string
	categories []m.Category
	maxMutants int
	seed       int64
	cachePath  string
	useCache   bool
}

// buildCatalog discovers mutants, subsamples them and merges the result with
// the cached catalog. Subsampling happens before the merge so a cached
// verdict is never lost to an unlucky draw.
func (w *workflow) buildCatalog(ctx context.Context, args catalogArgs) ([]m.Mutant, error) {
	discovered, err := w.scanner.Discover(ctx, filepath.Join(args.root, args.modules), args.categories)
	if err != nil {
		return nil, err
	}

	discovered = Subsample(discovered, args.maxMutants, args.seed)

	if !args.useCache || args.cachePath == "" {
		return discovered, nil
	}

	cached, err := w.loadCache(args.cachePath)
	if err != nil {
		return nil, err
	}

	return Merge(discovered, cached), nil
}

// loadCache reads the cache when it exists. A missing cache is a first run;
// an unparseable one aborts the run so history is never silently discarded.
func (w *workflow) loadCache(path string) ([]m.Mutant, error) {
	if _, err := w.fs.FileInfo(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to stat cache %s: %w", path, err)
	}

	return w.cache.Load(path)
}

// applyOutcomes writes verdicts back into the catalog by identity. Errored
// outcomes leave the catalog entry untouched so the mutant is retried on the
// next run.
func applyOutcomes(catalog []m.Mutant, outcomes []m.Outcome) {
	index := make(map[m.Identity]int, len(catalog))
	for i := range catalog {
		index[catalog[i].Identity()] = i
	}

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			continue
		}

		if at, ok := index[outcome.Mutant.Identity()]; ok {
			catalog[at].Status = outcome.Status
		}
	}
}

func buildSummary(outcomes []m.Outcome) m.Summary {
	summary := m.Summary{Total: len(outcomes)}

	for _, outcome := range outcomes {
		switch {
		case outcome.Err != nil:
			summary.Errors++

		case outcome.Status == m.StatusCaught:
			summary.Caught++

		case outcome.Status == m.StatusMissed:
			summary.Missed++
			summary.MissedMutants = append(summary.MissedMutants, m.MissedMutant{
				File:   outcome.Mutant.FilePath,
				Line:   outcome.Mutant.LineNumber,
				Before: outcome.Mutant.Before,
				After:  outcome.Mutant.After,
			})
		}
	}

	return summary
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(root, path)
}
