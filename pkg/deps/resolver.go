package deps

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/helloworldx64/craftpacker/pkg/progress"
)

// DefaultWorkers bounds how many roots are expanded at once.
const DefaultWorkers = 4

// Fetcher resolves a project to an acceptable version for a loader and
// game version. ok is false when the project is unknown, has no matching
// version, or the lookup failed; Fetcher never returns errors.
//
// Fetch must be safe for concurrent use.
type Fetcher interface {
	ResolveProject(ctx context.Context, projectID string, loader Loader, gameVersion string) (*Package, bool)
}

// Options configures a [Resolver].
type Options struct {
	Sink    progress.Sink // status events; nil discards
	Logger  *log.Logger   // nil uses log.Default()
	Workers int           // concurrent roots; <= 0 uses DefaultWorkers
}

// Resolver expands required dependencies into a deduplicated [Plan].
type Resolver struct {
	fetcher Fetcher
	sink    progress.Sink
	logger  *log.Logger
	workers int
}

// NewResolver creates a Resolver that looks up dependencies via f.
func NewResolver(f Fetcher, opts Options) *Resolver {
	r := &Resolver{
		fetcher: f,
		sink:    progress.OrDiscard(opts.Sink),
		logger:  opts.Logger,
		workers: opts.Workers,
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if r.workers <= 0 {
		r.workers = DefaultWorkers
	}
	return r
}

// Resolve expands roots depth-first. Every project id appears in the plan
// at most once, cycles terminate, and a package is appended after its
// required dependencies. Required dependencies that cannot be resolved are
// recorded in Plan.Gaps and otherwise skipped.
//
// Roots are expanded concurrently. The only error is ctx's.
func (r *Resolver) Resolve(ctx context.Context, roots []*Package, loader Loader, gameVersion string) (*Plan, error) {
	w := &walk{
		Resolver:    r,
		loader:      loader,
		gameVersion: gameVersion,
		visited:     make(map[string]bool),
		plan:        &Plan{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for _, root := range roots {
		if root == nil {
			continue
		}
		g.Go(func() error {
			w.visit(gctx, root)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return w.plan, nil
}

type walk struct {
	*Resolver
	loader      Loader
	gameVersion string

	mu      sync.Mutex
	visited map[string]bool
	plan    *Plan
}

// claim marks id visited and reports whether the caller owns its expansion.
func (w *walk) claim(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.visited[id] {
		return false
	}
	w.visited[id] = true
	return true
}

func (w *walk) visit(ctx context.Context, pkg *Package) {
	if !w.claim(pkg.ProjectID) {
		return
	}

	for _, dep := range pkg.Required() {
		if ctx.Err() != nil {
			return
		}
		w.sink.Emit(progress.Status("Resolving dependency for %s...", pkg.Name))

		if dep.ProjectID == "" {
			w.gap(pkg, dep)
			continue
		}
		child, ok := w.fetcher.ResolveProject(ctx, dep.ProjectID, w.loader, w.gameVersion)
		if !ok {
			w.gap(pkg, dep)
			continue
		}
		w.edge(pkg.ProjectID, child.ProjectID)
		w.visit(ctx, child)
	}

	w.mu.Lock()
	w.plan.Packages = append(w.plan.Packages, pkg)
	w.mu.Unlock()
}

func (w *walk) edge(from, to string) {
	w.mu.Lock()
	w.plan.Edges = append(w.plan.Edges, Edge{From: from, To: to})
	w.mu.Unlock()
}

func (w *walk) gap(pkg *Package, dep Dependency) {
	w.logger.Debug("required dependency unresolved",
		"mod", pkg.Name, "project", dep.ProjectID, "version", dep.VersionID,
		"loader", w.loader, "game_version", w.gameVersion)
	w.mu.Lock()
	w.plan.Gaps = append(w.plan.Gaps, Gap{
		From:      pkg.ProjectID,
		FromName:  pkg.Name,
		ProjectID: dep.ProjectID,
		VersionID: dep.VersionID,
	})
	w.mu.Unlock()
}
