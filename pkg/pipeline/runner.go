package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/helloworldx64/craftpacker/pkg/deps"
	"github.com/helloworldx64/craftpacker/pkg/download"
	perrors "github.com/helloworldx64/craftpacker/pkg/errors"
	"github.com/helloworldx64/craftpacker/pkg/match"
	"github.com/helloworldx64/craftpacker/pkg/progress"
	"github.com/helloworldx64/craftpacker/pkg/session"
)

// Config wires a [Runner].
type Config struct {
	Sink   progress.Sink // nil discards events
	Logger *log.Logger   // nil uses log.Default()

	ResolveWorkers  int // concurrent dependency roots; 0 means deps.DefaultWorkers
	DownloadWorkers int // concurrent transfers; 0 means download.DefaultWorkers

	// Transfer settings passed to the download coordinator.
	HTTP         *http.Client
	UserAgent    string
	PollInterval time.Duration
}

// Runner executes the flows against one session. Flows must not overlap;
// a flow started while another runs fails with [ErrBusy].
type Runner struct {
	Session    *session.Session
	Matcher    *match.Matcher
	Resolver   *deps.Resolver
	Downloader *download.Coordinator
	Sink       progress.Sink
	Logger     *log.Logger

	busy atomic.Bool
}

// NewRunner creates a runner over catalog with an empty session.
func NewRunner(catalog match.Catalog, cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	sink := progress.OrDiscard(cfg.Sink)
	return &Runner{
		Session: session.New(),
		Matcher: match.New(catalog, match.Options{Sink: sink, Logger: cfg.Logger}),
		Resolver: deps.NewResolver(catalog, deps.Options{
			Sink:    sink,
			Logger:  cfg.Logger,
			Workers: cfg.ResolveWorkers,
		}),
		Downloader: download.New(download.Options{
			Workers:      cfg.DownloadWorkers,
			PollInterval: cfg.PollInterval,
			HTTP:         cfg.HTTP,
			UserAgent:    cfg.UserAgent,
			Sink:         sink,
			Logger:       cfg.Logger,
		}),
		Sink:   sink,
		Logger: cfg.Logger,
	}
}

func (r *Runner) acquire() error {
	if !r.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (r *Runner) release() { r.busy.Store(false) }

// =============================================================================
// Search
// =============================================================================

// SearchResult reports one search batch.
type SearchResult struct {
	Found     []*match.Result // in input order
	Unmatched []string        // in input order
	Total     int
	Duration  time.Duration
}

// Search starts a new session and matches names against the catalog.
func (r *Runner) Search(ctx context.Context, names []string, opts Options) (*SearchResult, error) {
	if err := perrors.ValidateNames(names); err != nil {
		return nil, err
	}
	if err := opts.ValidateForSearch(); err != nil {
		return nil, err
	}
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.release()

	r.Session.Reset()
	return r.searchBatch(ctx, names, opts)
}

// RetryUnmatched resubmits exactly the names the session reports as
// unmatched. Results are added to the same session.
func (r *Runner) RetryUnmatched(ctx context.Context, opts Options) (*SearchResult, error) {
	if err := opts.ValidateForSearch(); err != nil {
		return nil, err
	}
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.release()

	names := r.Session.Unmatched()
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no unmatched names", ErrNothingSelected)
	}
	return r.searchBatch(ctx, names, opts)
}

func (r *Runner) searchBatch(ctx context.Context, names []string, opts Options) (*SearchResult, error) {
	start := time.Now()
	logger := r.Logger.With("session", r.Session.ID())
	logger.Debug("search batch", "names", len(names), "loader", opts.Loader, "game_version", opts.GameVersion)

	results := make([]*match.Result, len(names))

	// One goroutine per name; the catalog's rate limiter bounds the traffic.
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			res, ok := r.Matcher.Match(ctx, name, opts.LoaderValue(), opts.GameVersion)
			if ctx.Err() != nil {
				return nil
			}
			if !ok {
				r.Session.MarkUnmatched(name)
				r.Sink.Emit(progress.Unmatched(name))
				return nil
			}
			results[i] = res
			r.Session.Put(res)
			r.Sink.Emit(progress.Found(name, res.Package.Name, res.Label(), res.Tag()))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &SearchResult{Total: len(names), Duration: time.Since(start)}
	for i, res := range results {
		if res != nil {
			out.Found = append(out.Found, res)
		} else {
			out.Unmatched = append(out.Unmatched, names[i])
		}
	}

	r.Sink.Emit(progress.Summary("Search complete. Found %d of %d mods.", len(out.Found), out.Total))
	logger.Info("search complete", "found", len(out.Found), "total", out.Total, "duration", out.Duration)
	return out, nil
}

// =============================================================================
// Resolve
// =============================================================================

// Resolve expands the session results under keys (all results when keys
// is empty) into a download plan.
func (r *Runner) Resolve(ctx context.Context, keys []string, opts Options) (*deps.Plan, error) {
	if err := opts.ValidateForSearch(); err != nil {
		return nil, err
	}
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.release()
	return r.resolve(ctx, keys, opts)
}

func (r *Runner) resolve(ctx context.Context, keys []string, opts Options) (*deps.Plan, error) {
	roots, err := r.Session.Packages(keys...)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNotFound, err, "unknown selection")
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: no mods are available", ErrNothingSelected)
	}

	r.Sink.Emit(progress.Status("Resolving dependencies..."))
	plan, err := r.Resolver.Resolve(ctx, roots, opts.LoaderValue(), opts.GameVersion)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	r.Logger.Info("resolved plan", "roots", len(roots), "packages", plan.Len(), "gaps", len(plan.Gaps))
	return plan, nil
}

// =============================================================================
// Download
// =============================================================================

// DownloadResult reports one download batch.
type DownloadResult struct {
	Plan   *deps.Plan
	Report *download.Report
}

// Download resolves the session results under keys (all results when keys
// is empty) and fetches the plan into opts.Destination.
//
// Packages pulled in only as dependencies are announced with a found event
// tagged "dependency" before their transfer starts.
func (r *Runner) Download(ctx context.Context, keys []string, opts Options) (*DownloadResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.release()

	plan, err := r.resolve(ctx, keys, opts)
	if err != nil {
		return nil, err
	}
	return r.fetch(ctx, plan, opts)
}

// DownloadPlan fetches a previously resolved plan, such as one read back
// with io.ImportPlan. The session is not consulted for selection, only
// for event keys.
func (r *Runner) DownloadPlan(ctx context.Context, plan *deps.Plan, opts Options) (*DownloadResult, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := r.acquire(); err != nil {
		return nil, err
	}
	defer r.release()
	return r.fetch(ctx, plan, opts)
}

func (r *Runner) fetch(ctx context.Context, plan *deps.Plan, opts Options) (*DownloadResult, error) {
	if plan.Len() == 0 {
		r.Sink.Emit(progress.Status("No new mods or dependencies to download."))
		return &DownloadResult{Plan: plan, Report: &download.Report{Failed: map[string]string{}}}, nil
	}

	key := r.planKeys(plan)
	for _, pkg := range plan.Packages {
		if _, ok := r.Session.KeyForProject(pkg.ProjectID); !ok {
			r.Sink.Emit(progress.Found(key(pkg), pkg.Name, match.DependencyLabel(pkg), match.TagDependency))
		}
	}

	report, err := r.Downloader.Run(ctx, plan, opts.Destination, key)
	if err != nil {
		return &DownloadResult{Plan: plan, Report: report}, fmt.Errorf("download: %w", err)
	}
	return &DownloadResult{Plan: plan, Report: report}, nil
}

// planKeys addresses a package's events by the input name that found it,
// or by its display name when it entered the plan as a dependency. Display
// names are not unique, so a name shared with another project gets the
// project id appended.
func (r *Runner) planKeys(plan *deps.Plan) download.KeyFunc {
	names := make(map[string]int)
	for _, pkg := range plan.Packages {
		if _, ok := r.Session.KeyForProject(pkg.ProjectID); !ok {
			names[pkg.Name]++
		}
	}
	return func(pkg *deps.Package) string {
		if k, ok := r.Session.KeyForProject(pkg.ProjectID); ok {
			return k
		}
		_, taken := r.Session.Result(pkg.Name)
		if taken || names[pkg.Name] > 1 {
			return fmt.Sprintf("%s (%s)", pkg.Name, pkg.ProjectID)
		}
		return pkg.Name
	}
}
