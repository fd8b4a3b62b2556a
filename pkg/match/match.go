// Package match maps free-text mod names to catalog packages.
//
// [Matcher.Match] tries three strategies in order and stops at the first
// that yields a package with a version for the requested loader and game
// version:
//
//  1. Direct: search the name and try each ranked hit.
//  2. Stripped: if the name ends in digits ("Lithium9"), search without them.
//  3. Fallback: guess slugs from the name ([Slugs]) and look each one up.
//
// Direct and stripped hits are tagged [TagFound]; slug guesses are tagged
// [TagFallback] so a presenter can flag them for review.
package match

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/helloworldx64/craftpacker/pkg/deps"
	"github.com/helloworldx64/craftpacker/pkg/observability"
	"github.com/helloworldx64/craftpacker/pkg/progress"
)

// Strategy names the step that produced a match.
type Strategy string

const (
	Direct   Strategy = "direct"
	Stripped Strategy = "stripped"
	Fallback Strategy = "fallback"
)

// Confidence tags carried by found events.
const (
	TagFound      = "found"
	TagFallback   = "fallback"
	TagDependency = "dependency"
)

// Catalog is the subset of the catalog client the matcher needs.
type Catalog interface {
	deps.Fetcher
	Search(ctx context.Context, query, projectType string) []string
	ProjectBySlug(ctx context.Context, slug string) (string, bool)
}

// Result is a successful match for one input name.
type Result struct {
	Input    string // original input name
	Package  *deps.Package
	Strategy Strategy
}

// Tag returns the confidence tag for the strategy.
func (r *Result) Tag() string {
	if r.Strategy == Fallback {
		return TagFallback
	}
	return TagFound
}

// Label returns the status label, e.g. "Available (API) (release)".
func (r *Result) Label() string {
	source := "API"
	if r.Strategy == Fallback {
		source = "Fallback"
	}
	return fmt.Sprintf("Available (%s) (%s)", source, r.Package.Channel)
}

// DependencyLabel is the status label for a package that entered a plan
// as a dependency rather than through a search.
func DependencyLabel(p *deps.Package) string {
	return fmt.Sprintf("Dependency (%s)", p.Channel)
}

// Matcher runs the matching strategies against a catalog.
type Matcher struct {
	catalog     Catalog
	projectType string
	sink        progress.Sink
	logger      *log.Logger
}

// Options configures a [Matcher].
type Options struct {
	ProjectType string        // defaults to "mod"
	Sink        progress.Sink // status lines; nil discards
	Logger      *log.Logger   // nil uses log.Default()
}

// New creates a Matcher.
func New(catalog Catalog, opts Options) *Matcher {
	m := &Matcher{
		catalog:     catalog,
		projectType: opts.ProjectType,
		sink:        progress.OrDiscard(opts.Sink),
		logger:      opts.Logger,
	}
	if m.projectType == "" {
		m.projectType = "mod"
	}
	if m.logger == nil {
		m.logger = log.Default()
	}
	return m
}

// Match finds a package for name. ok is false when every strategy failed.
// Safe for concurrent use.
func (m *Matcher) Match(ctx context.Context, name string, loader deps.Loader, gameVersion string) (*Result, bool) {
	start := time.Now()
	observability.Match().OnMatchStart(ctx, name)

	res, ok := m.match(ctx, name, loader, gameVersion)

	strategy := ""
	if ok {
		strategy = string(res.Strategy)
		m.logger.Debug("matched", "name", name, "strategy", strategy, "project", res.Package.ProjectID)
	} else {
		m.logger.Debug("unmatched", "name", name)
	}
	observability.Match().OnMatchComplete(ctx, name, strategy, ok, time.Since(start))
	return res, ok
}

func (m *Matcher) match(ctx context.Context, name string, loader deps.Loader, gameVersion string) (*Result, bool) {
	m.sink.Emit(progress.Status("Searching for '%s' (API)...", name))
	if pkg, ok := m.search(ctx, name, loader, gameVersion); ok {
		return &Result{Input: name, Package: pkg, Strategy: Direct}, true
	}

	if stripped := StripTrailingDigits(name); stripped != name && stripped != "" {
		m.sink.Emit(progress.Status("Searching for '%s' (API)...", stripped))
		if pkg, ok := m.search(ctx, stripped, loader, gameVersion); ok {
			return &Result{Input: name, Package: pkg, Strategy: Stripped}, true
		}
	}

	m.sink.Emit(progress.Status("Searching for '%s' (Fallback)...", name))
	for _, slug := range Slugs(name) {
		if ctx.Err() != nil {
			return nil, false
		}
		id, ok := m.catalog.ProjectBySlug(ctx, slug)
		if !ok {
			continue
		}
		if pkg, ok := m.catalog.ResolveProject(ctx, id, loader, gameVersion); ok {
			return &Result{Input: name, Package: pkg, Strategy: Fallback}, true
		}
	}
	return nil, false
}

// search tries each ranked hit for query until one resolves.
func (m *Matcher) search(ctx context.Context, query string, loader deps.Loader, gameVersion string) (*deps.Package, bool) {
	for _, id := range m.catalog.Search(ctx, query, m.projectType) {
		if ctx.Err() != nil {
			return nil, false
		}
		if pkg, ok := m.catalog.ResolveProject(ctx, id, loader, gameVersion); ok {
			return pkg, true
		}
	}
	return nil, false
}
