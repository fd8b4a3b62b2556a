package match

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helloworldx64/craftpacker/pkg/cache"
	"github.com/helloworldx64/craftpacker/pkg/deps"
	"github.com/helloworldx64/craftpacker/pkg/integrations/modrinth"
	"github.com/helloworldx64/craftpacker/pkg/integrations/modrinth/modrinthtest"
	"github.com/helloworldx64/craftpacker/pkg/observability"
	"github.com/helloworldx64/craftpacker/pkg/progress"
)

func project(id, slug, title, channel string) modrinthtest.Project {
	return modrinthtest.Project{
		ID: id, Slug: slug, Title: title,
		Versions: []modrinthtest.Version{{
			ID: id + "-v", Number: "1.0.0", Type: channel,
			Loaders: []string{"fabric"}, GameVersions: []string{"1.20.1"},
			Files: []modrinthtest.File{{Name: slug + ".jar", Content: []byte(slug)}},
		}},
	}
}

func newMatcher(t *testing.T, srv *modrinthtest.Server, sink progress.Sink) *Matcher {
	t.Helper()
	client := modrinth.NewClient(modrinth.Options{
		BaseURL: srv.URL,
		Backoff: cache.Backoff{Attempts: 1, Delay: time.Millisecond},
	})
	return New(client, Options{Sink: sink})
}

func TestMatchDirect(t *testing.T) {
	srv := modrinthtest.NewServer()
	defer srv.Close()
	srv.AddProject(project("AANobbMI", "sodium", "Sodium", "release"))

	rec := &progress.Recorder{}
	m := newMatcher(t, srv, rec)

	res, ok := m.Match(context.Background(), "Sodium", deps.LoaderFabric, "1.20.1")
	require.True(t, ok)
	assert.Equal(t, Direct, res.Strategy)
	assert.Equal(t, "Sodium", res.Input)
	assert.Equal(t, "AANobbMI", res.Package.ProjectID)
	assert.Equal(t, TagFound, res.Tag())
	assert.Equal(t, "Available (API) (release)", res.Label())

	status := rec.OfKind(progress.KindStatus)
	require.Len(t, status, 1)
	assert.Equal(t, "Searching for 'Sodium' (API)...", status[0].Message)
}

func TestMatchDirectBeatsSlug(t *testing.T) {
	srv := modrinthtest.NewServer()
	defer srv.Close()
	srv.AddProject(project("direct", "iris-shaders", "Iris", "release"))
	srv.AddProject(project("byslug", "iris", "Something Else", "release"))

	m := newMatcher(t, srv, nil)
	res, ok := m.Match(context.Background(), "Iris", deps.LoaderFabric, "1.20.1")
	require.True(t, ok)
	assert.Equal(t, "direct", res.Package.ProjectID)
	assert.Equal(t, TagFound, res.Tag())
	assert.Equal(t, 1, srv.Hits("/project/{id}"), "slug candidates should not be tried")
}

func TestMatchSkipsIncompatibleCandidates(t *testing.T) {
	srv := modrinthtest.NewServer()
	defer srv.Close()
	forgeOnly := project("forgeonly", "journeymap-forge", "JourneyMap", "release")
	forgeOnly.Versions[0].Loaders = []string{"forge"}
	srv.AddProject(forgeOnly)
	srv.AddProject(project("fabricjm", "journeymap", "JourneyMap Fabric", "beta"))
	srv.AddSearch("journeymap", "forgeonly", "fabricjm")

	m := newMatcher(t, srv, nil)
	res, ok := m.Match(context.Background(), "JourneyMap", deps.LoaderFabric, "1.20.1")
	require.True(t, ok)
	assert.Equal(t, "fabricjm", res.Package.ProjectID)
	assert.Equal(t, "Available (API) (beta)", res.Label())
}

func TestMatchStripped(t *testing.T) {
	srv := modrinthtest.NewServer()
	defer srv.Close()
	srv.AddProject(project("AANobbMI", "sodium", "Sodium", "release"))

	rec := &progress.Recorder{}
	m := newMatcher(t, srv, rec)

	res, ok := m.Match(context.Background(), "Sodium2", deps.LoaderFabric, "1.20.1")
	require.True(t, ok)
	assert.Equal(t, Stripped, res.Strategy)
	assert.Equal(t, "Sodium2", res.Input)
	assert.Equal(t, "AANobbMI", res.Package.ProjectID)
	assert.Equal(t, TagFound, res.Tag())

	var lines []string
	for _, e := range rec.OfKind(progress.KindStatus) {
		lines = append(lines, e.Message)
	}
	assert.Equal(t, []string{"Searching for 'Sodium2' (API)...", "Searching for 'Sodium' (API)..."}, lines)
}

func TestMatchFallback(t *testing.T) {
	srv := modrinthtest.NewServer()
	defer srv.Close()
	srv.AddProject(project("xaero", "xaeros-minimap-fabric", "Xaero's Minimap", "alpha"))

	rec := &progress.Recorder{}
	m := newMatcher(t, srv, rec)

	res, ok := m.Match(context.Background(), "XaerosMinimap", deps.LoaderFabric, "1.20.1")
	require.True(t, ok)
	assert.Equal(t, Fallback, res.Strategy)
	assert.Equal(t, TagFallback, res.Tag())
	assert.Equal(t, "Available (Fallback) (alpha)", res.Label())
	assert.Equal(t, 3, srv.Hits("/project/{id}"), "base slug misses, -fabric hits, then the title lookup")

	status := rec.OfKind(progress.KindStatus)
	require.NotEmpty(t, status)
	assert.Equal(t, "Searching for 'XaerosMinimap' (Fallback)...", status[len(status)-1].Message)
}

func TestMatchUnmatched(t *testing.T) {
	srv := modrinthtest.NewServer()
	defer srv.Close()
	srv.AddProject(project("AANobbMI", "sodium", "Sodium", "release"))

	m := newMatcher(t, srv, nil)
	res, ok := m.Match(context.Background(), "ThisModDoesNotExist", deps.LoaderFabric, "1.20.1")
	assert.False(t, ok)
	assert.Nil(t, res)
	assert.Equal(t, 3, srv.Hits("/project/{id}"), "one lookup per slug candidate")
}

func TestMatchWrongGameVersion(t *testing.T) {
	srv := modrinthtest.NewServer()
	defer srv.Close()
	srv.AddProject(project("AANobbMI", "sodium", "Sodium", "release"))

	m := newMatcher(t, srv, nil)
	_, ok := m.Match(context.Background(), "Sodium", deps.LoaderFabric, "1.7.10")
	assert.False(t, ok)
}

func TestMatchCanceled(t *testing.T) {
	srv := modrinthtest.NewServer()
	defer srv.Close()
	srv.AddProject(project("AANobbMI", "sodium", "Sodium", "release"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := newMatcher(t, srv, nil)
	_, ok := m.Match(ctx, "Sodium", deps.LoaderFabric, "1.20.1")
	assert.False(t, ok)
}

type recordingHooks struct {
	observability.NoopMatchHooks
	mu       sync.Mutex
	started  []string
	outcomes map[string]string
}

func (h *recordingHooks) OnMatchStart(_ context.Context, name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, name)
}

func (h *recordingHooks) OnMatchComplete(_ context.Context, name, strategy string, ok bool, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !ok {
		strategy = "none"
	}
	h.outcomes[name] = strategy
}

func TestMatchHooks(t *testing.T) {
	hooks := &recordingHooks{outcomes: map[string]string{}}
	observability.SetMatchHooks(hooks)
	defer observability.Reset()

	srv := modrinthtest.NewServer()
	defer srv.Close()
	srv.AddProject(project("AANobbMI", "sodium", "Sodium", "release"))

	m := newMatcher(t, srv, nil)
	m.Match(context.Background(), "Sodium", deps.LoaderFabric, "1.20.1")
	m.Match(context.Background(), "Nope", deps.LoaderFabric, "1.20.1")

	assert.Equal(t, []string{"Sodium", "Nope"}, hooks.started)
	assert.Equal(t, map[string]string{"Sodium": "direct", "Nope": "none"}, hooks.outcomes)
}

func TestDependencyLabel(t *testing.T) {
	assert.Equal(t, "Dependency (beta)", DependencyLabel(&deps.Package{Channel: deps.ChannelBeta}))
}
