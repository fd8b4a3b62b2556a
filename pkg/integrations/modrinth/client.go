package modrinth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/helloworldx64/craftpacker/pkg/buildinfo"
	"github.com/helloworldx64/craftpacker/pkg/cache"
	"github.com/helloworldx64/craftpacker/pkg/deps"
	"github.com/helloworldx64/craftpacker/pkg/integrations"
	"github.com/helloworldx64/craftpacker/pkg/ratelimit"
)

const (
	// DefaultBaseURL is the public Modrinth API v2 endpoint.
	DefaultBaseURL = "https://api.modrinth.com/v2"

	// ProjectTypeMod restricts searches to mods.
	ProjectTypeMod = "mod"

	// SearchLimit caps the number of search candidates tried per query.
	SearchLimit = 5
)

// Options configures a [Client].
type Options struct {
	BaseURL   string             // defaults to DefaultBaseURL
	UserAgent string             // defaults to buildinfo.UserAgent()
	HTTP      *http.Client       // defaults to integrations.NewHTTPClient()
	Cache     cache.Cache        // defaults to no caching
	TTL       time.Duration      // lifetime of cached responses
	Limiter   *ratelimit.Limiter // shared process-wide limiter
	Backoff   cache.Backoff      // retry schedule for transient failures
	Logger    *log.Logger        // defaults to log.Default()
}

// Client is a Modrinth catalog client.
//
// Every lookup degrades to "no result" on failure: transport errors, 404s
// and malformed responses are logged at debug level and never returned.
// Client is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
	logger  *log.Logger
	group   singleflight.Group
}

// NewClient creates a Modrinth client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = buildinfo.UserAgent()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Client{
		Client: integrations.NewClient(integrations.Options{
			HTTP:    opts.HTTP,
			Cache:   cache.NewScoped(opts.Cache, "modrinth:"),
			TTL:     opts.TTL,
			Limiter: opts.Limiter,
			Backoff: opts.Backoff,
			Headers: map[string]string{"User-Agent": opts.UserAgent},
		}),
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		logger:  opts.Logger,
	}
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Search returns up to [SearchLimit] project ids for query, in the
// service's ranking order. Any failure yields an empty result.
func (c *Client) Search(ctx context.Context, query, projectType string) []string {
	if projectType == "" {
		projectType = ProjectTypeMod
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("limit", fmt.Sprint(SearchLimit))
	q.Set("facets", fmt.Sprintf(`[["project_type:%s"]]`, projectType))
	endpoint := c.baseURL + "/search?" + q.Encode()

	var resp searchResponse
	err := c.Cached(ctx, cache.Key("search", query, projectType), false, &resp, func() error {
		return c.Get(ctx, endpoint, &resp)
	})
	if err != nil {
		c.logger.Debug("search failed", "query", query, "err", err)
		return nil
	}

	ids := make([]string, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		if h.ProjectID != "" {
			ids = append(ids, h.ProjectID)
		}
		if len(ids) == SearchLimit {
			break
		}
	}
	return ids
}

// ProjectBySlug looks up a project by slug (or id) and returns its id.
func (c *Client) ProjectBySlug(ctx context.Context, slug string) (string, bool) {
	p, err := c.project(ctx, slug)
	if err != nil {
		c.logger.Debug("project lookup failed", "slug", slug, "err", err)
		return "", false
	}
	return p.ID, true
}

// ResolveProject pins projectID to the first version for loader and
// gameVersion, preferring release over beta over alpha and keeping the
// service's order within a channel. Concurrent calls with the same
// arguments share one lookup.
func (c *Client) ResolveProject(ctx context.Context, projectID string, loader deps.Loader, gameVersion string) (*deps.Package, bool) {
	key := projectID + "|" + string(loader) + "|" + gameVersion
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.resolve(ctx, projectID, loader, gameVersion)
	})
	if err != nil {
		c.logger.Debug("resolve failed", "project", projectID, "loader", loader, "game_version", gameVersion, "err", err)
		return nil, false
	}
	return v.(*deps.Package), true
}

var errNoVersion = errors.New("no matching version")

func (c *Client) resolve(ctx context.Context, projectID string, loader deps.Loader, gameVersion string) (*deps.Package, error) {
	p, err := c.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	versions, err := c.versions(ctx, p.ID, loader, gameVersion)
	if err != nil {
		return nil, err
	}

	v, f, ok := pickVersion(versions)
	if !ok {
		return nil, errNoVersion
	}

	pkg := &deps.Package{
		Name:          p.Title,
		ProjectID:     p.ID,
		Slug:          p.Slug,
		VersionID:     v.ID,
		VersionNumber: v.VersionNumber,
		Channel:       deps.Channel(v.VersionType),
		URL:           f.URL,
		Filename:      f.Filename,
		Size:          f.Size,
	}
	for _, d := range v.Dependencies {
		ref := deps.Dependency{ProjectID: d.ProjectID, VersionID: d.VersionID, Kind: deps.Kind(d.DependencyType)}
		if ref.ProjectID == "" && ref.VersionID != "" && ref.Kind == deps.Required {
			ref.ProjectID = c.projectOfVersion(ctx, ref.VersionID)
		}
		pkg.Dependencies = append(pkg.Dependencies, ref)
	}
	return pkg, nil
}

// pickVersion scans channels in priority order and returns the first
// version of the best channel that has a downloadable file.
func pickVersion(versions []version) (version, file, bool) {
	for _, ch := range deps.ChannelPriority {
		for _, v := range versions {
			if v.VersionType != string(ch) {
				continue
			}
			if f, ok := v.primaryFile(); ok {
				return v, f, true
			}
		}
	}
	return version{}, file{}, false
}

func (c *Client) project(ctx context.Context, idOrSlug string) (*project, error) {
	endpoint := c.baseURL + "/project/" + integrations.PathEscape(idOrSlug)

	var p project
	err := c.Cached(ctx, cache.Key("project", idOrSlug), false, &p, func() error {
		return c.Get(ctx, endpoint, &p)
	})
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: project %s has no id", integrations.ErrNotFound, idOrSlug)
	}
	return &p, nil
}

func (c *Client) versions(ctx context.Context, projectID string, loader deps.Loader, gameVersion string) ([]version, error) {
	q := url.Values{}
	q.Set("loaders", jsonList(string(loader)))
	q.Set("game_versions", jsonList(gameVersion))
	endpoint := fmt.Sprintf("%s/project/%s/version?%s", c.baseURL, integrations.PathEscape(projectID), q.Encode())

	var vs []version
	err := c.Cached(ctx, cache.Key("versions", projectID, loader, gameVersion), false, &vs, func() error {
		return c.Get(ctx, endpoint, &vs)
	})
	return vs, err
}

// projectOfVersion completes a version-only dependency reference.
// Returns "" when the version cannot be fetched.
func (c *Client) projectOfVersion(ctx context.Context, versionID string) string {
	endpoint := c.baseURL + "/version/" + integrations.PathEscape(versionID)

	var v version
	err := c.Cached(ctx, cache.Key("version", versionID), false, &v, func() error {
		return c.Get(ctx, endpoint, &v)
	})
	if err != nil {
		c.logger.Debug("version lookup failed", "version", versionID, "err", err)
		return ""
	}
	return v.ProjectID
}

func jsonList(s string) string {
	b, _ := json.Marshal([]string{s})
	return string(b)
}

var _ deps.Fetcher = (*Client)(nil)
