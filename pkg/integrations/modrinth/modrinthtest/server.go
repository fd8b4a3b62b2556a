// Package modrinthtest provides an in-process Modrinth-compatible server
// for tests.
//
// The server implements the catalog endpoints craftpacker reads plus a
// file host for downloads:
//
//	srv := modrinthtest.NewServer()
//	defer srv.Close()
//	srv.AddProject(modrinthtest.Project{
//	    ID: "AANobbMI", Slug: "sodium", Title: "Sodium",
//	    Versions: []modrinthtest.Version{{
//	        ID: "v1", Type: "release",
//	        Loaders: []string{"fabric"}, GameVersions: []string{"1.20.1"},
//	        Files: []modrinthtest.File{{Name: "sodium.jar", Content: []byte("jar")}},
//	    }},
//	})
//	client := modrinth.NewClient(modrinth.Options{BaseURL: srv.URL})
package modrinthtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Project is a catalog project.
type Project struct {
	ID       string
	Slug     string
	Title    string
	Versions []Version
}

// Version is one published version. Versions are listed in the order given.
type Version struct {
	ID           string
	Number       string
	Type         string // release, beta or alpha
	Loaders      []string
	GameVersions []string
	Files        []File
	Dependencies []Dependency
}

// File is a downloadable file served by the server under /files/.
type File struct {
	Name    string
	Content []byte
	Primary bool

	// FailAfter aborts the response after this many body bytes when > 0.
	FailAfter int
	// Status overrides the GET response status when non-zero.
	Status int
	// HideLength omits Content-Length so the size is unknown.
	HideLength bool
}

// Dependency is a dependency reference of a version.
type Dependency struct {
	ProjectID string
	VersionID string
	Type      string // required, optional, incompatible, embedded
}

// Server is a fake Modrinth API. It is safe for concurrent use.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	projects map[string]*Project // by id and by slug
	versions map[string]*Project // by version id
	search   map[string][]string // lower-cased query -> ids
	files    map[string]File     // "versionID/name" -> file
	hits     map[string]int      // route pattern -> count
	failing  map[string]int      // route pattern -> status
}

// NewServer starts a fake catalog server.
func NewServer() *Server {
	s := &Server{
		projects: make(map[string]*Project),
		versions: make(map[string]*Project),
		search:   make(map[string][]string),
		files:    make(map[string]File),
		hits:     make(map[string]int),
		failing:  make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(s.count)
	r.Get("/search", s.handleSearch)
	r.Get("/project/{id}", s.handleProject)
	r.Get("/project/{id}/version", s.handleVersions)
	r.Get("/version/{id}", s.handleVersion)
	r.Get("/files/{version}/{name}", s.handleFile)
	r.Head("/files/{version}/{name}", s.handleFile)

	s.Server = httptest.NewServer(r)
	return s
}

// AddProject registers p, its versions and their files.
func (s *Server) AddProject(p Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.projects[p.ID] = &cp
	if p.Slug != "" {
		s.projects[p.Slug] = &cp
	}
	for _, v := range p.Versions {
		s.versions[v.ID] = &cp
		for _, f := range v.Files {
			s.files[v.ID+"/"+f.Name] = f
		}
	}
}

// AddSearch makes query (case-insensitive) return ids in order. Queries
// without an explicit entry match projects whose title equals the query.
func (s *Server) AddSearch(query string, ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search[strings.ToLower(query)] = ids
}

// Fail makes every request to the chi route pattern (e.g. "/search")
// answer status. Status 0 clears the failure.
func (s *Server) Fail(pattern string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failing, pattern)
		return
	}
	s.failing[pattern] = status
}

// Hits returns how many requests reached the chi route pattern.
func (s *Server) Hits(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[pattern]
}

// FileURL returns the download URL of a version's file.
func (s *Server) FileURL(versionID, name string) string {
	return fmt.Sprintf("%s/files/%s/%s", s.URL, versionID, name)
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.NewRouteContext()
		pattern := r.URL.Path
		if chi.RouteContext(r.Context()).Routes.Match(rctx, r.Method, r.URL.Path) {
			pattern = rctx.RoutePattern()
		}

		s.mu.Lock()
		if r.Method != http.MethodHead {
			s.hits[pattern]++
		}
		status := s.failing[pattern]
		s.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	s.mu.Lock()
	ids, ok := s.search[strings.ToLower(query)]
	if !ok {
		seen := map[*Project]bool{}
		for _, p := range s.projects {
			if !seen[p] && strings.EqualFold(p.Title, query) {
				seen[p] = true
				ids = append(ids, p.ID)
			}
		}
		slices.Sort(ids)
	}
	type hit struct {
		ProjectID string `json:"project_id"`
		Slug      string `json:"slug"`
		Title     string `json:"title"`
	}
	hits := []hit{}
	for _, id := range ids {
		if limit > 0 && len(hits) == limit {
			break
		}
		h := hit{ProjectID: id}
		if p, ok := s.projects[id]; ok {
			h.Slug, h.Title = p.Slug, p.Title
		}
		hits = append(hits, h)
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"hits": hits, "limit": limit, "total_hits": len(hits)})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{"id": p.ID, "slug": p.Slug, "title": p.Title, "project_type": "mod"})
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	loaders := parseList(r.URL.Query().Get("loaders"))
	gameVersions := parseList(r.URL.Query().Get("game_versions"))

	out := []map[string]any{}
	for _, v := range p.Versions {
		if !overlaps(v.Loaders, loaders) || !overlaps(v.GameVersions, gameVersions) {
			continue
		}
		out = append(out, s.versionJSON(p, v))
	}
	writeJSON(w, out)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	p, ok := s.versions[id]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	for _, v := range p.Versions {
		if v.ID == id {
			writeJSON(w, s.versionJSON(p, v))
			return
		}
	}
	http.NotFound(w, r)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	f, ok := s.files[chi.URLParam(r, "version")+"/"+chi.URLParam(r, "name")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if r.Method == http.MethodGet && f.Status != 0 {
		w.WriteHeader(f.Status)
		return
	}
	w.Header().Set("Content-Type", "application/java-archive")
	if !f.HideLength {
		w.Header().Set("Content-Length", strconv.Itoa(len(f.Content)))
	}
	if r.Method == http.MethodHead {
		return
	}

	body := f.Content
	if f.FailAfter > 0 && f.FailAfter < len(body) {
		_, _ = w.Write(body[:f.FailAfter])
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		panic(http.ErrAbortHandler)
	}
	_, _ = w.Write(body)
}

func (s *Server) lookup(id string) (*Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	return p, ok
}

func (s *Server) versionJSON(p *Project, v Version) map[string]any {
	files := []map[string]any{}
	for _, f := range v.Files {
		files = append(files, map[string]any{
			"url":      s.FileURL(v.ID, f.Name),
			"filename": f.Name,
			"primary":  f.Primary,
			"size":     len(f.Content),
		})
	}
	deps := []map[string]any{}
	for _, d := range v.Dependencies {
		m := map[string]any{"dependency_type": d.Type, "project_id": nil, "version_id": nil}
		if d.ProjectID != "" {
			m["project_id"] = d.ProjectID
		}
		if d.VersionID != "" {
			m["version_id"] = d.VersionID
		}
		deps = append(deps, m)
	}
	return map[string]any{
		"id":             v.ID,
		"project_id":     p.ID,
		"version_number": v.Number,
		"version_type":   v.Type,
		"loaders":        v.Loaders,
		"game_versions":  v.GameVersions,
		"files":          files,
		"dependencies":   deps,
	}
}

// parseList decodes a JSON string array query parameter. An empty value
// matches everything.
func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{raw}
	}
	return out
}

func overlaps(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
