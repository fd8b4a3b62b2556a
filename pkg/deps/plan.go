package deps

import "github.com/helloworldx64/craftpacker/pkg/dag"

// Edge records that From requires To (both project ids).
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Gap is a required dependency that could not be resolved for the active
// loader and game version. Gaps are left out of the plan.
type Gap struct {
	From      string `json:"from"`       // requiring project id
	FromName  string `json:"from_name"`  // requiring project display name
	ProjectID string `json:"project_id"` // may be empty for version-only refs
	VersionID string `json:"version_id,omitempty"`
}

// Plan is the deduplicated set of packages to download, in resolution
// order (dependencies before dependents within one branch).
type Plan struct {
	Packages []*Package `json:"packages"`
	Edges    []Edge     `json:"edges,omitempty"`
	Gaps     []Gap      `json:"gaps,omitempty"`
}

// Len returns the number of packages.
func (p *Plan) Len() int { return len(p.Packages) }

// Package returns the package with the given project id.
func (p *Plan) Package(projectID string) (*Package, bool) {
	for _, pkg := range p.Packages {
		if pkg.ProjectID == projectID {
			return pkg, true
		}
	}
	return nil, false
}

// Contains reports whether the plan holds projectID.
func (p *Plan) Contains(projectID string) bool {
	_, ok := p.Package(projectID)
	return ok
}

// Graph builds a [dag.DAG] of the plan. Edges to packages outside the plan
// are dropped.
func (p *Plan) Graph() *dag.DAG {
	g := dag.New(nil)
	for _, pkg := range p.Packages {
		_ = g.AddNode(dag.Node{ID: pkg.ProjectID, Label: pkg.Name, Meta: pkg.Metadata()})
	}
	for _, e := range p.Edges {
		_ = g.AddEdge(dag.Edge{From: e.From, To: e.To})
	}
	return g
}
