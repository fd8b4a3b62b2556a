package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/helloworldx64/craftpacker/pkg/dag"
	"github.com/helloworldx64/craftpacker/pkg/deps"
	"github.com/helloworldx64/craftpacker/pkg/errors"
)

// ReadJSON decodes a JSON graph from r into a DAG.
//
// ReadJSON returns an error if the JSON is malformed, a node id is
// missing or duplicated, or an edge references an unknown node. Errors
// name the offending node or edge. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*dag.DAG, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := dag.New(nil)
	for _, n := range data.Nodes {
		if err := g.AddNode(dag.Node{ID: n.ID, Label: n.Label, Meta: n.Meta}); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// ImportJSON reads a JSON graph file at path.
func ImportJSON(path string) (*dag.DAG, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

// ReadPlan decodes a download plan from r. Every package must carry a
// project id, a download URL and a safe file name; project ids must be
// unique.
func ReadPlan(r io.Reader) (*deps.Plan, error) {
	var p deps.Plan
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	seen := make(map[string]bool, len(p.Packages))
	for i, pkg := range p.Packages {
		if pkg == nil || pkg.ProjectID == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "package %d has no project id", i)
		}
		if seen[pkg.ProjectID] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate project %s", pkg.ProjectID)
		}
		seen[pkg.ProjectID] = true
		if err := errors.ValidateURL(pkg.URL); err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.ProjectID, err)
		}
		if err := errors.ValidateFilename(pkg.Filename); err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.ProjectID, err)
		}
	}
	return &p, nil
}

// ImportPlan reads a download plan file at path.
func ImportPlan(path string) (*deps.Plan, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPlan(f)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
