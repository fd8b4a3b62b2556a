// Package nodelink renders download plans as node-link diagrams.
//
// Each package is a box and each required dependency an arrow from the
// package to what it needs. Convert a DAG to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(plan.Graph(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// The DOT source can also be written out and processed with external
// Graphviz tools. SVG rendering runs in-process through
// [github.com/goccy/go-graphviz]; no Graphviz installation is needed.
package nodelink
