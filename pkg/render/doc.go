// Package render groups the visual exports of a download plan.
//
// The [nodelink] subpackage draws the plan as a directed graph with
// Graphviz: one box per package and one arrow per required dependency.
// [pipeline.Render] picks the exporter from the requested format.
//
//	dot := nodelink.ToDOT(plan.Graph(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// [nodelink]: github.com/helloworldx64/craftpacker/pkg/render/nodelink
// [pipeline.Render]: github.com/helloworldx64/craftpacker/pkg/pipeline#Render
package render
