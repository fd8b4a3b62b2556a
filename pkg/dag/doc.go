// Package dag provides the directed graph behind a download plan.
//
// # Overview
//
// A resolved plan is a set of packages plus the "requires" relations the
// resolver discovered between them. This package stores that structure for
// rendering ([render/nodelink]) and for ordering.
//
// # Basic Usage
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "AANobbMI", Label: "Sodium"})
//	g.AddNode(dag.Node{ID: "P7dR8mSH", Label: "Fabric API"})
//	g.AddEdge(dag.Edge{From: "AANobbMI", To: "P7dR8mSH"})
//
// Query the graph with [DAG.Children], [DAG.Parents], [DAG.Sources] and
// [DAG.Sinks]. [DAG.TopoOrder] lists dependencies before their dependents.
//
// # Cycles
//
// Catalog data occasionally declares mutual requirements. The graph accepts
// them; [DAG.Validate] and [DAG.TopoOrder] report [ErrGraphHasCycle].
//
// [render/nodelink]: github.com/helloworldx64/craftpacker/pkg/render/nodelink
package dag
