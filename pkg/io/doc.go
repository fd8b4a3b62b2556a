// Package io provides JSON import and export for dependency graphs and
// download plans.
//
// # Graph Format
//
// Graphs use two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "AANobbMI", "label": "Sodium", "meta": {"channel": "release"}},
//	    {"id": "P7dR8mSH", "label": "Fabric API"}
//	  ],
//	  "edges": [
//	    {"from": "AANobbMI", "to": "P7dR8mSH"}
//	  ]
//	}
//
// Each node must have an "id". Edges must reference known node ids.
//
// # Plan Format
//
// Plans are the JSON encoding of [deps.Plan]: the ordered package list, the
// dependency edges and the unresolved gaps. A plan written with
// [WritePlan] can be downloaded later without repeating the search:
//
//	craftpacker resolve Sodium Lithium --json plan.json
//	craftpacker download --plan plan.json
package io
