// Package graph provides the node-link model laid out by the simulation and
// its JSON wire formats.
//
// # Model
//
// A [Graph] is built once by [Load] from a list of [Node] values and a list
// of [Link] values. Loading is fail-fast: node ids must be non-empty and
// unique, and every link endpoint must name a loaded node. On success each
// link carries the integer indices of its endpoints into the node arena, and
// every node knows its incident links:
//
//	g, err := graph.Load(nodes, links)
//	if err != nil {
//	    return err // INVALID_REFERENCE, DUPLICATE_NODE_ID or INVALID_INPUT
//	}
//	for _, li := range g.Incident(0) {
//	    l := g.Links[li]
//	    fmt.Println(l.Source, "-", l.Target)
//	}
//
// After loading, only the kinematic fields of nodes (X, Y, VX, VY and the
// FX/FY pin) change. Topology is immutable.
//
// # Link Weight
//
// A link's value is kept as raw JSON. [Link.Weight] returns it when it is a
// positive finite number, or a string holding one, and 1 otherwise. Data
// scraped from articles commonly carries the article URL as the value, which
// falls back to 1.
//
// # Wire Format
//
//	{
//	  "nodes": [{"id": "Ada", "group": "1", "r": 1}],
//	  "links": [{"source": "Ada", "target": "Alan", "value": 2}]
//	}
//
// [ReadGraph], [ReadGraphFile] and [UnmarshalGraph] decode and load that
// document; [WriteGraph], [WriteGraphFile] and [MarshalGraph] write it back,
// including current positions.
//
// # Layouts
//
// [Layout] is the serialized result of a finished (or paused) simulation:
// canvas size, tick count, alpha, node positions and link segments. It is
// what the pipeline caches and what the renderers consume.
package graph
