package graph_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

func ExampleLoad() {
	nodes := []graph.Node{{ID: "Ada"}, {ID: "Alan"}, {ID: "Grace"}}
	links := []graph.Link{
		{Source: "Ada", Target: "Alan"},
		{Source: "Ada", Target: "Grace"},
	}

	g, err := graph.Load(nodes, links)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	ada, _ := g.Index("Ada")
	fmt.Println("nodes:", g.NodeCount())
	fmt.Println("degree(Ada):", g.Degree(ada))
	// Output:
	// nodes: 3
	// degree(Ada): 2
}

func ExampleLoad_undefinedReference() {
	_, err := graph.Load(
		[]graph.Node{{ID: "A"}},
		[]graph.Link{{Source: "A", Target: "B"}},
	)
	fmt.Println(err)
	// Output:
	// INVALID_REFERENCE: link 0: unknown target "B"
}

func ExampleWriteGraph() {
	g, _ := graph.Load(
		[]graph.Node{{ID: "Ada", Group: "1"}, {ID: "Alan", Group: "1"}},
		[]graph.Link{{Source: "Ada", Target: "Alan", Value: graph.NumberValue(2)}},
	)

	var buf bytes.Buffer
	if err := graph.WriteGraph(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "Ada",
	//       "group": "1"
	//     },
	//     {
	//       "id": "Alan",
	//       "group": "1"
	//     }
	//   ],
	//   "links": [
	//     {
	//       "source": "Ada",
	//       "target": "Alan",
	//       "value": 2
	//     }
	//   ]
	// }
}

func ExampleReadGraph() {
	data := `{
		"nodes": [{"id": "Ada", "group": "1"}, {"id": "Alan", "group": "1"}],
		"links": [{"source": "Ada", "target": "Alan", "value": "https://example.com/article"}]
	}`

	g, err := graph.ReadGraph(strings.NewReader(data))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("links:", g.LinkCount())
	fmt.Println("weight:", g.Links[0].Weight())
	// Output:
	// links: 1
	// weight: 1
}
