package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
)

// inspectCommand creates the inspect command, which summarizes a graph and
// lists its nodes.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		settle  bool
		noCache bool
		limit   int
		sortBy  string
	)

	cmd := &cobra.Command{
		Use:   "inspect [graph.json]",
		Short: "Summarize a graph and list its nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSort(sortBy); err != nil {
				return err
			}
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}
			if settle {
				runner, err := c.newRunner(noCache)
				if err != nil {
					return err
				}
				defer runner.Close()
				if _, err := runner.Layout(cmd.Context(), g, c.Config.Options()); err != nil {
					return err
				}
			}

			printSummary(g)
			printNewline()
			fmt.Fprintln(stdout, nodeTable(g, sortBy, limit, settle))
			return nil
		},
	}

	cmd.Flags().BoolVar(&settle, "settle", false, "settle the layout and show positions")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n nodes (0 shows all)")
	cmd.Flags().StringVar(&sortBy, "sort", "input", "node order: input, degree, id, group")

	return cmd
}

var validSorts = map[string]bool{"input": true, "degree": true, "id": true, "group": true}

func validateSort(s string) error {
	if !validSorts[s] {
		return fmt.Errorf("invalid --sort %q (must be input, degree, id or group)", s)
	}
	return nil
}

// graphSummary holds the counts printed by inspect.
type graphSummary struct {
	nodes, links int
	groups       int
	selfLoops    int
	pinned       int
	minW, maxW   float64
}

func summarize(g *graph.Graph) graphSummary {
	s := graphSummary{nodes: g.NodeCount(), links: g.LinkCount(), groups: len(g.Groups())}
	for i := range g.Links {
		l := &g.Links[i]
		if l.SelfLoop() {
			s.selfLoops++
		}
		w := l.Weight()
		if i == 0 || w < s.minW {
			s.minW = w
		}
		if i == 0 || w > s.maxW {
			s.maxW = w
		}
	}
	for i := range g.Nodes {
		if g.IsPinned(i) {
			s.pinned++
		}
	}
	return s
}

func printSummary(g *graph.Graph) {
	s := summarize(g)
	fmt.Fprintln(stdout, StyleTitle.Render("Graph"))
	printKeyValue("nodes", strconv.Itoa(s.nodes))
	printKeyValue("links", strconv.Itoa(s.links))
	printKeyValue("groups", strconv.Itoa(s.groups))
	if s.links > 0 {
		printKeyValue("weights", fmt.Sprintf("%g – %g", s.minW, s.maxW))
	}
	if s.selfLoops > 0 {
		printKeyValue("self-loops", strconv.Itoa(s.selfLoops))
	}
	if s.pinned > 0 {
		printKeyValue("pinned", strconv.Itoa(s.pinned))
	}
}

// nodeOrder returns node indices in the requested order.
func nodeOrder(g *graph.Graph, sortBy string) []int {
	idx := make([]int, g.NodeCount())
	for i := range idx {
		idx[i] = i
	}
	var less func(a, b int) bool
	switch sortBy {
	case "degree":
		less = func(a, b int) bool { return g.Degree(a) > g.Degree(b) }
	case "id":
		less = func(a, b int) bool { return g.Nodes[a].ID < g.Nodes[b].ID }
	case "group":
		less = func(a, b int) bool { return g.Nodes[a].Group < g.Nodes[b].Group }
	default:
		return idx
	}
	sort.SliceStable(idx, func(i, j int) bool { return less(idx[i], idx[j]) })
	return idx
}

// nodeTable renders a table of nodes. Positions are included once the
// graph has been laid out.
func nodeTable(g *graph.Graph, sortBy string, limit int, positions bool) string {
	order := nodeOrder(g, sortBy)
	if limit > 0 && limit < len(order) {
		order = order[:limit]
	}

	headers := []string{"#", "ID", "Group", "Degree"}
	if positions {
		headers = append(headers, "X", "Y")
	}

	rows := make([][]string, 0, len(order))
	for _, i := range order {
		n := &g.Nodes[i]
		row := []string{strconv.Itoa(i), n.ID, n.Group, strconv.Itoa(g.Degree(i))}
		if positions {
			row = append(row, fmt.Sprintf("%.1f", n.X), fmt.Sprintf("%.1f", n.Y))
		}
		rows = append(rows, row)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleDim
			case col >= 3:
				return StyleNumber
			}
			return StyleValue
		})
	return t.Render()
}
