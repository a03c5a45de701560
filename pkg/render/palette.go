package render

// Category10 is the ten-colour categorical scheme used for node groups.
var Category10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

// Palette assigns colours to groups in the order the groups are first seen,
// cycling through the scheme once it is exhausted.
type Palette struct {
	colors []string
	index  map[string]int
}

// NewPalette creates a palette over Category10.
func NewPalette() *Palette {
	return NewPaletteWith(Category10)
}

// NewPaletteWith creates a palette over the given colours. An empty slice
// falls back to Category10.
func NewPaletteWith(colors []string) *Palette {
	if len(colors) == 0 {
		colors = Category10
	}
	return &Palette{colors: colors, index: make(map[string]int)}
}

// Color returns the colour of group, assigning the next one on first use.
func (p *Palette) Color(group string) string {
	i, ok := p.index[group]
	if !ok {
		i = len(p.index)
		p.index[group] = i
	}
	return p.colors[i%len(p.colors)]
}

// Seed assigns colours to groups in order, e.g. from graph.Groups, so that
// colours do not depend on which node a renderer happens to draw first.
func (p *Palette) Seed(groups []string) {
	for _, g := range groups {
		p.Color(g)
	}
}

// Len returns the number of groups seen so far.
func (p *Palette) Len() int { return len(p.index) }
