package layout

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/matzehuels/slideweave/pkg/slide"
	"github.com/matzehuels/slideweave/pkg/style"
)

// GeometryNode is the computed border box of one element in absolute slide
// pixels. The tree mirrors the element tree one to one.
type GeometryNode struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Kind slide.Kind `json:"kind"`
	ID   string     `json:"id,omitempty"`
	Path string     `json:"path"`

	// Placeholder marks a node whose element had an invalid shape. It has
	// zero size and no children.
	Placeholder bool `json:"placeholder,omitempty"`

	BorderWidth  float64       `json:"borderWidth,omitempty"`
	BorderRadius float64       `json:"borderRadius,omitempty"`
	Padding      style.EdgesPx `json:"-"`

	Element  *slide.Element      `json:"-"`
	Style    style.ResolvedStyle `json:"-"`
	Children []*GeometryNode     `json:"children,omitempty"`
}

// Right returns Left + Width.
func (g *GeometryNode) Right() float64 { return g.Left + g.Width }

// Bottom returns Top + Height.
func (g *GeometryNode) Bottom() float64 { return g.Top + g.Height }

// ContentBox returns the box inside border and padding.
func (g *GeometryNode) ContentBox() (left, top, width, height float64) {
	left = g.Left + g.BorderWidth + g.Padding.Left
	top = g.Top + g.BorderWidth + g.Padding.Top
	width = max(0, g.Width-2*g.BorderWidth-g.Padding.Horizontal())
	height = max(0, g.Height-2*g.BorderWidth-g.Padding.Vertical())
	return
}

// Walk visits g and its descendants in pre-order. Returning false from fn
// skips the children of that node.
func (g *GeometryNode) Walk(fn func(n *GeometryNode, depth int) bool) {
	var walk func(*GeometryNode, int)
	walk = func(n *GeometryNode, depth int) {
		if n == nil || !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(g, 0)
}

// Count returns the number of nodes in the tree.
func (g *GeometryNode) Count() int {
	n := 0
	g.Walk(func(*GeometryNode, int) bool { n++; return true })
	return n
}

// Find returns the node with the given path, or nil.
func (g *GeometryNode) Find(path string) *GeometryNode {
	var found *GeometryNode
	g.Walk(func(n *GeometryNode, _ int) bool {
		if found != nil {
			return false
		}
		if n.Path == path {
			found = n
			return false
		}
		return true
	})
	return found
}

func (g *GeometryNode) String() string {
	label := g.Kind.String()
	if g.ID != "" {
		label += "#" + g.ID
	}
	if g.Placeholder {
		label += " (placeholder)"
	}
	return fmt.Sprintf("%s [%g,%g %gx%g]", label, g.Left, g.Top, g.Width, g.Height)
}

// Tree renders the geometry as an indented text tree.
func (g *GeometryNode) Tree() string {
	t := treeprint.NewWithRoot(g.String())
	for _, c := range g.Children {
		addBranch(t, c)
	}
	return t.String()
}

func addBranch(t treeprint.Tree, g *GeometryNode) {
	if len(g.Children) == 0 {
		t.AddNode(g.String())
		return
	}
	b := t.AddBranch(g.String())
	for _, c := range g.Children {
		addBranch(b, c)
	}
}
