package layout

import (
	"fmt"
	"math"

	"github.com/matzehuels/slideweave/pkg/diag"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/slide"
	"github.com/matzehuels/slideweave/pkg/style"
)

// Styler resolves the style of an element. *style.Resolver implements it.
type Styler interface {
	Style(el *slide.Element) (style.ResolvedStyle, diag.List)
}

// Solver lays out element trees. The zero value uses a viewport-bound
// [style.Resolver] and the [Heuristic] measurer. A Solver holds no state
// between calls and may be shared across goroutines as long as its Styler and
// Measurer are.
type Solver struct {
	Styles   Styler
	Measurer TextMeasurer

	// Path is the diagnostic path of the root, for example "slide[0]".
	// Empty means "root".
	Path string
}

// Solve lays out root in a width×height viewport. See [Solver.Solve].
func Solve(root *slide.Element, styles Styler, width, height float64, m TextMeasurer) (*GeometryNode, diag.List, error) {
	s := &Solver{Styles: styles, Measurer: m}
	return s.Solve(root, width, height)
}

// Solve lays out root in a width×height viewport and returns the geometry
// tree with the diagnostics collected while resolving styles and solving.
// Only a nil root, a root that cannot hold children, or an invalid viewport
// is an error; every other problem degrades to a fallback and a diagnostic.
func (s *Solver) Solve(root *slide.Element, width, height float64) (*GeometryNode, diag.List, error) {
	if root == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "nil root element")
	}
	if root.Kind.IsLeaf() && len(root.Children) > 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "root %s cannot have children", root.Kind)
	}
	if err := errors.ValidateSlideSize(width, height); err != nil {
		return nil, nil, err
	}

	a := &arena{
		vp:       style.Viewport{Width: width, Height: height},
		styles:   s.Styles,
		measurer: s.Measurer,
	}
	if a.styles == nil {
		a.styles = style.NewResolver(width, height)
	}
	if a.measurer == nil {
		a.measurer = Heuristic{}
	}
	path := s.Path
	if path == "" {
		path = "root"
	}

	a.build(root, path)
	a.provisional()
	a.intrinsic()
	a.commit()
	return a.geometry(), a.diags, nil
}

// dim is a size that may not be known yet.
type dim struct {
	v  float64
	ok bool
}

func known(v float64) dim { return dim{v: v, ok: true} }

func (d dim) or(fallback float64) float64 {
	if d.ok {
		return d.v
	}
	return fallback
}

func (d dim) ancestor() style.Ancestor {
	if d.ok {
		return style.Known(d.v)
	}
	return style.Unknown
}

// node is one arena entry. Fields are filled pass by pass.
type node struct {
	el          *slide.Element
	kind        slide.Kind
	style       style.ResolvedStyle
	path        string
	parent      int
	kids        []int
	placeholder bool

	// provisional and intrinsic
	provW, provH    dim
	contentW        dim
	margin1, frame1 style.EdgesPx
	border1         float64
	intrW, intrH    float64

	// commit
	left, top     float64
	width, height float64
	defW, defH    bool
	margin        style.EdgesPx
	padding       style.EdgesPx
	border        float64
	radius        float64
}

type arena struct {
	vp       style.Viewport
	styles   Styler
	measurer TextMeasurer
	nodes    []node
	diags    diag.List
}

// build flattens the element tree into pre-order. Leaf kinds that carry
// children become placeholders and their descendants are not visited.
func (a *arena) build(root *slide.Element, rootPath string) {
	type item struct {
		el     *slide.Element
		parent int
		path   string
	}
	stack := []item{{el: root, parent: -1, path: rootPath}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := len(a.nodes)
		n := node{el: it.el, parent: it.parent, path: it.path, style: style.Default()}
		if it.parent >= 0 {
			a.nodes[it.parent].kids = append(a.nodes[it.parent].kids, idx)
		}

		switch {
		case it.el == nil:
			n.placeholder = true
			a.diags.Addf(errors.ErrCodeInvalidTreeShape, it.path, "", "null element replaced by an empty placeholder")
		case it.el.Kind.IsLeaf() && len(it.el.Children) > 0:
			n.kind = it.el.Kind
			n.placeholder = true
			a.diags.Addf(errors.ErrCodeInvalidTreeShape, it.path, "",
				"%s cannot have children; replaced by an empty placeholder (%d descendants skipped)",
				it.el.Kind, it.el.Count()-1)
		default:
			n.kind = it.el.Kind
			st, d := a.styles.Style(it.el)
			n.style = st
			a.diags.Extend(d.WithPath(it.path))
			for i := len(it.el.Children) - 1; i >= 0; i-- {
				c := it.el.Children[i]
				kind := "null"
				if c != nil {
					kind = c.Kind.String()
				}
				stack = append(stack, item{
					el:     c,
					parent: idx,
					path:   fmt.Sprintf("%s/%s[%d]", it.path, kind, i),
				})
			}
		}
		a.nodes = append(a.nodes, n)
	}
}

// provisional resolves sizes that depend only on ancestors whose sizes are
// already known: the viewport, explicit lengths and stretched cross sizes.
func (a *arena) provisional() {
	for i := range a.nodes {
		n := &a.nodes[i]
		if n.placeholder {
			n.provW, n.provH = known(0), known(0)
			continue
		}
		n.border1 = n.style.Border.Width.PxOr(style.Unknown, a.vp, 0)

		var pw, ph dim
		if n.parent < 0 {
			pw, ph = known(a.vp.Width), known(a.vp.Height)
			n.provW, n.provH = pw, ph
		} else {
			p := &a.nodes[n.parent]
			pw, ph = p.contentW, p.contentH()
			n.margin1, _ = n.style.Margin.Resolve(pw.ancestor(), ph.ancestor(), a.vp)
			n.provW = a.provLength(n.style.Width, pw)
			n.provH = a.provLength(n.style.Height, ph)

			if alignOf(p, n) == style.AlignStretch {
				if p.style.Direction == style.Column && !n.provW.ok && pw.ok {
					n.provW = known(max(0, pw.v-n.margin1.Horizontal()))
				}
				if p.style.Direction == style.Row && !n.provH.ok && ph.ok {
					n.provH = known(max(0, ph.v-n.margin1.Vertical()))
				}
			}
		}

		n.frame1, _ = n.style.Padding.Resolve(pw.ancestor(), ph.ancestor(), a.vp)
		if n.provW.ok {
			n.provW = known(a.clamp(n.provW.v, n.style.MinWidth, n.style.MaxWidth, pw))
			n.contentW = known(max(0, n.provW.v-2*n.border1-n.frame1.Horizontal()))
		}
		if n.provH.ok {
			n.provH = known(a.clamp(n.provH.v, n.style.MinHeight, n.style.MaxHeight, ph))
		}
	}
}

func (n *node) contentH() dim {
	if !n.provH.ok {
		return dim{}
	}
	return known(max(0, n.provH.v-2*n.border1-n.frame1.Vertical()))
}

func (a *arena) provLength(l style.Length, ancestor dim) dim {
	if v, ok := l.ToPx(ancestor.ancestor(), a.vp); ok {
		return known(max(0, v))
	}
	return dim{}
}

// intrinsic computes content-driven border-box sizes bottom-up. Explicit
// sizes from the provisional pass win over content sizes.
func (a *arena) intrinsic() {
	for i := len(a.nodes) - 1; i >= 0; i-- {
		n := &a.nodes[i]
		if n.placeholder {
			continue
		}
		frameH := 2*n.border1 + n.frame1.Horizontal()
		frameV := 2*n.border1 + n.frame1.Vertical()

		switch {
		case n.kind.IsText():
			w, h := a.measurer.Measure(n.el.Content, n.style.Text, a.availableText(n, frameH))
			n.intrW, n.intrH = w+frameH, h+frameV

		case len(n.kids) > 0:
			row := n.style.Direction == style.Row
			var main, cross float64
			flow := 0
			for _, k := range n.kids {
				c := &a.nodes[k]
				if c.placeholder {
					continue
				}
				flow++
				cw := c.provW.or(c.intrW) + c.margin1.Horizontal()
				ch := c.provH.or(c.intrH) + c.margin1.Vertical()
				if row {
					main += cw
					cross = max(cross, ch)
				} else {
					main += ch
					cross = max(cross, cw)
				}
			}
			if flow > 1 {
				axis := n.contentW
				if !row {
					axis = n.contentH()
				}
				main += n.style.Gap.PxOr(axis.ancestor(), a.vp, 0) * float64(flow-1)
			}
			if row {
				n.intrW, n.intrH = main+frameH, cross+frameV
			} else {
				n.intrW, n.intrH = cross+frameH, main+frameV
			}

		default:
			n.intrW, n.intrH = frameH, frameV
		}

		if n.provW.ok {
			n.intrW = n.provW.v
		}
		if n.provH.ok {
			n.intrH = n.provH.v
		}
		n.intrW = a.clamp(n.intrW, n.style.MinWidth, n.style.MaxWidth, dim{})
		n.intrH = a.clamp(n.intrH, n.style.MinHeight, n.style.MaxHeight, dim{})
	}
}

// availableText is the width a text leaf may wrap to before its parent has
// been committed.
func (a *arena) availableText(n *node, frameH float64) float64 {
	if n.provW.ok {
		return max(0, n.provW.v-frameH)
	}
	if n.parent >= 0 {
		if pw := a.nodes[n.parent].contentW; pw.ok {
			return max(0, pw.v-n.margin1.Horizontal()-frameH)
		}
	}
	return Unbounded
}

// clamp applies min and max lengths that resolve against ancestor. Min wins
// over max, and the result is never negative.
func (a *arena) clamp(v float64, lo, hi style.Length, ancestor dim) float64 {
	if m, ok := hi.ToPx(ancestor.ancestor(), a.vp); ok && v > m {
		v = m
	}
	if m, ok := lo.ToPx(ancestor.ancestor(), a.vp); ok && v < m {
		v = m
	}
	return max(0, v)
}

func alignOf(parent, child *node) style.Align {
	if child.style.AlignSelf != style.AlignAuto {
		return child.style.AlignSelf
	}
	return parent.style.AlignItems
}

// geometry converts the committed arena into the output tree.
func (a *arena) geometry() *GeometryNode {
	out := make([]*GeometryNode, len(a.nodes))
	for i := range a.nodes {
		n := &a.nodes[i]
		g := &GeometryNode{
			Left:         finite(n.left),
			Top:          finite(n.top),
			Width:        finite(n.width),
			Height:       finite(n.height),
			Kind:         n.kind,
			Path:         n.path,
			Placeholder:  n.placeholder,
			BorderWidth:  finite(n.border),
			BorderRadius: finite(n.radius),
			Padding:      n.padding,
			Element:      n.el,
			Style:        n.style,
		}
		if n.el != nil {
			g.ID = n.el.ID
		}
		out[i] = g
		if n.parent >= 0 {
			p := out[n.parent]
			p.Children = append(p.Children, g)
		}
	}
	return out[0]
}

// finite maps NaN, infinities and negatives to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
