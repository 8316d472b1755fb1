package layout

import (
	"sort"

	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/style"
)

// flexItem holds the intermediate state of one child during its parent's
// commit. It lives only for the duration of layoutChildren.
type flexItem struct {
	idx   int
	align style.Align

	explicitMain, explicitCross dim
	minMain, maxMain            dim
	minCross, maxCross          dim

	mainBefore, mainAfter   float64
	crossBefore, crossAfter float64

	base         float64
	main, cross  float64
	grow, shrink float64

	flexed   bool
	crossDef bool

	// deferred marks a main size that is a percentage of a content-sized
	// parent. The parent was sized without it.
	deferred bool
}

func (it *flexItem) mainMargin() float64  { return it.mainBefore + it.mainAfter }
func (it *flexItem) crossMargin() float64 { return it.crossBefore + it.crossAfter }

// commit sizes the root to the viewport and places every node's children
// top-down. Each node is committed by its parent before its own children.
func (a *arena) commit() {
	root := &a.nodes[0]
	root.width, root.height = a.vp.Width, a.vp.Height
	root.defW, root.defH = true, true
	if !root.placeholder {
		vw, vh := known(a.vp.Width), known(a.vp.Height)
		root.padding = a.edges(root, root.style.Padding, "padding", vw, vh, true)
		root.border = max(0, root.style.Border.Width.PxOr(style.Unknown, a.vp, 0))
		root.radius = a.radius(root)
	}
	for i := range a.nodes {
		if n := &a.nodes[i]; !n.placeholder && len(n.kids) > 0 {
			a.layoutChildren(n)
		}
	}
}

// layoutChildren runs the flex algorithm for the children of n, whose own
// box is already final.
//
// Phases: margins and explicit sizes, cross size (column), basis, grow and
// shrink, min/max clamp, cross size (row), justify, align.
func (a *arena) layoutChildren(n *node) {
	row := n.style.Direction == style.Row

	cl := n.left + n.border + n.padding.Left
	ct := n.top + n.border + n.padding.Top
	contentW := dim{v: max(0, n.width-2*n.border-n.padding.Horizontal()), ok: n.defW}
	contentH := dim{v: max(0, n.height-2*n.border-n.padding.Vertical()), ok: n.defH}

	mainAxis, crossAxis := contentH, contentW
	if row {
		mainAxis, crossAxis = contentW, contentH
	}
	// The content box is final once n is committed, content-sized or not.
	// Percentages of an empty content-sized box stay unresolved.
	pctW, pctH := settled(contentW), settled(contentH)
	mainPct := pctH
	if row {
		mainPct = pctW
	}

	items := make([]flexItem, 0, len(n.kids))
	for _, k := range n.kids {
		c := &a.nodes[k]
		if c.placeholder {
			c.left, c.top = cl, ct
			continue
		}
		it := a.prepare(n, k, pctW, pctH, row)
		if !mainAxis.ok {
			it.deferred = mainPct.ok && mainLength(c, row).IsPercent()
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return
	}
	sort.SliceStable(items, func(x, y int) bool {
		return a.nodes[items[x].idx].style.Order < a.nodes[items[y].idx].style.Order
	})

	gap := a.size(n, n.style.Gap, "gap", mainPct, known(0)).or(0)
	gaps := gap * float64(len(items)-1)
	var deferred float64
	if !mainAxis.ok && n.style.Gap.IsPercent() {
		deferred = gaps
	}

	if !row {
		for j := range items {
			a.crossSize(&items[j], crossAxis, row)
		}
	}
	for j := range items {
		a.basis(&items[j], mainPct, row)
	}

	used := gaps
	var totalGrow, totalShrink float64
	for _, it := range items {
		used += it.base + it.mainMargin()
		totalGrow += it.grow
		totalShrink += it.shrink * it.base
		if it.deferred {
			c := &a.nodes[it.idx]
			if row {
				deferred += it.base - c.intrW
			} else {
				deferred += it.base - c.intrH
			}
		}
	}
	// The parent was sized around the content size of deferred items, so
	// the difference overflows instead of shrinking their siblings.
	free := mainAxis.v - used + deferred
	for j := range items {
		it := &items[j]
		it.main = it.base
		switch {
		case free > 0 && totalGrow > 0 && it.grow > 0:
			it.main += free * it.grow / totalGrow
			it.flexed = true
		case free < 0 && totalShrink > 0 && it.shrink > 0:
			it.main += free * it.shrink * it.base / totalShrink
			it.flexed = true
		}
		it.main = clampDim(it.main, it.minMain, it.maxMain)
	}

	if row {
		for j := range items {
			a.crossSize(&items[j], crossAxis, row)
		}
	}

	used = gaps
	for _, it := range items {
		used += it.main + it.mainMargin()
	}
	offset, spacing := justify(n.style.Justify, mainAxis.v-used, len(items))

	pos := offset
	for _, it := range items {
		c := &a.nodes[it.idx]
		mainPos := pos + it.mainBefore
		crossPos := alignOffset(it.align, crossAxis.v, it.cross+it.crossMargin()) + it.crossBefore
		mainDef := it.explicitMain.ok || (mainAxis.ok && it.flexed)

		if row {
			c.left, c.top = cl+mainPos, ct+crossPos
			c.width, c.height = it.main, it.cross
			c.defW, c.defH = mainDef, it.crossDef
		} else {
			c.left, c.top = cl+crossPos, ct+mainPos
			c.width, c.height = it.cross, it.main
			c.defW, c.defH = it.crossDef, mainDef
		}
		c.radius = a.radius(c)
		pos = mainPos + it.main + it.mainAfter + gap + spacing
	}
}

// settled treats a committed content-sized box as a percentage base unless
// it is empty.
func settled(d dim) dim {
	if !d.ok && d.v > 0 {
		return known(d.v)
	}
	return d
}

// mainLength is the length that sets the child's main size: flexBasis when
// set, otherwise width or height.
func mainLength(c *node, row bool) style.Length {
	switch {
	case !c.style.Basis.IsAuto():
		return c.style.Basis
	case row:
		return c.style.Width
	default:
		return c.style.Height
	}
}

// prepare resolves the child's margins, padding, border and explicit sizes
// against the parent's content box.
func (a *arena) prepare(p *node, idx int, contentW, contentH dim, row bool) flexItem {
	c := &a.nodes[idx]
	c.margin = a.edges(c, c.style.Margin, "margin", contentW, contentH, false)
	c.padding = a.edges(c, c.style.Padding, "padding", contentW, contentH, true)
	c.border = max(0, c.style.Border.Width.PxOr(style.Unknown, a.vp, 0))

	w := a.size(c, c.style.Width, "width", contentW, known(0))
	h := a.size(c, c.style.Height, "height", contentH, known(0))
	minW := a.size(c, c.style.MinWidth, "minWidth", contentW, dim{})
	minH := a.size(c, c.style.MinHeight, "minHeight", contentH, dim{})
	maxW := a.size(c, c.style.MaxWidth, "maxWidth", contentW, dim{})
	maxH := a.size(c, c.style.MaxHeight, "maxHeight", contentH, dim{})

	it := flexItem{
		idx:    idx,
		align:  alignOf(p, c),
		grow:   c.style.Grow,
		shrink: c.style.Shrink,
	}
	if row {
		it.explicitMain, it.explicitCross = w, h
		it.minMain, it.maxMain, it.minCross, it.maxCross = minW, maxW, minH, maxH
		it.mainBefore, it.mainAfter = c.margin.Left, c.margin.Right
		it.crossBefore, it.crossAfter = c.margin.Top, c.margin.Bottom
	} else {
		it.explicitMain, it.explicitCross = h, w
		it.minMain, it.maxMain, it.minCross, it.maxCross = minH, maxH, minW, maxW
		it.mainBefore, it.mainAfter = c.margin.Top, c.margin.Bottom
		it.crossBefore, it.crossAfter = c.margin.Left, c.margin.Right
	}
	return it
}

// crossSize sizes the item on the cross axis. Stretch fills the line when
// the size is auto; other alignments use the explicit or content size.
func (a *arena) crossSize(it *flexItem, crossAxis dim, row bool) {
	c := &a.nodes[it.idx]
	avail := max(0, crossAxis.v-it.crossMargin())
	switch {
	case it.explicitCross.ok:
		it.cross = it.explicitCross.v
		it.crossDef = true
	case it.align == style.AlignStretch:
		it.cross = avail
		it.crossDef = crossAxis.ok
	case row:
		it.cross = a.contentHeight(c, it.main)
	default:
		it.cross = a.contentWidth(c, avail)
	}
	it.cross = clampDim(it.cross, it.minCross, it.maxCross)
}

// basis picks the flex basis: explicit flexBasis, then the explicit main
// size, then the content size.
func (a *arena) basis(it *flexItem, mainAxis dim, row bool) {
	c := &a.nodes[it.idx]
	switch {
	case !c.style.Basis.IsAuto():
		it.base = a.size(c, c.style.Basis, "flexBasis", mainAxis, known(0)).or(0)
	case it.explicitMain.ok:
		it.base = it.explicitMain.v
	case row:
		it.base = a.contentWidth(c, max(0, mainAxis.v-it.mainMargin()))
	default:
		it.base = a.contentHeight(c, it.cross)
	}
}

// contentWidth is the border-box width a node wants when avail px are
// offered. Text wraps to avail; other nodes use their intrinsic width.
func (a *arena) contentWidth(c *node, avail float64) float64 {
	if !c.kind.IsText() {
		return c.intrW
	}
	frame := 2*c.border + c.padding.Horizontal()
	w, _ := a.measurer.Measure(c.el.Content, c.style.Text, max(0, avail-frame))
	return w + frame
}

// contentHeight is the border-box height of a node laid out at the given
// border-box width. Text is re-measured at that width.
func (a *arena) contentHeight(c *node, width float64) float64 {
	if !c.kind.IsText() {
		return c.intrH
	}
	frameH := 2*c.border + c.padding.Horizontal()
	frameV := 2*c.border + c.padding.Vertical()
	avail := width - frameH
	if avail <= 0 {
		avail = Unbounded
	}
	_, h := a.measurer.Measure(c.el.Content, c.style.Text, avail)
	return h + frameV
}

// size resolves an explicit length against a containing size. Auto yields an
// unknown dim. A percentage without a definite containing size yields
// fallback and an UNRESOLVED_PERCENTAGE diagnostic.
func (a *arena) size(c *node, l style.Length, property string, axis dim, fallback dim) dim {
	if l.IsAuto() {
		return dim{}
	}
	if v, ok := l.ToPx(axis.ancestor(), a.vp); ok {
		return known(max(0, v))
	}
	a.diags.Addf(errors.ErrCodeUnresolvedPercentage, c.path, property,
		"%s %s has no definite containing size; using %s", property, l, describeDim(fallback))
	return fallback
}

func describeDim(d dim) string {
	if !d.ok {
		return "no constraint"
	}
	return "0"
}

func (a *arena) edges(c *node, e style.Edges, property string, w, h dim, nonNegative bool) style.EdgesPx {
	px, unresolved := e.Resolve(w.ancestor(), h.ancestor(), a.vp)
	if unresolved > 0 {
		a.diags.Addf(errors.ErrCodeUnresolvedPercentage, c.path, property,
			"%d %s side(s) have no definite containing size; using 0", unresolved, property)
	}
	if nonNegative {
		px.Top, px.Right, px.Bottom, px.Left = max(0, px.Top), max(0, px.Right), max(0, px.Bottom), max(0, px.Left)
	}
	return px
}

// radius resolves the border radius against the shorter side and caps it at
// half of that side.
func (a *arena) radius(c *node) float64 {
	short := min(c.width, c.height)
	r := c.style.Border.Radius.PxOr(style.Known(short), a.vp, 0)
	return min(max(0, r), short/2)
}

func clampDim(v float64, lo, hi dim) float64 {
	if hi.ok && v > hi.v {
		v = hi.v
	}
	if lo.ok && v < lo.v {
		v = lo.v
	}
	return max(0, v)
}

// justify returns the main-axis start offset and the extra space between
// items. Distributed modes need at least two items and positive free space;
// otherwise they behave like flex-start.
func justify(j style.Justify, free float64, count int) (offset, spacing float64) {
	if free <= 0 || count == 0 {
		return 0, 0
	}
	switch j {
	case style.JustifyCenter:
		return free / 2, 0
	case style.JustifyEnd:
		return free, 0
	}
	if count < 2 {
		return 0, 0
	}
	switch j {
	case style.JustifySpaceBetween:
		return 0, free / float64(count-1)
	case style.JustifySpaceAround:
		s := free / float64(count)
		return s / 2, s
	case style.JustifySpaceEvenly:
		s := free / float64(count+1)
		return s, s
	}
	return 0, 0
}

// alignOffset positions an item of outer size size in a line of the given
// space. Items larger than the line start at 0.
func alignOffset(al style.Align, space, size float64) float64 {
	free := space - size
	if free <= 0 {
		return 0
	}
	switch al {
	case style.AlignCenter:
		return free / 2
	case style.AlignEnd:
		return free
	}
	return 0
}
