package layout

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/slide"
)

func container(st slide.Style, children ...*slide.Element) *slide.Element {
	return &slide.Element{Kind: slide.KindContainer, Style: st, Children: children}
}

func frame(st slide.Style) *slide.Element {
	return &slide.Element{Kind: slide.KindFrame, Style: st}
}

type box struct{ Left, Top, Width, Height float64 }

func boxOf(g *GeometryNode) box { return box{g.Left, g.Top, g.Width, g.Height} }

func childBoxes(g *GeometryNode) []box {
	out := make([]box, len(g.Children))
	for i, c := range g.Children {
		out[i] = boxOf(c)
	}
	return out
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func solve(t *testing.T, root *slide.Element, w, h float64) (*GeometryNode, []string) {
	t.Helper()
	g, diags, err := Solve(root, nil, w, h, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = string(d.Code)
	}
	return g, codes
}

func TestSolveFlexGrow(t *testing.T) {
	root := container(slide.Style{"flexDirection": "row"},
		container(slide.Style{"flexGrow": 1}),
		container(slide.Style{"flexGrow": 1}),
		container(slide.Style{"flexGrow": 2}),
	)
	g, diags := solve(t, root, 400, 100)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	want := []box{{0, 0, 100, 0}, {100, 0, 100, 0}, {200, 0, 200, 0}}
	if diff := cmp.Diff(want, childBoxes(g), approx); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
}

func TestSolveJustify(t *testing.T) {
	tests := []struct {
		justify string
		widths  []any
		lefts   []float64
	}{
		{"space-between", []any{"100px", "100px"}, []float64{0, 200}},
		{"space-between", []any{"50px", "50px"}, []float64{0, 250}},
		{"space-between", []any{"100px"}, []float64{0}},
		{"flex-start", []any{"100px", "100px"}, []float64{0, 100}},
		{"center", []any{"100px", "100px"}, []float64{50, 150}},
		{"flex-end", []any{"100px", "100px"}, []float64{100, 200}},
		{"space-around", []any{"100px", "100px"}, []float64{25, 175}},
		{"space-evenly", []any{"50px", "50px"}, []float64{200.0 / 3, 200.0/3*2 + 50}},
	}
	for _, tt := range tests {
		t.Run(tt.justify, func(t *testing.T) {
			var kids []*slide.Element
			for _, w := range tt.widths {
				kids = append(kids, frame(slide.Style{"width": w, "height": "10px"}))
			}
			root := container(slide.Style{"flexDirection": "row", "justifyContent": tt.justify}, kids...)
			g, _ := solve(t, root, 300, 100)
			got := make([]float64, len(g.Children))
			for i, c := range g.Children {
				got[i] = c.Left
			}
			if diff := cmp.Diff(tt.lefts, got, approx); diff != "" {
				t.Errorf("lefts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSolveFrameAtOrigin(t *testing.T) {
	s := &slide.Slide{Children: []*slide.Element{
		frame(slide.Style{"width": "240px", "height": "160px", "backgroundColor": "ff0000", "borderRadius": "16px"}),
	}}
	g, diags := solve(t, s.Root(nil), 960, 540)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if got := boxOf(g); got != (box{0, 0, 960, 540}) {
		t.Errorf("root = %+v", got)
	}
	f := g.Children[0]
	if got := boxOf(f); got != (box{0, 0, 240, 160}) {
		t.Errorf("frame = %+v, want 0,0 240x160", got)
	}
	if f.BorderRadius != 16 {
		t.Errorf("radius = %v, want 16", f.BorderRadius)
	}
	if f.Path != "root/frame[0]" {
		t.Errorf("path = %q", f.Path)
	}
}

func TestSolveShrink(t *testing.T) {
	root := container(slide.Style{"flexDirection": "row"},
		frame(slide.Style{"width": "200px"}),
		frame(slide.Style{"width": "400px"}),
		frame(slide.Style{"width": "100px", "flexShrink": 0}),
	)
	g, _ := solve(t, root, 400, 100)
	// 300px deficit split by shrink×basis: 200:400 → 100 and 200.
	want := []box{{0, 0, 100, 0}, {100, 0, 200, 0}, {300, 0, 100, 0}}
	if diff := cmp.Diff(want, childBoxes(g), approx); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
}

func TestSolveBoxModel(t *testing.T) {
	root := container(slide.Style{"padding": "20px", "borderWidth": "5px", "gap": "10px"},
		frame(slide.Style{"width": "100px", "height": "50px", "margin": "10px"}),
		frame(slide.Style{"width": "100px", "height": "50px"}),
	)
	g, _ := solve(t, root, 960, 540)
	want := []box{{35, 35, 100, 50}, {25, 105, 100, 50}}
	if diff := cmp.Diff(want, childBoxes(g), approx); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
	l, tp, w, h := g.ContentBox()
	if l != 25 || tp != 25 || w != 910 || h != 490 {
		t.Errorf("content box = %v %v %v %v", l, tp, w, h)
	}
}

func TestSolveAlignment(t *testing.T) {
	tests := []struct {
		align string
		want  box
	}{
		{"flex-start", box{0, 0, 100, 20}},
		{"center", box{150, 0, 100, 20}},
		{"flex-end", box{300, 0, 100, 20}},
		{"stretch", box{0, 0, 100, 20}},
	}
	for _, tt := range tests {
		t.Run(tt.align, func(t *testing.T) {
			root := container(slide.Style{"alignItems": tt.align},
				frame(slide.Style{"width": "100px", "height": "20px"}))
			g, _ := solve(t, root, 400, 100)
			if got := boxOf(g.Children[0]); got != tt.want {
				t.Errorf("box = %+v, want %+v", got, tt.want)
			}
		})
	}

	// Stretch fills the cross axis only when the size is auto.
	root := container(slide.Style{"alignItems": "stretch", "padding": "10px"},
		frame(slide.Style{"height": "20px"}),
		frame(slide.Style{"height": "20px", "alignSelf": "center", "width": "50px"}),
	)
	g, _ := solve(t, root, 400, 100)
	want := []box{{10, 10, 380, 20}, {175, 30, 50, 20}}
	if diff := cmp.Diff(want, childBoxes(g), approx); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
}

func TestSolvePercentages(t *testing.T) {
	s := &slide.Slide{Style: slide.Style{"padding": "10%"}, Children: []*slide.Element{
		frame(slide.Style{"width": "50%", "height": "25%"}),
	}}
	g, diags := solve(t, s.Root(nil), 1000, 500)
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	// Padding: 100px horizontal, 50px vertical. Content box 800x400.
	if got := boxOf(g.Children[0]); got != (box{100, 50, 400, 100}) {
		t.Errorf("frame = %+v", got)
	}
}

func TestSolveUnresolvedPercentage(t *testing.T) {
	// The middle container is sized only by its percentage child, so the
	// width has nothing to refer to.
	root := container(nil,
		container(nil,
			frame(slide.Style{"width": "50%", "height": "10px"}),
		),
	)
	g, diags := solve(t, root, 960, 540)
	if diff := cmp.Diff([]string{string(errors.ErrCodeUnresolvedPercentage)}, diags); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	inner := g.Children[0].Children[0]
	if inner.Width != 0 || inner.Height != 10 {
		t.Errorf("inner = %+v", boxOf(inner))
	}
}

func TestSolveDeferredPercentage(t *testing.T) {
	text := &slide.Element{Kind: slide.KindText, Content: "Hello world"}
	tests := []struct {
		name   string
		middle *slide.Element
		want   []box
	}{
		{
			// 11 chars × 14px × 0.8 = 123.2px wide, one 19.6px line.
			name: "cross axis from text",
			middle: container(nil,
				text,
				frame(slide.Style{"width": "50%", "height": "10px"}),
			),
			want: []box{{0, 0, 123.2, 19.6}, {0, 19.6, 61.6, 10}},
		},
		{
			name: "row main axis",
			middle: container(slide.Style{"flexDirection": "row"},
				frame(slide.Style{"width": "200px", "height": "10px"}),
				frame(slide.Style{"width": "50%", "height": "10px"}),
			),
			want: []box{{0, 0, 200, 10}, {200, 0, 100, 10}},
		},
		{
			name: "column main axis",
			middle: container(nil,
				frame(slide.Style{"width": "10px", "height": "200px"}),
				frame(slide.Style{"width": "10px", "height": "50%"}),
			),
			want: []box{{0, 0, 10, 200}, {0, 200, 10, 100}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, diags := solve(t, container(nil, tt.middle), 960, 540)
			if len(diags) != 0 {
				t.Errorf("unexpected diagnostics: %v", diags)
			}
			if diff := cmp.Diff(tt.want, childBoxes(g.Children[0]), approx); diff != "" {
				t.Errorf("boxes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSolveInvalidTreeShape(t *testing.T) {
	bad := &slide.Element{Kind: slide.KindText, Content: "x", Children: []*slide.Element{
		{Kind: slide.KindText, Content: "nested"},
	}}
	root := container(nil,
		bad,
		frame(slide.Style{"width": "10px", "height": "10px"}),
	)
	g, diags, err := Solve(root, nil, 960, 540, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if diags.Count(errors.ErrCodeInvalidTreeShape) != 1 {
		t.Errorf("diagnostics = %v", diags)
	}
	p := g.Children[0]
	if !p.Placeholder || p.Width != 0 || p.Height != 0 || len(p.Children) != 0 {
		t.Errorf("placeholder = %+v", p)
	}
	if got := boxOf(g.Children[1]); got != (box{0, 0, 10, 10}) {
		t.Errorf("sibling = %+v", got)
	}
	if diags[0].Path != "root/text[0]" {
		t.Errorf("path = %q", diags[0].Path)
	}
}

func TestSolveUnknownDirection(t *testing.T) {
	root := container(slide.Style{"flexDirection": "diagonal"},
		frame(slide.Style{"width": "10px", "height": "10px"}),
		frame(slide.Style{"width": "10px", "height": "10px"}),
	)
	g, diags := solve(t, root, 100, 100)
	if diff := cmp.Diff([]string{string(errors.ErrCodeUnknownValue)}, diags); diff != "" {
		t.Errorf("diagnostics mismatch (-want +got):\n%s", diff)
	}
	if g.Children[1].Top != 10 || g.Children[1].Left != 0 {
		t.Errorf("second child = %+v, want stacked as a column", boxOf(g.Children[1]))
	}
}

func TestSolveClamp(t *testing.T) {
	root := container(nil,
		frame(slide.Style{"width": "-10px", "height": "10px"}),
		frame(slide.Style{"width": "500px", "maxWidth": "200px", "height": "5px", "minHeight": "30px"}),
		container(nil),
	)
	g, _ := solve(t, root, 960, 540)
	want := []box{{0, 0, 0, 10}, {0, 10, 200, 30}, {0, 40, 0, 0}}
	if diff := cmp.Diff(want, childBoxes(g), approx); diff != "" {
		t.Errorf("boxes mismatch (-want +got):\n%s", diff)
	}
}

func TestSolveOrder(t *testing.T) {
	root := container(slide.Style{"flexDirection": "row"},
		frame(slide.Style{"width": "10px", "order": 2}),
		frame(slide.Style{"width": "20px", "order": 1}),
	)
	g, _ := solve(t, root, 100, 100)
	if g.Children[0].Left != 20 || g.Children[1].Left != 0 {
		t.Errorf("lefts = %v, %v", g.Children[0].Left, g.Children[1].Left)
	}
}

func TestSolveText(t *testing.T) {
	root := container(nil,
		&slide.Element{Kind: slide.KindHeading, Level: 1, Content: "Hello"},
		&slide.Element{Kind: slide.KindText, Content: "abcdefghij", Style: slide.Style{"fontSize": "10px", "width": "40px"}},
	)
	g, _ := solve(t, root, 960, 540)

	// Heading: 5 chars × 24px × 0.8, one line of 24 × 1.4.
	h := g.Children[0]
	if diff := cmp.Diff(box{0, 0, 96, 33.6}, boxOf(h), approx); diff != "" {
		t.Errorf("heading mismatch (-want +got):\n%s", diff)
	}
	// Text: 80px natural width wraps into two lines at 40px.
	txt := g.Children[1]
	if diff := cmp.Diff(box{0, 33.6, 40, 28}, boxOf(txt), approx); diff != "" {
		t.Errorf("text mismatch (-want +got):\n%s", diff)
	}
}

func TestSolveStretchedTextWraps(t *testing.T) {
	s := &slide.Slide{Children: []*slide.Element{
		{Kind: slide.KindText, Content: strings.Repeat("x", 25), Style: slide.Style{"fontSize": "10px"}},
	}}
	g, _ := solve(t, s.Root(nil), 100, 100)
	// 200px natural width at 100px wide wraps to two 14px lines.
	if diff := cmp.Diff(box{0, 0, 100, 28}, boxOf(g.Children[0]), approx); diff != "" {
		t.Errorf("text mismatch (-want +got):\n%s", diff)
	}
}

func TestSolveErrors(t *testing.T) {
	if _, _, err := Solve(nil, nil, 100, 100, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("nil root: err = %v", err)
	}
	leaf := &slide.Element{Kind: slide.KindImage, Children: []*slide.Element{{Kind: slide.KindText}}}
	if _, _, err := Solve(leaf, nil, 100, 100, nil); err == nil {
		t.Error("leaf root with children: expected error")
	}
	if _, _, err := Solve(container(nil), nil, 0, 100, nil); err == nil {
		t.Error("zero viewport: expected error")
	}
}

func TestSolveDeterministic(t *testing.T) {
	build := func() *slide.Element {
		return container(slide.Style{"flexDirection": "row", "justifyContent": "space-evenly"},
			frame(slide.Style{"flex": 1, "height": "30%"}),
			&slide.Element{Kind: slide.KindText, Content: "caption", Style: slide.Style{"margin": "4px"}},
			frame(slide.Style{"width": "20vw"}),
		)
	}
	a, _ := solve(t, build(), 1280, 720)
	b, _ := solve(t, build(), 1280, 720)
	opt := cmpopts.IgnoreFields(GeometryNode{}, "Element")
	if diff := cmp.Diff(a, b, opt); diff != "" {
		t.Errorf("layouts differ (-a +b):\n%s", diff)
	}
}

func TestGeometryTree(t *testing.T) {
	root := container(nil, frame(slide.Style{"width": "10px", "height": "10px"}))
	g, _ := solve(t, root, 100, 100)
	out := g.Tree()
	for _, want := range []string{"container [0,0 100x100]", "frame [0,0 10x10]"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree missing %q:\n%s", want, out)
		}
	}
	if g.Count() != 2 || g.Find("root/frame[0]") == nil {
		t.Errorf("Count = %d, Find = %v", g.Count(), g.Find("root/frame[0]"))
	}
}
