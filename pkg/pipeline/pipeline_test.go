package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/slideweave/pkg/cache"
	"github.com/matzehuels/slideweave/pkg/effect"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/observability"
	"github.com/matzehuels/slideweave/pkg/render"
	"github.com/matzehuels/slideweave/pkg/slide"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"pptx", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.DPI != DefaultDPI || o.Quality != DefaultQuality || o.BlurStrength != DefaultBlurStrength {
		t.Errorf("defaults = dpi %v quality %d blur %v", o.DPI, o.Quality, o.BlurStrength)
	}
	if o.Measurer != MeasurerHeuristic || o.Concurrency != DefaultConcurrency || o.Scale != DefaultScale {
		t.Errorf("defaults = measurer %s concurrency %d scale %v", o.Measurer, o.Concurrency, o.Scale)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v, want [json]", o.Formats)
	}
	if o.Logger == nil {
		t.Error("Logger not defaulted")
	}
	if o.CacheTTL != cache.ArtifactTTL {
		t.Errorf("CacheTTL = %v, want %v", o.CacheTTL, cache.ArtifactTTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"standard format", func(o *Options) { o.Format = slide.FormatStandard }, false},
		{"unknown format", func(o *Options) { o.Format = "square" }, true},
		{"explicit size", func(o *Options) { o.Width, o.Height = 960, 540 }, false},
		{"width only", func(o *Options) { o.Width = 960 }, true},
		{"measurer font", func(o *Options) { o.Measurer = MeasurerFont }, false},
		{"unknown measurer", func(o *Options) { o.Measurer = "ruler" }, true},
		{"quality too high", func(o *Options) { o.Quality = 101 }, true},
		{"negative ttl", func(o *Options) { o.CacheTTL = -time.Second }, true},
		{"negative blur", func(o *Options) { o.BlurStrength = -1 }, true},
		{"negative dpi", func(o *Options) { o.DPI = -96 }, true},
		{"bad output format", func(o *Options) { o.Formats = []string{"gif"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Options
			tt.mutate(&o)
			o.SetDefaults()
			err := o.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestViewport(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		deck *slide.Deck
		want slide.Size
	}{
		{"deck default", Options{}, &slide.Deck{}, slide.Size{Width: 1280, Height: 720}},
		{"deck standard", Options{}, &slide.Deck{Format: slide.FormatStandard}, slide.Size{Width: 720, Height: 540}},
		{"option format wins", Options{Format: slide.FormatWide}, &slide.Deck{Format: slide.FormatStandard}, slide.Size{Width: 1280, Height: 720}},
		{"explicit size wins", Options{Format: slide.FormatWide, Width: 960, Height: 540}, &slide.Deck{}, slide.Size{Width: 960, Height: 540}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.Viewport(tt.deck)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Viewport() = %v, want %v", got, tt.want)
			}
		})
	}
}

func frame(st slide.Style) *slide.Element {
	return &slide.Element{Kind: slide.KindFrame, Style: st}
}

func sampleDeck() *slide.Deck {
	return &slide.Deck{
		Title: "Sample",
		Slides: []*slide.Slide{
			{
				Title:      "One",
				Background: &slide.Background{Color: "#102030"},
				Children: []*slide.Element{
					frame(slide.Style{"width": "240px", "height": "160px", "backgroundColor": "#ff0000"}),
				},
			},
			{
				Title: "Two",
				Children: []*slide.Element{
					{Kind: slide.KindHeading, Level: 1, Content: "Hello"},
				},
			},
		},
	}
}

func TestNewRunnerDiscardsLogs(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	runner := NewRunner(nil, nil, nil, nil)
	if _, err := runner.Execute(context.Background(), sampleDeck(), Options{}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("runner logged to the default logger:\n%s", buf.String())
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)
	result, err := runner.Execute(context.Background(), sampleDeck(), Options{
		Width:   960,
		Height:  540,
		Formats: []string{FormatJSON, FormatPNG},
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Stats.SlideCount != 2 || len(result.Slides) != 2 {
		t.Fatalf("slides = %d", len(result.Slides))
	}
	first := result.Slides[0]
	if first.Width != 960 || first.Height != 540 || first.Title != "One" {
		t.Errorf("slide 0 = %vx%v %q", first.Width, first.Height, first.Title)
	}
	// background shape plus the red frame
	if len(first.Instructions) != 2 {
		t.Fatalf("slide 0 instructions = %d, want 2", len(first.Instructions))
	}
	red := first.Instructions[1]
	if red.Path != "slide[0]/frame[0]" || red.Shape == nil || red.Shape.Fill != "#ff0000" {
		t.Errorf("frame instruction = %+v", red)
	}
	if red.Px.Width != 240 || red.Px.Height != 160 {
		t.Errorf("frame px = %+v", red.Px)
	}

	second := result.Slides[1]
	if len(second.Instructions) != 1 || second.Instructions[0].Type != render.TypeText {
		t.Errorf("slide 1 instructions = %+v", second.Instructions)
	}

	var doc struct {
		Title  string            `json:"title"`
		Slides []json.RawMessage `json:"slides"`
	}
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Sample" || len(doc.Slides) != 2 {
		t.Errorf("json artifact = %q with %d slides", doc.Title, len(doc.Slides))
	}

	img, err := png.Decode(bytes.NewReader(result.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatal(err)
	}
	// two 540px slides stacked with the default gap
	if got := img.Bounds().Size(); got != image.Pt(960, 540*2+24) {
		t.Errorf("png size = %v", got)
	}
}

func TestExecuteDiagnosticPaths(t *testing.T) {
	deck := sampleDeck()
	deck.Defaults = slide.Defaults{Color: "blurple"}
	deck.Slides[1].Background = &slide.Background{Color: "nocolor"}

	result, err := NewRunner(nil, nil, nil, nil).Layout(context.Background(), deck, Options{})
	if err != nil {
		t.Fatal(err)
	}
	d0 := result.Slides[0].Diagnostics
	if len(d0) == 0 || d0[0].Path != "defaults" || d0[0].Code != errors.ErrCodeUnsupportedColor {
		t.Errorf("slide 0 diagnostics = %+v", d0)
	}
	d1 := result.Slides[1].Diagnostics
	if !d1.Has(errors.ErrCodeUnsupportedColor) {
		t.Fatalf("slide 1 diagnostics = %+v", d1)
	}
	for _, d := range d1 {
		if d.Path == "defaults" {
			t.Error("deck defaults reported on a later slide")
		}
		if d.Code == errors.ErrCodeUnsupportedColor && d.Path != "slide[1]" {
			t.Errorf("background diagnostic path = %q", d.Path)
		}
	}
	if got := len(result.Diagnostics()); got != result.Stats.DiagnosticCount {
		t.Errorf("Diagnostics() = %d, Stats = %d", got, result.Stats.DiagnosticCount)
	}
}

func TestExecuteGlass(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 96, 54))); err != nil {
		t.Fatal(err)
	}
	src := effect.NewMemorySource(map[string][]byte{"bg.png": buf.Bytes()})

	deck := &slide.Deck{Slides: []*slide.Slide{{
		Background: &slide.Background{Image: "bg.png"},
		Children: []*slide.Element{
			frame(slide.Style{"width": "300px", "height": "200px", "glassEffect": true}),
		},
	}}}
	result, err := NewRunner(nil, nil, src, nil).Layout(context.Background(), deck, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var glass *render.Vector
	for _, in := range result.Slides[0].Instructions {
		if in.Vector != nil && in.Vector.Glass {
			glass = in.Vector
		}
	}
	if glass == nil {
		t.Fatal("no glass instruction")
	}
	if glass.Degraded || !bytes.Contains([]byte(glass.SVG), []byte("data:image/jpeg;base64,")) {
		t.Errorf("glass degraded = %v", glass.Degraded)
	}
}

func TestExecuteArtifactCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil, nil)
	opts := Options{Formats: []string{FormatJSON, FormatSVG}}

	first, err := runner.Execute(context.Background(), sampleDeck(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run hit the cache")
	}
	second, err := runner.Execute(context.Background(), sampleDeck(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run missed the cache")
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.Refresh = true
	third, err := runner.Execute(context.Background(), sampleDeck(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh run hit the cache")
	}
}

func TestExecuteErrors(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)
	tests := []struct {
		name string
		deck *slide.Deck
		opts Options
		code errors.Code
	}{
		{"unknown deck format", &slide.Deck{Format: "square"}, Options{}, errors.ErrCodeInvalidInput},
		{"null slide", &slide.Deck{Slides: []*slide.Slide{nil}}, Options{}, errors.ErrCodeInvalidInput},
		{"bad option", sampleDeck(), Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Execute(context.Background(), tt.deck, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := NewRunner(nil, nil, nil, nil).Execute(ctx, sampleDeck(), Options{})
	if err == nil || result != nil {
		t.Fatalf("Execute() = %v, %v; want no result and an error", result, err)
	}
}

type slideRecorder struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	started []int
	renders []string
}

func (r *slideRecorder) OnSlideStart(_ context.Context, index, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, index)
}

func (r *slideRecorder) OnRenderComplete(_ context.Context, format string, _ int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, format)
}

func TestExecuteHooks(t *testing.T) {
	rec := &slideRecorder{}
	observability.SetPipelineHooks(rec)
	t.Cleanup(observability.Reset)

	if _, err := NewRunner(nil, nil, nil, nil).Execute(context.Background(), sampleDeck(), Options{}); err != nil {
		t.Fatal(err)
	}
	if len(rec.started) != 2 || rec.started[0] != 0 || rec.started[1] != 1 {
		t.Errorf("slides started = %v, want [0 1]", rec.started)
	}
	if len(rec.renders) != 1 || rec.renders[0] != FormatJSON {
		t.Errorf("renders = %v", rec.renders)
	}
}
