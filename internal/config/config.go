// Package config loads slideweave.toml.
//
// A config file is optional. Discovery tries, in order, an explicit path, then
// ./slideweave.toml, then $XDG_CONFIG_HOME/slideweave/config.toml (falling back
// to ~/.config). When none exists the defaults apply. Command-line flags are
// applied on top by the CLI, so flags always win over the file.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/slideweave/pkg/cache"
	"github.com/matzehuels/slideweave/pkg/errors"
	"github.com/matzehuels/slideweave/pkg/pipeline"
	"github.com/matzehuels/slideweave/pkg/slide"
)

const (
	// FileName is the project-local config file name.
	FileName = "slideweave.toml"

	appName = "slideweave"
)

// Config mirrors the sections of slideweave.toml.
type Config struct {
	Output  Output  `toml:"output"`
	Slide   Slide   `toml:"slide"`
	Effects Effects `toml:"effects"`
	Cache   Cache   `toml:"cache"`
	Text    Text    `toml:"text"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type Output struct {
	Directory string   `toml:"directory"`
	Filename  string   `toml:"filename"`
	Formats   []string `toml:"formats"`
}

type Slide struct {
	// Format overrides the deck's own format. Empty defers to the deck,
	// which itself defaults to wide.
	Format slide.Format `toml:"format"`
	DPI    float64      `toml:"dpi"`
}

type Effects struct {
	BlurStrength float64 `toml:"blur_strength"`
	Quality      int     `toml:"quality"`
	Concurrency  int     `toml:"concurrency"`
}

type Cache struct {
	Enabled  bool     `toml:"enabled"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

type Text struct {
	Measurer string `toml:"measurer"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Output: Output{
			Directory: "./output",
			Filename:  "[name]",
			Formats:   []string{pipeline.FormatJSON},
		},
		Slide: Slide{
			DPI: pipeline.DefaultDPI,
		},
		Effects: Effects{
			BlurStrength: pipeline.DefaultBlurStrength,
			Quality:      pipeline.DefaultQuality,
			Concurrency:  pipeline.DefaultConcurrency,
		},
		Cache: Cache{
			Enabled: true,
			TTL:     Duration{cache.ArtifactTTL},
		},
		Text: Text{Measurer: pipeline.MeasurerHeuristic},
	}
}

// Load discovers and reads the config file. explicit, when set, must exist.
func Load(explicit string) (Config, error) {
	path, err := Discover(explicit)
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads one config file. Keys absent from the file keep their
// defaults; unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrap(errors.GetCode(err), err, "config %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes TOML onto the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key %s", undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Discover returns the config path to use, or "" when none exists.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", explicit)
		}
		return explicit, nil
	}
	for _, p := range candidates() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

func candidates() []string {
	paths := []string{FileName}
	if dir, err := Dir(); err == nil {
		paths = append(paths, filepath.Join(dir, "config.toml"))
	}
	return paths
}

// Dir returns the user config directory (~/.config/slideweave/).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Validate checks values the pipeline would reject, so a bad file fails with
// its own name in the message.
func (c Config) Validate() error {
	if _, ok := slide.SizeOf(c.Slide.Format); c.Slide.Format != "" && !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "slide.format: unknown format %q", c.Slide.Format)
	}
	if err := pipeline.ValidateFormats(c.Output.Formats); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "output.formats")
	}
	if err := pipeline.ValidateMeasurer(c.Text.Measurer); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "text.measurer")
	}
	if c.Slide.DPI <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "slide.dpi must be positive")
	}
	if c.Effects.BlurStrength < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "effects.blur_strength must not be negative")
	}
	if c.Effects.Quality < 1 || c.Effects.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidConfig, "effects.quality must be in 1..100")
	}
	if c.Effects.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "effects.concurrency must be at least 1")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// PipelineOptions converts the file settings into pipeline options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Format:       c.Slide.Format,
		Measurer:     c.Text.Measurer,
		DPI:          c.Slide.DPI,
		BlurStrength: c.Effects.BlurStrength,
		Quality:      c.Effects.Quality,
		Concurrency:  c.Effects.Concurrency,
		Formats:      append([]string(nil), c.Output.Formats...),
		CacheTTL:     c.Cache.TTL.Duration,
	}
}
