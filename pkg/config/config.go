// Package config loads forcegraph settings from TOML or YAML files.
//
// A file only needs to mention the settings it changes; everything else keeps
// its default:
//
//	[canvas]
//	width = 960
//	height = 600
//
//	[forces]
//	charge_strength = -60
//	link_distance = 40
//
//	[render]
//	formats = ["svg", "png"]
//	labels = true
//
// Command-line flags take precedence over file values.
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/forcegraph/pkg/cache"
	errs "github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/sim"
)

// Supported file formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// File is the contents of a configuration file.
type File struct {
	Canvas     Canvas       `toml:"canvas" yaml:"canvas"`
	Layout     Layout       `toml:"layout" yaml:"layout"`
	Simulation Simulation   `toml:"simulation" yaml:"simulation"`
	Forces     force.Config `toml:"forces" yaml:"forces"`
	Render     Render       `toml:"render" yaml:"render"`
	Cache      Cache        `toml:"cache" yaml:"cache"`
	Server     Server       `toml:"server" yaml:"server"`
}

// Canvas is the simulation area.
type Canvas struct {
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// Layout controls batch layouts.
type Layout struct {
	MaxTicks int    `toml:"max_ticks" yaml:"max_ticks"`
	Seed     uint64 `toml:"seed" yaml:"seed"`
}

// Simulation holds the engine parameters that are not part of the canvas.
type Simulation struct {
	AlphaDecay    float64 `toml:"alpha_decay" yaml:"alpha_decay"`
	AlphaMin      float64 `toml:"alpha_min" yaml:"alpha_min"`
	VelocityDecay float64 `toml:"velocity_decay" yaml:"velocity_decay"`
	ReheatTarget  float64 `toml:"reheat_target" yaml:"reheat_target"`
}

// Render controls output artifacts.
type Render struct {
	Formats []string `toml:"formats" yaml:"formats"`
	Engine  string   `toml:"engine" yaml:"engine"`
	Labels  bool     `toml:"labels" yaml:"labels"`
	Hover   bool     `toml:"hover" yaml:"hover"`
	Scale   float64  `toml:"scale" yaml:"scale"`
}

// Cache controls the CLI's file cache.
type Cache struct {
	Disabled bool   `toml:"disabled" yaml:"disabled"`
	Dir      string `toml:"dir" yaml:"dir"`
}

// Server controls the HTTP server.
type Server struct {
	Addr       string            `toml:"addr" yaml:"addr"`
	SessionTTL time.Duration     `toml:"session_ttl" yaml:"session_ttl"`
	Redis      cache.RedisConfig `toml:"redis" yaml:"redis"`
}

// Default returns the built-in settings.
func Default() *File {
	return &File{
		Canvas:     Canvas{Width: pipeline.DefaultWidth, Height: pipeline.DefaultHeight},
		Layout:     Layout{MaxTicks: pipeline.DefaultMaxTicks, Seed: pipeline.DefaultSeed},
		Simulation: Simulation{
			AlphaDecay:    sim.DefaultAlphaDecay,
			AlphaMin:      sim.DefaultAlphaMin,
			VelocityDecay: sim.DefaultVelocityDecay,
			ReheatTarget:  sim.DefaultReheatTarget,
		},
		Forces:     force.DefaultConfig(),
		Render: Render{
			Formats: []string{pipeline.FormatSVG},
			Engine:  pipeline.EngineNative,
			Scale:   pipeline.DefaultScale,
		},
		Server: Server{Addr: ":8080", SessionTTL: 30 * time.Minute},
	}
}

// Dir returns the forcegraph config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "forcegraph")
}

// DefaultPath is where LoadDefault looks for a configuration file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the file at path. The format follows the extension: .yaml and
// .yml are YAML, anything else is TOML.
func Load(path string) (*File, error) {
	if path == "" {
		return nil, errs.New(errs.ErrCodeInvalidPath, "config path cannot be empty")
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return nil, err
	}
	f, err := Decode(bytes.NewReader(data), FormatOf(path))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return f, nil
}

// LoadDefault reads DefaultPath, returning the defaults when it is absent.
func LoadDefault() (*File, error) {
	f, err := Load(DefaultPath())
	if errs.Is(err, errs.ErrCodeFileNotFound) {
		return Default(), nil
	}
	return f, err
}

// FormatOf returns the file format implied by path's extension.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Decode reads a configuration over the defaults and validates it.
func Decode(r io.Reader, format string) (*File, error) {
	f := Default()
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(f); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown config format %q", format)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Encode writes f in the given format.
func (f *File) Encode(w io.Writer, format string) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(f)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "unknown config format %q", format)
	}
}

// Validate checks the settings by building and validating pipeline options.
func (f *File) Validate() error {
	opts := f.Options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if f.Server.SessionTTL < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "session_ttl must not be negative")
	}
	return nil
}

// Options converts the file into pipeline options.
func (f *File) Options() pipeline.Options {
	s := f.SimConfig()
	fc := f.Forces
	return pipeline.Options{
		Width:    f.Canvas.Width,
		Height:   f.Canvas.Height,
		MaxTicks: f.Layout.MaxTicks,
		Seed:     f.Layout.Seed,
		Sim:      &s,
		Forces:   &fc,
		Formats:  append([]string(nil), f.Render.Formats...),
		Engine:   f.Render.Engine,
		Labels:   f.Render.Labels,
		Hover:    f.Render.Hover,
		Scale:    f.Render.Scale,
	}
}

// SimConfig returns the simulation settings on the configured canvas.
func (f *File) SimConfig() sim.Config {
	return sim.Config{
		Width:         f.Canvas.Width,
		Height:        f.Canvas.Height,
		AlphaDecay:    f.Simulation.AlphaDecay,
		AlphaMin:      f.Simulation.AlphaMin,
		VelocityDecay: f.Simulation.VelocityDecay,
		ReheatTarget:  f.Simulation.ReheatTarget,
		Seed:          f.Layout.Seed,
	}
}
