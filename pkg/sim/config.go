package sim

import (
	"math"

	errs "github.com/matzehuels/forcegraph/pkg/errors"
)

// Default simulation parameters.
const (
	DefaultWidth         = 1200
	DefaultHeight        = 800
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	DefaultReheatTarget  = 0.3
	DefaultSeed          = 42
)

// DefaultAlphaDecay cools alpha from 1 to AlphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Config holds the engine's parameters. Force parameters live in
// force.Config.
type Config struct {
	Width  float64 `json:"width" toml:"width" yaml:"width"`
	Height float64 `json:"height" toml:"height" yaml:"height"`

	AlphaDecay    float64 `json:"alpha_decay" toml:"alpha_decay" yaml:"alpha_decay"`
	AlphaMin      float64 `json:"alpha_min" toml:"alpha_min" yaml:"alpha_min"`
	VelocityDecay float64 `json:"velocity_decay" toml:"velocity_decay" yaml:"velocity_decay"`
	ReheatTarget  float64 `json:"reheat_target" toml:"reheat_target" yaml:"reheat_target"`

	// Seed drives the jiggle that separates coincident nodes.
	Seed uint64 `json:"seed" toml:"seed" yaml:"seed"`
}

// DefaultConfig returns the reference parameters on a 1200 × 800 canvas.
func DefaultConfig() Config {
	return Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		AlphaDecay:    DefaultAlphaDecay,
		AlphaMin:      DefaultAlphaMin,
		VelocityDecay: DefaultVelocityDecay,
		ReheatTarget:  DefaultReheatTarget,
		Seed:          DefaultSeed,
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if err := errs.ValidatePositive("width", c.Width); err != nil {
		return err
	}
	if err := errs.ValidatePositive("height", c.Height); err != nil {
		return err
	}
	if err := errs.ValidateUnit("alpha_decay", c.AlphaDecay); err != nil {
		return err
	}
	if err := errs.ValidateUnit("alpha_min", c.AlphaMin); err != nil {
		return err
	}
	if err := errs.ValidateUnit("velocity_decay", c.VelocityDecay); err != nil {
		return err
	}
	if err := errs.ValidateUnit("reheat_target", c.ReheatTarget); err != nil {
		return err
	}
	if c.ReheatTarget == 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "reheat_target must be positive")
	}
	return nil
}
