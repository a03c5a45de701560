package force

import (
	"math"

	errs "github.com/matzehuels/forcegraph/pkg/errors"
)

// Config holds the parameters of the default forces.
type Config struct {
	// Link
	LinkDistance   float64 `json:"link_distance" toml:"link_distance" yaml:"link_distance"`
	LinkIterations int     `json:"link_iterations" toml:"link_iterations" yaml:"link_iterations"`

	// Charge (many-body). A negative strength repels.
	ChargeStrength float64 `json:"charge_strength" toml:"charge_strength" yaml:"charge_strength"`
	Theta          float64 `json:"theta" toml:"theta" yaml:"theta"`
	DistanceMin    float64 `json:"distance_min" toml:"distance_min" yaml:"distance_min"`
	DistanceMax    float64 `json:"distance_max,omitempty" toml:"distance_max" yaml:"distance_max"` // 0 = unbounded

	// Collide. Radius is CollideMultiplier × node.R.
	CollideMultiplier float64 `json:"collide_multiplier" toml:"collide_multiplier" yaml:"collide_multiplier"`
	CollideStrength   float64 `json:"collide_strength" toml:"collide_strength" yaml:"collide_strength"`
	CollideIterations int     `json:"collide_iterations" toml:"collide_iterations" yaml:"collide_iterations"`

	// Center
	CenterStrength float64 `json:"center_strength" toml:"center_strength" yaml:"center_strength"`
}

// DefaultConfig returns the parameters of the reference network diagram.
func DefaultConfig() Config {
	return Config{
		LinkDistance:      30,
		LinkIterations:    1,
		ChargeStrength:    -150,
		Theta:             0.9,
		DistanceMin:       1,
		CollideMultiplier: 10,
		CollideStrength:   1,
		CollideIterations: 3,
		CenterStrength:    1,
	}
}

// Validate checks that every parameter is usable.
func (c Config) Validate() error {
	if err := errs.ValidatePositive("link_distance", c.LinkDistance); err != nil {
		return err
	}
	if c.LinkIterations < 1 {
		return errs.New(errs.ErrCodeInvalidConfig, "link_iterations must be at least 1, got %d", c.LinkIterations)
	}
	if err := errs.ValidateFinite("charge_strength", c.ChargeStrength); err != nil {
		return err
	}
	if err := errs.ValidatePositive("theta", c.Theta); err != nil {
		return err
	}
	if err := errs.ValidatePositive("distance_min", c.DistanceMin); err != nil {
		return err
	}
	if c.DistanceMax < 0 || math.IsNaN(c.DistanceMax) {
		return errs.New(errs.ErrCodeInvalidConfig, "distance_max must be non-negative, got %v", c.DistanceMax)
	}
	if c.DistanceMax > 0 && c.DistanceMax < c.DistanceMin {
		return errs.New(errs.ErrCodeInvalidConfig, "distance_max %v is below distance_min %v", c.DistanceMax, c.DistanceMin)
	}
	if err := errs.ValidatePositive("collide_multiplier", c.CollideMultiplier); err != nil {
		return err
	}
	if err := errs.ValidateUnit("collide_strength", c.CollideStrength); err != nil {
		return err
	}
	if c.CollideIterations < 1 {
		return errs.New(errs.ErrCodeInvalidConfig, "collide_iterations must be at least 1, got %d", c.CollideIterations)
	}
	return errs.ValidateUnit("center_strength", c.CenterStrength)
}
