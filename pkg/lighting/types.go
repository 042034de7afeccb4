package lighting

import "github.com/lumenlab/lumen/pkg/errors"

// Dimensions is a rectangular area in meters, typically measured by the
// remote ArUco detection service from a photo. Supplied once per session
// and treated as immutable.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Validate checks that both dimensions are finite and strictly positive.
func (d Dimensions) Validate() error {
	if err := errors.ValidatePositive("width", d.Width); err != nil {
		return err
	}
	return errors.ValidatePositive("height", d.Height)
}

// Area returns the surface area in square meters.
func (d Dimensions) Area() float64 {
	return d.Width * d.Height
}

// Requirements are the user-supplied lighting inputs. Both values must be
// strictly positive; a missing or unparsable value is a validation failure,
// never a computation with a default.
type Requirements struct {
	// Illuminance is the required illuminance over the area, in lux.
	Illuminance float64 `json:"illuminance"`
	// LumensPerFixture is the luminous output of a single fixture.
	LumensPerFixture float64 `json:"lumens_per_fixture"`
}

// Validate checks that both requirements are finite and strictly positive.
func (r Requirements) Validate() error {
	if err := errors.ValidatePositive("illuminance", r.Illuminance); err != nil {
		return err
	}
	return errors.ValidatePositive("lumens per fixture", r.LumensPerFixture)
}

// Position is a fixture location in meters, measured from the top-left
// corner of the area rectangle.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Plan is a computed fixture layout. It is recomputed on every invocation
// and entirely superseded by the next calculation; nothing is persisted by
// the calculator itself.
//
// Positions may be shorter than FixtureCount when a grid cell center falls
// outside the rectangle under floating-point edge conditions; callers that
// care should check Short rather than assume the lengths match.
type Plan struct {
	Dimensions   Dimensions   `json:"dimensions"`
	Requirements Requirements `json:"requirements"`

	FixtureCount int        `json:"fixture_count"`
	Positions    []Position `json:"positions"`

	// Grid geometry used for the placement.
	Columns  int     `json:"columns"`
	Rows     int     `json:"rows"`
	SpacingX float64 `json:"spacing_x"`
	SpacingY float64 `json:"spacing_y"`
}

// Short reports whether boundary exclusion produced fewer positions than
// fixtures. This is the advisory degenerate-layout condition: the caller
// may warn the user but should not treat it as a hard failure.
func (p *Plan) Short() bool {
	return len(p.Positions) < p.FixtureCount
}
