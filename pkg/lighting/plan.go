package lighting

import (
	"math"

	"github.com/lumenlab/lumen/pkg/errors"
)

// FixtureCount returns the smallest number of fixtures, at least 1, whose
// combined output meets the required illuminance over the area:
// ceil(illuminance * width * height / lumensPerFixture). Rounding down is
// never permitted; under-provisioning light is not acceptable.
func FixtureCount(dims Dimensions, req Requirements) (int, error) {
	if err := dims.Validate(); err != nil {
		return 0, err
	}
	if err := req.Validate(); err != nil {
		return 0, err
	}

	requiredFlux := req.Illuminance * dims.Area()
	raw := requiredFlux / req.LumensPerFixture
	return int(math.Ceil(raw)), nil
}

// FixturePositions distributes count fixtures across the rectangle on a
// near-square grid and returns their cell-center positions.
//
// The grid has cols = ceil(sqrt(count)) columns and rows = ceil(count/cols)
// rows, biased toward more columns than rows when count is not a perfect
// square. Cells are enumerated row-major (top to bottom, left to right) and
// each center is kept only if it lies within the rectangle under native
// float comparison. Because rows*cols may exceed count, and because edge
// centers can land exactly on or past the boundary, the returned slice may
// be shorter or longer than count; callers must not assume equality.
func FixturePositions(dims Dimensions, count int) ([]Position, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if err := errors.ValidateCount("fixture count", count); err != nil {
		return nil, err
	}

	cols := int(math.Ceil(math.Sqrt(float64(count))))
	rows := (count + cols - 1) / cols

	spacingX := dims.Width / float64(cols)
	spacingY := dims.Height / float64(rows)
	edgeX := spacingX / 2
	edgeY := spacingY / 2

	positions := make([]Position, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := edgeX + float64(col)*spacingX
			y := edgeY + float64(row)*spacingY
			// Deliberately no epsilon: the possible undercount at the
			// exact boundary is preserved, not corrected.
			if x <= dims.Width && y <= dims.Height {
				positions = append(positions, Position{X: x, Y: y})
			}
		}
	}
	return positions, nil
}

// Compute runs the full calculation: fixture count, then grid placement.
// It fails with an INVALID_INPUT error before producing any output if any
// input is non-finite, zero, or negative.
func Compute(dims Dimensions, req Requirements) (*Plan, error) {
	count, err := FixtureCount(dims, req)
	if err != nil {
		return nil, err
	}

	positions, err := FixturePositions(dims, count)
	if err != nil {
		return nil, err
	}

	cols := int(math.Ceil(math.Sqrt(float64(count))))
	rows := (count + cols - 1) / cols

	return &Plan{
		Dimensions:   dims,
		Requirements: req,
		FixtureCount: count,
		Positions:    positions,
		Columns:      cols,
		Rows:         rows,
		SpacingX:     dims.Width / float64(cols),
		SpacingY:     dims.Height / float64(rows),
	}, nil
}
