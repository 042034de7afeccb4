package render

import (
	"encoding/json"

	"github.com/lumenlab/lumen/pkg/lighting"
)

// planDocument is the canonical JSON shape for a rendered plan. The
// complete flag surfaces the degenerate-layout advisory so consumers can
// warn without re-deriving it.
type planDocument struct {
	Dimensions   lighting.Dimensions   `json:"dimensions"`
	Requirements lighting.Requirements `json:"requirements"`
	FixtureCount int                   `json:"fixture_count"`
	Positions    []lighting.Position   `json:"positions"`
	Columns      int                   `json:"columns"`
	Rows         int                   `json:"rows"`
	SpacingX     float64               `json:"spacing_x"`
	SpacingY     float64               `json:"spacing_y"`
	Complete     bool                  `json:"complete"`
}

// JSON renders the plan as indented canonical JSON.
func JSON(plan *lighting.Plan) ([]byte, error) {
	doc := planDocument{
		Dimensions:   plan.Dimensions,
		Requirements: plan.Requirements,
		FixtureCount: plan.FixtureCount,
		Positions:    plan.Positions,
		Columns:      plan.Columns,
		Rows:         plan.Rows,
		SpacingX:     plan.SpacingX,
		SpacingY:     plan.SpacingY,
		Complete:     !plan.Short(),
	}
	return json.MarshalIndent(doc, "", "  ")
}
