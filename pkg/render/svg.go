package render

import (
	"bytes"
	"fmt"

	"github.com/lumenlab/lumen/pkg/lighting"
)

// Default rendering parameters. The scale is chosen so typical rooms
// (2-15 m per side) produce diagrams readable without zooming.
const (
	defaultScale  = 100.0 // pixels per meter
	defaultMargin = 40.0  // pixels around the room rectangle
	fixtureRadius = 6.0   // pixels
)

const svgCSS = `
    .room { fill: #fafafa; stroke: #333; stroke-width: 2; }
    .cell { fill: none; stroke: #ddd; stroke-width: 1; stroke-dasharray: 4 3; }
    .fixture { fill: #f5b301; stroke: #8a6400; stroke-width: 1.5; }
    .label { font: 11px sans-serif; fill: #555; }
    .caption { font: 13px sans-serif; fill: #222; }`

// SVGOption configures the SVG renderer.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale      float64
	showGrid   bool
	showLabels bool
}

// WithScale overrides the pixels-per-meter scale.
func WithScale(pixelsPerMeter float64) SVGOption {
	return func(r *svgRenderer) {
		if pixelsPerMeter > 0 {
			r.scale = pixelsPerMeter
		}
	}
}

// WithoutGrid hides the grid cell outlines.
func WithoutGrid() SVGOption { return func(r *svgRenderer) { r.showGrid = false } }

// WithoutLabels hides the per-fixture coordinate labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.showLabels = false } }

// SVG renders the plan as a scale diagram of the room: the rectangle, the
// placement grid, and one marker per fixture position.
func SVG(plan *lighting.Plan, opts ...SVGOption) []byte {
	r := svgRenderer{scale: defaultScale, showGrid: true, showLabels: true}
	for _, opt := range opts {
		opt(&r)
	}

	roomW := plan.Dimensions.Width * r.scale
	roomH := plan.Dimensions.Height * r.scale
	totalW := roomW + 2*defaultMargin
	totalH := roomH + 2*defaultMargin + 24 // caption strip below the room

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		totalW, totalH, totalW, totalH)
	fmt.Fprintf(&buf, "<style>%s\n</style>\n", svgCSS)

	// Room outline
	fmt.Fprintf(&buf, `<rect class="room" x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>`+"\n",
		defaultMargin, defaultMargin, roomW, roomH)

	if r.showGrid {
		renderGrid(&buf, plan, r.scale)
	}

	for i, p := range plan.Positions {
		cx := defaultMargin + p.X*r.scale
		cy := defaultMargin + p.Y*r.scale
		fmt.Fprintf(&buf, `<circle class="fixture" cx="%.2f" cy="%.2f" r="%.1f"/>`+"\n",
			cx, cy, fixtureRadius)
		if r.showLabels {
			fmt.Fprintf(&buf, `<text class="label" x="%.2f" y="%.2f">%d (%.2f, %.2f)</text>`+"\n",
				cx+fixtureRadius+2, cy+4, i+1, p.X, p.Y)
		}
	}

	caption := fmt.Sprintf("%.2f m x %.2f m - %d fixtures (%g lm each, %g lx required)",
		plan.Dimensions.Width, plan.Dimensions.Height, plan.FixtureCount,
		plan.Requirements.LumensPerFixture, plan.Requirements.Illuminance)
	if plan.Short() {
		caption += fmt.Sprintf(" - warning: only %d positions placed", len(plan.Positions))
	}
	fmt.Fprintf(&buf, `<text class="caption" x="%.1f" y="%.1f">%s</text>`+"\n",
		defaultMargin, defaultMargin+roomH+18, caption)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderGrid draws the cell boundaries of the placement grid.
func renderGrid(buf *bytes.Buffer, plan *lighting.Plan, scale float64) {
	roomW := plan.Dimensions.Width * scale
	roomH := plan.Dimensions.Height * scale

	for col := 1; col < plan.Columns; col++ {
		x := defaultMargin + float64(col)*plan.SpacingX*scale
		fmt.Fprintf(buf, `<line class="cell" x1="%.2f" y1="%.1f" x2="%.2f" y2="%.1f"/>`+"\n",
			x, defaultMargin, x, defaultMargin+roomH)
	}
	for row := 1; row < plan.Rows; row++ {
		y := defaultMargin + float64(row)*plan.SpacingY*scale
		fmt.Fprintf(buf, `<line class="cell" x1="%.1f" y1="%.2f" x2="%.1f" y2="%.2f"/>`+"\n",
			defaultMargin, y, defaultMargin+roomW, y)
	}
}
