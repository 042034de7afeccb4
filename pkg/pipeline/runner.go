package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lumenlab/lumen/pkg/detect"
	"github.com/lumenlab/lumen/pkg/httputil"
	"github.com/lumenlab/lumen/pkg/lighting"
	"github.com/lumenlab/lumen/pkg/observability"
	"github.com/lumenlab/lumen/pkg/render"
)

// Detector abstracts the measurement client so tests can substitute a
// fake without a live service.
type Detector interface {
	Measure(ctx context.Context, image []byte, refresh bool) (*detect.Result, error)
}

// Runner encapsulates pipeline execution. It is stateless except for the
// detector and logger; multiple goroutines can safely share one Runner
// with different options.
type Runner struct {
	Detector Detector
	Logger   *log.Logger
}

// NewRunner creates a runner. The detector may be nil when every run will
// supply explicit dimensions; logger nil falls back to log.Default().
func NewRunner(detector Detector, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Detector: detector, Logger: logger}
}

// Execute runs the complete detect → plan → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Detect (skipped when dimensions are supplied)
	if opts.Dimensions != nil {
		result.Dimensions = *opts.Dimensions
		logger.Info("using supplied dimensions",
			"width", result.Dimensions.Width,
			"height", result.Dimensions.Height)
	} else {
		dims, annotated, elapsed, err := r.Detect(ctx, opts.Image, opts.Refresh)
		if err != nil {
			return nil, fmt.Errorf("detect: %w", err)
		}
		result.Dimensions = dims
		result.Annotated = annotated
		result.Stats.DetectTime = elapsed

		logger.Info("measured area",
			"width", dims.Width,
			"height", dims.Height,
			"duration", elapsed)
	}

	// Stage 2: Plan
	planStart := time.Now()
	req := lighting.Requirements{Illuminance: opts.Illuminance, LumensPerFixture: opts.LumensPerFixture}
	observability.Pipeline().OnPlanStart(ctx, result.Dimensions.Width, result.Dimensions.Height)
	plan, err := lighting.Compute(result.Dimensions, req)
	observability.Pipeline().OnPlanComplete(ctx, planCount(plan), time.Since(planStart), err)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Plan = plan
	result.Stats.PlanTime = time.Since(planStart)

	logger.Info("computed fixture plan",
		"fixtures", plan.FixtureCount,
		"grid", fmt.Sprintf("%dx%d", plan.Columns, plan.Rows),
		"duration", result.Stats.PlanTime)
	if plan.Short() {
		logger.Warn("layout is short of the fixture count",
			"fixtures", plan.FixtureCount,
			"positions", len(plan.Positions))
	}

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := r.Render(plan, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Detect runs the detect stage: upload the photo, return the dimensions
// and the annotated image.
func (r *Runner) Detect(ctx context.Context, image []byte, refresh bool) (lighting.Dimensions, []byte, time.Duration, error) {
	if r.Detector == nil {
		return lighting.Dimensions{}, nil, 0, fmt.Errorf("no detector configured")
	}

	hash := httputil.Hash(image)
	start := time.Now()
	observability.Pipeline().OnDetectStart(ctx, hash)
	res, err := r.Detector.Measure(ctx, image, refresh)
	elapsed := time.Since(start)
	observability.Pipeline().OnDetectComplete(ctx, hash, elapsed, err)
	if err != nil {
		return lighting.Dimensions{}, nil, elapsed, err
	}
	return res.Dimensions, res.Annotated, elapsed, nil
}

// Render produces the requested artifacts for a plan.
func (r *Runner) Render(plan *lighting.Plan, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			var svgOpts []render.SVGOption
			if opts.SVGScale > 0 {
				svgOpts = append(svgOpts, render.WithScale(opts.SVGScale))
			}
			artifacts[format] = render.SVG(plan, svgOpts...)
		case FormatJSON:
			data, err := render.JSON(plan)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		default:
			return nil, ValidateFormat(format)
		}
	}
	return artifacts, nil
}

func planCount(plan *lighting.Plan) int {
	if plan == nil {
		return 0
	}
	return plan.FixtureCount
}
