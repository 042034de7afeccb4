// Package pipeline provides the core measurement pipeline for lumen.
//
// This package implements the complete detect → plan → render pipeline
// used by both the CLI and the HTTP service. Centralizing the logic keeps
// behavior consistent across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Detect: upload the photo to the measurement service and extract the
//     area dimensions (skipped when dimensions are supplied directly)
//  2. Plan: compute the fixture count and grid placement
//  3. Render: generate output artifacts (SVG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(detector, logger)
//	opts := pipeline.Options{
//	    Image:            photoBytes,
//	    Illuminance:      300,
//	    LumensPerFixture: 900,
//	    Formats:          []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/lumenlab/lumen/pkg/errors"
	"github.com/lumenlab/lumen/pkg/lighting"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// DefaultFormats is used when no formats are requested.
var DefaultFormats = []string{FormatJSON}

// Options contains all configuration for the measurement pipeline.
type Options struct {
	// Detect options. Image holds the raw photo bytes; it is ignored when
	// Dimensions is set, which skips the detect stage entirely.
	Image      []byte               `json:"-"`
	Dimensions *lighting.Dimensions `json:"dimensions,omitempty"`
	Refresh    bool                 `json:"refresh,omitempty"`

	// Plan options.
	Illuminance      float64 `json:"illuminance"`
	LumensPerFixture float64 `json:"lumens_per_fixture"`

	// Render options.
	Formats  []string `json:"formats,omitempty"`
	SVGScale float64  `json:"svg_scale,omitempty"`

	// Runtime options (not serialized).
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dimensions are the measured (or supplied) area dimensions.
	Dimensions lighting.Dimensions

	// Plan is the computed fixture layout.
	Plan *lighting.Plan

	// Annotated is the service's annotated photo (nil when the detect
	// stage was skipped).
	Annotated []byte

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	DetectTime time.Duration
	PlanTime   time.Duration
	RenderTime time.Duration
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if len(o.Image) == 0 && o.Dimensions == nil {
		return errors.New(errors.ErrCodeInvalidInput, "either an image or explicit dimensions are required")
	}
	if o.Dimensions != nil {
		if err := o.Dimensions.Validate(); err != nil {
			return err
		}
	}

	req := lighting.Requirements{Illuminance: o.Illuminance, LumensPerFixture: o.LumensPerFixture}
	if err := req.Validate(); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}

	o.validated = true
	return nil
}
