// Package pkg provides the core libraries for the Lumen lighting planner.
//
// # Overview
//
// Lumen turns a room measurement into a lighting fixture layout: how many
// fixtures the room needs for a target illuminance, and where to place
// them on an even grid. The pkg directory is organized into three areas:
//
//  1. Domain logic - [lighting] (layout math), [render] (SVG/JSON sinks)
//  2. Integrations - [detect] (ArUco measurement service client)
//  3. Infrastructure - [session], [archive], [httputil], [errors],
//     [observability], [pipeline]
//
// # Architecture
//
// The typical data flow through Lumen:
//
//	Photo with ArUco marker
//	         ↓
//	    [detect] package (measure room dimensions)
//	         ↓
//	    [lighting] package (fixture count + grid positions)
//	         ↓
//	    [render] package (SVG diagram, JSON document)
//
// Rooms measured by hand skip the detect stage and enter at [lighting].
//
// # Quick Start
//
// Compute a layout from known dimensions and render it:
//
//	import (
//	    "github.com/lumenlab/lumen/pkg/lighting"
//	    "github.com/lumenlab/lumen/pkg/render"
//	)
//
//	plan, err := lighting.Compute(
//	    lighting.Dimensions{Width: 4, Height: 3},
//	    lighting.Requirements{Illuminance: 300, LumensPerFixture: 900},
//	)
//	if err != nil {
//	    return err
//	}
//	svg := render.SVG(plan)
//
// Measure a room from a photo first:
//
//	client, _ := detect.NewClient("http://localhost:5000")
//	runner := pipeline.NewRunner(client, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Image:            photo,
//	    Illuminance:      300,
//	    LumensPerFixture: 900,
//	})
//
// # Main Packages
//
// [lighting] - The layout math: fixture count from the lumen method,
// grid dimensioning, and position enumeration. Pure and deterministic.
//
// [detect] - HTTP client for the ArUco measurement service, with retry
// and a content-addressed response cache.
//
// [render] - Deterministic SVG and JSON sinks for computed plans.
//
// [pipeline] - Orchestration (detect → plan → render) shared by the CLI
// and the HTTP service.
//
// [session] - The photo-to-plan workflow as an explicit state machine,
// with memory, file, and Redis stores.
//
// [archive] - Durable history of computed plans, with memory and MongoDB
// backends.
//
// [httputil] - HTTP retry with exponential backoff and the file-based
// response cache.
//
// [errors] - Structured errors with machine-readable codes shared by the
// CLI and the API.
//
// [observability] - Hook points for instrumenting pipeline, cache, and
// HTTP behavior without coupling to a metrics backend.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/lighting/... # Specific package
//
// [lighting]: https://pkg.go.dev/github.com/lumenlab/lumen/pkg/lighting
// [detect]: https://pkg.go.dev/github.com/lumenlab/lumen/pkg/detect
// [render]: https://pkg.go.dev/github.com/lumenlab/lumen/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/lumenlab/lumen/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/lumenlab/lumen/pkg/session
// [archive]: https://pkg.go.dev/github.com/lumenlab/lumen/pkg/archive
// [httputil]: https://pkg.go.dev/github.com/lumenlab/lumen/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/lumenlab/lumen/pkg/errors
// [observability]: https://pkg.go.dev/github.com/lumenlab/lumen/pkg/observability
package pkg
