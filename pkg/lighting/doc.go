// Package lighting computes fixture layouts for rectangular areas.
//
// Given the dimensions of an area in meters, a required illuminance in lux,
// and the luminous output of a single fixture in lumens, the package
// determines the minimum number of identical point fixtures that together
// deliver at least the required total luminous flux, and places them at the
// centers of a near-square grid over the rectangle.
//
// The calculator is pure and stateless: every call is independent,
// deterministic, and free of side effects, so it is safe to call
// concurrently without coordination.
//
// # Example
//
//	dims := lighting.Dimensions{Width: 4, Height: 3}
//	req := lighting.Requirements{Illuminance: 300, LumensPerFixture: 900}
//	plan, err := lighting.Compute(dims, req)
//	if err != nil {
//	    // invalid input - prompt the user, never substitute defaults
//	}
//	// plan.FixtureCount == 4, plan.Positions == four cell centers
package lighting
