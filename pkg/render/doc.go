// Package render produces display artifacts from a computed fixture plan.
//
// Two sinks are provided: an SVG diagram of the room with the fixture
// grid drawn to scale, and a canonical JSON serialization for API and CLI
// consumers. Both sinks are deterministic: the same plan always produces
// byte-identical output.
package render
