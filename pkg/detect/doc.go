// Package detect is the client for the remote ArUco measurement service.
//
// The service accepts a photo containing a 3.3 cm ArUco marker, estimates
// the real-world dimensions of the object closest to the image center, and
// returns those dimensions together with an annotated copy of the image.
// This package treats the service as opaque: it uploads the image, decodes
// the response, and maps the service's error strings to structured error
// codes.
//
// Responses are cached on disk under the SHA-256 of the image bytes, so
// measuring the same photo twice costs one network call. Transient network
// failures and 5xx responses are retried with exponential backoff;
// detection failures (no marker, no object) are permanent and returned
// immediately.
package detect
