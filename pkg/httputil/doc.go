// Package httputil provides HTTP client helpers shared by the detection
// client and the service: retry with exponential backoff for transient
// failures, and a file-based response cache keyed by content hash.
//
// # Retry
//
// Wrap transient failures with [RetryableError] and execute through [Retry]:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    // ...
//	    return nil
//	})
//
// Non-retryable errors (validation failures, 4xx responses) are returned
// immediately without further attempts.
//
// # Caching
//
// The [Cache] stores JSON-marshalable values on disk with a TTL based on
// file modification time. Detection responses are cached under the SHA-256
// of the uploaded image bytes, so re-measuring the same photo never hits
// the network unless explicitly refreshed:
//
//	cache, _ := httputil.NewCache("", 24*time.Hour)
//	detectCache := cache.Namespace("detect:")
package httputil
