package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/lumenlab/lumen/pkg/errors"
	"github.com/lumenlab/lumen/pkg/httputil"
	"github.com/lumenlab/lumen/pkg/observability"
)

// DefaultTimeout bounds a single upload round trip, including the
// service-side marker detection.
const DefaultTimeout = 30 * time.Second

// DefaultCacheTTL is how long measurement responses are kept. A photo's
// dimensions never change, but the annotated rendering may as the service
// evolves, so entries are not kept forever.
const DefaultCacheTTL = 7 * 24 * time.Hour

// maxResponseBytes caps the decoded response size (annotated JPEGs can be
// large but not unbounded).
const maxResponseBytes = 32 << 20

// Client talks to the ArUco measurement service. It handles multipart
// uploads, response caching by image content hash, and automatic retries
// for transient failures.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *httputil.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCache supplies a response cache. Without one, every call hits the
// network.
func WithCache(cache *httputil.Cache) Option {
	return func(c *Client) { c.cache = cache.Namespace("detect:") }
}

// NewClient creates a measurement client for the service at baseURL
// (e.g. "http://localhost:5000").
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Measure uploads image bytes to the service and returns the detected
// dimensions plus the annotated photo. If refresh is false and the same
// image bytes were measured before, the cached response is returned
// without a network call.
func (c *Client) Measure(ctx context.Context, image []byte, refresh bool) (*Result, error) {
	if len(image) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidImage, "image is empty")
	}

	key := httputil.Hash(image)

	var wire wireResponse
	if c.cache != nil && !refresh {
		if ok, _ := c.cache.Get(key, &wire); ok {
			observability.Cache().OnCacheHit(ctx, "detect")
			return decodeResult(wire)
		}
		observability.Cache().OnCacheMiss(ctx, "detect")
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		return c.upload(ctx, image, &wire)
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(key, wire)
		observability.Cache().OnCacheSet(ctx, "detect", len(wire.Image))
	}
	return decodeResult(wire)
}

// upload performs one multipart POST to /process_image.
func (c *Client) upload(ctx context.Context, image []byte, out *wireResponse) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "photo.jpg")
	if err != nil {
		return err
	}
	if _, err := part.Write(image); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	url := c.baseURL + "/process_image"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	observability.HTTP().OnRequest(ctx, http.MethodPost, req.URL.Host, req.URL.Path)

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodPost, req.URL.Host, req.URL.Path, err)
		return &httputil.RetryableError{
			Err: errors.Wrap(errors.ErrCodeNetwork, err, "failed to reach measurement service"),
		}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodPost, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &httputil.RetryableError{
			Err: errors.Wrap(errors.ErrCodeNetwork, err, "failed reading service response"),
		}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "malformed service response")
		}
		return nil
	case resp.StatusCode >= 500:
		return &httputil.RetryableError{
			Err: errors.New(errors.ErrCodeNetwork, "measurement service unavailable (status %d)", resp.StatusCode),
		}
	default:
		var we wireError
		if err := json.Unmarshal(data, &we); err != nil || we.Error == "" {
			return errors.New(errors.ErrCodeInternal, "measurement service returned status %d", resp.StatusCode)
		}
		return classifyServiceError(we.Error)
	}
}

// decodeResult converts the wire payload into a Result, validating that
// the dimensions are usable before handing them to the calculator.
func decodeResult(wire wireResponse) (*Result, error) {
	annotated, err := base64.StdEncoding.DecodeString(wire.Image)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "service returned undecodable image data")
	}

	r := &Result{Annotated: annotated}
	r.Dimensions.Width = wire.Dimensions.Width
	r.Dimensions.Height = wire.Dimensions.Height
	if err := r.Dimensions.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err,
			"service returned unusable dimensions %gx%g", r.Dimensions.Width, r.Dimensions.Height)
	}
	return r, nil
}
