package tablestore

import "fmt"

// UpstreamUnavailableError indicates the upstream table API could not be reached:
// connection failure, timeout, or a response that died mid-body. The retry budget,
// if any, has already been spent by the time this surfaces.
type UpstreamUnavailableError struct {
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable: %v", e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

// UpstreamRejectedError indicates the upstream answered with a non-2xx status.
// Body carries the upstream payload for diagnosis; rejections are never retried.
type UpstreamRejectedError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("upstream rejected request: status %d, body: %s", e.StatusCode, e.Body)
}
