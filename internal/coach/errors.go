package coach

import "errors"

// The client maps every failure to one of these errors so call sites
// can degrade to cached content without inspecting status codes.
var (
	ErrRateLimited = errors.New("coach: rate limited")
	ErrUnavailable = errors.New("coach: service unavailable")
	ErrServer      = errors.New("coach: server error")
	ErrNetwork     = errors.New("coach: network error")
	ErrDecode      = errors.New("coach: invalid response")
	ErrConfig      = errors.New("coach: not configured")
)
