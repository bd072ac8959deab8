package l2l

import (
	"strconv"
	"strings"
	"time"
)

// RetryPolicy decides how long to wait before reissuing a rate-limited
// request. Attempts are uncapped: the upstream API throttles aggressively
// during bulk exports and the original tooling waits it out, however long
// that takes. A cap can be added here without touching call sites.
type RetryPolicy struct {
	// DefaultDelay is used when the server sends no usable Retry-After
	// header.
	DefaultDelay time.Duration
}

// Delay returns the wait derived from a Retry-After header value
// (whole seconds), falling back to DefaultDelay when the value is absent
// or not a number.
func (p RetryPolicy) Delay(retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return p.DefaultDelay
}
