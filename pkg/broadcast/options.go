package broadcast

import "time"

const (
	// DefaultConnectTimeout is the default max wait before the first
	// inbound frame of a conversation.
	DefaultConnectTimeout = 5000 * time.Millisecond
	// DefaultIdleTimeout is the default max wait between consecutive
	// inbound frames once the conversation is underway.
	DefaultIdleTimeout = 5000 * time.Millisecond
)

// requestConfig is the resolved set of Request options.
type requestConfig struct {
	expect         []string
	expectSet      bool
	connectTimeout time.Duration
	idleTimeout    time.Duration
}

func defaultRequestConfig() requestConfig {
	return requestConfig{
		connectTimeout: DefaultConnectTimeout,
		idleTimeout:    DefaultIdleTimeout,
	}
}

// RequestOption configures a single call to Requester.Request.
type RequestOption func(*requestConfig)

// WithExpect overrides the default expect set (a snapshot of the
// presence registry) with an explicit list of hostnames.
func WithExpect(hosts []string) RequestOption {
	return func(c *requestConfig) {
		c.expect = append([]string(nil), hosts...)
		c.expectSet = true
	}
}

// WithConnectTimeout overrides the default connect timeout.
func WithConnectTimeout(d time.Duration) RequestOption {
	return func(c *requestConfig) { c.connectTimeout = d }
}

// WithIdleTimeout overrides the default idle timeout.
func WithIdleTimeout(d time.Duration) RequestOption {
	return func(c *requestConfig) { c.idleTimeout = d }
}
