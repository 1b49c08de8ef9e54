package callo

// Functional options applied by New before the sub-clients are wired, kept in
// a standalone file so every available knob is visible at a glance.

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rishikanchi/Callo/gateway"
	"github.com/rishikanchi/Callo/internal/shardqueue"
)

// Option configures a Client during construction in New. Options run before
// the gateway, store, assistant and completion clients are built, so they can
// still influence that wiring.
type Option func(*Client) error

// WithHTTPTimeout overrides the configured round-trip timeout for both remote
// services. Must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.cfg.HTTPTimeout = d
		return nil
	}
}

// WithDebugLogging dumps completion requests and responses when enabled is
// true. Verbose; not for production use.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		c.debug = enabled
		return nil
	}
}

// WithLogger replaces the default service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithGateway injects a pre-built gateway, overriding the one New would
// construct from configuration. Mainly for tests against a fake backend.
func WithGateway(gw *gateway.Gateway) Option {
	return func(c *Client) error {
		c.gw = gw
		return nil
	}
}

// WithExecutor injects a pre-built background executor. The Client takes
// ownership; Close stops it.
func WithExecutor(exec *shardqueue.Executor) Option {
	return func(c *Client) error {
		c.exec = exec
		return nil
	}
}

// WithDemoData controls whether the store starts seeded with sample data.
// Defaults to the configured DemoMode flag.
func WithDemoData(seed bool) Option {
	return func(c *Client) error {
		c.demoData = seed
		return nil
	}
}
