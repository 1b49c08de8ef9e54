package shardqueue

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups all executor tunables. Values can be taken from environment
// variables with the prefix "CALLO_SQ_", e.g. CALLO_SQ_SHARDS=8.
type Config struct {
	Shards         int           `envconfig:"SHARDS"          default:"4"`
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"128"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	// ErrorHandler is called synchronously after a Job exhausts its retries
	// with a non-nil error. Leave nil to drop such errors.
	ErrorHandler func(error) `envconfig:"-"`

	MaxAttempts int           `envconfig:"MAX_ATTEMPTS" default:"8"`
	BaseBackoff time.Duration `envconfig:"BASE_BACKOFF" default:"100ms"`
	MaxInterval time.Duration `envconfig:"MAX_INTERVAL" default:"20s"`
}

// LoadConfig populates Config from environment variables (prefix CALLO_SQ).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("CALLO_SQ", &c)
}
