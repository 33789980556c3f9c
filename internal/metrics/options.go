package metrics

import (
	"fmt"
	"time"
)

// DefaultRetention is how long metric samples are kept before pruning.
func DefaultRetention() time.Duration {
	return 24 * time.Hour
}

// DefaultCleanupInterval is how often the background retention worker wakes.
func DefaultCleanupInterval() time.Duration {
	return time.Hour
}

// DefaultStopTimeout bounds how long Stop waits for the retention worker.
func DefaultStopTimeout() time.Duration {
	return 5 * time.Second
}

// CollectorOptions contains optional configuration for the Collector.
// NewCollectorOptions should be used to create instances of CollectorOptions.
type CollectorOptions struct {
	// Retention is the maximum age of a metric sample before it is pruned.
	Retention time.Duration

	// CleanupInterval is how often the retention worker runs a cleanup pass.
	CleanupInterval time.Duration

	// StopTimeout bounds how long Stop waits for the worker to exit.
	StopTimeout time.Duration
}

// CollectorOption defines a functional option for configuring CollectorOptions.
// Options are applied in order, with later options overriding earlier ones.
type CollectorOption func(*CollectorOptions) error

// NewCollectorOptions creates CollectorOptions starting from defaults, then
// applies the provided options in order.
func NewCollectorOptions(opts ...CollectorOption) (CollectorOptions, error) {
	options := CollectorOptions{
		Retention:       DefaultRetention(),
		CleanupInterval: DefaultCleanupInterval(),
		StopTimeout:     DefaultStopTimeout(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return CollectorOptions{}, err
		}
	}

	return options, nil
}

// WithRetention sets the sample retention period.
func WithRetention(retention time.Duration) CollectorOption {
	return func(o *CollectorOptions) error {
		if retention <= 0 {
			return fmt.Errorf("retention must be positive, got %s", retention)
		}
		o.Retention = retention
		return nil
	}
}

// WithCleanupInterval sets how often the retention worker runs.
func WithCleanupInterval(interval time.Duration) CollectorOption {
	return func(o *CollectorOptions) error {
		if interval <= 0 {
			return fmt.Errorf("cleanup interval must be positive, got %s", interval)
		}
		o.CleanupInterval = interval
		return nil
	}
}

// WithStopTimeout sets the bounded wait used when stopping the retention worker.
func WithStopTimeout(timeout time.Duration) CollectorOption {
	return func(o *CollectorOptions) error {
		if timeout <= 0 {
			return fmt.Errorf("stop timeout must be positive, got %s", timeout)
		}
		o.StopTimeout = timeout
		return nil
	}
}
