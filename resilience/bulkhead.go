package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrBulkheadTimeout is returned when no slot frees up within MaxWait.
var ErrBulkheadTimeout = errors.New("bulkhead wait timeout")

// BulkheadConfig configures a bulkhead.
type BulkheadConfig struct {
	// MaxConcurrent is the maximum number of concurrent calls.
	MaxConcurrent int `mapstructure:"max_concurrent" validate:"gte=0"`
	// MaxWait bounds how long a caller waits for a slot. 0 waits until ctx is done.
	MaxWait time.Duration `mapstructure:"max_wait"`
}

// Bulkhead caps the number of concurrent calls.
type Bulkhead struct {
	maxWait time.Duration
	sem     chan struct{}
}

// NewBulkhead creates a bulkhead; MaxConcurrent defaults to 4.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 4
	}
	return &Bulkhead{maxWait: config.MaxWait, sem: make(chan struct{}, config.MaxConcurrent)}
}

// Execute runs fn once a slot is available.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer func() { <-b.sem }()
	return fn()
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}

	var timeout <-chan time.Time
	if b.maxWait > 0 {
		timer := time.NewTimer(b.maxWait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timeout:
		return ErrBulkheadTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InUse returns the number of slots currently held.
func (b *Bulkhead) InUse() int { return len(b.sem) }
