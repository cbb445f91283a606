// Package withdrawal serves the expected withdrawal processing time. The
// value is fetched once and kept for the life of the process.
package withdrawal

import (
	"context"
	"sync"
	"time"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/pkg/resilience/retry"
)

// ProcessingTime is how long withdrawals take to reach layer 1, in seconds.
type ProcessingTime struct {
	Normal uint64 `json:"normal"`
	Fast   uint64 `json:"fast"`
}

// IsZero reports whether the value was never fetched.
func (p ProcessingTime) IsZero() bool {
	return p == ProcessingTime{}
}

func (p ProcessingTime) NormalDuration() time.Duration {
	return time.Duration(p.Normal) * time.Second
}

func (p ProcessingTime) FastDuration() time.Duration {
	return time.Duration(p.Fast) * time.Second
}

// Source fetches the processing time.
type Source interface {
	WithdrawalProcessingTime(ctx context.Context) (ProcessingTime, error)
}

type Cache struct {
	source Source
	retry  retry.Retry

	mu    sync.Mutex
	value ProcessingTime
}

func New(source Source, r retry.Retry) *Cache {
	return &Cache{
		source: source,
		retry:  r,
	}
}

// ProcessingTime returns the cached value, fetching it on first use.
func (c *Cache) ProcessingTime(ctx context.Context) (ProcessingTime, error) {
	c.mu.Lock()
	cached := c.value
	c.mu.Unlock()

	if !cached.IsZero() {
		return cached, nil
	}

	var fetched ProcessingTime
	err := c.retry.Execute(ctx, func() error {
		var err error
		fetched, err = c.source.WithdrawalProcessingTime(ctx)
		if err != nil {
			logger.Warn(ctx, "withdrawal processing time fetch failed", "error", err)
		}
		return err
	})
	if err != nil {
		return ProcessingTime{}, err
	}

	c.mu.Lock()
	c.value = fetched
	c.mu.Unlock()

	return fetched, nil
}
