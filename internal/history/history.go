// Package history caches the transaction history of the connected wallet.
//
// The first page is cached for a short window. Further pages are appended
// to it. A failed fetch keeps the cached list and schedules a single
// delayed refetch of the first page.
package history

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/pkg/types"
	"github.com/gabapcia/zkwallet/internal/pkg/validator"
	"github.com/gabapcia/zkwallet/internal/session"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
)

// Transaction is a history record as served by the explorer API.
type Transaction struct {
	TxID       string          `json:"tx_id"`
	Hash       string          `json:"hash"`
	EthBlock   *uint64         `json:"eth_block"`
	PqID       *uint64         `json:"pq_id"`
	Tx         json.RawMessage `json:"tx"`
	Success    *bool           `json:"success"`
	FailReason *string         `json:"fail_reason"`
	Committed  bool            `json:"commited"`
	Verified   bool            `json:"verified"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Explorer serves pages of an account's history, newest first.
type Explorer interface {
	History(ctx context.Context, address common.Address, offset, limit int) ([]Transaction, error)
}

// Options selects what History fetches. The zero value reads the first
// page from cache when possible.
type Options struct {
	Force  bool
	Offset int `validate:"gte=0"`
}

// Cache holds the history of the active session and its pending refetch.
type Cache struct {
	sessions   *session.Holder
	explorer   Explorer
	clock      clock.Clock
	window     time.Duration
	retryDelay time.Duration
	pageSize   int

	mu    sync.Mutex
	list  types.CachedList[Transaction]
	retry *clock.Timer
}

// Option configures the history cache.
type Option func(*Cache)

// WithWindow sets how long the first page stays fresh. Default: 30 seconds.
func WithWindow(d time.Duration) Option {
	return func(c *Cache) {
		c.window = d
	}
}

// WithRetryDelay sets the delay before refetching after a failure. Default: 15 seconds.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Cache) {
		c.retryDelay = d
	}
}

// WithPageSize sets how many records a page holds. Default: 25.
func WithPageSize(n int) Option {
	return func(c *Cache) {
		c.pageSize = n
	}
}

// WithClock replaces the clock used for the window and the retry timer.
func WithClock(clk clock.Clock) Option {
	return func(c *Cache) {
		c.clock = clk
	}
}

// New returns an empty Cache reading pages from explorer for the wallet of
// the active session.
func New(sessions *session.Holder, explorer Explorer, opts ...Option) *Cache {
	c := &Cache{
		sessions:   sessions,
		explorer:   explorer,
		clock:      clock.New(),
		window:     30 * time.Second,
		retryDelay: 15 * time.Second,
		pageSize:   25,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// History returns the cached history, fetching the page at opts.Offset when
// forced, stale or not the first page. Offset 0 replaces the list and any
// other offset appends to it.
//
// A fetch failure is not returned: the cached list comes back instead and
// a refetch of the first page is scheduled, replacing any pending one.
func (c *Cache) History(ctx context.Context, opts Options) ([]Transaction, error) {
	c.cancelRetry()

	if err := validator.Validate(opts); err != nil {
		return nil, err
	}

	state, err := c.sessions.Active()
	if err != nil {
		return nil, err
	}
	ctx = state.Context(ctx)

	c.mu.Lock()
	cached := c.list
	c.mu.Unlock()

	if !opts.Force && opts.Offset == 0 && cached.IsFresh(c.clock.Now(), c.window) {
		return cached.Clone().Items, nil
	}

	page, err := c.explorer.History(ctx, state.Wallet.Address(), opts.Offset, c.pageSize)
	if err != nil {
		logger.Error(ctx, "failed to fetch transaction history", "offset", opts.Offset, "error", err)
		c.scheduleRetry(ctx)
		return cached.Clone().Items, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	items := page
	if opts.Offset != 0 {
		items = append(append([]Transaction{}, c.list.Items...), page...)
	}
	c.list = types.NewCachedList(c.clock.Now(), items)

	return page, nil
}

// scheduleRetry arms the single pending refetch.
func (c *Cache) scheduleRetry(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retry != nil {
		c.retry.Stop()
	}

	c.retry = c.clock.AfterFunc(c.retryDelay, func() {
		if _, err := c.History(ctx, Options{Force: true}); err != nil {
			logger.Warn(ctx, "history retry skipped", "error", err)
		}
	})
}

func (c *Cache) cancelRetry() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
}

// RetryPending reports whether a refetch is scheduled.
func (c *Cache) RetryPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.retry != nil
}

// List returns the cached history without fetching.
func (c *Cache) List() types.CachedList[Transaction] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.list.Clone()
}

// Clear cancels a pending refetch and empties the cache.
func (c *Cache) Clear() {
	c.cancelRetry()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.list = types.CachedList[Transaction]{}
}
