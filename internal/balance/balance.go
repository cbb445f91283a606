// Package balance caches the two balance views of the connected wallet:
// rollup balances (committed and verified) and on-chain token balances.
// Each view is refetched only when forced or older than its window.
package balance

import (
	"sync"
	"time"

	"github.com/gabapcia/zkwallet/internal/pkg/types"
	"github.com/gabapcia/zkwallet/internal/session"
	"github.com/gabapcia/zkwallet/internal/tokens"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
)

// Status tells whether a rollup balance has reached finality.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusVerified Status = "Verified"
)

// TokenBalance is a rollup balance ready for display.
type TokenBalance struct {
	Symbol              string  `json:"symbol"`
	Status              Status  `json:"status"`
	Balance             float64 `json:"balance"`
	FormattedBalance    string  `json:"formattedBalance"`
	VerifiedBalance     float64 `json:"verifiedBalance"`
	Price               float64 `json:"tokenPrice"`
	FormattedTotalValue string  `json:"formattedTotalPrice"`
	Restricted          bool    `json:"restricted"`
}

// OnChainBalance is a layer-1 balance ready for display.
type OnChainBalance struct {
	ID               uint32         `json:"id"`
	Address          common.Address `json:"address"`
	Symbol           string         `json:"symbol"`
	Balance          float64        `json:"balance"`
	FormattedBalance string         `json:"formattedBalance"`
}

// Cache holds the rollup and on-chain balance views of the active session.
type Cache struct {
	sessions *session.Holder
	tokens   tokens.Store
	clock    clock.Clock

	rollupWindow  time.Duration
	onChainWindow time.Duration

	mu      sync.Mutex
	rollup  types.CachedList[TokenBalance]
	onChain types.CachedList[OnChainBalance]
}

// Option configures the balance cache.
type Option func(*Cache)

// WithWindow sets how long both views stay fresh. Default: 60 seconds.
func WithWindow(d time.Duration) Option {
	return func(c *Cache) {
		c.rollupWindow = d
		c.onChainWindow = d
	}
}

// WithClock replaces the clock used to age both views.
func WithClock(clk clock.Clock) Option {
	return func(c *Cache) {
		c.clock = clk
	}
}

// New returns an empty Cache reading balances through sessions and
// pricing them with tokenStore.
func New(sessions *session.Holder, tokenStore tokens.Store, opts ...Option) *Cache {
	c := &Cache{
		sessions:      sessions,
		tokens:        tokenStore,
		clock:         clock.New(),
		rollupWindow:  60 * time.Second,
		onChainWindow: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RollupList returns the cached rollup balances without fetching.
func (c *Cache) RollupList() types.CachedList[TokenBalance] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rollup.Clone()
}

// OnChainList returns the cached on-chain balances without fetching.
func (c *Cache) OnChainList() types.CachedList[OnChainBalance] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.onChain.Clone()
}

// Clear resets both views to their never fetched shape.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollup = types.CachedList[TokenBalance]{}
	c.onChain = types.CachedList[OnChainBalance]{}
}
