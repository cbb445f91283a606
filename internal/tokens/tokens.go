// Package tokens serves the rollup token catalogue, token prices and the
// list of tokens that must not be offered for trading.
package tokens

import (
	"cmp"
	"context"
	"math/big"
	"slices"
	"sync"
	"time"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/pkg/types"
	"github.com/gabapcia/zkwallet/internal/rollup"
	"github.com/gabapcia/zkwallet/internal/session"

	"github.com/benbjohnson/clock"
)

// Balance is a committed rollup balance of one token.
type Balance struct {
	ID      uint32
	Symbol  string
	Balance *big.Int
}

// Catalogue is the token set along with the account's rollup balances
// sorted by token id.
type Catalogue struct {
	Tokens         rollup.TokenSet
	RollupBalances []Balance
}

// Store provides token data to the balance caches.
type Store interface {
	// TokenPrice returns the USD price of symbol, cached for the price window.
	TokenPrice(ctx context.Context, symbol string) (float64, error)

	// RestrictedTokens lists the symbols that must not be offered for trading.
	RestrictedTokens() types.Set[string]

	// LoadTokensAndBalances returns the token set and the session's
	// committed balances.
	LoadTokensAndBalances(ctx context.Context) (Catalogue, error)

	// Clear forgets every cached token and price. It is called on logout.
	Clear()
}

type price struct {
	value     float64
	fetchedAt time.Time
}

// store caches prices for priceWindow and the token set for the session.
type store struct {
	sessions    *session.Holder
	restricted  types.Set[string]
	priceWindow time.Duration
	clock       clock.Clock

	mu     sync.Mutex
	prices map[string]price
	tokens rollup.TokenSet
}

var _ Store = (*store)(nil)

// Option configures the token store.
type Option func(*store)

// WithRestrictedTokens marks symbols as restricted.
func WithRestrictedTokens(symbols ...string) Option {
	return func(s *store) {
		s.restricted.Add(symbols...)
	}
}

// WithPriceWindow sets how long a price stays fresh. Default: 60 seconds.
func WithPriceWindow(d time.Duration) Option {
	return func(s *store) {
		s.priceWindow = d
	}
}

// WithClock replaces the clock used to age prices. Tests pass clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(s *store) {
		s.clock = c
	}
}

// New returns a Store reading tokens and prices through the provider of the
// active session in sessions.
func New(sessions *session.Holder, opts ...Option) Store {
	s := &store{
		sessions:    sessions,
		restricted:  types.NewSet[string](),
		priceWindow: 60 * time.Second,
		clock:       clock.New(),
		prices:      make(map[string]price),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *store) TokenPrice(ctx context.Context, symbol string) (float64, error) {
	now := s.clock.Now()

	s.mu.Lock()
	cached, ok := s.prices[symbol]
	s.mu.Unlock()

	if ok && now.Sub(cached.fetchedAt) < s.priceWindow {
		return cached.value, nil
	}

	state, err := s.sessions.Active()
	if err != nil {
		return 0, err
	}

	if err := rollup.RestoreConnection(ctx, state.Provider); err != nil {
		return 0, err
	}

	value, err := state.Provider.TokenPrice(ctx, symbol)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.prices[symbol] = price{value: value, fetchedAt: now}
	s.mu.Unlock()

	return value, nil
}

func (s *store) RestrictedTokens() types.Set[string] {
	return s.restricted
}

// LoadTokensAndBalances loads the token set once per store and pairs it with
// the committed balances of the session's last account state.
func (s *store) LoadTokensAndBalances(ctx context.Context) (Catalogue, error) {
	state, err := s.sessions.Active()
	if err != nil {
		return Catalogue{}, err
	}

	s.mu.Lock()
	tokens := s.tokens
	s.mu.Unlock()

	if tokens == nil {
		if err := rollup.RestoreConnection(ctx, state.Provider); err != nil {
			return Catalogue{}, err
		}

		if tokens, err = state.Provider.Tokens(ctx); err != nil {
			return Catalogue{}, err
		}

		s.mu.Lock()
		s.tokens = tokens
		s.mu.Unlock()
	}

	balances := make([]Balance, 0, len(state.AccountState.Committed.Balances))
	for symbol, amount := range state.AccountState.Committed.Balances {
		token, err := tokens.Resolve(symbol)
		if err != nil {
			logger.Warn(ctx, "rollup balance for a token outside the catalogue", "token.symbol", symbol)
			continue
		}
		balances = append(balances, Balance{ID: token.ID, Symbol: token.Symbol, Balance: amount})
	}
	slices.SortFunc(balances, func(a, b Balance) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return Catalogue{Tokens: tokens, RollupBalances: balances}, nil
}

// Clear forgets the cached token set and prices.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = nil
	s.prices = make(map[string]price)
}
