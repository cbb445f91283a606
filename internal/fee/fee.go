// Package fee quotes and memoizes rollup transfer and withdrawal fees.
//
// A quote depends on the token moved, the token paying the fee, the
// operation and the destination. When the two tokens differ the fee is
// paid through an extra transfer to self, so the quote is taken for the
// whole batch.
package fee

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/pkg/validator"
	"github.com/gabapcia/zkwallet/internal/rollup"
	"github.com/gabapcia/zkwallet/internal/session"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"
)

// Type is the kind of operation being quoted.
type Type string

const (
	TypeWithdraw Type = "withdraw"
	TypeTransfer Type = "transfer"
)

// Request asks for the fee of moving Symbol to Address, paid in FeeSymbol.
type Request struct {
	Address   string `validate:"required,eth_addr"`
	Symbol    string `validate:"required,token_symbol"`
	FeeSymbol string `validate:"required,token_symbol"`
	Type      Type   `validate:"required,oneof=withdraw transfer"`
}

// Key identifies a memoized quote.
type Key struct {
	Symbol    string
	FeeSymbol string
	Type      Type
	Address   common.Address
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.Symbol, k.FeeSymbol, k.Type, k.Address.Hex())
}

// Quote is a fee in units of the paying token. Fast is only set for withdrawals.
type Quote struct {
	Fast   *float64 `json:"fast,omitempty"`
	Normal float64  `json:"normal"`
}

// Cache memoizes fee quotes for the session until Clear.
type Cache struct {
	sessions *session.Holder

	group singleflight.Group

	mu     sync.Mutex
	quotes map[Key]Quote
}

// New returns an empty Cache quoting through the provider of the active session.
func New(sessions *session.Holder) *Cache {
	return &Cache{
		sessions: sessions,
		quotes:   make(map[Key]Quote),
	}
}

// Fee returns the memoized quote for req, computing it on first use.
// Concurrent identical requests share one computation.
func (c *Cache) Fee(ctx context.Context, req Request) (Quote, error) {
	if err := validator.Validate(req); err != nil {
		return Quote{}, err
	}

	key := Key{
		Symbol:    req.Symbol,
		FeeSymbol: req.FeeSymbol,
		Type:      req.Type,
		Address:   common.HexToAddress(req.Address),
	}

	if q, ok := c.lookup(key); ok {
		return q, nil
	}

	state, err := c.sessions.Active()
	if err != nil {
		return Quote{}, err
	}
	ctx = state.Context(ctx)

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		if q, ok := c.lookup(key); ok {
			return q, nil
		}

		q, err := c.compute(ctx, state, key)
		if err != nil {
			return Quote{}, err
		}

		c.mu.Lock()
		c.quotes[key] = q
		c.mu.Unlock()

		logger.Debug(ctx, "fee quoted", "fee.key", key.String(), "fee.normal", q.Normal)
		return q, nil
	})
	if err != nil {
		return Quote{}, err
	}

	return v.(Quote), nil
}

func (c *Cache) lookup(key Key) (Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.quotes[key]
	return q, ok
}

func (c *Cache) compute(ctx context.Context, state session.State, key Key) (Quote, error) {
	provider := state.Provider

	if err := rollup.RestoreConnection(ctx, provider); err != nil {
		return Quote{}, err
	}

	tokens, err := provider.Tokens(ctx)
	if err != nil {
		return Quote{}, err
	}

	sameToken := key.Symbol == key.FeeSymbol
	self := state.Wallet.Address()
	batchTo := []common.Address{key.Address, self}

	format := func(payer string, total *big.Int) (float64, error) {
		return tokens.ToFloat(payer, rollup.ClosestPackableFee(total))
	}

	single := func(op rollup.OpType) (float64, error) {
		fee, err := provider.TransactionFee(ctx, op, key.Address, key.Symbol)
		if err != nil {
			return 0, err
		}
		return format(key.Symbol, fee.TotalFee)
	}

	batch := func(ops ...rollup.OpType) (float64, error) {
		total, err := provider.TransactionsBatchFee(ctx, ops, batchTo, key.FeeSymbol)
		if err != nil {
			return 0, err
		}
		return format(key.FeeSymbol, total)
	}

	var fast, normal float64
	switch {
	case key.Type == TypeWithdraw && sameToken:
		if fast, err = single(rollup.FastWithdraw); err != nil {
			return Quote{}, err
		}
		if normal, err = single(rollup.Withdraw); err != nil {
			return Quote{}, err
		}
		return Quote{Fast: &fast, Normal: normal}, nil

	case key.Type == TypeWithdraw:
		if fast, err = batch(rollup.FastWithdraw, rollup.Transfer); err != nil {
			return Quote{}, err
		}
		if normal, err = batch(rollup.Withdraw, rollup.Transfer); err != nil {
			return Quote{}, err
		}
		return Quote{Fast: &fast, Normal: normal}, nil

	case sameToken:
		if normal, err = single(rollup.Transfer); err != nil {
			return Quote{}, err
		}
		return Quote{Normal: normal}, nil

	default:
		if normal, err = batch(rollup.Transfer, rollup.Transfer); err != nil {
			return Quote{}, err
		}
		return Quote{Normal: normal}, nil
	}
}

// Len returns the number of memoized quotes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.quotes)
}

// Clear forgets every memoized quote.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quotes = make(map[Key]Quote)
}
