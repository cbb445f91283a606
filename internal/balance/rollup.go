package balance

import (
	"context"
	"maps"
	"math/big"
	"slices"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/pkg/types"
	"github.com/gabapcia/zkwallet/internal/pkg/units"
	"github.com/gabapcia/zkwallet/internal/rollup"
)

// RollupBalances returns the rollup balances of the connected wallet.
//
// With override set the list is computed from that snapshot, which is what
// the connect flow does with the state it just fetched. Otherwise the cached
// list is returned while fresh unless force is set, and a miss fetches a new
// account state and stores it on the session.
func (c *Cache) RollupBalances(ctx context.Context, override *rollup.AccountState, force bool) ([]TokenBalance, error) {
	state, err := c.sessions.Active()
	if err != nil {
		return nil, err
	}
	ctx = state.Context(ctx)

	accountState := override
	if accountState == nil {
		c.mu.Lock()
		cached := c.rollup
		c.mu.Unlock()

		if !force && cached.IsFresh(c.clock.Now(), c.rollupWindow) {
			return cached.Clone().Items, nil
		}

		if err := rollup.RestoreConnection(ctx, state.Provider); err != nil {
			return nil, err
		}

		fresh, err := state.Wallet.AccountState(ctx)
		if err != nil {
			return nil, err
		}
		c.sessions.SetAccountState(fresh)
		accountState = &fresh
	}

	tokenSet, err := state.Provider.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	restricted := c.tokens.RestrictedTokens()
	committed := accountState.Committed.Balances
	verified := accountState.Verified.Balances

	list := make([]TokenBalance, 0, len(committed))
	for _, symbol := range slices.Sorted(maps.Keys(committed)) {
		token, err := tokenSet.Resolve(symbol)
		if err != nil {
			logger.Warn(ctx, "skipping rollup balance of unknown token", "token.symbol", symbol)
			continue
		}

		committedAmount := orZero(committed[symbol])
		verifiedAmount := orZero(verified[symbol])

		price, err := c.tokens.TokenPrice(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "could not get token price", "token.symbol", symbol, "error", err)
			price = 0
		}

		balance := units.ToFloat(committedAmount, token.Decimals)

		status := StatusVerified
		if committedAmount.Cmp(verifiedAmount) != 0 {
			status = StatusPending
		}

		list = append(list, TokenBalance{
			Symbol:              symbol,
			Status:              status,
			Balance:             balance,
			FormattedBalance:    units.Format(committedAmount, token.Decimals),
			VerifiedBalance:     units.ToFloat(verifiedAmount, token.Decimals),
			Price:               price,
			FormattedTotalValue: units.FormatUSD(price, balance),
			Restricted:          committedAmount.Sign() <= 0 || restricted.Has(symbol),
		})
	}

	c.mu.Lock()
	c.rollup = types.NewCachedList(c.clock.Now(), list)
	c.mu.Unlock()

	return list, nil
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
