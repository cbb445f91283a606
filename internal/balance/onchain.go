package balance

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/pkg/types"
	"github.com/gabapcia/zkwallet/internal/pkg/units"
	"github.com/gabapcia/zkwallet/internal/rollup"
)

// OnChainBalances returns the layer-1 balance of every catalogued token.
//
// Tokens are queried one after another. A token whose balance cannot be
// fetched is logged and left out. Non-zero balances come first, each group
// sorted by token id.
func (c *Cache) OnChainBalances(ctx context.Context, force bool) ([]OnChainBalance, error) {
	state, err := c.sessions.Active()
	if err != nil {
		return nil, err
	}
	ctx = state.Context(ctx)

	c.mu.Lock()
	cached := c.onChain
	c.mu.Unlock()

	if !force && cached.IsFresh(c.clock.Now(), c.onChainWindow) {
		return cached.Clone().Items, nil
	}

	if err := rollup.RestoreConnection(ctx, state.Provider); err != nil {
		return nil, err
	}

	accountState, err := state.Wallet.AccountState(ctx)
	if err != nil {
		return nil, err
	}
	c.sessions.SetAccountState(accountState)

	catalogue, err := c.tokens.LoadTokensAndBalances(ctx)
	if err != nil {
		return nil, err
	}

	var nonZero, zero []OnChainBalance
	for _, symbol := range slices.Sorted(maps.Keys(catalogue.Tokens)) {
		token := catalogue.Tokens[symbol]

		amount, err := state.Wallet.EthereumBalance(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "could not get on-chain balance", "token.symbol", token.Symbol, "error", err)
			continue
		}
		amount = orZero(amount)

		entry := OnChainBalance{
			ID:               token.ID,
			Address:          token.Address,
			Symbol:           token.Symbol,
			Balance:          units.ToFloat(amount, token.Decimals),
			FormattedBalance: units.Format(amount, token.Decimals),
		}

		if amount.Sign() > 0 {
			nonZero = append(nonZero, entry)
		} else {
			zero = append(zero, entry)
		}
	}

	byID := func(a, b OnChainBalance) int { return cmp.Compare(a.ID, b.ID) }
	slices.SortFunc(nonZero, byID)
	slices.SortFunc(zero, byID)
	list := make([]OnChainBalance, 0, len(nonZero)+len(zero))
	list = append(list, nonZero...)
	list = append(list, zero...)

	c.mu.Lock()
	c.onChain = types.NewCachedList(c.clock.Now(), list)
	c.mu.Unlock()

	return list, nil
}
