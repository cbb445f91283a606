package wallet

import (
	"context"

	"github.com/gabapcia/zkwallet/internal/history"
	"github.com/gabapcia/zkwallet/internal/onboarding"
	"github.com/gabapcia/zkwallet/internal/pkg/logger"
)

// Connect restores the previously selected wallet and, when there is one,
// silently refreshes the session.
func (c *Controller) Connect(ctx context.Context) bool {
	restored, err := c.onboarding.Connect(ctx)
	if err != nil {
		logger.Error(ctx, "wallet connect failed", "error", err)
		return false
	}
	if !restored {
		return false
	}

	return c.Refresh(ctx, false)
}

// Refresh runs the connect flow. With firstSelect the user picks a wallet,
// otherwise the current one is only checked. A new session loads the token
// catalogue, the rollup balances and the signing key state, then starts
// listening to wallet events. Failures are logged and reported as false.
func (c *Controller) Refresh(ctx context.Context, firstSelect bool) bool {
	status, err := c.onboarding.ReconnectOrSelect(ctx, firstSelect)
	if err != nil {
		logger.Error(ctx, "wallet refresh failed", "error", err)
		return false
	}

	switch status {
	case onboarding.StatusRejected:
		return false
	case onboarding.StatusExisting:
		c.accounts.SetLoggedIn(true)
		return true
	}

	state := c.sessions.Get()
	if state.IsZero() {
		return false
	}
	ctx = state.Context(ctx)

	if _, err := c.tokens.LoadTokensAndBalances(ctx); err != nil {
		logger.Error(ctx, "wallet refresh failed to load tokens", "error", err)
		return false
	}

	accountState := state.AccountState
	if _, err := c.caches.Balances.RollupBalances(ctx, &accountState, false); err != nil {
		logger.Error(ctx, "wallet refresh failed to compute balances", "error", err)
		return false
	}

	keySet, err := state.Wallet.IsSigningKeySet(ctx)
	if err != nil {
		logger.Error(ctx, "wallet refresh failed to read signing key", "error", err)
		return false
	}
	c.locked.Store(!keySet)

	c.listener.Install(ctx)
	c.accounts.SetLoggedIn(true)

	return true
}

// Reconnect rebuilds the session for the wallet's current account. The
// old session and its caches are dropped but the selected wallet is kept,
// so the check runs against the same wallet. When the rebuild fails the
// user is logged out.
func (c *Controller) Reconnect(ctx context.Context) bool {
	state := c.sessions.Get()
	c.endSession(state.Context(ctx), state)

	if c.Refresh(ctx, false) {
		return true
	}

	c.Logout(ctx)
	return false
}

// ForceRefresh refetches on-chain balances, rollup balances and history.
// Each failure is logged and does not stop the others.
func (c *Controller) ForceRefresh(ctx context.Context) {
	ctx = c.sessions.Get().Context(ctx)

	if _, err := c.caches.Balances.OnChainBalances(ctx, true); err != nil {
		logger.Error(ctx, "force refresh of on-chain balances failed", "error", err)
	}

	if _, err := c.caches.Balances.RollupBalances(ctx, nil, true); err != nil {
		logger.Error(ctx, "force refresh of rollup balances failed", "error", err)
	}

	if _, err := c.caches.History.History(ctx, history.Options{Force: true}); err != nil {
		logger.Error(ctx, "force refresh of history failed", "error", err)
	}
}
