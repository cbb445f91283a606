package wallet

import (
	"context"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/session"
)

// Logout ends the session: it forgets the selected wallet, drops the
// connection, empties every cache and stops listening to wallet events.
func (c *Controller) Logout(ctx context.Context) {
	state := c.sessions.Get()
	ctx = state.Context(ctx)

	if err := c.onboarding.Reset(ctx); err != nil {
		logger.Warn(ctx, "could not remove persisted wallet selection", "error", err)
	}

	c.endSession(ctx, state)

	c.accounts.SetLoggedIn(false)
	c.accounts.SetSelectedWallet("")

	c.listener.Remove()
	c.accounts.Logout(ctx)

	logger.Info(ctx, "wallet logged out")
}

// endSession drops the rollup session and every cache built for it. The
// wallet selection and the event listener are left in place.
func (c *Controller) endSession(ctx context.Context, state session.State) {
	c.sessions.Clear()
	if !state.IsZero() && state.Provider != nil {
		if err := state.Provider.Transport().Close(); err != nil {
			logger.Warn(ctx, "could not close rollup transport", "error", err)
		}
	}

	c.caches.Balances.Clear()
	c.caches.History.Clear()
	c.caches.Fees.Clear()
	c.tokens.Clear()

	c.locked.Store(false)
}
