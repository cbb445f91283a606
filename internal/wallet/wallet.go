// Package wallet is the entry point to the wallet state: it runs the
// connect flow, owns the balance, history, fee and withdrawal caches and
// tears everything down on logout.
package wallet

import (
	"context"
	"sync/atomic"

	"github.com/gabapcia/zkwallet/internal/account"
	"github.com/gabapcia/zkwallet/internal/balance"
	"github.com/gabapcia/zkwallet/internal/fee"
	"github.com/gabapcia/zkwallet/internal/history"
	"github.com/gabapcia/zkwallet/internal/onboarding"
	"github.com/gabapcia/zkwallet/internal/session"
	"github.com/gabapcia/zkwallet/internal/tokens"
	"github.com/gabapcia/zkwallet/internal/walletevents"
	"github.com/gabapcia/zkwallet/internal/withdrawal"

	"github.com/ethereum/go-ethereum/common"
)

// Onboarding connects the user's wallet.
type Onboarding interface {
	Connect(ctx context.Context) (bool, error)
	ReconnectOrSelect(ctx context.Context, firstSelect bool) (onboarding.Status, error)
	Reset(ctx context.Context) error
}

// Caches groups the per-session caches owned by the controller.
type Caches struct {
	Balances   *balance.Cache
	History    *history.Cache
	Fees       *fee.Cache
	Withdrawal *withdrawal.Cache
}

// Controller owns the wallet session and the caches built for it. It is
// safe for concurrent use.
type Controller struct {
	onboarding Onboarding
	sessions   *session.Holder
	accounts   account.Store
	tokens     tokens.Store
	caches     Caches
	listener   *walletevents.Listener

	locked atomic.Bool
}

var _ account.Session = (*Controller)(nil)

// Option configures the controller.
type Option func(*Controller)

// WithEvents reacts to the events of source. Switching to a network other
// than expectedChainID logs the user out; an empty expectedChainID accepts
// any network.
func WithEvents(source walletevents.Source, notifier walletevents.Notifier, expectedChainID string) Option {
	return func(c *Controller) {
		changes := account.NewChangeHandler(c, expectedChainID)
		c.listener = walletevents.NewListener(source, notifier, changes, c.Logout)
	}
}

// New returns a Controller. Without WithEvents it never subscribes to
// wallet events.
func New(ob Onboarding, sessions *session.Holder, accounts account.Store, tokenStore tokens.Store, caches Caches, opts ...Option) *Controller {
	c := &Controller{
		onboarding: ob,
		sessions:   sessions,
		accounts:   accounts,
		tokens:     tokenStore,
		caches:     caches,
	}
	c.listener = walletevents.NewListener(nil, walletevents.LogNotifier{}, account.NewChangeHandler(c, ""), c.Logout)

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsLoggedIn reports whether a wallet session is active.
func (c *Controller) IsLoggedIn() bool {
	return !c.sessions.Get().IsZero()
}

// IsAccountLocked reports whether the connected account still has to
// register its rollup signing key.
func (c *Controller) IsAccountLocked() bool {
	return c.locked.Load()
}

// CurrentAddress returns the connected address.
func (c *Controller) CurrentAddress() (common.Address, bool) {
	state := c.sessions.Get()
	if state.IsZero() {
		return common.Address{}, false
	}
	return state.Wallet.Address(), true
}

// Session returns the active session snapshot, which may be empty.
func (c *Controller) Session() session.State {
	return c.sessions.Get()
}

func (c *Controller) Balances() *balance.Cache {
	return c.caches.Balances
}

func (c *Controller) History() *history.Cache {
	return c.caches.History
}

func (c *Controller) Fees() *fee.Cache {
	return c.caches.Fees
}

func (c *Controller) Withdrawal() *withdrawal.Cache {
	return c.caches.Withdrawal
}

// Listener returns the wallet event listener of the controller.
func (c *Controller) Listener() *walletevents.Listener {
	return c.listener
}
