package walletevents

import (
	"context"
	"sync"

	"github.com/gabapcia/zkwallet/internal/account"
	"github.com/gabapcia/zkwallet/internal/pkg/logger"
)

// DisconnectMessage is shown when the wallet drops the connection.
const DisconnectMessage = "Connection with your Wallet was lost. Restarting the DAPP"

// LogoutFunc ends the wallet session.
type LogoutFunc func(ctx context.Context)

// Listener subscribes to a Source once per session.
type Listener struct {
	source   Source
	notifier Notifier
	changes  account.ChangeHandler
	logout   LogoutFunc

	mu           sync.Mutex
	installed    bool
	unsubscribes []func()
}

// NewListener returns a Listener for source. A nil source makes Install a no-op,
// which is the case when no wallet provider is available.
func NewListener(source Source, notifier Notifier, changes account.ChangeHandler, logout LogoutFunc) *Listener {
	return &Listener{
		source:   source,
		notifier: notifier,
		changes:  changes,
		logout:   logout,
	}
}

// Install subscribes to the wallet events. It returns false when there is
// no source. Installing twice keeps the first subscription.
func (l *Listener) Install(ctx context.Context) bool {
	if l.source == nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.installed {
		return true
	}

	l.unsubscribes = []func(){
		l.source.On(Disconnect, l.onDisconnect),
		l.source.On(ChainChanged, l.onChainChanged),
		l.source.On(AccountsChanged, l.onAccountsChanged),
	}
	l.installed = true

	logger.Debug(ctx, "wallet event listener installed")
	return true
}

// Remove drops the subscriptions so the next session installs its own.
func (l *Listener) Remove() {
	l.mu.Lock()
	unsubscribes := l.unsubscribes
	l.unsubscribes = nil
	l.installed = false
	l.mu.Unlock()

	for _, unsubscribe := range unsubscribes {
		unsubscribe()
	}
}

func (l *Listener) Installed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.installed
}

func (l *Listener) onDisconnect(ctx context.Context, event Event) {
	if event.Err != nil {
		logger.Warn(ctx, "wallet disconnected", "error", event.Err)
	}

	l.notifier.Notify(ctx, DisconnectMessage)
	l.logout(ctx)
}

func (l *Listener) onChainChanged(ctx context.Context, event Event) {
	l.changes.NetworkChanged(ctx, event.ChainID)
}

func (l *Listener) onAccountsChanged(ctx context.Context, event Event) {
	l.changes.AccountsChanged(ctx, event.Accounts)
}
