// Package walletevents forwards wallet level events (disconnect, network
// switch, account switch) to the rest of the application.
package walletevents

import (
	"context"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
)

// Name is a wallet event name.
type Name string

const (
	Disconnect      Name = "disconnect"
	ChainChanged    Name = "chainChanged"
	AccountsChanged Name = "accountsChanged"
)

// Event is a wallet event. ChainID is set for ChainChanged, Accounts for
// AccountsChanged and Err, when known, for Disconnect.
type Event struct {
	Name     Name
	ChainID  string
	Accounts []common.Address
	Err      error
}

// Handler receives events of the name it was registered for.
type Handler func(ctx context.Context, event Event)

// Source emits wallet events.
type Source interface {
	// On registers handler for name and returns a function removing it.
	On(name Name, handler Handler) (unsubscribe func())
}

// Notifier shows a message to the user.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// LogNotifier shows messages through the application log.
type LogNotifier struct{}

var _ Notifier = LogNotifier{}

func (LogNotifier) Notify(ctx context.Context, msg string) {
	logger.Warn(ctx, msg)
}
