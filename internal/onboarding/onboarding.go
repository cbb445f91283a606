// Package onboarding connects the user's Ethereum wallet: it restores or
// asks for a wallet choice, checks that the wallet is usable and builds
// the rollup session for the exposed account.
package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/zkwallet/internal/account"
	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/rollup"
	"github.com/gabapcia/zkwallet/internal/session"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNoSelection is returned by a SelectionStore holding no wallet id.
var ErrNoSelection = errors.New("no wallet selected")

// EthereumProvider is the account source of a selected wallet.
type EthereumProvider interface {
	Accounts(ctx context.Context) ([]common.Address, error)

	// Signer returns the signer for the first exposed account.
	Signer(ctx context.Context) (rollup.Signer, error)
}

// WalletSelector chooses among the wallets available to the user.
type WalletSelector interface {
	// Select picks walletID, or lets the user choose when walletID is empty.
	// It returns false when the selection was cancelled.
	Select(ctx context.Context, walletID string) (bool, error)

	// Check verifies the selected wallet can be used.
	Check(ctx context.Context) (bool, error)

	// Reset forgets the selection.
	Reset()

	SelectedWallet() string

	// Provider returns the provider of the selected wallet, or nil when none is ready.
	Provider() EthereumProvider
}

// SelectionStore persists the last selected wallet id between runs.
type SelectionStore interface {
	// SelectedWallet returns ErrNoSelection when nothing was saved.
	SelectedWallet(ctx context.Context) (string, error)
	SaveSelectedWallet(ctx context.Context, walletID string) error
	RemoveSelectedWallet(ctx context.Context) error
}

// Status is the outcome of ReconnectOrSelect.
type Status int

const (
	// StatusRejected means the selection was cancelled or the wallet is unusable.
	StatusRejected Status = iota

	// StatusExisting means a session was already in place.
	StatusExisting

	// StatusConnected means a new session was created.
	StatusConnected
)

// OK reports whether a session is available.
func (s Status) OK() bool {
	return s != StatusRejected
}

// Adapter runs the wallet onboarding against a selector and fills sessions
// with the rollup wallet of the exposed account.
type Adapter struct {
	selector  WalletSelector
	selection SelectionStore
	accounts  account.Store
	connector rollup.Connector
	sessions  *session.Holder
	network   string
}

// New returns an Adapter connecting to network through connector.
func New(selector WalletSelector, selection SelectionStore, accounts account.Store, connector rollup.Connector, sessions *session.Holder, network string) *Adapter {
	return &Adapter{
		selector:  selector,
		selection: selection,
		accounts:  accounts,
		connector: connector,
		sessions:  sessions,
		network:   network,
	}
}

// Connect restores the previously selected wallet. It returns false without
// touching the session when no wallet was selected before.
func (a *Adapter) Connect(ctx context.Context) (bool, error) {
	walletID, err := a.selection.SelectedWallet(ctx)
	if errors.Is(err, ErrNoSelection) {
		a.accounts.SetSelectedWallet("")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read selected wallet: %w", err)
	}

	a.accounts.SetSelectedWallet(walletID)
	return a.selector.Select(ctx, walletID)
}

// ReconnectOrSelect runs the full selection when firstSelect is set and
// only the compatibility check otherwise. On success with no session in
// place it builds the rollup wallet and fills the session.
func (a *Adapter) ReconnectOrSelect(ctx context.Context, firstSelect bool) (Status, error) {
	a.accounts.SetLoadingHint(account.HintFollowInstructions)

	if firstSelect {
		selected, err := a.selector.Select(ctx, "")
		if err != nil || !selected {
			return StatusRejected, err
		}
	}

	checked, err := a.selector.Check(ctx)
	if err != nil || !checked {
		return StatusRejected, err
	}

	provider := a.selector.Provider()
	if provider == nil {
		return StatusRejected, nil
	}

	accounts, err := provider.Accounts(ctx)
	if err != nil {
		return StatusRejected, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return StatusRejected, nil
	}

	if !a.sessions.Get().IsZero() {
		return StatusExisting, nil
	}

	if walletID := a.selector.SelectedWallet(); walletID != "" {
		if err := a.selection.SaveSelectedWallet(ctx, walletID); err != nil {
			logger.Warn(ctx, "could not persist selected wallet", "wallet.id", walletID, "error", err)
		}
		a.accounts.SetSelectedWallet(walletID)
	}

	signer, err := provider.Signer(ctx)
	if err != nil {
		return StatusRejected, fmt.Errorf("get signer: %w", err)
	}

	rollupProvider, err := a.connector.DefaultProvider(ctx, a.network)
	if err != nil {
		return StatusRejected, fmt.Errorf("connect to %s: %w", a.network, err)
	}

	wallet, err := a.connector.WalletFromSigner(ctx, signer, rollupProvider)
	if err != nil {
		return StatusRejected, fmt.Errorf("open rollup wallet: %w", err)
	}

	a.accounts.SetLoadingHint(account.HintLoadingData)

	accountState, err := wallet.AccountState(ctx)
	if err != nil {
		return StatusRejected, fmt.Errorf("fetch account state: %w", err)
	}

	state := a.sessions.Set(signer, wallet, rollupProvider, accountState)
	logger.Info(state.Context(ctx), "wallet connected", "network", a.network)

	return StatusConnected, nil
}

// Reset forgets the selected wallet both in the selector and in storage.
func (a *Adapter) Reset(ctx context.Context) error {
	a.selector.Reset()
	return a.selection.RemoveSelectedWallet(ctx)
}
