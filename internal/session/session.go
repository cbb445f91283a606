// Package session holds the wallet connection shared by every cache: the
// signer, the rollup wallet and provider, and the last fetched account
// state. A Holder starts empty, is populated on connect and cleared on
// logout or disconnect.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/rollup"

	"github.com/google/uuid"
)

// ErrNotConnected is returned by operations that need a wallet while none is connected.
var ErrNotConnected = errors.New("wallet not connected")

// State is a snapshot of the active connection.
type State struct {
	ID           uuid.UUID
	Signer       rollup.Signer
	Wallet       rollup.Wallet
	Provider     rollup.Provider
	AccountState rollup.AccountState
}

// IsZero reports whether the snapshot holds no connection.
func (s State) IsZero() bool {
	return s.Wallet == nil
}

// Holder guards the process-wide State.
type Holder struct {
	mu    sync.RWMutex
	state State
}

func NewHolder() *Holder {
	return &Holder{}
}

// Set replaces the whole connection and assigns it a new session id.
func (h *Holder) Set(signer rollup.Signer, wallet rollup.Wallet, provider rollup.Provider, accountState rollup.AccountState) State {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.state = State{
		ID:           id,
		Signer:       signer,
		Wallet:       wallet,
		Provider:     provider,
		AccountState: accountState,
	}
	return h.state
}

// SetAccountState records a fresher account state. It is ignored when no
// wallet is connected or the state belongs to another address.
func (h *Holder) SetAccountState(accountState rollup.AccountState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state.IsZero() || h.state.Wallet.Address() != accountState.Address {
		return
	}
	h.state.AccountState = accountState
}

// Clear drops the connection.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state = State{}
}

// Get returns the current snapshot, which may be empty.
func (h *Holder) Get() State {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.state
}

// Active returns the current snapshot or ErrNotConnected.
func (h *Holder) Active() (State, error) {
	s := h.Get()
	if s.IsZero() {
		return State{}, ErrNotConnected
	}
	return s, nil
}

// Context attaches the session id and wallet address to ctx for logging.
func (s State) Context(ctx context.Context) context.Context {
	if s.IsZero() {
		return ctx
	}

	return logger.WithFields(ctx, "session.id", s.ID.String(), "wallet.address", s.Wallet.Address().Hex())
}
