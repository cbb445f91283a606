// Package account keeps the user-facing login state: which wallet was
// selected, whether the user is logged in and which loading hint to show.
// It also reacts to network and account switches reported by the wallet.
package account

import (
	"context"
	"sync"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
)

// LoadingHint tells the user what the connect flow is waiting on.
type LoadingHint string

const (
	HintNone               LoadingHint = ""
	HintFollowInstructions LoadingHint = "followInstructions"
	HintLoadingData        LoadingHint = "loadingData"
)

// Store receives login state transitions from the wallet controller.
type Store interface {
	SetSelectedWallet(walletID string)
	SetLoggedIn(loggedIn bool)
	SetLoadingHint(hint LoadingHint)

	// Logout resets the account level state once the wallet has been disconnected.
	Logout(ctx context.Context)
}

// ChangeHandler decides what a network or account switch means for the session.
type ChangeHandler interface {
	NetworkChanged(ctx context.Context, chainID string)
	AccountsChanged(ctx context.Context, accounts []common.Address)
}

// State is the in-memory Store.
type State struct {
	mu             sync.RWMutex
	selectedWallet string
	loggedIn       bool
	hint           LoadingHint
	onLogout       []func(ctx context.Context)
}

var _ Store = (*State)(nil)

func NewState() *State {
	return &State{}
}

// OnLogout registers f to run after every Logout.
func (s *State) OnLogout(f func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onLogout = append(s.onLogout, f)
}

func (s *State) SetSelectedWallet(walletID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectedWallet = walletID
}

func (s *State) SetLoggedIn(loggedIn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loggedIn = loggedIn
}

func (s *State) SetLoadingHint(hint LoadingHint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hint = hint
}

func (s *State) Logout(ctx context.Context) {
	s.mu.Lock()
	s.selectedWallet = ""
	s.loggedIn = false
	s.hint = HintNone
	hooks := append([]func(context.Context){}, s.onLogout...)
	s.mu.Unlock()

	logger.Info(ctx, "account logged out")

	for _, f := range hooks {
		f(ctx)
	}
}

func (s *State) SelectedWallet() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selectedWallet
}

func (s *State) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loggedIn
}

func (s *State) LoadingHint() LoadingHint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hint
}
