// Package memory keeps wallet selection state in process memory. It backs
// runs without Redis, where the selection lives as long as the process.
package memory

import (
	"context"
	"sync"

	"github.com/gabapcia/zkwallet/internal/onboarding"
)

type SelectionStore struct {
	mu       sync.RWMutex
	walletID string
}

var _ onboarding.SelectionStore = (*SelectionStore)(nil)

func NewSelectionStore() *SelectionStore {
	return &SelectionStore{}
}

func (s *SelectionStore) SelectedWallet(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.walletID == "" {
		return "", onboarding.ErrNoSelection
	}
	return s.walletID, nil
}

func (s *SelectionStore) SaveSelectedWallet(_ context.Context, walletID string) error {
	s.mu.Lock()
	s.walletID = walletID
	s.mu.Unlock()
	return nil
}

func (s *SelectionStore) RemoveSelectedWallet(context.Context) error {
	s.mu.Lock()
	s.walletID = ""
	s.mu.Unlock()
	return nil
}
