package ethwallet

import (
	"context"
	"sort"
	"sync"

	"github.com/gabapcia/zkwallet/internal/onboarding"
	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/walletevents"
)

// Selector chooses among named wallets. Without a wallet id it falls back
// to the default wallet, or to the only wallet when there is just one.
type Selector struct {
	wallets       map[string]*Provider
	defaultWallet string

	mu       sync.RWMutex
	selected string
}

var (
	_ onboarding.WalletSelector = (*Selector)(nil)
	_ walletevents.Source       = (*Selector)(nil)
)

func NewSelector(wallets map[string]*Provider, defaultWallet string) *Selector {
	return &Selector{
		wallets:       wallets,
		defaultWallet: defaultWallet,
	}
}

// Wallets lists the configured wallet ids in order.
func (s *Selector) Wallets() []string {
	ids := make([]string, 0, len(s.wallets))
	for id := range s.wallets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Selector) Select(ctx context.Context, walletID string) (bool, error) {
	if walletID == "" {
		walletID = s.defaultWallet
	}
	if walletID == "" && len(s.wallets) == 1 {
		walletID = s.Wallets()[0]
	}

	if _, ok := s.wallets[walletID]; !ok {
		logger.Warn(ctx, "wallet not available", "wallet.id", walletID, "available", s.Wallets())
		return false, nil
	}

	s.mu.Lock()
	s.selected = walletID
	s.mu.Unlock()
	return true, nil
}

// Check confirms the node behind the selected wallet answers.
func (s *Selector) Check(ctx context.Context) (bool, error) {
	p := s.current()
	if p == nil {
		return false, nil
	}

	if _, err := p.ChainID(ctx); err != nil {
		logger.Warn(ctx, "wallet check failed", "wallet.id", s.SelectedWallet(), "error", err)
		return false, nil
	}
	return true, nil
}

func (s *Selector) Reset() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()
}

func (s *Selector) SelectedWallet() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selected
}

func (s *Selector) current() *Provider {
	return s.wallets[s.SelectedWallet()]
}

// Provider returns the selected wallet's provider or nil.
func (s *Selector) Provider() onboarding.EthereumProvider {
	p := s.current()
	if p == nil {
		return nil
	}
	return p
}

// Current returns the selected wallet's provider, or nil.
func (s *Selector) Current() *Provider {
	return s.current()
}

// On registers handler on every wallet. Events are only forwarded while
// their wallet is the selected one.
func (s *Selector) On(name walletevents.Name, handler walletevents.Handler) func() {
	unsubscribes := make([]func(), 0, len(s.wallets))
	for _, p := range s.wallets {
		unsubscribes = append(unsubscribes, p.On(name, func(ctx context.Context, event walletevents.Event) {
			if s.current() == p {
				handler(ctx, event)
			}
		}))
	}

	return func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}
}
