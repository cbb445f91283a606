package ethwallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/gabapcia/zkwallet/internal/onboarding"
	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/pkg/resilience/retry"
	"github.com/gabapcia/zkwallet/internal/pkg/x/chflow"
	"github.com/gabapcia/zkwallet/internal/rollup"
	"github.com/gabapcia/zkwallet/internal/walletevents"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common"
)

// ChainReader reads the chain id of the connected node. ethclient.Client
// satisfies it.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Provider exposes one signer's account and emits wallet events observed
// while polling its node.
type Provider struct {
	chain ChainReader
	retry retry.Retry
	clock clock.Clock

	mu       sync.Mutex
	signer   *KeySigner
	chainID  string
	handlers map[walletevents.Name]map[int]walletevents.Handler
	nextID   int
}

var (
	_ onboarding.EthereumProvider = (*Provider)(nil)
	_ walletevents.Source         = (*Provider)(nil)
)

// ProviderOption configures the provider.
type ProviderOption func(*Provider)

// WithRetry sets the retry policy for chain id reads. Default: retry.New().
func WithRetry(r retry.Retry) ProviderOption {
	return func(p *Provider) {
		p.retry = r
	}
}

// WithClock replaces the clock driving Watch.
func WithClock(c clock.Clock) ProviderOption {
	return func(p *Provider) {
		p.clock = c
	}
}

func NewProvider(signer *KeySigner, chain ChainReader, opts ...ProviderOption) *Provider {
	p := &Provider{
		chain:    chain,
		retry:    retry.New(),
		clock:    clock.New(),
		signer:   signer,
		handlers: make(map[walletevents.Name]map[int]walletevents.Handler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Accounts(context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.signer == nil {
		return nil, nil
	}
	return []common.Address{p.signer.address}, nil
}

func (p *Provider) Signer(context.Context) (rollup.Signer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.signer == nil {
		return nil, fmt.Errorf("no account exposed")
	}
	return p.signer, nil
}

// On registers handler for name. The returned function removes it.
func (p *Provider) On(name walletevents.Name, handler walletevents.Handler) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++

	if p.handlers[name] == nil {
		p.handlers[name] = make(map[int]walletevents.Handler)
	}
	p.handlers[name][id] = handler

	return func() {
		p.mu.Lock()
		delete(p.handlers[name], id)
		p.mu.Unlock()
	}
}

func (p *Provider) emit(ctx context.Context, event walletevents.Event) {
	p.mu.Lock()
	handlers := make([]walletevents.Handler, 0, len(p.handlers[event.Name]))
	for _, h := range p.handlers[event.Name] {
		handlers = append(handlers, h)
	}
	p.mu.Unlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}

// SwitchAccount replaces the exposed account and emits accountsChanged.
// A nil signer exposes no account.
func (p *Provider) SwitchAccount(ctx context.Context, signer *KeySigner) {
	p.mu.Lock()
	p.signer = signer
	p.mu.Unlock()

	accounts, _ := p.Accounts(ctx)
	p.emit(ctx, walletevents.Event{Name: walletevents.AccountsChanged, Accounts: accounts})
}

// ChainID reads the node's chain id as 0x prefixed hex.
func (p *Provider) ChainID(ctx context.Context) (string, error) {
	var id *big.Int
	err := p.retry.Execute(ctx, func() error {
		var err error
		id, err = p.chain.ChainID(ctx)
		return err
	})
	if err != nil {
		return "", err
	}
	return "0x" + id.Text(16), nil
}

// poll reads the chain id once, emitting chainChanged when it moved.
func (p *Provider) poll(ctx context.Context) error {
	id, err := p.ChainID(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	previous := p.chainID
	p.chainID = id
	p.mu.Unlock()

	if previous != "" && previous != id {
		logger.Info(ctx, "wallet chain changed", "from", previous, "to", id)
		p.emit(ctx, walletevents.Event{Name: walletevents.ChainChanged, ChainID: id})
	}
	return nil
}

// Watch polls the node every interval until ctx is done. When the node
// stays unreachable after retries it emits disconnect and returns the error.
func (p *Provider) Watch(ctx context.Context, interval time.Duration) error {
	if err := p.poll(ctx); err != nil {
		return p.disconnect(ctx, err)
	}

	ticker := p.clock.Ticker(interval)
	defer ticker.Stop()

	return chflow.Each(ctx, ticker.C, func(time.Time) error {
		if err := p.poll(ctx); err != nil {
			return p.disconnect(ctx, err)
		}
		return nil
	})
}

func (p *Provider) disconnect(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	logger.Error(ctx, "wallet provider unreachable", "error", err)
	p.emit(ctx, walletevents.Event{Name: walletevents.Disconnect, Err: err})
	return err
}
