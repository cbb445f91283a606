package ethwallet

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gabapcia/zkwallet/internal/pkg/resilience/retry"
	"github.com/gabapcia/zkwallet/internal/walletevents"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var testAddress = common.HexToAddress("0x71562b71999873DB5b286dF957af199Ec94617F7")

// fakeChain answers ChainID from a script, repeating the last answer.
type fakeChain struct {
	mu      sync.Mutex
	answers []chainAnswer
	calls   atomic.Int32
}

type chainAnswer struct {
	id  int64
	err error
}

func (f *fakeChain) ChainID(context.Context) (*big.Int, error) {
	f.calls.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()

	a := f.answers[0]
	if len(f.answers) > 1 {
		f.answers = f.answers[1:]
	}
	if a.err != nil {
		return nil, a.err
	}
	return big.NewInt(a.id), nil
}

func newTestSigner(t *testing.T) *KeySigner {
	s, err := NewKeySigner(testKey)
	require.NoError(t, err)
	return s
}

func newTestProvider(t *testing.T, chain ChainReader, c clock.Clock) *Provider {
	return NewProvider(newTestSigner(t), chain,
		WithRetry(retry.New(retry.WithAttempts(1))),
		WithClock(c),
	)
}

func TestKeySigner(t *testing.T) {
	t.Run("should derive the address", func(t *testing.T) {
		s, err := NewKeySigner("0x" + testKey)
		require.NoError(t, err)
		assert.Equal(t, testAddress, s.Address())
	})

	t.Run("should reject malformed keys", func(t *testing.T) {
		_, err := NewKeySigner("not-a-key")
		assert.Error(t, err)
	})

	t.Run("should produce recoverable personal signatures", func(t *testing.T) {
		s := newTestSigner(t)
		msg := []byte("Access zkSync account.")

		sig, err := s.SignMessage(t.Context(), msg)
		require.NoError(t, err)
		require.Len(t, sig, crypto.SignatureLength)
		assert.Contains(t, []byte{27, 28}, sig[crypto.RecoveryIDOffset])

		sig[crypto.RecoveryIDOffset] -= 27
		pub, err := crypto.SigToPub(accounts.TextHash(msg), sig)
		require.NoError(t, err)
		assert.Equal(t, testAddress, crypto.PubkeyToAddress(*pub))
	})
}

func TestProvider_Accounts(t *testing.T) {
	p := newTestProvider(t, &fakeChain{}, clock.NewMock())

	accs, err := p.Accounts(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []common.Address{testAddress}, accs)

	signer, err := p.Signer(t.Context())
	require.NoError(t, err)
	assert.Equal(t, testAddress, signer.Address())

	var events []walletevents.Event
	p.On(walletevents.AccountsChanged, func(_ context.Context, e walletevents.Event) {
		events = append(events, e)
	})

	p.SwitchAccount(t.Context(), nil)

	accs, err = p.Accounts(t.Context())
	require.NoError(t, err)
	assert.Empty(t, accs)

	_, err = p.Signer(t.Context())
	assert.Error(t, err)

	require.Len(t, events, 1)
	assert.Empty(t, events[0].Accounts)
}

func TestProvider_On(t *testing.T) {
	p := newTestProvider(t, &fakeChain{}, clock.NewMock())

	var first, second int
	unsubscribe := p.On(walletevents.AccountsChanged, func(context.Context, walletevents.Event) { first++ })
	p.On(walletevents.AccountsChanged, func(context.Context, walletevents.Event) { second++ })
	p.On(walletevents.ChainChanged, func(context.Context, walletevents.Event) { t.Error("unexpected chainChanged") })

	p.SwitchAccount(t.Context(), newTestSigner(t))
	unsubscribe()
	p.SwitchAccount(t.Context(), newTestSigner(t))

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestProvider_Watch(t *testing.T) {
	t.Run("should emit chainChanged when the chain moves", func(t *testing.T) {
		chain := &fakeChain{answers: []chainAnswer{{id: 1}, {id: 1}, {id: 4}}}
		mockClock := clock.NewMock()
		p := newTestProvider(t, chain, mockClock)

		changed := make(chan walletevents.Event, 1)
		p.On(walletevents.ChainChanged, func(_ context.Context, e walletevents.Event) {
			changed <- e
		})

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- p.Watch(ctx, time.Second) }()

		assert.Eventually(t, func() bool {
			mockClock.Add(time.Second)
			return chain.calls.Load() >= 3
		}, time.Second, 5*time.Millisecond)

		select {
		case e := <-changed:
			assert.Equal(t, "0x4", e.ChainID)
		case <-time.After(time.Second):
			t.Fatal("chainChanged not emitted")
		}

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})

	t.Run("should emit disconnect when the node is unreachable", func(t *testing.T) {
		nodeErr := errors.New("dial tcp: connection refused")
		chain := &fakeChain{answers: []chainAnswer{{id: 1}, {err: nodeErr}}}
		mockClock := clock.NewMock()
		p := newTestProvider(t, chain, mockClock)

		var disconnects atomic.Int32
		p.On(walletevents.Disconnect, func(_ context.Context, e walletevents.Event) {
			assert.ErrorIs(t, e.Err, nodeErr)
			disconnects.Add(1)
		})

		done := make(chan error, 1)
		go func() { done <- p.Watch(t.Context(), time.Second) }()

		var err error
		assert.Eventually(t, func() bool {
			mockClock.Add(time.Second)
			select {
			case err = <-done:
				return true
			default:
				return false
			}
		}, time.Second, 5*time.Millisecond)

		assert.ErrorIs(t, err, nodeErr)
		assert.Equal(t, int32(1), disconnects.Load())
	})

	t.Run("should fail at once when the first read fails", func(t *testing.T) {
		nodeErr := errors.New("no route to host")
		p := newTestProvider(t, &fakeChain{answers: []chainAnswer{{err: nodeErr}}}, clock.NewMock())

		assert.ErrorIs(t, p.Watch(t.Context(), time.Second), nodeErr)
	})
}

func TestSelector(t *testing.T) {
	newSelector := func(t *testing.T, defaultWallet string) (*Selector, *Provider, *Provider) {
		hot := newTestProvider(t, &fakeChain{answers: []chainAnswer{{id: 1}}}, clock.NewMock())
		cold := newTestProvider(t, &fakeChain{answers: []chainAnswer{{err: errors.New("offline")}}}, clock.NewMock())
		return NewSelector(map[string]*Provider{"hot": hot, "cold": cold}, defaultWallet), hot, cold
	}

	t.Run("should select the requested wallet", func(t *testing.T) {
		s, _, cold := newSelector(t, "hot")

		ok, err := s.Select(t.Context(), "cold")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "cold", s.SelectedWallet())
		assert.Same(t, cold, s.Current())
	})

	t.Run("should fall back to the default wallet", func(t *testing.T) {
		s, hot, _ := newSelector(t, "hot")

		ok, err := s.Select(t.Context(), "")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Same(t, hot, s.Current())
	})

	t.Run("should pick the only wallet", func(t *testing.T) {
		p := newTestProvider(t, &fakeChain{answers: []chainAnswer{{id: 1}}}, clock.NewMock())
		s := NewSelector(map[string]*Provider{"solo": p}, "")

		ok, err := s.Select(t.Context(), "")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "solo", s.SelectedWallet())
	})

	t.Run("should decline unknown wallets", func(t *testing.T) {
		s, _, _ := newSelector(t, "")

		ok, err := s.Select(t.Context(), "trezor")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, s.Provider())
	})

	t.Run("should check the node of the selected wallet", func(t *testing.T) {
		s, _, _ := newSelector(t, "")

		ok, err := s.Check(t.Context())
		require.NoError(t, err)
		assert.False(t, ok, "nothing selected")

		_, _ = s.Select(t.Context(), "hot")
		ok, err = s.Check(t.Context())
		require.NoError(t, err)
		assert.True(t, ok)

		_, _ = s.Select(t.Context(), "cold")
		ok, err = s.Check(t.Context())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should forget the selection on reset", func(t *testing.T) {
		s, _, _ := newSelector(t, "hot")
		_, _ = s.Select(t.Context(), "")

		s.Reset()
		assert.Empty(t, s.SelectedWallet())
		assert.Nil(t, s.Provider())
	})

	t.Run("should forward events of the selected wallet only", func(t *testing.T) {
		s, hot, cold := newSelector(t, "")
		_, _ = s.Select(t.Context(), "hot")

		var received int
		unsubscribe := s.On(walletevents.AccountsChanged, func(context.Context, walletevents.Event) { received++ })

		hot.SwitchAccount(t.Context(), newTestSigner(t))
		cold.SwitchAccount(t.Context(), newTestSigner(t))
		assert.Equal(t, 1, received)

		unsubscribe()
		hot.SwitchAccount(t.Context(), newTestSigner(t))
		assert.Equal(t, 1, received)
	})
}
