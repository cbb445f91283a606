package wallet

import (
	"context"
	"math/big"
	"testing"

	"github.com/gabapcia/zkwallet/internal/account"
	"github.com/gabapcia/zkwallet/internal/balance"
	"github.com/gabapcia/zkwallet/internal/fee"
	"github.com/gabapcia/zkwallet/internal/history"
	"github.com/gabapcia/zkwallet/internal/infra/ethwallet"
	"github.com/gabapcia/zkwallet/internal/infra/storage/memory"
	"github.com/gabapcia/zkwallet/internal/onboarding"
	"github.com/gabapcia/zkwallet/internal/pkg/resilience/retry"
	"github.com/gabapcia/zkwallet/internal/pkg/types"
	"github.com/gabapcia/zkwallet/internal/rollup"
	"github.com/gabapcia/zkwallet/internal/rollup/mocks"
	"github.com/gabapcia/zkwallet/internal/session"
	"github.com/gabapcia/zkwallet/internal/tokens"
	tokenmocks "github.com/gabapcia/zkwallet/internal/tokens/mocks"
	"github.com/gabapcia/zkwallet/internal/withdrawal"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	firstKey  = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
	secondKey = "8f2a55949038a9610f50fb23b5883af3b4ecb3c3bb792cbcefbd1542c692be63"
)

type mainnet struct{}

func (mainnet) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

// switchFixture wires the controller to a real wallet selector, onboarding
// adapter and account state. Only the rollup side is mocked.
type switchFixture struct {
	first, second *ethwallet.KeySigner
	wallet        *ethwallet.Provider
	selector      *ethwallet.Selector
	selection     *memory.SelectionStore
	accounts      *account.State
	connector     *mocks.ConnectorMock
	provider      *mocks.ProviderMock
	transport     *mocks.TransportMock
	tokens        *tokenmocks.StoreMock
	sessions      *session.Holder
	controller    *Controller
}

func newSwitchFixture(t *testing.T) *switchFixture {
	t.Helper()

	first, err := ethwallet.NewKeySigner(firstKey)
	require.NoError(t, err)
	second, err := ethwallet.NewKeySigner(secondKey)
	require.NoError(t, err)

	f := &switchFixture{
		first:     first,
		second:    second,
		wallet:    ethwallet.NewProvider(first, mainnet{}, ethwallet.WithRetry(retry.New(retry.WithAttempts(1)))),
		selection: memory.NewSelectionStore(),
		accounts:  account.NewState(),
		connector: mocks.NewConnectorMock(t),
		provider:  mocks.NewProviderMock(t),
		transport: mocks.NewTransportMock(t),
		tokens:    tokenmocks.NewStoreMock(t),
		sessions:  session.NewHolder(),
	}
	f.selector = ethwallet.NewSelector(map[string]*ethwallet.Provider{"local": f.wallet}, "")

	f.transport.On("IsOpened").Return(true).Maybe()
	f.provider.On("Transport").Return(f.transport).Maybe()
	f.provider.On("Tokens", mock.Anything).Return(testTokens, nil).Maybe()
	f.connector.On("DefaultProvider", mock.Anything, "mainnet").Return(f.provider, nil).Maybe()
	f.tokens.On("RestrictedTokens").Return(types.NewSet[string]()).Maybe()
	f.tokens.On("TokenPrice", mock.Anything, "ETH").Return(2000.0, nil).Maybe()

	clk := clock.NewMock()
	caches := Caches{
		Balances:   balance.New(f.sessions, f.tokens, balance.WithClock(clk)),
		History:    history.New(f.sessions, &explorerStub{}, history.WithClock(clk)),
		Fees:       fee.New(f.sessions),
		Withdrawal: withdrawal.New(sourceStub{}, retry.New(retry.WithAttempts(1))),
	}

	ob := onboarding.New(f.selector, f.selection, f.accounts, f.connector, f.sessions, "mainnet")
	f.controller = New(ob, f.sessions, f.accounts, f.tokens, caches,
		WithEvents(f.selector, &notifier{}, "0x1"),
	)
	return f
}

// expectAccount makes the rollup side open a wallet for signer.
func (f *switchFixture) expectAccount(t *testing.T, signer *ethwallet.KeySigner) {
	t.Helper()

	address := signer.Address()
	state := rollup.AccountState{
		Address:   address,
		Committed: rollup.BalanceState{Balances: map[string]*big.Int{"ETH": big.NewInt(10)}},
		Verified:  rollup.BalanceState{Balances: map[string]*big.Int{"ETH": big.NewInt(10)}},
	}

	w := mocks.NewWalletMock(t)
	w.On("Address").Return(address).Maybe()
	w.On("AccountState", mock.Anything).Return(state, nil).Once()
	w.On("IsSigningKeySet", mock.Anything).Return(true, nil).Once()

	f.connector.On("WalletFromSigner", mock.Anything, signer, f.provider).Return(w, nil).Once()
	f.tokens.On("LoadTokensAndBalances", mock.Anything).Return(tokens.Catalogue{Tokens: testTokens}, nil).Once()
}

func TestController_AccountSwitch(t *testing.T) {
	t.Run("should resync the session on the same wallet", func(t *testing.T) {
		f := newSwitchFixture(t)

		f.expectAccount(t, f.first)
		require.True(t, f.controller.Refresh(t.Context(), true))
		require.Equal(t, "local", f.accounts.SelectedWallet())

		f.expectAccount(t, f.second)
		f.transport.On("Close").Return(nil).Once()
		f.tokens.On("Clear").Once()

		f.wallet.SwitchAccount(t.Context(), f.second)

		addr, ok := f.controller.CurrentAddress()
		require.True(t, ok)
		assert.Equal(t, f.second.Address(), addr)

		assert.True(t, f.controller.IsLoggedIn())
		assert.True(t, f.accounts.IsLoggedIn())
		assert.True(t, f.controller.Listener().Installed())
		assert.Equal(t, "local", f.selector.SelectedWallet())
		assert.Equal(t, "local", f.accounts.SelectedWallet())

		saved, err := f.selection.SelectedWallet(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "local", saved)
	})

	t.Run("should keep following account switches after a resync", func(t *testing.T) {
		f := newSwitchFixture(t)

		f.expectAccount(t, f.first)
		require.True(t, f.controller.Refresh(t.Context(), true))

		f.expectAccount(t, f.second)
		f.transport.On("Close").Return(nil).Twice()
		f.tokens.On("Clear").Twice()
		f.wallet.SwitchAccount(t.Context(), f.second)

		f.expectAccount(t, f.first)
		f.wallet.SwitchAccount(t.Context(), f.first)

		addr, ok := f.controller.CurrentAddress()
		require.True(t, ok)
		assert.Equal(t, f.first.Address(), addr)
	})

	t.Run("should log out when the new account cannot be opened", func(t *testing.T) {
		f := newSwitchFixture(t)

		f.expectAccount(t, f.first)
		require.True(t, f.controller.Refresh(t.Context(), true))

		f.connector.On("WalletFromSigner", mock.Anything, f.second, f.provider).Return(nil, assert.AnError).Once()
		f.transport.On("Close").Return(nil).Once()
		f.tokens.On("Clear").Twice()

		f.wallet.SwitchAccount(t.Context(), f.second)

		assert.False(t, f.controller.IsLoggedIn())
		assert.False(t, f.accounts.IsLoggedIn())
		assert.False(t, f.controller.Listener().Installed())
		assert.Empty(t, f.selector.SelectedWallet())

		_, err := f.selection.SelectedWallet(t.Context())
		assert.ErrorIs(t, err, onboarding.ErrNoSelection)
	})

	t.Run("should log out when the wallet exposes no account", func(t *testing.T) {
		f := newSwitchFixture(t)

		f.expectAccount(t, f.first)
		require.True(t, f.controller.Refresh(t.Context(), true))

		f.transport.On("Close").Return(nil).Once()
		f.tokens.On("Clear").Once()

		f.wallet.SwitchAccount(t.Context(), nil)

		assert.False(t, f.controller.IsLoggedIn())
		assert.Empty(t, f.selector.SelectedWallet())
	})
}
