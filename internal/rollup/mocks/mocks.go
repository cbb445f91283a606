// Package mocks provides testify mocks for the rollup interfaces.
package mocks

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/gabapcia/zkwallet/internal/rollup"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

// TestingT is the subset of *testing.T the constructors need.
type TestingT interface {
	mock.TestingT
	Cleanup(func())
}

// ProviderMock is a mock rollup.Provider.
type ProviderMock struct {
	mock.Mock
}

var _ rollup.Provider = (*ProviderMock)(nil)

func NewProviderMock(t TestingT) *ProviderMock {
	m := &ProviderMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ProviderMock) AccountState(ctx context.Context, address common.Address) (rollup.AccountState, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(rollup.AccountState), args.Error(1)
}

func (m *ProviderMock) TransactionFee(ctx context.Context, op rollup.OpType, address common.Address, token string) (rollup.TxFee, error) {
	args := m.Called(ctx, op, address, token)
	return args.Get(0).(rollup.TxFee), args.Error(1)
}

func (m *ProviderMock) TransactionsBatchFee(ctx context.Context, ops []rollup.OpType, addresses []common.Address, token string) (*big.Int, error) {
	args := m.Called(ctx, ops, addresses, token)
	fee, _ := args.Get(0).(*big.Int)
	return fee, args.Error(1)
}

func (m *ProviderMock) Tokens(ctx context.Context) (rollup.TokenSet, error) {
	args := m.Called(ctx)
	tokens, _ := args.Get(0).(rollup.TokenSet)
	return tokens, args.Error(1)
}

func (m *ProviderMock) TokenPrice(ctx context.Context, token string) (float64, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(float64), args.Error(1)
}

func (m *ProviderMock) Transport() rollup.Transport {
	args := m.Called()
	return args.Get(0).(rollup.Transport)
}

// WalletMock is a mock rollup.Wallet.
type WalletMock struct {
	mock.Mock
}

var _ rollup.Wallet = (*WalletMock)(nil)

func NewWalletMock(t TestingT) *WalletMock {
	m := &WalletMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WalletMock) Address() common.Address {
	args := m.Called()
	return args.Get(0).(common.Address)
}

func (m *WalletMock) AccountState(ctx context.Context) (rollup.AccountState, error) {
	args := m.Called(ctx)
	return args.Get(0).(rollup.AccountState), args.Error(1)
}

func (m *WalletMock) EthereumBalance(ctx context.Context, token string) (*big.Int, error) {
	args := m.Called(ctx, token)
	balance, _ := args.Get(0).(*big.Int)
	return balance, args.Error(1)
}

func (m *WalletMock) IsSigningKeySet(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// ConnectorMock is a mock rollup.Connector.
type ConnectorMock struct {
	mock.Mock
}

var _ rollup.Connector = (*ConnectorMock)(nil)

func NewConnectorMock(t TestingT) *ConnectorMock {
	m := &ConnectorMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ConnectorMock) DefaultProvider(ctx context.Context, network string) (rollup.Provider, error) {
	args := m.Called(ctx, network)
	p, _ := args.Get(0).(rollup.Provider)
	return p, args.Error(1)
}

func (m *ConnectorMock) WalletFromSigner(ctx context.Context, signer rollup.Signer, provider rollup.Provider) (rollup.Wallet, error) {
	args := m.Called(ctx, signer, provider)
	w, _ := args.Get(0).(rollup.Wallet)
	return w, args.Error(1)
}

// TransportMock is a mock rollup.Transport.
type TransportMock struct {
	mock.Mock
}

var _ rollup.Transport = (*TransportMock)(nil)

func NewTransportMock(t TestingT) *TransportMock {
	m := &TransportMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *TransportMock) Fetch(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	args := m.Called(ctx, method, params)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *TransportMock) IsOpened() bool {
	return m.Called().Bool(0)
}

func (m *TransportMock) Open(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *TransportMock) Close() error {
	return m.Called().Error(0)
}

// SignerMock is a mock rollup.Signer.
type SignerMock struct {
	mock.Mock
}

var _ rollup.Signer = (*SignerMock)(nil)

func NewSignerMock(t TestingT) *SignerMock {
	m := &SignerMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SignerMock) Address() common.Address {
	return m.Called().Get(0).(common.Address)
}

func (m *SignerMock) SignMessage(ctx context.Context, msg []byte) ([]byte, error) {
	args := m.Called(ctx, msg)
	sig, _ := args.Get(0).([]byte)
	return sig, args.Error(1)
}
