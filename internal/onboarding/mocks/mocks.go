// Package mocks provides testify mocks for the onboarding interfaces.
package mocks

import (
	"context"

	"github.com/gabapcia/zkwallet/internal/onboarding"
	"github.com/gabapcia/zkwallet/internal/rollup"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type TestingT interface {
	mock.TestingT
	Cleanup(func())
}

// WalletSelectorMock is a mock onboarding.WalletSelector.
type WalletSelectorMock struct {
	mock.Mock
}

var _ onboarding.WalletSelector = (*WalletSelectorMock)(nil)

func NewWalletSelectorMock(t TestingT) *WalletSelectorMock {
	m := &WalletSelectorMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *WalletSelectorMock) Select(ctx context.Context, walletID string) (bool, error) {
	args := m.Called(ctx, walletID)
	return args.Bool(0), args.Error(1)
}

func (m *WalletSelectorMock) Check(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *WalletSelectorMock) Reset() {
	m.Called()
}

func (m *WalletSelectorMock) SelectedWallet() string {
	return m.Called().String(0)
}

func (m *WalletSelectorMock) Provider() onboarding.EthereumProvider {
	p, _ := m.Called().Get(0).(onboarding.EthereumProvider)
	return p
}

// EthereumProviderMock is a mock onboarding.EthereumProvider.
type EthereumProviderMock struct {
	mock.Mock
}

var _ onboarding.EthereumProvider = (*EthereumProviderMock)(nil)

func NewEthereumProviderMock(t TestingT) *EthereumProviderMock {
	m := &EthereumProviderMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EthereumProviderMock) Accounts(ctx context.Context) ([]common.Address, error) {
	args := m.Called(ctx)
	accounts, _ := args.Get(0).([]common.Address)
	return accounts, args.Error(1)
}

func (m *EthereumProviderMock) Signer(ctx context.Context) (rollup.Signer, error) {
	args := m.Called(ctx)
	signer, _ := args.Get(0).(rollup.Signer)
	return signer, args.Error(1)
}

// SelectionStoreMock is a mock onboarding.SelectionStore.
type SelectionStoreMock struct {
	mock.Mock
}

var _ onboarding.SelectionStore = (*SelectionStoreMock)(nil)

func NewSelectionStoreMock(t TestingT) *SelectionStoreMock {
	m := &SelectionStoreMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SelectionStoreMock) SelectedWallet(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *SelectionStoreMock) SaveSelectedWallet(ctx context.Context, walletID string) error {
	return m.Called(ctx, walletID).Error(0)
}

func (m *SelectionStoreMock) RemoveSelectedWallet(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
