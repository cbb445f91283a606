// Package mocks provides testify mocks for the account package.
package mocks

import (
	"context"

	"github.com/gabapcia/zkwallet/internal/account"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type TestingT interface {
	mock.TestingT
	Cleanup(func())
}

// StoreMock is a mock account.Store.
type StoreMock struct {
	mock.Mock
}

var _ account.Store = (*StoreMock)(nil)

func NewStoreMock(t TestingT) *StoreMock {
	m := &StoreMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *StoreMock) SetSelectedWallet(walletID string) {
	m.Called(walletID)
}

func (m *StoreMock) SetLoggedIn(loggedIn bool) {
	m.Called(loggedIn)
}

func (m *StoreMock) SetLoadingHint(hint account.LoadingHint) {
	m.Called(hint)
}

func (m *StoreMock) Logout(ctx context.Context) {
	m.Called(ctx)
}

// ChangeHandlerMock is a mock account.ChangeHandler.
type ChangeHandlerMock struct {
	mock.Mock
}

var _ account.ChangeHandler = (*ChangeHandlerMock)(nil)

func NewChangeHandlerMock(t TestingT) *ChangeHandlerMock {
	m := &ChangeHandlerMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ChangeHandlerMock) NetworkChanged(ctx context.Context, chainID string) {
	m.Called(ctx, chainID)
}

func (m *ChangeHandlerMock) AccountsChanged(ctx context.Context, accounts []common.Address) {
	m.Called(ctx, accounts)
}
