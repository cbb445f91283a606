// Package mocks provides testify mocks for the tokens package.
package mocks

import (
	"context"

	"github.com/gabapcia/zkwallet/internal/pkg/types"
	"github.com/gabapcia/zkwallet/internal/tokens"

	"github.com/stretchr/testify/mock"
)

type TestingT interface {
	mock.TestingT
	Cleanup(func())
}

// StoreMock is a mock tokens.Store.
type StoreMock struct {
	mock.Mock
}

var _ tokens.Store = (*StoreMock)(nil)

func NewStoreMock(t TestingT) *StoreMock {
	m := &StoreMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *StoreMock) TokenPrice(ctx context.Context, symbol string) (float64, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(float64), args.Error(1)
}

func (m *StoreMock) RestrictedTokens() types.Set[string] {
	set, _ := m.Called().Get(0).(types.Set[string])
	return set
}

func (m *StoreMock) Clear() {
	m.Called()
}

func (m *StoreMock) LoadTokensAndBalances(ctx context.Context) (tokens.Catalogue, error) {
	args := m.Called(ctx)
	return args.Get(0).(tokens.Catalogue), args.Error(1)
}
