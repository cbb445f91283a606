package account

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type SessionMock struct {
	mock.Mock
}

func NewSessionMock(t *testing.T) *SessionMock {
	m := &SessionMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SessionMock) CurrentAddress() (common.Address, bool) {
	args := m.Called()
	return args.Get(0).(common.Address), args.Bool(1)
}

func (m *SessionMock) Logout(ctx context.Context) {
	m.Called(ctx)
}

func (m *SessionMock) Reconnect(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}
