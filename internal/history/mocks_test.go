package history

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

type ExplorerMock struct {
	mock.Mock
	calls atomic.Int32
}

func NewExplorerMock(t *testing.T) *ExplorerMock {
	m := &ExplorerMock{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ExplorerMock) History(ctx context.Context, address common.Address, offset, limit int) ([]Transaction, error) {
	m.calls.Add(1)
	args := m.Called(ctx, address, offset, limit)
	txs, _ := args.Get(0).([]Transaction)
	return txs, args.Error(1)
}

// Calls reports how many times History ran, including calls from timers.
func (m *ExplorerMock) Calls() int {
	return int(m.calls.Load())
}
