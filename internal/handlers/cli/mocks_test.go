package cli

import (
	"context"
	"testing"

	"github.com/gabapcia/zkwallet/internal/balance"
	"github.com/gabapcia/zkwallet/internal/fee"
	"github.com/gabapcia/zkwallet/internal/history"
	"github.com/gabapcia/zkwallet/internal/rollup"
	"github.com/gabapcia/zkwallet/internal/withdrawal"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
)

func expectations(t *testing.T, m *mock.Mock) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

type WalletMock struct{ mock.Mock }

func NewWalletMock(t *testing.T) *WalletMock {
	m := &WalletMock{}
	expectations(t, &m.Mock)
	return m
}

func (m *WalletMock) Connect(ctx context.Context) bool { return m.Called(ctx).Bool(0) }

func (m *WalletMock) Refresh(ctx context.Context, firstSelect bool) bool {
	return m.Called(ctx, firstSelect).Bool(0)
}

func (m *WalletMock) ForceRefresh(ctx context.Context) { m.Called(ctx) }

func (m *WalletMock) Logout(ctx context.Context) { m.Called(ctx) }

func (m *WalletMock) IsLoggedIn() bool { return m.Called().Bool(0) }

func (m *WalletMock) IsAccountLocked() bool { return m.Called().Bool(0) }

func (m *WalletMock) CurrentAddress() (common.Address, bool) {
	args := m.Called()
	return args.Get(0).(common.Address), args.Bool(1)
}

type BalancesMock struct{ mock.Mock }

func NewBalancesMock(t *testing.T) *BalancesMock {
	m := &BalancesMock{}
	expectations(t, &m.Mock)
	return m
}

func (m *BalancesMock) RollupBalances(ctx context.Context, override *rollup.AccountState, force bool) ([]balance.TokenBalance, error) {
	args := m.Called(ctx, override, force)
	list, _ := args.Get(0).([]balance.TokenBalance)
	return list, args.Error(1)
}

func (m *BalancesMock) OnChainBalances(ctx context.Context, force bool) ([]balance.OnChainBalance, error) {
	args := m.Called(ctx, force)
	list, _ := args.Get(0).([]balance.OnChainBalance)
	return list, args.Error(1)
}

type HistoryMock struct{ mock.Mock }

func NewHistoryMock(t *testing.T) *HistoryMock {
	m := &HistoryMock{}
	expectations(t, &m.Mock)
	return m
}

func (m *HistoryMock) History(ctx context.Context, opts history.Options) ([]history.Transaction, error) {
	args := m.Called(ctx, opts)
	txs, _ := args.Get(0).([]history.Transaction)
	return txs, args.Error(1)
}

type FeesMock struct{ mock.Mock }

func NewFeesMock(t *testing.T) *FeesMock {
	m := &FeesMock{}
	expectations(t, &m.Mock)
	return m
}

func (m *FeesMock) Fee(ctx context.Context, req fee.Request) (fee.Quote, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(fee.Quote), args.Error(1)
}

type WithdrawalMock struct{ mock.Mock }

func NewWithdrawalMock(t *testing.T) *WithdrawalMock {
	m := &WithdrawalMock{}
	expectations(t, &m.Mock)
	return m
}

func (m *WithdrawalMock) ProcessingTime(ctx context.Context) (withdrawal.ProcessingTime, error) {
	args := m.Called(ctx)
	return args.Get(0).(withdrawal.ProcessingTime), args.Error(1)
}
