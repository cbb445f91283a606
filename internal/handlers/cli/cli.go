package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/gabapcia/zkwallet/internal/balance"
	"github.com/gabapcia/zkwallet/internal/fee"
	"github.com/gabapcia/zkwallet/internal/history"
	"github.com/gabapcia/zkwallet/internal/onboarding"
	"github.com/gabapcia/zkwallet/internal/rollup"
	"github.com/gabapcia/zkwallet/internal/session"
	"github.com/gabapcia/zkwallet/internal/withdrawal"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v3"
)

// Wallet is the connect and logout surface of the wallet controller.
type Wallet interface {
	Connect(ctx context.Context) bool
	Refresh(ctx context.Context, firstSelect bool) bool
	ForceRefresh(ctx context.Context)
	Logout(ctx context.Context)
	IsLoggedIn() bool
	IsAccountLocked() bool
	CurrentAddress() (common.Address, bool)
}

type Balances interface {
	RollupBalances(ctx context.Context, override *rollup.AccountState, force bool) ([]balance.TokenBalance, error)
	OnChainBalances(ctx context.Context, force bool) ([]balance.OnChainBalance, error)
}

type History interface {
	History(ctx context.Context, opts history.Options) ([]history.Transaction, error)
}

type Fees interface {
	Fee(ctx context.Context, req fee.Request) (fee.Quote, error)
}

type Withdrawal interface {
	ProcessingTime(ctx context.Context) (withdrawal.ProcessingTime, error)
}

// WatchFunc polls the selected wallet's node every interval until ctx is done.
type WatchFunc func(ctx context.Context, interval time.Duration) error

// Deps are the services the commands run against.
type Deps struct {
	Wallet       Wallet
	Selection    onboarding.SelectionStore
	Balances     Balances
	History      History
	Fees         Fees
	Withdrawal   Withdrawal
	Watch        WatchFunc
	PollInterval time.Duration
}

func newApp(deps Deps) *cli.Command {
	return &cli.Command{
		EnableShellCompletion: true,
		Name:                  "zkwallet",
		Description:           "Command-line client for a zkSync rollup wallet.",
		Usage:                 "zkwallet [command] [flags]",
		Commands: []*cli.Command{
			connectCommand(deps),
			balancesCommand(deps),
			historyCommand(deps),
			feeCommand(deps),
			withdrawalTimeCommand(deps),
			refreshCommand(deps),
			logoutCommand(deps),
			watchCommand(deps),
		},
	}
}

// Run executes the zkwallet CLI with the process arguments.
func Run(ctx context.Context, deps Deps) error {
	return newApp(deps).Run(ctx, os.Args)
}

// ensureSession restores the persisted wallet, or selects the default one
// when nothing was persisted.
func ensureSession(ctx context.Context, w Wallet) error {
	if w.Connect(ctx) || w.Refresh(ctx, true) {
		return nil
	}
	return session.ErrNotConnected
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
