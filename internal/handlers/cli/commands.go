package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/gabapcia/zkwallet/internal/fee"
	"github.com/gabapcia/zkwallet/internal/history"

	"github.com/urfave/cli/v3"
)

type status struct {
	Address  string `json:"address"`
	LoggedIn bool   `json:"loggedIn"`
	Locked   bool   `json:"locked"`
}

func currentStatus(w Wallet) status {
	address, _ := w.CurrentAddress()
	return status{
		Address:  address.Hex(),
		LoggedIn: w.IsLoggedIn(),
		Locked:   w.IsAccountLocked(),
	}
}

// connectCommand selects a wallet and opens a session.
//
// Usage example:
//
//	zkwallet connect --wallet hot
func connectCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:        "connect",
		Description: "Connect a wallet and open a rollup session.",
		Usage:       "Restores the last selected wallet, or the one given with --wallet.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "wallet",
				Usage: "Wallet id to select",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if walletID := c.String("wallet"); walletID != "" {
				if err := deps.Selection.SaveSelectedWallet(ctx, walletID); err != nil {
					return err
				}
			}

			if err := ensureSession(ctx, deps.Wallet); err != nil {
				return err
			}
			return printJSON(c.Root().Writer, currentStatus(deps.Wallet))
		},
	}
}

// balancesCommand prints rollup balances, or layer-1 balances with --onchain.
//
// Usage example:
//
//	zkwallet balances --onchain --force
func balancesCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:        "balances",
		Description: "Show the balances of the connected wallet.",
		Usage:       "Prints rollup balances, or Ethereum balances with --onchain.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "onchain",
				Usage: "Show Ethereum balances instead of rollup balances",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Bypass the cache",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := ensureSession(ctx, deps.Wallet); err != nil {
				return err
			}

			if c.Bool("onchain") {
				list, err := deps.Balances.OnChainBalances(ctx, c.Bool("force"))
				if err != nil {
					return err
				}
				return printJSON(c.Root().Writer, list)
			}

			list, err := deps.Balances.RollupBalances(ctx, nil, c.Bool("force"))
			if err != nil {
				return err
			}
			return printJSON(c.Root().Writer, list)
		},
	}
}

// historyCommand prints a page of the transaction history.
//
// Usage example:
//
//	zkwallet history --offset 25
func historyCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:        "history",
		Description: "Show the transaction history of the connected wallet.",
		Usage:       "Prints one page of transactions starting at --offset.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Number of transactions to skip",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Bypass the cache",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := ensureSession(ctx, deps.Wallet); err != nil {
				return err
			}

			txs, err := deps.History.History(ctx, history.Options{
				Force:  c.Bool("force"),
				Offset: int(c.Int("offset")),
			})
			if err != nil {
				return err
			}
			return printJSON(c.Root().Writer, txs)
		},
	}
}

// feeCommand quotes a transfer or withdrawal fee.
//
// Usage example:
//
//	zkwallet fee --type withdraw --address 0xABC... --symbol USDC --fee-symbol ETH
func feeCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:        "fee",
		Description: "Quote the fee of a transfer or withdrawal.",
		Usage:       "Prints the normal fee, and the fast fee for withdrawals.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "Destination address",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "symbol",
				Usage:    "Token being moved",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "fee-symbol",
				Usage: "Token paying the fee (defaults to --symbol)",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Operation type: transfer or withdraw",
				Value: string(fee.TypeTransfer),
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := ensureSession(ctx, deps.Wallet); err != nil {
				return err
			}

			feeSymbol := c.String("fee-symbol")
			if feeSymbol == "" {
				feeSymbol = c.String("symbol")
			}

			quote, err := deps.Fees.Fee(ctx, fee.Request{
				Address:   c.String("address"),
				Symbol:    c.String("symbol"),
				FeeSymbol: feeSymbol,
				Type:      fee.Type(c.String("type")),
			})
			if err != nil {
				return err
			}
			return printJSON(c.Root().Writer, quote)
		},
	}
}

// withdrawalTimeCommand prints the expected withdrawal processing times.
func withdrawalTimeCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:        "withdrawal-time",
		Description: "Show how long withdrawals take to reach Ethereum.",
		Usage:       "Prints the normal and fast withdrawal processing times.",
		Action: func(ctx context.Context, c *cli.Command) error {
			t, err := deps.Withdrawal.ProcessingTime(ctx)
			if err != nil {
				return err
			}
			return printJSON(c.Root().Writer, map[string]string{
				"normal": t.NormalDuration().String(),
				"fast":   t.FastDuration().String(),
			})
		},
	}
}

// refreshCommand refetches balances and history bypassing every cache.
func refreshCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:        "refresh",
		Description: "Refetch balances and history of the connected wallet.",
		Usage:       "Bypasses every cache. Individual failures are logged.",
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := ensureSession(ctx, deps.Wallet); err != nil {
				return err
			}

			deps.Wallet.ForceRefresh(ctx)
			return printJSON(c.Root().Writer, currentStatus(deps.Wallet))
		},
	}
}

// logoutCommand ends the session and forgets the selected wallet.
func logoutCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:        "logout",
		Description: "Disconnect the wallet and clear every cache.",
		Usage:       "Forgets the selected wallet.",
		Action: func(ctx context.Context, c *cli.Command) error {
			deps.Wallet.Logout(ctx)
			return nil
		},
	}
}

// watchCommand keeps the session open and reacts to wallet events.
//
// The process runs until it receives an interrupt (SIGINT or SIGTERM) or the
// wallet's node becomes unreachable.
func watchCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:        "watch",
		Description: "Connect and follow network and account changes of the wallet.",
		Usage:       "Runs until Ctrl+C or until the wallet disconnects.",
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := ensureSession(ctx, deps.Wallet); err != nil {
				return err
			}

			err := deps.Watch(ctx, deps.PollInterval)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
