package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gabapcia/zkwallet/internal/account"
	"github.com/gabapcia/zkwallet/internal/balance"
	"github.com/gabapcia/zkwallet/internal/config"
	"github.com/gabapcia/zkwallet/internal/fee"
	"github.com/gabapcia/zkwallet/internal/handlers/cli"
	"github.com/gabapcia/zkwallet/internal/history"
	"github.com/gabapcia/zkwallet/internal/infra/ethwallet"
	"github.com/gabapcia/zkwallet/internal/infra/explorer"
	"github.com/gabapcia/zkwallet/internal/infra/rollup/zksync"
	"github.com/gabapcia/zkwallet/internal/infra/storage/memory"
	"github.com/gabapcia/zkwallet/internal/infra/storage/redis"
	"github.com/gabapcia/zkwallet/internal/onboarding"
	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/pkg/resilience/retry"
	"github.com/gabapcia/zkwallet/internal/pkg/telemetry"
	transporthttp "github.com/gabapcia/zkwallet/internal/pkg/transport/http"
	"github.com/gabapcia/zkwallet/internal/session"
	"github.com/gabapcia/zkwallet/internal/tokens"
	"github.com/gabapcia/zkwallet/internal/wallet"
	"github.com/gabapcia/zkwallet/internal/walletevents"
	"github.com/gabapcia/zkwallet/internal/withdrawal"

	"github.com/ethereum/go-ethereum/ethclient"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	retryLog := retry.WithOnRetry(func(attempt uint, err error) {
		logger.Warn(ctx, "retrying request", "attempt", attempt+1, "error", err)
	})

	httpClient := transporthttp.NewClient(
		transporthttp.WithTimeout(cfg.HTTP.Timeout),
		transporthttp.WithRetryMax(cfg.HTTP.RetryMax),
		transporthttp.WithRequestLogging(),
	)

	eth, err := ethclient.DialContext(ctx, cfg.EthereumRPC)
	if err != nil {
		return fmt.Errorf("dial ethereum rpc: %w", err)
	}
	defer eth.Close()

	wallets := make(map[string]*ethwallet.Provider, len(cfg.Wallets))
	for id, key := range cfg.Wallets {
		signer, err := ethwallet.NewKeySigner(key)
		if err != nil {
			return fmt.Errorf("wallet %s: %w", id, err)
		}
		wallets[id] = ethwallet.NewProvider(signer, eth, ethwallet.WithRetry(retry.New(retryLog)))
	}
	selector := ethwallet.NewSelector(wallets, cfg.DefaultWallet)

	var selection onboarding.SelectionStore = memory.NewSelectionStore()
	if cfg.Redis.Addr != "" {
		store, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB, redis.WithNamespace(cfg.Network))
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer store.Close()
		selection = store
	}

	var connectorOpts []zksync.ConnectorOption
	if cfg.RollupEndpoint != "" {
		connectorOpts = append(connectorOpts, zksync.WithEndpoint(cfg.Network, cfg.RollupEndpoint))
	}
	connector := zksync.NewConnector(eth, httpClient, connectorOpts...)

	apiHost := cfg.APIHost
	if apiHost == "" {
		apiHost = explorer.DefaultHosts[cfg.Network]
	}
	if apiHost == "" {
		return fmt.Errorf("no API host known for network %q", cfg.Network)
	}
	api := explorer.NewClient(apiHost, httpClient)

	sessions := session.NewHolder()
	accounts := account.NewState()
	accounts.OnLogout(func(ctx context.Context) {
		logger.Info(ctx, "wallet logged out")
	})

	tokenStore := tokens.New(sessions,
		tokens.WithRestrictedTokens(cfg.RestrictedTokens...),
		tokens.WithPriceWindow(cfg.Cache.PriceWindow),
	)

	caches := wallet.Caches{
		Balances: balance.New(sessions, tokenStore, balance.WithWindow(cfg.Cache.BalanceWindow)),
		History: history.New(sessions, api,
			history.WithWindow(cfg.Cache.HistoryWindow),
			history.WithRetryDelay(cfg.Cache.HistoryRetryDelay),
			history.WithPageSize(cfg.Cache.HistoryPageSize),
		),
		Fees:       fee.New(sessions),
		Withdrawal: withdrawal.New(api, retry.New(retryLog)),
	}

	adapter := onboarding.New(selector, selection, accounts, connector, sessions, cfg.Network)
	controller := wallet.New(adapter, sessions, accounts, tokenStore, caches,
		wallet.WithEvents(selector, walletevents.LogNotifier{}, cfg.ExpectedChainID),
	)

	return cli.Run(ctx, cli.Deps{
		Wallet:     controller,
		Selection:  selection,
		Balances:   caches.Balances,
		History:    caches.History,
		Fees:       caches.Fees,
		Withdrawal: caches.Withdrawal,
		Watch: func(ctx context.Context, interval time.Duration) error {
			p := selector.Current()
			if p == nil {
				return session.ErrNotConnected
			}
			return p.Watch(ctx, interval)
		},
		PollInterval: cfg.PollInterval,
	})
}
