// Package config loads the application settings from ZKWALLET_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/gabapcia/zkwallet/internal/pkg/validator"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. ZKWALLET_NETWORK or
// ZKWALLET_REDIS_ADDR for nested groups.
const Prefix = "ZKWALLET"

type Telemetry struct {
	Enabled     bool   `envconfig:"ENABLED" default:"false"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"zkwallet" validate:"required"`
}

type Redis struct {
	// Addr is empty when the selection lives in memory only.
	Addr     string `envconfig:"ADDR" validate:"omitempty,hostname_port"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0" validate:"gte=0"`
}

type HTTP struct {
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"10s" validate:"gt=0"`
	RetryMax int           `envconfig:"RETRY_MAX" default:"2" validate:"gte=0"`
}

type Cache struct {
	BalanceWindow     time.Duration `envconfig:"BALANCE_WINDOW" default:"30s" validate:"gt=0"`
	HistoryWindow     time.Duration `envconfig:"HISTORY_WINDOW" default:"30s" validate:"gt=0"`
	HistoryRetryDelay time.Duration `envconfig:"HISTORY_RETRY_DELAY" default:"15s" validate:"gt=0"`
	HistoryPageSize   int           `envconfig:"HISTORY_PAGE_SIZE" default:"25" validate:"gt=0,lte=100"`
	PriceWindow       time.Duration `envconfig:"PRICE_WINDOW" default:"60s" validate:"gt=0"`
}

// Config is the full application configuration.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Network names the rollup network, e.g. mainnet or rinkeby.
	Network string `envconfig:"NETWORK" default:"mainnet" validate:"required"`

	// RollupEndpoint overrides the JSON-RPC endpoint of Network.
	RollupEndpoint string `envconfig:"ROLLUP_ENDPOINT" validate:"omitempty,url"`

	// APIHost overrides the REST API host of Network.
	APIHost string `envconfig:"API_HOST" validate:"omitempty,url"`

	EthereumRPC     string `envconfig:"ETHEREUM_RPC" validate:"required,url"`
	ExpectedChainID string `envconfig:"CHAIN_ID" default:"1" validate:"required"`

	// Wallets maps wallet ids to hex private keys, as "hot:0xabc...,cold:0xdef...".
	Wallets       map[string]string `envconfig:"WALLETS" validate:"required,min=1,dive,keys,required,endkeys,required"`
	DefaultWallet string            `envconfig:"DEFAULT_WALLET"`

	RestrictedTokens []string      `envconfig:"RESTRICTED_TOKENS" validate:"dive,token_symbol"`
	PollInterval     time.Duration `envconfig:"POLL_INTERVAL" default:"15s" validate:"gt=0"`

	Telemetry Telemetry `envconfig:"TELEMETRY"`
	Redis     Redis     `envconfig:"REDIS"`
	HTTP      HTTP      `envconfig:"HTTP"`
	Cache     Cache     `envconfig:"CACHE"`
}

// Load reads and validates the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	if cfg.DefaultWallet != "" {
		if _, ok := cfg.Wallets[cfg.DefaultWallet]; !ok {
			return Config{}, fmt.Errorf("%w: default wallet %q is not configured", validator.ErrValidationFailed, cfg.DefaultWallet)
		}
	}

	return cfg, nil
}
