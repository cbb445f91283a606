package zksync

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"
	"github.com/gabapcia/zkwallet/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/zkwallet/internal/rollup"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hashicorp/go-retryablehttp"
)

// ErrSignerMismatch is returned when a signer's signature does not recover
// to the address it reports.
var ErrSignerMismatch = errors.New("signer does not control its address")

// accessMessage is the message signed to open a zkSync account.
const accessMessage = "Access zkSync account.\n\nOnly sign this message for a trusted client!"

// DefaultEndpoints maps network names to the public JSON-RPC endpoints.
var DefaultEndpoints = map[string]string{
	"mainnet":   "wss://api.zksync.io/jsrpc-ws",
	"rinkeby":   "wss://rinkeby-api.zksync.io/jsrpc-ws",
	"ropsten":   "wss://ropsten-api.zksync.io/jsrpc-ws",
	"localhost": "ws://127.0.0.1:3031",
}

type connector struct {
	eth        EthClient
	httpClient *retryablehttp.Client
	endpoints  map[string]string
}

var _ rollup.Connector = (*connector)(nil)

// ConnectorOption configures the connector.
type ConnectorOption func(*connector)

// WithEndpoint points network at endpoint, which may be http(s) or ws(s).
func WithEndpoint(network, endpoint string) ConnectorOption {
	return func(c *connector) {
		c.endpoints[network] = endpoint
	}
}

// NewConnector returns a Connector reading layer-1 balances through eth and
// sending http JSON-RPC requests through httpClient.
func NewConnector(eth EthClient, httpClient *retryablehttp.Client, opts ...ConnectorOption) *connector {
	c := &connector{
		eth:        eth,
		httpClient: httpClient,
		endpoints:  make(map[string]string, len(DefaultEndpoints)),
	}
	for network, endpoint := range DefaultEndpoints {
		c.endpoints[network] = endpoint
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultProvider connects to the endpoint of network and loads its token set.
func (c *connector) DefaultProvider(ctx context.Context, network string) (rollup.Provider, error) {
	endpoint, ok := c.endpoints[network]
	if !ok {
		return nil, fmt.Errorf("%w: %s", rollup.ErrUnknownNetwork, network)
	}

	conn, err := jsonrpc.Dial(ctx, endpoint, c.httpClient)
	if err != nil {
		return nil, err
	}

	p := NewProvider(conn)
	if _, err := p.Tokens(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug(ctx, "rollup provider connected", "network", network, "endpoint", endpoint)
	return p, nil
}

// WalletFromSigner binds signer to provider after checking that the signer
// holds the key of the address it reports.
func (c *connector) WalletFromSigner(ctx context.Context, signer rollup.Signer, provider rollup.Provider) (rollup.Wallet, error) {
	if err := verifySigner(ctx, signer); err != nil {
		return nil, err
	}

	return &wallet{
		signer:   signer,
		provider: provider,
		eth:      c.eth,
	}, nil
}

func verifySigner(ctx context.Context, signer rollup.Signer) error {
	sig, err := signer.SignMessage(ctx, []byte(accessMessage))
	if err != nil {
		return fmt.Errorf("sign access message: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature is %d bytes", ErrSignerMismatch, len(sig))
	}

	normalized := append([]byte{}, sig...)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(accessMessage)), normalized)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSignerMismatch, err)
	}

	if crypto.PubkeyToAddress(*pub) != signer.Address() {
		return ErrSignerMismatch
	}
	return nil
}
