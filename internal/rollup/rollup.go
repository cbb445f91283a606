// Package rollup describes the Layer-2 rollup client the wallet talks to:
// a Connector that builds providers and wallets, the Provider queries
// (fees, tokens, prices) and the Wallet queries (account state, on-chain
// balances). Implementations live under internal/infra/rollup.
package rollup

import (
	"context"
	"errors"
	"math/big"

	"github.com/gabapcia/zkwallet/internal/pkg/transport/jsonrpc"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUnknownToken is returned when a token symbol or address is not in the
	// provider's token set.
	ErrUnknownToken = errors.New("unknown token")

	// ErrUnknownNetwork is returned by a Connector asked for a network it has
	// no endpoint for.
	ErrUnknownNetwork = errors.New("unknown network")
)

// OpType names a rollup operation for fee estimation.
type OpType string

const (
	Transfer     OpType = "Transfer"
	Withdraw     OpType = "Withdraw"
	FastWithdraw OpType = "FastWithdraw"
)

// Transport is the connection a Provider sends its requests over.
type Transport = jsonrpc.Conn

// BalanceState is one side (committed or verified) of an account state.
type BalanceState struct {
	Balances   map[string]*big.Int // amounts in base units keyed by token symbol
	Nonce      uint64
	PubKeyHash string
}

// AccountState is the rollup view of an account.
type AccountState struct {
	Address   common.Address
	ID        *uint64 // nil until the account has been registered on the rollup
	Committed BalanceState
	Verified  BalanceState
}

// TxFee is the breakdown returned for a single operation. Only TotalFee is
// charged; the rest is informational.
type TxFee struct {
	FeeType     string
	GasTxAmount *big.Int
	GasPriceWei *big.Int
	GasFee      *big.Int
	ZkpFee      *big.Int
	TotalFee    *big.Int
}

// Signer is the Ethereum account that owns a rollup wallet.
type Signer interface {
	Address() common.Address

	// SignMessage signs msg as an Ethereum personal message.
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)
}

// Provider queries the rollup network.
type Provider interface {
	// AccountState fetches the committed and verified state of address.
	AccountState(ctx context.Context, address common.Address) (AccountState, error)

	// TransactionFee quotes a single operation sent to address and paid in token.
	TransactionFee(ctx context.Context, op OpType, address common.Address, token string) (TxFee, error)

	// TransactionsBatchFee quotes the total fee, in base units of token, for a
	// batch where ops[i] targets addresses[i].
	TransactionsBatchFee(ctx context.Context, ops []OpType, addresses []common.Address, token string) (*big.Int, error)

	// Tokens returns the token catalogue supported by the network.
	Tokens(ctx context.Context) (TokenSet, error)

	// TokenPrice returns the USD price of token.
	TokenPrice(ctx context.Context, token string) (float64, error)

	Transport() Transport
}

// Wallet is a rollup account bound to a Signer.
type Wallet interface {
	Address() common.Address
	AccountState(ctx context.Context) (AccountState, error)

	// EthereumBalance returns the layer-1 balance of token held by the wallet address.
	EthereumBalance(ctx context.Context, token string) (*big.Int, error)

	// IsSigningKeySet reports whether the account has registered a rollup
	// signing key. Until it does the account cannot send transactions.
	IsSigningKeySet(ctx context.Context) (bool, error)
}

// Connector builds providers and wallets.
type Connector interface {
	DefaultProvider(ctx context.Context, network string) (Provider, error)
	WalletFromSigner(ctx context.Context, signer Signer, provider Provider) (Wallet, error)
}

// RestoreConnection reopens the provider transport when it has been closed.
func RestoreConnection(ctx context.Context, p Provider) error {
	t := p.Transport()
	if t.IsOpened() {
		return nil
	}

	return t.Open(ctx)
}
