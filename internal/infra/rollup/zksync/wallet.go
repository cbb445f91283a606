package zksync

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/gabapcia/zkwallet/internal/rollup"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// emptyPubKeyHash is the signing key hash of an account that never set one.
const emptyPubKeyHash = "sync:0000000000000000000000000000000000000000"

const erc20ABI = `[{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"}]`

var erc20 = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

// EthClient is the part of ethclient.Client used to read layer-1 balances.
type EthClient interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type wallet struct {
	signer   rollup.Signer
	provider rollup.Provider
	eth      EthClient
}

var _ rollup.Wallet = (*wallet)(nil)

func (w *wallet) Address() common.Address {
	return w.signer.Address()
}

func (w *wallet) AccountState(ctx context.Context) (rollup.AccountState, error) {
	return w.provider.AccountState(ctx, w.Address())
}

// EthereumBalance reads the latest layer-1 balance: the account balance for
// ETH and balanceOf on the token contract otherwise.
func (w *wallet) EthereumBalance(ctx context.Context, token string) (*big.Int, error) {
	tokens, err := w.provider.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	t, err := tokens.Resolve(token)
	if err != nil {
		return nil, err
	}

	if t.IsETH() {
		return w.eth.BalanceAt(ctx, w.Address(), nil)
	}

	data, err := erc20.Pack("balanceOf", w.Address())
	if err != nil {
		return nil, err
	}

	out, err := w.eth.CallContract(ctx, ethereum.CallMsg{To: &t.Address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("balanceOf %s: %w", t.Symbol, err)
	}

	values, err := erc20.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("balanceOf %s: %w", t.Symbol, err)
	}

	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf %s: unexpected result %T", t.Symbol, values[0])
	}
	return balance, nil
}

// IsSigningKeySet reports whether the committed state carries a signing key hash.
func (w *wallet) IsSigningKeySet(ctx context.Context) (bool, error) {
	state, err := w.AccountState(ctx)
	if err != nil {
		return false, err
	}

	hash := state.Committed.PubKeyHash
	return hash != "" && hash != emptyPubKeyHash, nil
}
