// Package zksync implements the rollup interfaces against the zkSync v1
// JSON-RPC API, with layer-1 balances read through an Ethereum client.
package zksync

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"sync"

	"github.com/gabapcia/zkwallet/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/zkwallet/internal/rollup"

	"github.com/ethereum/go-ethereum/common"
)

const (
	methodAccountInfo   = "account_info"
	methodTxFee         = "get_tx_fee"
	methodBatchFeeInWei = "get_txs_batch_fee_in_wei"
	methodTokens        = "tokens"
	methodTokenPrice    = "get_token_price"
)

type provider struct {
	transport jsonrpc.Conn

	mu     sync.Mutex
	tokens rollup.TokenSet
}

var _ rollup.Provider = (*provider)(nil)

// NewProvider returns a Provider sending requests over conn.
func NewProvider(conn jsonrpc.Conn) *provider {
	return &provider{transport: conn}
}

func (p *provider) Transport() rollup.Transport {
	return p.transport
}

func (p *provider) call(ctx context.Context, out any, method string, params ...any) error {
	raw, err := p.transport.Fetch(ctx, method, params...)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	return nil
}

func (p *provider) AccountState(ctx context.Context, address common.Address) (rollup.AccountState, error) {
	var info accountInfo
	if err := p.call(ctx, &info, methodAccountInfo, address.Hex()); err != nil {
		return rollup.AccountState{}, err
	}

	state := info.toDomain()
	state.Address = address
	return state, nil
}

func (p *provider) TransactionFee(ctx context.Context, op rollup.OpType, address common.Address, token string) (rollup.TxFee, error) {
	var fee txFee
	if err := p.call(ctx, &fee, methodTxFee, string(op), address.Hex(), token); err != nil {
		return rollup.TxFee{}, err
	}
	return fee.toDomain(), nil
}

func (p *provider) TransactionsBatchFee(ctx context.Context, ops []rollup.OpType, addresses []common.Address, token string) (*big.Int, error) {
	if len(ops) != len(addresses) {
		return nil, fmt.Errorf("%s: %d operations for %d addresses", methodBatchFeeInWei, len(ops), len(addresses))
	}

	opNames := make([]string, len(ops))
	for i, op := range ops {
		opNames[i] = string(op)
	}

	hexAddresses := make([]string, len(addresses))
	for i, addr := range addresses {
		hexAddresses[i] = addr.Hex()
	}

	var fee batchFee
	if err := p.call(ctx, &fee, methodBatchFeeInWei, opNames, hexAddresses, token); err != nil {
		return nil, err
	}
	return fee.TotalFee.value(), nil
}

// Tokens returns the token set, fetching it on first use.
func (p *provider) Tokens(ctx context.Context) (rollup.TokenSet, error) {
	p.mu.Lock()
	cached := p.tokens
	p.mu.Unlock()

	if cached != nil {
		return cached, nil
	}

	var tokens rollup.TokenSet
	if err := p.call(ctx, &tokens, methodTokens); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.tokens = tokens
	p.mu.Unlock()

	return tokens, nil
}

func (p *provider) TokenPrice(ctx context.Context, token string) (float64, error) {
	var price json.Number
	if err := p.call(ctx, &price, methodTokenPrice, token); err != nil {
		return 0, err
	}

	return strconv.ParseFloat(price.String(), 64)
}
