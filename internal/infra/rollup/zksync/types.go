package zksync

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/gabapcia/zkwallet/internal/rollup"

	"github.com/ethereum/go-ethereum/common"
)

// bigNumber decodes amounts the API sends as decimal strings or plain numbers.
type bigNumber struct {
	*big.Int
}

func (n *bigNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		n.Int = new(big.Int)
		return nil
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", s)
	}
	n.Int = v
	return nil
}

func (n bigNumber) value() *big.Int {
	if n.Int == nil {
		return new(big.Int)
	}
	return n.Int
}

type balanceStateJSON struct {
	Balances   map[string]bigNumber `json:"balances"`
	Nonce      uint64               `json:"nonce"`
	PubKeyHash string               `json:"pubKeyHash"`
}

func (b balanceStateJSON) toDomain() rollup.BalanceState {
	balances := make(map[string]*big.Int, len(b.Balances))
	for symbol, amount := range b.Balances {
		balances[symbol] = amount.value()
	}

	return rollup.BalanceState{
		Balances:   balances,
		Nonce:      b.Nonce,
		PubKeyHash: b.PubKeyHash,
	}
}

// accountInfo is the account_info response.
type accountInfo struct {
	Address   common.Address   `json:"address"`
	ID        *uint64          `json:"id"`
	Committed balanceStateJSON `json:"committed"`
	Verified  balanceStateJSON `json:"verified"`
}

func (a accountInfo) toDomain() rollup.AccountState {
	return rollup.AccountState{
		Address:   a.Address,
		ID:        a.ID,
		Committed: a.Committed.toDomain(),
		Verified:  a.Verified.toDomain(),
	}
}

// txFee is the get_tx_fee response.
type txFee struct {
	FeeType     json.RawMessage `json:"feeType"`
	GasTxAmount bigNumber       `json:"gasTxAmount"`
	GasPriceWei bigNumber       `json:"gasPriceWei"`
	GasFee      bigNumber       `json:"gasFee"`
	ZkpFee      bigNumber       `json:"zkpFee"`
	TotalFee    bigNumber       `json:"totalFee"`
}

func (f txFee) toDomain() rollup.TxFee {
	var feeType string
	if err := json.Unmarshal(f.FeeType, &feeType); err != nil {
		feeType = string(f.FeeType)
	}

	return rollup.TxFee{
		FeeType:     feeType,
		GasTxAmount: f.GasTxAmount.value(),
		GasPriceWei: f.GasPriceWei.value(),
		GasFee:      f.GasFee.value(),
		ZkpFee:      f.ZkpFee.value(),
		TotalFee:    f.TotalFee.value(),
	}
}

// batchFee is the get_txs_batch_fee_in_wei response.
type batchFee struct {
	TotalFee bigNumber `json:"totalFee"`
}
