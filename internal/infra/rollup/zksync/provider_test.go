package zksync

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/gabapcia/zkwallet/internal/rollup"
	"github.com/gabapcia/zkwallet/internal/rollup/mocks"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	owner = common.HexToAddress("0x1111111111111111111111111111111111111111")
	dest  = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

const tokensJSON = `{
	"ETH": {"address": "0x0000000000000000000000000000000000000000", "id": 0, "symbol": "ETH", "decimals": 18},
	"USDC": {"address": "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "id": 2, "symbol": "USDC", "decimals": 6}
}`

func TestProvider_AccountState(t *testing.T) {
	t.Run("should decode committed and verified balances", func(t *testing.T) {
		conn := mocks.NewTransportMock(t)
		conn.On("Fetch", mock.Anything, methodAccountInfo, []any{owner.Hex()}).Return(json.RawMessage(`{
			"address": "0x1111111111111111111111111111111111111111",
			"id": 42,
			"committed": {"balances": {"ETH": "1000000000000000000", "USDC": "5"}, "nonce": 3, "pubKeyHash": "sync:1234"},
			"verified": {"balances": {"ETH": "900000000000000000"}, "nonce": 2, "pubKeyHash": "sync:1234"}
		}`), nil).Once()

		state, err := NewProvider(conn).AccountState(t.Context(), owner)
		require.NoError(t, err)

		require.NotNil(t, state.ID)
		assert.Equal(t, uint64(42), *state.ID)
		assert.Equal(t, owner, state.Address)
		assert.Equal(t, "1000000000000000000", state.Committed.Balances["ETH"].String())
		assert.Equal(t, "5", state.Committed.Balances["USDC"].String())
		assert.Equal(t, "900000000000000000", state.Verified.Balances["ETH"].String())
		assert.Equal(t, uint64(3), state.Committed.Nonce)
		assert.Equal(t, "sync:1234", state.Verified.PubKeyHash)
	})

	t.Run("should wrap transport errors with the method", func(t *testing.T) {
		conn := mocks.NewTransportMock(t)
		fetchErr := errors.New("closed")
		conn.On("Fetch", mock.Anything, methodAccountInfo, []any{owner.Hex()}).Return(nil, fetchErr).Once()

		_, err := NewProvider(conn).AccountState(t.Context(), owner)
		assert.ErrorIs(t, err, fetchErr)
		assert.Contains(t, err.Error(), methodAccountInfo)
	})

	t.Run("should reject malformed amounts", func(t *testing.T) {
		conn := mocks.NewTransportMock(t)
		conn.On("Fetch", mock.Anything, methodAccountInfo, mock.Anything).
			Return(json.RawMessage(`{"committed": {"balances": {"ETH": "1.5"}}}`), nil).Once()

		_, err := NewProvider(conn).AccountState(t.Context(), owner)
		assert.Error(t, err)
	})
}

func TestProvider_Fees(t *testing.T) {
	t.Run("should quote a single operation", func(t *testing.T) {
		conn := mocks.NewTransportMock(t)
		conn.On("Fetch", mock.Anything, methodTxFee, []any{"FastWithdraw", dest.Hex(), "ETH"}).Return(json.RawMessage(`{
			"feeType": "FastWithdraw", "gasTxAmount": "10", "gasPriceWei": "20", "gasFee": "200", "zkpFee": "7", "totalFee": "207"
		}`), nil).Once()

		fee, err := NewProvider(conn).TransactionFee(t.Context(), rollup.FastWithdraw, dest, "ETH")
		require.NoError(t, err)
		assert.Equal(t, "FastWithdraw", fee.FeeType)
		assert.Equal(t, big.NewInt(207), fee.TotalFee)
		assert.Equal(t, big.NewInt(7), fee.ZkpFee)
	})

	t.Run("should keep structured fee types as raw JSON", func(t *testing.T) {
		conn := mocks.NewTransportMock(t)
		conn.On("Fetch", mock.Anything, methodTxFee, mock.Anything).Return(json.RawMessage(`{
			"feeType": {"ChangePubKey": "ECDSA"}, "totalFee": "1"
		}`), nil).Once()

		fee, err := NewProvider(conn).TransactionFee(t.Context(), rollup.Transfer, dest, "ETH")
		require.NoError(t, err)
		assert.JSONEq(t, `{"ChangePubKey": "ECDSA"}`, fee.FeeType)
	})

	t.Run("should quote a batch", func(t *testing.T) {
		conn := mocks.NewTransportMock(t)
		conn.On("Fetch", mock.Anything, methodBatchFeeInWei, []any{
			[]string{"Withdraw", "Transfer"},
			[]string{dest.Hex(), owner.Hex()},
			"USDC",
		}).Return(json.RawMessage(`{"totalFee": "1234567"}`), nil).Once()

		total, err := NewProvider(conn).TransactionsBatchFee(t.Context(),
			[]rollup.OpType{rollup.Withdraw, rollup.Transfer},
			[]common.Address{dest, owner},
			"USDC",
		)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1234567), total)
	})

	t.Run("should reject mismatched batches", func(t *testing.T) {
		_, err := NewProvider(mocks.NewTransportMock(t)).TransactionsBatchFee(t.Context(),
			[]rollup.OpType{rollup.Withdraw, rollup.Transfer},
			[]common.Address{dest},
			"USDC",
		)
		assert.Error(t, err)
	})
}

func TestProvider_Tokens(t *testing.T) {
	conn := mocks.NewTransportMock(t)
	conn.On("Fetch", mock.Anything, methodTokens, []any(nil)).Return(json.RawMessage(tokensJSON), nil).Once()

	p := NewProvider(conn)

	tokens, err := p.Tokens(t.Context())
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.True(t, tokens["ETH"].IsETH())
	assert.Equal(t, uint8(6), tokens["USDC"].Decimals)
	assert.Equal(t, common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"), tokens["USDC"].Address)

	// served from memory
	_, err = p.Tokens(t.Context())
	require.NoError(t, err)
}

func TestProvider_TokenPrice(t *testing.T) {
	for name, raw := range map[string]string{
		"string": `"1800.25"`,
		"number": `1800.25`,
	} {
		t.Run("should decode a "+name+" price", func(t *testing.T) {
			conn := mocks.NewTransportMock(t)
			conn.On("Fetch", mock.Anything, methodTokenPrice, []any{"ETH"}).Return(json.RawMessage(raw), nil).Once()

			price, err := NewProvider(conn).TokenPrice(t.Context(), "ETH")
			require.NoError(t, err)
			assert.Equal(t, 1800.25, price)
		})
	}
}

func TestProvider_Transport(t *testing.T) {
	conn := mocks.NewTransportMock(t)
	assert.Same(t, conn, NewProvider(conn).Transport())
}
