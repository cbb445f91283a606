package rollup

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() TokenSet {
	return TokenSet{
		"ETH":  {ID: 0, Symbol: "ETH", Decimals: 18},
		"USDC": {ID: 2, Symbol: "USDC", Address: common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"), Decimals: 6},
	}
}

func TestTokenSet_Resolve(t *testing.T) {
	tokens := testTokens()

	t.Run("should resolve by symbol", func(t *testing.T) {
		tok, err := tokens.Resolve("USDC")
		require.NoError(t, err)
		assert.Equal(t, uint32(2), tok.ID)
	})

	t.Run("should resolve by address", func(t *testing.T) {
		tok, err := tokens.Resolve("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
		require.NoError(t, err)
		assert.Equal(t, "USDC", tok.Symbol)
	})

	t.Run("should resolve symbols case-insensitively", func(t *testing.T) {
		tok, err := tokens.Resolve("eth")
		require.NoError(t, err)
		assert.True(t, tok.IsETH())
	})

	t.Run("should fail on unknown tokens", func(t *testing.T) {
		_, err := tokens.Resolve("DOGE")
		assert.ErrorIs(t, err, ErrUnknownToken)
	})
}

func TestTokenSet_Format(t *testing.T) {
	tokens := testTokens()

	s, err := tokens.Format("USDC", big.NewInt(1_500_000))
	require.NoError(t, err)
	assert.Equal(t, "1.5", s)

	f, err := tokens.ToFloat("ETH", new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil))
	require.NoError(t, err)
	assert.InDelta(t, 0.1, f, 1e-12)

	_, err = tokens.Format("DOGE", big.NewInt(1))
	assert.ErrorIs(t, err, ErrUnknownToken)
}
