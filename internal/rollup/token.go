package rollup

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/gabapcia/zkwallet/internal/pkg/units"

	"github.com/ethereum/go-ethereum/common"
)

// Token is a token supported by the rollup.
type Token struct {
	ID       uint32         `json:"id"`
	Symbol   string         `json:"symbol"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
}

// IsETH reports whether the token is the native coin.
func (t Token) IsETH() bool {
	return t.Address == (common.Address{})
}

// TokenSet is the token catalogue keyed by symbol.
type TokenSet map[string]Token

// Resolve finds a token by symbol or by hex address.
func (s TokenSet) Resolve(tokenLike string) (Token, error) {
	if t, ok := s[tokenLike]; ok {
		return t, nil
	}

	if common.IsHexAddress(tokenLike) {
		addr := common.HexToAddress(tokenLike)
		for _, t := range s {
			if t.Address == addr {
				return t, nil
			}
		}
	}

	for symbol, t := range s {
		if strings.EqualFold(symbol, tokenLike) {
			return t, nil
		}
	}

	return Token{}, fmt.Errorf("%w: %s", ErrUnknownToken, tokenLike)
}

// Format renders amount, in base units of tokenLike, as a decimal string.
func (s TokenSet) Format(tokenLike string, amount *big.Int) (string, error) {
	t, err := s.Resolve(tokenLike)
	if err != nil {
		return "", err
	}

	return units.Format(amount, t.Decimals), nil
}

// ToFloat converts amount, in base units of tokenLike, to a float64.
func (s TokenSet) ToFloat(tokenLike string, amount *big.Int) (float64, error) {
	t, err := s.Resolve(tokenLike)
	if err != nil {
		return 0, err
	}

	return units.ToFloat(amount, t.Decimals), nil
}
