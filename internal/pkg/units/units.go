// Package units converts raw token amounts (smallest units) into the
// decimal figures shown to users.
package units

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Format formats an amount in smallest units as a decimal string without
// trailing zeros. For example, Format(big.NewInt(1500000), 6) returns "1.5".
// A nil amount formats as "0".
func Format(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}

	if decimals == 0 {
		return amount.String()
	}

	abs := new(big.Int).Abs(amount)
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)

	whole, frac := new(big.Int).QuoRem(abs, divisor, new(big.Int))

	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
	}

	if frac.Sign() == 0 {
		return sign + whole.String()
	}

	fracStr := strings.TrimRight(fmt.Sprintf("%0*d", int(decimals), frac), "0")
	return fmt.Sprintf("%s%s.%s", sign, whole.String(), fracStr)
}

// ToFloat converts an amount in smallest units to its decimal value.
// Precision beyond float64 is lost; use Format for exact display.
func ToFloat(amount *big.Int, decimals uint8) float64 {
	v, err := strconv.ParseFloat(Format(amount, decimals), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatNumber renders v in plain decimal notation, never in exponent form,
// so tiny balances such as 1e-9 read as "0.000000001".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatUSD renders the total value of balance at price, e.g. "$12.50".
// Non-zero totals below one cent render as "<$0.01".
func FormatUSD(price, balance float64) string {
	total := price * balance
	if total > 0 && total < 0.01 {
		return "<$0.01"
	}
	return fmt.Sprintf("$%.2f", total)
}
