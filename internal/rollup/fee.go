package rollup

import "math/big"

// Fees are sent as a packed float: an 11-bit mantissa and a 5-bit decimal
// exponent. Only amounts of the form m * 10^e fit.
const (
	feeMantissaBits = 11
	feeExponentBits = 5
	feeExponentBase = 10
)

var (
	maxFeeMantissa = big.NewInt(1<<feeMantissaBits - 1)
	maxFeeExponent = 1<<feeExponentBits - 1
)

// ClosestPackableFee rounds fee down to the nearest amount the network can
// encode. The result never exceeds fee. Non-positive fees round to zero.
func ClosestPackableFee(fee *big.Int) *big.Int {
	mantissa, exponent := packFee(fee)
	return unpackFee(mantissa, exponent)
}

// IsPackableFee reports whether fee is encoded without loss.
func IsPackableFee(fee *big.Int) bool {
	if fee == nil || fee.Sign() < 0 {
		return false
	}

	return ClosestPackableFee(fee).Cmp(fee) == 0
}

func packFee(fee *big.Int) (*big.Int, int) {
	if fee == nil || fee.Sign() <= 0 {
		return new(big.Int), 0
	}

	base := big.NewInt(feeExponentBase)
	mantissa := new(big.Int).Set(fee)
	exponent := 0
	for mantissa.Cmp(maxFeeMantissa) > 0 && exponent < maxFeeExponent {
		mantissa.Quo(mantissa, base)
		exponent++
	}

	// Above the largest representable amount.
	if mantissa.Cmp(maxFeeMantissa) > 0 {
		mantissa.Set(maxFeeMantissa)
	}

	return mantissa, exponent
}

func unpackFee(mantissa *big.Int, exponent int) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(feeExponentBase), big.NewInt(int64(exponent)), nil)
	return scale.Mul(scale, mantissa)
}
