package trader

import "math/big"

// maxUint256 is the unlimited-approval amount (2^256 - 1).
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// minOutput applies the slippage tolerance to a quoted output:
// quoted * (100 - slippage) / 100, truncated. Integer floor semantics are
// load-bearing; do not round.
func minOutput(quoted *big.Int, slippagePct int64) *big.Int {
	out := new(big.Int).Mul(quoted, big.NewInt(100-slippagePct))
	return out.Div(out, big.NewInt(100))
}

// portionOf returns balance * percent / 100, truncated.
func portionOf(balance *big.Int, percent int64) *big.Int {
	out := new(big.Int).Mul(balance, big.NewInt(percent))
	return out.Div(out, big.NewInt(100))
}

// toWei converts a native-asset amount to its 18-decimal raw form.
func toWei(amount float64) *big.Int {
	wei, _ := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(1e18)).Int(nil)
	return wei
}
