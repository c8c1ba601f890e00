// internal/domain/token/amount.go
package token

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var maxAmount = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// ScaleSupply は whole=true のとき supply を 10^decimals 倍して最小単位に変換します。
// u64 に収まらない場合は ErrSupplyOverflow を返します。
func ScaleSupply(supply uint64, decimals uint8, whole bool) (uint64, error) {
	if !whole {
		return supply, nil
	}
	scaled := decimal.NewFromBigInt(new(big.Int).SetUint64(supply), 0).Shift(int32(decimals))
	if scaled.GreaterThan(maxAmount) {
		return 0, ErrSupplyOverflow
	}
	return scaled.BigInt().Uint64(), nil
}

// UISupply は最小単位の量を decimals に従って人間向けの表記にします。
// 例: UISupply(1500, 3) == "1.5"
func UISupply(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}
