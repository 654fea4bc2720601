package domain

import (
	"sort"
	"time"
)

// MinLiquiditySize is the minimum absolute net volume a pool entry must carry
// to appear in the visible liquidity projection.
const MinLiquiditySize = 0.001

// LiquidityLevel is the running signed net volume observed at one exact
// price. NetVolume accumulates +size for buys and -size for sells across the
// full trade history; it is never reset while the process lives.
type LiquidityLevel struct {
	Price       float64   `json:"price"`
	NetVolume   float64   `json:"net_volume"`
	LastUpdated time.Time `json:"last_updated"` // time of the most recent trade at this price
}

// VisibleLiquidity projects the full pool down to entries updated within the
// selected window and above the minimum size threshold, evaluated at now.
func VisibleLiquidity(pool LiquidityPool, window time.Duration, now time.Time) []LiquidityLevel {
	out := make([]LiquidityLevel, 0, len(pool))
	for _, lvl := range pool {
		if now.Sub(lvl.LastUpdated) > window {
			continue
		}
		if lvl.NetVolume > -MinLiquiditySize && lvl.NetVolume < MinLiquiditySize {
			continue
		}
		out = append(out, lvl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}
