package domain

// Interval identifies a candle resolution.
type Interval string

// Supported candle resolutions, matching the exchange's kline channels.
const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
	Interval1M  Interval = "1M"
)

// Intervals lists every resolution the engine subscribes to, in ascending
// order of duration.
var Intervals = []Interval{
	Interval1m,
	Interval5m,
	Interval15m,
	Interval4h,
	Interval1d,
	Interval1M,
}

// intervalSeconds maps each resolution to its length in seconds. A month is
// the exchange's fixed 30-day bucket.
var intervalSeconds = map[Interval]int64{
	Interval1m:  60,
	Interval5m:  300,
	Interval15m: 900,
	Interval4h:  14400,
	Interval1d:  86400,
	Interval1M:  2592000,
}

// Seconds returns the resolution length in seconds, or 0 for an unknown
// interval.
func (i Interval) Seconds() int64 {
	return intervalSeconds[i]
}

// Valid reports whether i is one of the supported resolutions.
func (i Interval) Valid() bool {
	_, ok := intervalSeconds[i]
	return ok
}

// IntervalFromSeconds resolves a wire resolution (in seconds) back to an
// Interval. The second return value is false for unsupported resolutions.
func IntervalFromSeconds(sec int64) (Interval, bool) {
	for iv, s := range intervalSeconds {
		if s == sec {
			return iv, true
		}
	}
	return "", false
}

// Candle is one OHLCV bar. Candles are unique by OpenTime within a series of
// a given interval, and a series is always sorted ascending by OpenTime.
type Candle struct {
	OpenTime int64    `json:"open_time"` // bar open, Unix seconds
	Interval Interval `json:"interval"`
	Open     float64  `json:"open"`
	High     float64  `json:"high"`
	Low      float64  `json:"low"`
	Close    float64  `json:"close"`
	Volume   float64  `json:"volume"`
	Turnover float64  `json:"turnover"`
}

// TypicalPrice is the (high+low+close)/3 midpoint used as a turnover fallback
// when the exchange omits the turnover field.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}

// CandleBatch is a normalized snapshot or incremental candle update for one
// (symbol, interval) series.
type CandleBatch struct {
	Symbol   string
	Kind     BatchKind
	Interval Interval
	Candles  []Candle
}
