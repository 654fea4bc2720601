package domain

// Sentiment labels the direction of volume pressure.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Metrics is the derived per-symbol aggregate. Every field is recomputable
// from trade, candle, and order-book state; the engine never mutates it
// directly; it publishes MetricsPatch values that the store merges in.
type Metrics struct {
	// Trailing 1-minute trade flow.
	BuyVolume    float64 `json:"buy_volume"`
	SellVolume   float64 `json:"sell_volume"`
	AvgTradeSize float64 `json:"avg_trade_size"`

	// Aggregate resting volume per book side.
	BidVolume float64 `json:"bid_volume"`
	AskVolume float64 `json:"ask_volume"`

	// High/low of the latest 1-day and 1-month candle.
	Max1Day   float64 `json:"max_1d"`
	Min1Day   float64 `json:"min_1d"`
	Max1Month float64 `json:"max_1m"`
	Min1Month float64 `json:"min_1m"`

	// Wilder ATR over the 1-minute series. Nil until enough candles exist.
	ATR *float64 `json:"atr,omitempty"`

	// Price-frequency and signed volume-profile histograms, keyed by
	// discretized price level.
	PriceFrequency PriceCounts  `json:"price_frequency,omitempty"`
	VolumeProfile  PriceVolumes `json:"volume_profile,omitempty"`

	// Cumulative sentiment over the full candle series feeding the
	// histogram.
	CumulativePressure float64   `json:"cumulative_pressure"`
	CumulativeTurnover float64   `json:"cumulative_turnover"`
	Sentiment          Sentiment `json:"sentiment,omitempty"`

	// Visible liquidity pool (window-filtered projection, not the full
	// pool) and a small ring of the most recent trades.
	Liquidity    []LiquidityLevel `json:"liquidity,omitempty"`
	RecentTrades []Trade          `json:"recent_trades,omitempty"`
}

// MetricsPatch is a sparse update to Metrics. A nil field is left untouched
// by the merge; a recompute pass only sets the fields it derived.
type MetricsPatch struct {
	BuyVolume    *float64
	SellVolume   *float64
	AvgTradeSize *float64

	BidVolume *float64
	AskVolume *float64

	Max1Day   *float64
	Min1Day   *float64
	Max1Month *float64
	Min1Month *float64

	ATR *float64

	PriceFrequency PriceCounts
	VolumeProfile  PriceVolumes

	CumulativePressure *float64
	CumulativeTurnover *float64
	Sentiment          *Sentiment

	Liquidity    []LiquidityLevel
	RecentTrades []Trade
}

// Apply merges the patch into m, field by field. Untouched fields keep their
// previous values.
func (m *Metrics) Apply(p MetricsPatch) {
	if p.BuyVolume != nil {
		m.BuyVolume = *p.BuyVolume
	}
	if p.SellVolume != nil {
		m.SellVolume = *p.SellVolume
	}
	if p.AvgTradeSize != nil {
		m.AvgTradeSize = *p.AvgTradeSize
	}
	if p.BidVolume != nil {
		m.BidVolume = *p.BidVolume
	}
	if p.AskVolume != nil {
		m.AskVolume = *p.AskVolume
	}
	if p.Max1Day != nil {
		m.Max1Day = *p.Max1Day
	}
	if p.Min1Day != nil {
		m.Min1Day = *p.Min1Day
	}
	if p.Max1Month != nil {
		m.Max1Month = *p.Max1Month
	}
	if p.Min1Month != nil {
		m.Min1Month = *p.Min1Month
	}
	if p.ATR != nil {
		atr := *p.ATR
		m.ATR = &atr
	}
	if p.PriceFrequency != nil {
		m.PriceFrequency = p.PriceFrequency
	}
	if p.VolumeProfile != nil {
		m.VolumeProfile = p.VolumeProfile
	}
	if p.CumulativePressure != nil {
		m.CumulativePressure = *p.CumulativePressure
	}
	if p.CumulativeTurnover != nil {
		m.CumulativeTurnover = *p.CumulativeTurnover
	}
	if p.Sentiment != nil {
		m.Sentiment = *p.Sentiment
	}
	if p.Liquidity != nil {
		m.Liquidity = p.Liquidity
	}
	if p.RecentTrades != nil {
		m.RecentTrades = p.RecentTrades
	}
}

// Float returns a pointer to v, for building patches inline.
func Float(v float64) *float64 { return &v }
