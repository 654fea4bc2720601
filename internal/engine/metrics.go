package engine

import (
	"log/slog"
	"math"

	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/settings"
	"github.com/jellychn/zentra-sub000/internal/store"
)

const (
	// atrPeriod is the Wilder ATR period.
	atrPeriod = 14

	// histogramLevels is the number of evenly spaced price levels generated
	// per candle (fractions 0.0 to 1.0 in steps of 0.1).
	histogramLevels = 11

	// Price-line lookbacks: ~12h of 1-minute candles by default, ~1h when
	// zoomed, and 30 daily candles in the month view.
	lookback1mDefault = 720
	lookback1mZoom    = 60
	lookback1dMonth   = 30
)

// CandleSentiment is the per-candle volume sentiment derivation.
type CandleSentiment struct {
	Sentiment      domain.Sentiment
	Strength       float64 // |percent price change|
	VolumePressure float64 // volume x percent change, sign follows direction
	Turnover       float64
}

// SentimentOf derives the volume sentiment of a single candle. A candle is
// positive only when it closed above its open on nonzero volume, negative
// only when it closed below its open on nonzero volume.
func SentimentOf(c domain.Candle) CandleSentiment {
	var pct float64
	if c.Open != 0 {
		pct = (c.Close - c.Open) / c.Open * 100
	}

	sentiment := domain.SentimentNeutral
	switch {
	case c.Close > c.Open && c.Volume > 0:
		sentiment = domain.SentimentPositive
	case c.Close < c.Open && c.Volume > 0:
		sentiment = domain.SentimentNegative
	}

	turnover := c.Turnover
	if turnover == 0 {
		turnover = c.Volume * c.TypicalPrice()
	}

	return CandleSentiment{
		Sentiment:      sentiment,
		Strength:       math.Abs(pct),
		VolumePressure: c.Volume * pct,
		Turnover:       turnover,
	}
}

// CumulativeSentiment sums per-candle volume pressure and turnover over the
// series. The overall label is positive only when positive candles outnumber
// negative ones and the cumulative pressure is itself positive; the negative
// rule is symmetric; everything else is neutral.
func CumulativeSentiment(series []domain.Candle) (pressure, turnover float64, label domain.Sentiment) {
	var positives, negatives int
	for _, c := range series {
		s := SentimentOf(c)
		pressure += s.VolumePressure
		turnover += s.Turnover
		switch s.Sentiment {
		case domain.SentimentPositive:
			positives++
		case domain.SentimentNegative:
			negatives++
		}
	}

	label = domain.SentimentNeutral
	if positives > negatives && pressure > 0 {
		label = domain.SentimentPositive
	} else if negatives > positives && pressure < 0 {
		label = domain.SentimentNegative
	}
	return pressure, turnover, label
}

// WilderATR computes Wilder's Average True Range over the series: true range
// per candle, an initial simple average over the first period values, then
// Wilder smoothing for the remainder. It returns nil when the series has
// fewer than period+1 candles.
func WilderATR(series []domain.Candle, period int) *float64 {
	if period <= 0 || len(series) < period+1 {
		return nil
	}

	trs := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prevClose := series[i-1].Close
		hl := series[i].High - series[i].Low
		hc := math.Abs(series[i].High - prevClose)
		lc := math.Abs(series[i].Low - prevClose)
		trs = append(trs, math.Max(hl, math.Max(hc, lc)))
	}

	var atr float64
	for _, tr := range trs[:period] {
		atr += tr
	}
	atr /= float64(period)

	for _, tr := range trs[period:] {
		atr = (atr*float64(period-1) + tr) / float64(period)
	}
	return &atr
}

// RoundSig rounds x to the given number of significant digits.
func RoundSig(x float64, digits int) float64 {
	if x == 0 {
		return 0
	}
	magnitude := math.Ceil(math.Log10(math.Abs(x)))
	power := float64(digits) - magnitude
	scale := math.Pow(10, power)
	return math.Round(x*scale) / scale
}

// Histogram builds the price-frequency and signed volume-profile histograms
// over the most recent lookback candles. Each candle contributes 11 evenly
// spaced price levels between its low and high, rounded to 4 significant
// digits; its volume is split evenly across the levels and accumulated
// positive or negative by the candle's sentiment. The profile value per
// level is the positive bucket minus the negative bucket.
func Histogram(series []domain.Candle, lookback int) (domain.PriceCounts, domain.PriceVolumes) {
	if lookback > 0 && len(series) > lookback {
		series = series[len(series)-lookback:]
	}

	freq := make(domain.PriceCounts)
	profile := make(domain.PriceVolumes)

	for _, c := range series {
		s := SentimentOf(c)
		span := c.High - c.Low
		share := c.Volume / histogramLevels

		for step := 0; step < histogramLevels; step++ {
			frac := float64(step) / 10
			level := RoundSig(c.Low+span*frac, 4)
			freq[level]++
			switch s.Sentiment {
			case domain.SentimentPositive:
				profile[level] += share
			case domain.SentimentNegative:
				profile[level] -= share
			}
		}
	}
	return freq, profile
}

// Metrics derives ATR, sentiment aggregates, histograms, and rolling
// extremes from candle series and merges them into the store. All outputs
// are partial merges: a pass never clears fields it did not derive.
type Metrics struct {
	store    *store.Store
	settings *settings.Settings
	logger   *slog.Logger
}

// NewMetrics creates the metrics engine.
func NewMetrics(st *store.Store, set *settings.Settings, logger *slog.Logger) *Metrics {
	return &Metrics{
		store:    st,
		settings: set,
		logger:   logger.With(slog.String("component", "metrics")),
	}
}

// OnCandles runs the metrics pass for a freshly merged candle series. The
// 1-minute series feeds the histograms, cumulative sentiment, and ATR; the
// 1-day and 1-month series feed the rolling extremes; in the month view the
// histogram source switches to the daily series.
func (m *Metrics) OnCandles(symbol string, iv domain.Interval, series []domain.Candle) {
	if len(series) == 0 {
		return
	}

	switch iv {
	case domain.Interval1m:
		lookback := lookback1mDefault
		if m.settings.View() == settings.ViewZoom {
			lookback = lookback1mZoom
		}
		patch := m.histogramPatch(series, lookback)
		if atr := WilderATR(series, atrPeriod); atr != nil {
			patch.ATR = atr
		}
		m.store.MergeMetrics(symbol, patch)

	case domain.Interval1d:
		latest := series[len(series)-1]
		patch := domain.MetricsPatch{
			Max1Day: domain.Float(latest.High),
			Min1Day: domain.Float(latest.Low),
		}
		m.store.MergeMetrics(symbol, patch)
		if m.settings.View() == settings.ViewMonth {
			m.store.MergeMetrics(symbol, m.histogramPatch(series, lookback1dMonth))
		}

	case domain.Interval1M:
		latest := series[len(series)-1]
		m.store.MergeMetrics(symbol, domain.MetricsPatch{
			Max1Month: domain.Float(latest.High),
			Min1Month: domain.Float(latest.Low),
		})
	}
}

// Recompute re-runs the view-dependent passes for a symbol from stored
// state, used when the user changes the selected view rather than when new
// candles arrive.
func (m *Metrics) Recompute(symbol string) {
	if series := m.store.Candles(symbol, domain.Interval1m); len(series) > 0 {
		m.OnCandles(symbol, domain.Interval1m, series)
	}
	if series := m.store.Candles(symbol, domain.Interval1d); len(series) > 0 {
		m.OnCandles(symbol, domain.Interval1d, series)
	}
}

// histogramPatch computes the windowed histograms plus the cumulative
// sentiment of the full (non-windowed) series.
func (m *Metrics) histogramPatch(series []domain.Candle, lookback int) domain.MetricsPatch {
	freq, profile := Histogram(series, lookback)
	pressure, turnover, label := CumulativeSentiment(series)
	return domain.MetricsPatch{
		PriceFrequency:     freq,
		VolumeProfile:      profile,
		CumulativePressure: domain.Float(pressure),
		CumulativeTurnover: domain.Float(turnover),
		Sentiment:          &label,
	}
}
