package engine

import (
	"math"
	"testing"

	"github.com/jellychn/zentra-sub000/internal/domain"
	"github.com/jellychn/zentra-sub000/internal/settings"
	"github.com/jellychn/zentra-sub000/internal/store"
)

func TestSentimentOf(t *testing.T) {
	tests := []struct {
		name string
		c    domain.Candle
		want domain.Sentiment
	}{
		{"up on volume", domain.Candle{Open: 100, Close: 101, Volume: 5}, domain.SentimentPositive},
		{"down on volume", domain.Candle{Open: 100, Close: 99, Volume: 5}, domain.SentimentNegative},
		{"up without volume", domain.Candle{Open: 100, Close: 101, Volume: 0}, domain.SentimentNeutral},
		{"doji", domain.Candle{Open: 100, Close: 100, Volume: 5}, domain.SentimentNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SentimentOf(tt.c).Sentiment; got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSentimentOfZeroOpen(t *testing.T) {
	s := SentimentOf(domain.Candle{Open: 0, Close: 5, Volume: 10})
	if s.Strength != 0 || s.VolumePressure != 0 {
		t.Fatalf("zero open must not divide: %+v", s)
	}
}

func TestCumulativeSentimentLabel(t *testing.T) {
	up := domain.Candle{Open: 100, High: 102, Low: 99, Close: 101, Volume: 10}
	down := domain.Candle{Open: 100, High: 101, Low: 98, Close: 99, Volume: 10}

	_, _, label := CumulativeSentiment([]domain.Candle{up, up, down})
	if label != domain.SentimentPositive {
		t.Fatalf("got %q, want positive", label)
	}
	_, _, label = CumulativeSentiment([]domain.Candle{down, down, up})
	if label != domain.SentimentNegative {
		t.Fatalf("got %q, want negative", label)
	}
	_, _, label = CumulativeSentiment([]domain.Candle{up, down})
	if label != domain.SentimentNeutral {
		t.Fatalf("got %q, want neutral", label)
	}
}

func TestWilderATRNilBelowMinimum(t *testing.T) {
	series := make([]domain.Candle, atrPeriod)
	for i := range series {
		series[i] = domain.Candle{High: 102, Low: 100, Close: 101}
	}
	if got := WilderATR(series, atrPeriod); got != nil {
		t.Fatalf("want nil below %d candles, got %v", atrPeriod+1, *got)
	}
}

func TestWilderATRConstantRange(t *testing.T) {
	series := make([]domain.Candle, atrPeriod+1)
	for i := range series {
		series[i] = domain.Candle{High: 102, Low: 100, Close: 101}
	}
	got := WilderATR(series, atrPeriod)
	if got == nil {
		t.Fatal("want ATR at minimum length")
	}
	if math.Abs(*got-2) > 1e-9 {
		t.Fatalf("constant true range 2 must give ATR 2, got %v", *got)
	}
}

func TestWilderATRSmoothing(t *testing.T) {
	series := []domain.Candle{
		{High: 10, Low: 8, Close: 9},
		{High: 12, Low: 9, Close: 11},    // TR 3
		{High: 11, Low: 10, Close: 10.5}, // TR 1
		{High: 14, Low: 11, Close: 13},   // TR 3.5
	}
	got := WilderATR(series, 2)
	if got == nil {
		t.Fatal("want ATR")
	}
	// Initial average (3+1)/2 = 2, then (2*1 + 3.5)/2 = 2.75.
	if math.Abs(*got-2.75) > 1e-9 {
		t.Fatalf("got %v, want 2.75", *got)
	}
}

func TestRoundSig(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{123.456, 123.5},
		{0.0012344, 0.001234},
		{98765, 98770},
		{100, 100},
		{0, 0},
		{-123.456, -123.5},
	}
	for _, tt := range tests {
		if got := RoundSig(tt.in, 4); math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("RoundSig(%v, 4) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHistogramSingleCandle(t *testing.T) {
	series := []domain.Candle{
		{Open: 100, High: 110, Low: 100, Close: 109, Volume: 11},
	}
	freq, profile := Histogram(series, 0)

	if len(freq) != histogramLevels {
		t.Fatalf("want %d levels, got %d", histogramLevels, len(freq))
	}
	for step := 0; step < histogramLevels; step++ {
		level := RoundSig(100+float64(step), 4)
		if freq[level] != 1 {
			t.Fatalf("level %v frequency = %d, want 1", level, freq[level])
		}
		if math.Abs(profile[level]-1) > 1e-9 {
			t.Fatalf("level %v profile = %v, want +1", level, profile[level])
		}
	}
}

func TestHistogramSignedByDirection(t *testing.T) {
	down := []domain.Candle{
		{Open: 110, High: 110, Low: 100, Close: 100, Volume: 22},
	}
	_, profile := Histogram(down, 0)
	for level, v := range profile {
		if v >= 0 {
			t.Fatalf("level %v profile = %v, want negative", level, v)
		}
	}
}

func TestHistogramLookback(t *testing.T) {
	series := []domain.Candle{
		{Open: 10, High: 20, Low: 10, Close: 19, Volume: 11},
		{Open: 100, High: 110, Low: 100, Close: 109, Volume: 11},
	}
	freq, _ := Histogram(series, 1)
	if freq[RoundSig(10, 4)] != 0 {
		t.Fatal("lookback must exclude the older candle")
	}
	if freq[RoundSig(100, 4)] != 1 {
		t.Fatal("lookback must include the newest candle")
	}
}

func TestMetricsOnCandles1m(t *testing.T) {
	st := store.New(testLogger())
	m := NewMetrics(st, settings.New("BTCUSDT"), testLogger())

	series := make([]domain.Candle, atrPeriod+1)
	for i := range series {
		series[i] = domain.Candle{
			OpenTime: int64(60 * (i + 1)),
			Interval: domain.Interval1m,
			Open:     100,
			High:     102,
			Low:      100,
			Close:    101,
			Volume:   10,
		}
	}
	m.OnCandles("BTCUSDT", domain.Interval1m, series)

	got, ok := st.Metrics("BTCUSDT")
	if !ok {
		t.Fatal("expected metrics")
	}
	if got.ATR == nil {
		t.Fatal("expected ATR on a full series")
	}
	if len(got.PriceFrequency) == 0 || len(got.VolumeProfile) == 0 {
		t.Fatal("expected histograms")
	}
	if got.Sentiment != domain.SentimentPositive {
		t.Fatalf("sentiment = %q, want positive", got.Sentiment)
	}
}

func TestMetricsOnCandlesShortSeriesNoATR(t *testing.T) {
	st := store.New(testLogger())
	m := NewMetrics(st, settings.New("BTCUSDT"), testLogger())

	series := []domain.Candle{
		{OpenTime: 60, Interval: domain.Interval1m, Open: 100, High: 102, Low: 100, Close: 101, Volume: 10},
	}
	m.OnCandles("BTCUSDT", domain.Interval1m, series)

	got, _ := st.Metrics("BTCUSDT")
	if got.ATR != nil {
		t.Fatalf("ATR on a 1-candle series = %v, want nil", *got.ATR)
	}
}

func TestMetricsDailyAndMonthlyExtremes(t *testing.T) {
	st := store.New(testLogger())
	m := NewMetrics(st, settings.New("BTCUSDT"), testLogger())

	m.OnCandles("BTCUSDT", domain.Interval1d, []domain.Candle{
		{OpenTime: 1, High: 105, Low: 95, Close: 100, Volume: 1},
		{OpenTime: 2, High: 120, Low: 90, Close: 100, Volume: 1},
	})
	m.OnCandles("BTCUSDT", domain.Interval1M, []domain.Candle{
		{OpenTime: 1, High: 150, Low: 80, Close: 100, Volume: 1},
	})

	got, _ := st.Metrics("BTCUSDT")
	if got.Max1Day != 120 || got.Min1Day != 90 {
		t.Fatalf("daily extremes = %v/%v, want 120/90", got.Max1Day, got.Min1Day)
	}
	if got.Max1Month != 150 || got.Min1Month != 80 {
		t.Fatalf("monthly extremes = %v/%v, want 150/80", got.Max1Month, got.Min1Month)
	}
}
