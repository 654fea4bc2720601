package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PriceCounts maps discretized price levels to observation counts. The named
// type exists because encoding/json cannot marshal float-keyed maps; keys are
// serialized as decimal strings.
type PriceCounts map[float64]int

// MarshalJSON serializes price keys as decimal strings.
func (p PriceCounts) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(p))
	for price, count := range p {
		out[strconv.FormatFloat(price, 'f', -1, 64)] = count
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses decimal-string price keys back to float64.
func (p *PriceCounts) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(PriceCounts, len(raw))
	for key, count := range raw {
		price, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return fmt.Errorf("domain: price count key %q: %w", key, err)
		}
		out[price] = count
	}
	*p = out
	return nil
}

// PriceVolumes maps discretized price levels to signed volume.
type PriceVolumes map[float64]float64

// MarshalJSON serializes price keys as decimal strings.
func (p PriceVolumes) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, len(p))
	for price, vol := range p {
		out[strconv.FormatFloat(price, 'f', -1, 64)] = vol
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses decimal-string price keys back to float64.
func (p *PriceVolumes) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(PriceVolumes, len(raw))
	for key, vol := range raw {
		price, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return fmt.Errorf("domain: price volume key %q: %w", key, err)
		}
		out[price] = vol
	}
	*p = out
	return nil
}

// LiquidityPool maps exact trade prices to their running liquidity levels.
type LiquidityPool map[float64]LiquidityLevel

// MarshalJSON serializes price keys as decimal strings.
func (p LiquidityPool) MarshalJSON() ([]byte, error) {
	out := make(map[string]LiquidityLevel, len(p))
	for price, lvl := range p {
		out[strconv.FormatFloat(price, 'f', -1, 64)] = lvl
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses decimal-string price keys back to float64.
func (p *LiquidityPool) UnmarshalJSON(data []byte) error {
	var raw map[string]LiquidityLevel
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(LiquidityPool, len(raw))
	for key, lvl := range raw {
		price, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return fmt.Errorf("domain: liquidity pool key %q: %w", key, err)
		}
		out[price] = lvl
	}
	*p = out
	return nil
}
