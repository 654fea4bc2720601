package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPriceVolumesMarshalFloatKeys(t *testing.T) {
	pv := PriceVolumes{50123.5: 1.25, 100: -2}
	data, err := json.Marshal(pv)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"50123.5"`) {
		t.Fatalf("keys not string-formatted: %s", data)
	}

	var back PriceVolumes
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back[50123.5] != 1.25 || back[100] != -2 {
		t.Fatalf("round trip = %v", back)
	}
}

func TestLiquidityPoolMarshal(t *testing.T) {
	pool := LiquidityPool{
		100: {Price: 100, NetVolume: 1.5},
	}
	data, err := json.Marshal(pool)
	if err != nil {
		t.Fatal(err)
	}
	var back LiquidityPool
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back[100].NetVolume != 1.5 {
		t.Fatalf("round trip = %v", back)
	}
}
