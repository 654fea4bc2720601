package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jellychn/zentra-sub000/internal/domain"
)

// RESTClient fetches historical candles over the exchange's public REST API
// to seed the candle aggregator before live updates arrive.
type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRESTClient creates a REST client for the given API root.
func NewRESTClient(baseURL string) *RESTClient {
	return &RESTClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// klineResponse is the REST kline envelope.
type klineResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Rows []CandleEntry `json:"rows"`
	} `json:"data"`
}

// Klines fetches up to limit historical candles for (symbol, interval),
// returned sorted as delivered by the exchange.
func (c *RESTClient) Klines(ctx context.Context, symbol string, iv domain.Interval, limit int) ([]domain.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("resolution", fmt.Sprintf("%d", iv.Seconds()))
	q.Set("limit", fmt.Sprintf("%d", limit))
	endpoint := fmt.Sprintf("%s/md/v2/kline?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("exchange/rest: build kline request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange/rest: kline %s %s: %w", symbol, iv, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("exchange/rest: read kline response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange/rest: kline %s %s: status %d", symbol, iv, resp.StatusCode)
	}

	var decoded klineResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("exchange/rest: decode kline response: %w", err)
	}
	if decoded.Code != 0 {
		return nil, fmt.Errorf("exchange/rest: kline %s %s: code %d: %s", symbol, iv, decoded.Code, decoded.Msg)
	}

	candles := make([]domain.Candle, 0, len(decoded.Data.Rows))
	for _, row := range decoded.Data.Rows {
		candles = append(candles, row.ToDomain(iv))
	}
	return candles, nil
}
