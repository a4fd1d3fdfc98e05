package marketdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/hzheng/smartrade"
	"github.com/hzheng/smartrade/date"
)

// Provider fetches daily prices from a market data service. Symbols are in
// compact form.
type Provider interface {
	DailyCloses(symbol string, from, to date.Date) (date.History[float64], error)
}

// Polygon serves prices from the polygon.io aggregates API.
type Polygon struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewPolygon builds a polygon.io provider whose responses are cached in
// cacheDir for a day.
func NewPolygon(apiKey, cacheDir string) *Polygon {
	return &Polygon{
		apiKey:  apiKey,
		baseURL: "https://api.polygon.io",
		client:  newClient(cacheDir),
	}
}

// DailyCloses returns the daily close prices of symbol over [from, to].
func (p *Polygon) DailyCloses(symbol string, from, to date.Date) (date.History[float64], error) {
	var prices date.History[float64]
	ticker, err := polygonTicker(symbol)
	if err != nil {
		return prices, err
	}
	addr := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?apiKey=%s",
		p.baseURL, ticker, from, to, p.apiKey)
	var jobj any
	if err := jwget(p.client, addr, &jobj); err != nil {
		return prices, fmt.Errorf("polygon aggregates for %s: %w", symbol, err)
	}
	count, err := jsonpath.Get("$.resultsCount", jobj)
	if err != nil {
		return prices, fmt.Errorf("polygon aggregates for %s: %w", symbol, err)
	}
	if n, ok := count.(float64); !ok || n <= 0 {
		return prices, nil
	}
	results, err := jsonpath.Get("$.results[*]", jobj)
	if err != nil {
		return prices, fmt.Errorf("polygon aggregates for %s: %w", symbol, err)
	}
	rows, ok := results.([]any)
	if !ok {
		return prices, fmt.Errorf("polygon aggregates for %s: unexpected results shape", symbol)
	}
	for _, row := range rows {
		bar, ok := row.(map[string]any)
		if !ok {
			continue
		}
		close, cok := bar["c"].(float64)
		stamp, tok := bar["t"].(float64)
		if !cok || !tok {
			return prices, fmt.Errorf("polygon aggregates for %s: bar without close or time", symbol)
		}
		day := date.FromTime(time.UnixMilli(int64(stamp)).UTC())
		prices.Append(day, close)
	}
	return prices, nil
}

// polygonTicker maps a compact symbol to polygon's ticker form: stocks as
// is, options as O: followed by the unpadded OCC code.
func polygonTicker(symbol string) (string, error) {
	sym, err := smartrade.ParseSymbol(symbol)
	if err != nil {
		return "", err
	}
	if !sym.IsOption() {
		return sym.Underlying, nil
	}
	cp := "C"
	if sym.Type == smartrade.Put {
		cp = "P"
	}
	return fmt.Sprintf("O:%s%s%s%08d",
		sym.Underlying, sym.Expiration.Format("060102"), cp, int64(sym.Strike*1000+0.5)), nil
}

// jwget performs an HTTP GET and unmarshals the JSON response into data.
func jwget(client *http.Client, addr string, data any) error {
	resp, err := client.Get(addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
