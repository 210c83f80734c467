// Package alphavantage is the upstream market-data client: a GET-based JSON
// API selected by a "function" query parameter and keyed by an API key.
//
// The provider embeds failures inside 200 responses. Three payload shapes
// are recognized and treated as hard failures: an "Error Message" (bad
// request), a "Note" (rate limit exceeded), and an "Information" notice
// (key throttled). Absence of the expected top-level key for a function is
// also a failure. The client never returns partially-populated domain
// objects.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rewired-gh/stockdeck/internal/models"
)

// Sentinel categories for upstream-signaled failures. All three satisfy
// errors.Is(err, ErrUpstream).
var (
	ErrUpstream    = errors.New("upstream failure")
	ErrRateLimited = fmt.Errorf("%w: rate limit note", ErrUpstream)
	ErrThrottled   = fmt.Errorf("%w: informational throttle notice", ErrUpstream)
	ErrBadPayload  = fmt.Errorf("%w: unexpected payload shape", ErrUpstream)
)

// ClientConfig tunes retry behavior for transport-level failures.
type ClientConfig struct {
	MaxRetries     int
	RetryDelayBase time.Duration
}

// Client provides access to the market data API.
type Client struct {
	baseURL        string
	apiKey         string
	httpClient     *http.Client
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new upstream client.
func NewClient(baseURL, apiKey string, timeout time.Duration, cfg ClientConfig) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelayBase <= 0 {
		cfg.RetryDelayBase = time.Second
	}
	return &Client{
		baseURL:        baseURL,
		apiKey:         apiKey,
		httpClient:     &http.Client{Timeout: timeout},
		maxRetries:     cfg.MaxRetries,
		retryDelayBase: cfg.RetryDelayBase,
	}
}

// TopMovers fetches the market-mover lists, at most 20 rows per side.
func (c *Client) TopMovers(ctx context.Context) (gainers, losers []models.Stock, err error) {
	payload, err := c.query(ctx, "TOP_GAINERS_LOSERS", nil)
	if err != nil {
		return nil, nil, err
	}

	rawGainers, okG := payload["top_gainers"]
	rawLosers, okL := payload["top_losers"]
	if !okG || !okL {
		return nil, nil, fmt.Errorf("%w: missing top_gainers/top_losers", ErrBadPayload)
	}

	gainers, err = parseMovers(rawGainers)
	if err != nil {
		return nil, nil, err
	}
	losers, err = parseMovers(rawLosers)
	if err != nil {
		return nil, nil, err
	}
	return gainers, losers, nil
}

type moverRow struct {
	Ticker           string `json:"ticker"`
	Price            string `json:"price"`
	ChangeAmount     string `json:"change_amount"`
	ChangePercentage string `json:"change_percentage"`
	Volume           string `json:"volume"`
}

func parseMovers(raw json.RawMessage) ([]models.Stock, error) {
	var rows []moverRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(rows) > 20 {
		rows = rows[:20]
	}
	stocks := make([]models.Stock, 0, len(rows))
	for _, r := range rows {
		price, err := parseFloat(r.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: mover price %q", ErrBadPayload, r.Price)
		}
		change, err := parseFloat(r.ChangeAmount)
		if err != nil {
			return nil, fmt.Errorf("%w: mover change %q", ErrBadPayload, r.ChangeAmount)
		}
		pct, err := parsePercent(r.ChangePercentage)
		if err != nil {
			return nil, fmt.Errorf("%w: mover change percent %q", ErrBadPayload, r.ChangePercentage)
		}
		vol, err := parseInt(r.Volume)
		if err != nil {
			return nil, fmt.Errorf("%w: mover volume %q", ErrBadPayload, r.Volume)
		}
		stocks = append(stocks, models.Stock{
			Symbol:        r.Ticker,
			Name:          r.Ticker, // the movers endpoint carries no company name
			Price:         price,
			Change:        change,
			ChangePercent: pct,
			Volume:        vol,
		})
	}
	return stocks, nil
}

// Quote fetches a single-symbol quote.
func (c *Client) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	payload, err := c.query(ctx, "GLOBAL_QUOTE", url.Values{"symbol": {symbol}})
	if err != nil {
		return models.Quote{}, err
	}

	raw, ok := payload["Global Quote"]
	if !ok {
		return models.Quote{}, fmt.Errorf("%w: missing Global Quote", ErrBadPayload)
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.Quote{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(fields) == 0 {
		return models.Quote{}, fmt.Errorf("%w: empty quote for %s", ErrBadPayload, symbol)
	}

	q := models.Quote{Symbol: fields["01. symbol"]}
	if q.Price, err = parseFloat(fields["05. price"]); err != nil {
		return models.Quote{}, fmt.Errorf("%w: quote price", ErrBadPayload)
	}
	if q.Change, err = parseFloat(fields["09. change"]); err != nil {
		return models.Quote{}, fmt.Errorf("%w: quote change", ErrBadPayload)
	}
	if q.ChangePercent, err = parsePercent(fields["10. change percent"]); err != nil {
		return models.Quote{}, fmt.Errorf("%w: quote change percent", ErrBadPayload)
	}
	if q.Volume, err = parseInt(fields["06. volume"]); err != nil {
		return models.Quote{}, fmt.Errorf("%w: quote volume", ErrBadPayload)
	}
	if q.PreviousClose, err = parseFloat(fields["08. previous close"]); err != nil {
		return models.Quote{}, fmt.Errorf("%w: quote previous close", ErrBadPayload)
	}
	if q.Open, err = parseFloat(fields["02. open"]); err != nil {
		return models.Quote{}, fmt.Errorf("%w: quote open", ErrBadPayload)
	}
	if q.DayHigh, err = parseFloat(fields["03. high"]); err != nil {
		return models.Quote{}, fmt.Errorf("%w: quote high", ErrBadPayload)
	}
	if q.DayLow, err = parseFloat(fields["04. low"]); err != nil {
		return models.Quote{}, fmt.Errorf("%w: quote low", ErrBadPayload)
	}
	return q, nil
}

type seriesBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// TimeSeries fetches daily bars for symbol, normalized to ascending date
// order and capped to the most recent 30 entries irrespective of the order
// the upstream returns them.
func (c *Client) TimeSeries(ctx context.Context, symbol string) ([]models.TimeSeriesPoint, error) {
	payload, err := c.query(ctx, "TIME_SERIES_DAILY", url.Values{"symbol": {symbol}})
	if err != nil {
		return nil, err
	}

	raw, ok := payload["Time Series (Daily)"]
	if !ok {
		return nil, fmt.Errorf("%w: missing Time Series (Daily)", ErrBadPayload)
	}
	var byDate map[string]seriesBar
	if err := json.Unmarshal(raw, &byDate); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	points := make([]models.TimeSeriesPoint, 0, len(byDate))
	for date, bar := range byDate {
		p := models.TimeSeriesPoint{Date: date}
		if p.Open, err = parseFloat(bar.Open); err != nil {
			return nil, fmt.Errorf("%w: bar open for %s", ErrBadPayload, date)
		}
		if p.High, err = parseFloat(bar.High); err != nil {
			return nil, fmt.Errorf("%w: bar high for %s", ErrBadPayload, date)
		}
		if p.Low, err = parseFloat(bar.Low); err != nil {
			return nil, fmt.Errorf("%w: bar low for %s", ErrBadPayload, date)
		}
		if p.Close, err = parseFloat(bar.Close); err != nil {
			return nil, fmt.Errorf("%w: bar close for %s", ErrBadPayload, date)
		}
		if p.Volume, err = parseInt(bar.Volume); err != nil {
			return nil, fmt.Errorf("%w: bar volume for %s", ErrBadPayload, date)
		}
		points = append(points, p)
	}

	// ISO dates sort lexicographically, oldest first.
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	if len(points) > 30 {
		points = points[len(points)-30:]
	}
	return points, nil
}

type searchMatch struct {
	Symbol string `json:"1. symbol"`
	Name   string `json:"2. name"`
	Type   string `json:"3. type"`
	Region string `json:"4. region"`
}

// Search runs a symbol search, at most 10 matches.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	payload, err := c.query(ctx, "SYMBOL_SEARCH", url.Values{"keywords": {query}})
	if err != nil {
		return nil, err
	}

	raw, ok := payload["bestMatches"]
	if !ok {
		return nil, fmt.Errorf("%w: missing bestMatches", ErrBadPayload)
	}
	var matches []searchMatch
	if err := json.Unmarshal(raw, &matches); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(matches) > 10 {
		matches = matches[:10]
	}
	results := make([]models.SearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, models.SearchResult{
			Symbol: m.Symbol,
			Name:   m.Name,
			Type:   m.Type,
			Region: m.Region,
		})
	}
	return results, nil
}

// Fundamentals fetches the company overview. Numeric fields the provider
// reports as "None" or "-" parse to zero; a missing Symbol key is a failure.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, error) {
	payload, err := c.query(ctx, "OVERVIEW", url.Values{"symbol": {symbol}})
	if err != nil {
		return models.Fundamentals{}, err
	}

	fields := make(map[string]string, len(payload))
	for k, v := range payload {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			fields[k] = s
		}
	}
	if fields["Symbol"] == "" {
		return models.Fundamentals{}, fmt.Errorf("%w: overview missing Symbol", ErrBadPayload)
	}

	return models.Fundamentals{
		Symbol:            fields["Symbol"],
		Name:              fields["Name"],
		Description:       fields["Description"],
		Sector:            fields["Sector"],
		Industry:          fields["Industry"],
		MarketCap:         parseOptionalFloat(fields["MarketCapitalization"]),
		PERatio:           parseOptionalFloat(fields["PERatio"]),
		PEGRatio:          parseOptionalFloat(fields["PEGRatio"]),
		BookValue:         parseOptionalFloat(fields["BookValue"]),
		DividendYield:     parseOptionalFloat(fields["DividendYield"]),
		EPS:               parseOptionalFloat(fields["EPS"]),
		Beta:              parseOptionalFloat(fields["Beta"]),
		Week52High:        parseOptionalFloat(fields["52WeekHigh"]),
		Week52Low:         parseOptionalFloat(fields["52WeekLow"]),
		MovingAverage50:   parseOptionalFloat(fields["50DayMovingAverage"]),
		MovingAverage200:  parseOptionalFloat(fields["200DayMovingAverage"]),
		SharesOutstanding: parseOptionalFloat(fields["SharesOutstanding"]),
		Revenue:           parseOptionalFloat(fields["RevenueTTM"]),
		GrossProfit:       parseOptionalFloat(fields["GrossProfitTTM"]),
		OperatingIncome:   parseOptionalFloat(fields["EBITDA"]),
		NetIncome:         parseOptionalFloat(fields["NetIncomeTTM"]),
	}, nil
}

// query performs the GET request for a function and applies the embedded
// error-shape checks shared by every endpoint.
func (c *Client) query(ctx context.Context, function string, params url.Values) (map[string]json.RawMessage, error) {
	u, err := url.Parse(c.baseURL + "/query")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("function", function)
	q.Set("apikey", c.apiKey)
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	resp, err := c.doRequest(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", function, err)
	}
	defer resp.Body.Close()

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	if raw, ok := payload["Error Message"]; ok {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, rawString(raw))
	}
	if raw, ok := payload["Note"]; ok {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, rawString(raw))
	}
	if raw, ok := payload["Information"]; ok {
		return nil, fmt.Errorf("%w: %s", ErrThrottled, rawString(raw))
	}
	return payload, nil
}

// doRequest performs an HTTP GET with retry on transport and 5xx failures.
func (c *Client) doRequest(ctx context.Context, urlStr string) (*http.Response, error) {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		} else if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		} else {
			return resp, nil
		}

		// No backoff after the last attempt; the caller falls through to
		// the cache ladder immediately.
		if i == c.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * c.retryDelayBase):
		}
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}
