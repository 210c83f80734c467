package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second, ClientConfig{
		MaxRetries:     1,
		RetryDelayBase: time.Millisecond,
	})
}

func respond(t *testing.T, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}
}

func TestQuery_RecognizesUpstreamErrorShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"error message", `{"Error Message": "Invalid API call"}`, ErrUpstream},
		{"rate limit note", `{"Note": "Thank you for using our API, 5 calls per minute"}`, ErrRateLimited},
		{"informational notice", `{"Information": "API key throttled"}`, ErrThrottled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, respond(t, tc.body))
			_, err := c.Quote(context.Background(), "AAPL")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
			// All three shapes are the same failure category.
			if !errors.Is(err, ErrUpstream) {
				t.Errorf("%v should satisfy ErrUpstream", err)
			}
		})
	}
}

func TestQuote_ParsesPositionalFields(t *testing.T) {
	body := `{"Global Quote": {
		"01. symbol": "AAPL",
		"02. open": "145.00",
		"03. high": "151.00",
		"04. low": "144.00",
		"05. price": "150.25",
		"06. volume": "45623000",
		"07. latest trading day": "2024-03-01",
		"08. previous close": "144.50",
		"09. change": "5.75",
		"10. change percent": "3.9792%"
	}}`
	c := newTestClient(t, respond(t, body))

	q, err := c.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.Symbol != "AAPL" {
		t.Errorf("symbol: got %q", q.Symbol)
	}
	if q.Price != 150.25 {
		t.Errorf("price: got %v", q.Price)
	}
	if q.ChangePercent != 3.9792 {
		t.Errorf("change percent: got %v, want percent sign stripped", q.ChangePercent)
	}
	if q.Volume != 45623000 {
		t.Errorf("volume: got %v", q.Volume)
	}
}

func TestQuote_EmptyObjectIsFailure(t *testing.T) {
	c := newTestClient(t, respond(t, `{"Global Quote": {}}`))
	if _, err := c.Quote(context.Background(), "NOPE"); !errors.Is(err, ErrBadPayload) {
		t.Errorf("got %v, want ErrBadPayload", err)
	}
}

func TestQuote_MissingTopLevelKeyIsFailure(t *testing.T) {
	c := newTestClient(t, respond(t, `{}`))
	if _, err := c.Quote(context.Background(), "AAPL"); !errors.Is(err, ErrBadPayload) {
		t.Errorf("got %v, want ErrBadPayload", err)
	}
}

func TestTimeSeries_DescendingInputComesBackAscending(t *testing.T) {
	// Upstream returns keys newest first; the client must normalize.
	body := `{"Time Series (Daily)": {
		"2024-03-03": {"1. open": "150", "2. high": "151", "3. low": "149", "4. close": "150.5", "5. volume": "1000"},
		"2024-03-02": {"1. open": "149", "2. high": "150", "3. low": "148", "4. close": "149.5", "5. volume": "1100"},
		"2024-03-01": {"1. open": "148", "2. high": "149", "3. low": "147", "4. close": "148.5", "5. volume": "1200"}
	}}`
	c := newTestClient(t, respond(t, body))

	points, err := c.TimeSeries(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("TimeSeries: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i-1].Date >= points[i].Date {
			t.Errorf("points not ascending: %s before %s", points[i-1].Date, points[i].Date)
		}
	}
}

func TestTimeSeries_CapsAtMostRecent30(t *testing.T) {
	body := `{"Time Series (Daily)": {`
	for i := 0; i < 40; i++ {
		if i > 0 {
			body += ","
		}
		day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02")
		body += `"` + day + `": {"1. open": "1", "2. high": "2", "3. low": "0.5", "4. close": "1.5", "5. volume": "10"}`
	}
	body += `}}`
	c := newTestClient(t, respond(t, body))

	points, err := c.TimeSeries(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("TimeSeries: %v", err)
	}
	if len(points) != 30 {
		t.Fatalf("got %d points, want 30", len(points))
	}
	// The cap keeps the most recent entries.
	if points[len(points)-1].Date != "2024-02-09" {
		t.Errorf("last point %s, want 2024-02-09", points[len(points)-1].Date)
	}
	if points[0].Date != "2024-01-11" {
		t.Errorf("first point %s, want 2024-01-11", points[0].Date)
	}
}

func TestTopMovers_ParsesAndCoerces(t *testing.T) {
	body := `{
		"top_gainers": [{"ticker": "AAPL", "price": "150.25", "change_amount": "5.75", "change_percentage": "3.98%", "volume": "45623000"}],
		"top_losers": [{"ticker": "INTC", "price": "45.20", "change_amount": "-1.65", "change_percentage": "-3.52%", "volume": "67890000"}]
	}`
	c := newTestClient(t, respond(t, body))

	gainers, losers, err := c.TopMovers(context.Background())
	if err != nil {
		t.Fatalf("TopMovers: %v", err)
	}
	if len(gainers) != 1 || len(losers) != 1 {
		t.Fatalf("got %d gainers, %d losers", len(gainers), len(losers))
	}
	if gainers[0].ChangePercent != 3.98 {
		t.Errorf("gainer change percent: got %v", gainers[0].ChangePercent)
	}
	if losers[0].Change != -1.65 {
		t.Errorf("loser change: got %v", losers[0].Change)
	}
}

func TestTopMovers_MissingListsIsFailure(t *testing.T) {
	c := newTestClient(t, respond(t, `{"metadata": "Top gainers and losers"}`))
	if _, _, err := c.TopMovers(context.Background()); !errors.Is(err, ErrBadPayload) {
		t.Errorf("got %v, want ErrBadPayload", err)
	}
}

func TestSearch_ParsesMatches(t *testing.T) {
	body := `{"bestMatches": [
		{"1. symbol": "AAPL", "2. name": "Apple Inc.", "3. type": "Equity", "4. region": "United States"}
	]}`
	c := newTestClient(t, respond(t, body))

	results, err := c.Search(context.Background(), "apple")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Symbol != "AAPL" || results[0].Name != "Apple Inc." {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestFundamentals_OptionalFieldsLenient(t *testing.T) {
	body := `{
		"Symbol": "AAPL",
		"Name": "Apple Inc.",
		"Sector": "Technology",
		"Industry": "Consumer Electronics",
		"MarketCapitalization": "2500000000000",
		"PERatio": "28.5",
		"DividendYield": "None",
		"Beta": "-"
	}`
	c := newTestClient(t, respond(t, body))

	f, err := c.Fundamentals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Fundamentals: %v", err)
	}
	if f.PERatio != 28.5 {
		t.Errorf("pe ratio: got %v", f.PERatio)
	}
	if f.DividendYield != 0 || f.Beta != 0 {
		t.Errorf("optional None fields should parse to zero: %v %v", f.DividendYield, f.Beta)
	}
}

func TestFundamentals_MissingSymbolIsFailure(t *testing.T) {
	c := newTestClient(t, respond(t, `{"Name": "Mystery Corp"}`))
	if _, err := c.Fundamentals(context.Background(), "NOPE"); !errors.Is(err, ErrBadPayload) {
		t.Errorf("got %v, want ErrBadPayload", err)
	}
}

func TestDoRequest_RetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"bestMatches": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", 5*time.Second, ClientConfig{MaxRetries: 3, RetryDelayBase: time.Millisecond})
	if _, err := c.Search(context.Background(), "x"); err != nil {
		t.Fatalf("Search after retries: %v", err)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3", calls)
	}
}

func TestDoRequest_NoBackoffAfterFinalAttempt(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	// Two attempts, one sleep between them. The old behavior slept again
	// after the last attempt before giving up.
	const delay = 100 * time.Millisecond
	c := NewClient(srv.URL, "k", 5*time.Second, ClientConfig{MaxRetries: 2, RetryDelayBase: delay})

	start := time.Now()
	_, err := c.Search(context.Background(), "x")
	elapsed := time.Since(start)

	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if calls != 2 {
		t.Errorf("got %d calls, want 2", calls)
	}
	if elapsed >= 2*delay {
		t.Errorf("took %v, want less than %v (no sleep after the final attempt)", elapsed, 2*delay)
	}
}
