// Package mockdata synthesizes range-plausible placeholder values so the UI
// always has something renderable when neither upstream nor cache can serve
// a request. Values are shaped like the real types and internally consistent
// in sign conventions, but are explicitly not real market data.
package mockdata

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rewired-gh/stockdeck/internal/models"
)

// TopMovers returns the fixed fallback mover lists.
func TopMovers() (gainers, losers []models.Stock) {
	gainers = []models.Stock{
		{Symbol: "AAPL", Name: "Apple Inc.", Price: 150.25, Change: 5.75, ChangePercent: 3.98, Volume: 45623000},
		{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 2750.80, Change: 85.30, ChangePercent: 3.20, Volume: 1234000},
		{Symbol: "MSFT", Name: "Microsoft Corp.", Price: 305.15, Change: 8.90, ChangePercent: 3.01, Volume: 23456000},
		{Symbol: "TSLA", Name: "Tesla Inc.", Price: 850.45, Change: 22.10, ChangePercent: 2.67, Volume: 18934000},
		{Symbol: "AMZN", Name: "Amazon.com Inc.", Price: 3200.75, Change: 65.25, ChangePercent: 2.08, Volume: 3456000},
		{Symbol: "NFLX", Name: "Netflix Inc.", Price: 425.60, Change: 8.15, ChangePercent: 1.95, Volume: 5678000},
		{Symbol: "META", Name: "Meta Platforms", Price: 320.90, Change: 12.50, ChangePercent: 4.06, Volume: 15678000},
		{Symbol: "NVDA", Name: "NVIDIA Corp.", Price: 520.30, Change: 18.75, ChangePercent: 3.74, Volume: 25789000},
		{Symbol: "AMD", Name: "Advanced Micro Devices", Price: 105.45, Change: 3.80, ChangePercent: 3.74, Volume: 45123000},
		{Symbol: "CRM", Name: "Salesforce Inc.", Price: 195.75, Change: 6.25, ChangePercent: 3.30, Volume: 8901000},
	}
	losers = []models.Stock{
		{Symbol: "INTC", Name: "Intel Corp.", Price: 45.20, Change: -1.65, ChangePercent: -3.52, Volume: 67890000},
		{Symbol: "UBER", Name: "Uber Technologies", Price: 32.10, Change: -1.05, ChangePercent: -3.17, Volume: 23456000},
		{Symbol: "SNAP", Name: "Snap Inc.", Price: 12.45, Change: -0.40, ChangePercent: -3.11, Volume: 89012000},
		{Symbol: "ROKU", Name: "Roku Inc.", Price: 65.30, Change: -1.85, ChangePercent: -2.75, Volume: 12345000},
		{Symbol: "ZM", Name: "Zoom Video", Price: 78.20, Change: -2.10, ChangePercent: -2.61, Volume: 56789000},
		{Symbol: "SHOP", Name: "Shopify Inc.", Price: 45.80, Change: -1.15, ChangePercent: -2.45, Volume: 78901000},
		{Symbol: "SQ", Name: "Block Inc.", Price: 67.40, Change: -1.60, ChangePercent: -2.32, Volume: 23456000},
		{Symbol: "PYPL", Name: "PayPal Holdings", Price: 89.50, Change: -2.00, ChangePercent: -2.19, Volume: 45678000},
		{Symbol: "SPOT", Name: "Spotify Technology", Price: 123.70, Change: -2.70, ChangePercent: -2.14, Volume: 34567000},
		{Symbol: "DIS", Name: "Walt Disney Co.", Price: 96.10, Change: -1.90, ChangePercent: -1.94, Volume: 11223000},
	}
	return gainers, losers
}

// Quote synthesizes a quote for symbol. Price is always positive and change
// and changePercent share sign.
func Quote(symbol string) models.Quote {
	base := 100 + rand.Float64()*400
	change := (rand.Float64() - 0.5) * 20
	return models.Quote{
		Symbol:        symbol,
		Price:         base,
		Change:        change,
		ChangePercent: change / (base - change) * 100,
		Volume:        int64(rand.Intn(50000000)) + 1000000,
		PreviousClose: base - change,
		Open:          base - change + (rand.Float64()-0.5)*5,
		DayHigh:       base + rand.Float64()*10,
		DayLow:        base - rand.Float64()*10,
	}
}

// TimeSeries synthesizes a flat 30-day daily series ending today, ascending.
func TimeSeries() []models.TimeSeriesPoint {
	const base = 150.0
	now := time.Now()
	points := make([]models.TimeSeriesPoint, 0, 30)
	for i := 29; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		points = append(points, models.TimeSeriesPoint{
			Date:   day.Format("2006-01-02"),
			Open:   base,
			High:   base,
			Low:    base,
			Close:  base,
			Volume: 25000000,
		})
	}
	return points
}

var searchCatalog = []models.SearchResult{
	{Symbol: "AAPL", Name: "Apple Inc.", Type: "Equity", Region: "United States"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Type: "Equity", Region: "United States"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Type: "Equity", Region: "United States"},
	{Symbol: "TSLA", Name: "Tesla Inc.", Type: "Equity", Region: "United States"},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Type: "Equity", Region: "United States"},
	{Symbol: "META", Name: "Meta Platforms Inc.", Type: "Equity", Region: "United States"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Type: "Equity", Region: "United States"},
	{Symbol: "NFLX", Name: "Netflix Inc.", Type: "Equity", Region: "United States"},
}

// Search filters the fallback catalog with a case-insensitive substring
// match against symbol and name.
func Search(query string) []models.SearchResult {
	q := strings.ToLower(query)
	var out []models.SearchResult
	for _, r := range searchCatalog {
		if strings.Contains(strings.ToLower(r.Symbol), q) || strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

// Fundamentals synthesizes company fundamentals with range-plausible values.
// A few well-known symbols get fixed descriptive fields.
func Fundamentals(symbol string) models.Fundamentals {
	f := models.Fundamentals{
		Symbol:            symbol,
		Name:              fmt.Sprintf("%s Company", symbol),
		Description:       fmt.Sprintf("%s is a leading technology company focused on innovative solutions and digital transformation.", symbol),
		Sector:            "Technology",
		Industry:          "Software",
		MarketCap:         2.5e12 + rand.Float64()*1e12,
		PERatio:           15 + rand.Float64()*20,
		PEGRatio:          0.5 + rand.Float64()*2,
		BookValue:         10 + rand.Float64()*50,
		DividendYield:     rand.Float64() * 5,
		EPS:               5 + rand.Float64()*15,
		Beta:              0.5 + rand.Float64()*1.5,
		Week52High:        200 + rand.Float64()*100,
		Week52Low:         100 + rand.Float64()*50,
		MovingAverage50:   150 + rand.Float64()*50,
		MovingAverage200:  140 + rand.Float64()*60,
		SharesOutstanding: 1e9 + rand.Float64()*5e9,
		Revenue:           1e11 + rand.Float64()*2e11,
		GrossProfit:       5e10 + rand.Float64()*1e11,
		OperatingIncome:   2.5e10 + rand.Float64()*5e10,
		NetIncome:         1.5e10 + rand.Float64()*3e10,
	}

	switch symbol {
	case "AAPL":
		f.Sector = "Technology"
		f.Industry = "Consumer Electronics"
		f.Description = "Apple Inc. designs, manufactures, and markets smartphones, personal computers, tablets, wearables, and accessories worldwide."
	case "GOOGL":
		f.Sector = "Communication Services"
		f.Industry = "Internet Content & Information"
		f.Description = "Alphabet Inc. provides online advertising services in the United States, Europe, the Middle East, Africa, the Asia-Pacific, Canada, and Latin America."
	case "MSFT":
		f.Sector = "Technology"
		f.Industry = "Software Infrastructure"
		f.Description = "Microsoft Corporation develops, licenses, and supports software, services, devices, and solutions worldwide."
	}
	return f
}
