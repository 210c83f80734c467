// Package models defines the core domain entities: movers, quotes, time
// series, fundamentals, and watchlists.
package models

import (
	"errors"
	"strings"
	"time"
)

// Stock represents one row of the market-mover lists (top gainers or losers).
type Stock struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
}

// Quote is a full single-symbol quote. Day low <= price <= day high is not
// guaranteed: upstream (and synthetic) data may violate it.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	PreviousClose float64 `json:"previous_close"`
	Open          float64 `json:"open"`
	DayHigh       float64 `json:"day_high"`
	DayLow        float64 `json:"day_low"`
}

// TimeSeriesPoint is one daily bar. Date is a calendar date in "2006-01-02"
// form; a series is ordered oldest first.
type TimeSeriesPoint struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// SearchResult is a symbol-search match.
type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Region string `json:"region"`
}

// Fundamentals holds company overview data. Absence of fundamentals for a
// symbol is a valid, displayable state, not an error.
type Fundamentals struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Sector            string  `json:"sector"`
	Industry          string  `json:"industry"`
	MarketCap         float64 `json:"market_cap"`
	PERatio           float64 `json:"pe_ratio"`
	PEGRatio          float64 `json:"peg_ratio"`
	BookValue         float64 `json:"book_value"`
	DividendYield     float64 `json:"dividend_yield"`
	EPS               float64 `json:"eps"`
	Beta              float64 `json:"beta"`
	Week52High        float64 `json:"week_52_high"`
	Week52Low         float64 `json:"week_52_low"`
	MovingAverage50   float64 `json:"moving_average_50"`
	MovingAverage200  float64 `json:"moving_average_200"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Revenue           float64 `json:"revenue"`
	GrossProfit       float64 `json:"gross_profit"`
	OperatingIncome   float64 `json:"operating_income"`
	NetIncome         float64 `json:"net_income"`
}

// MarketSnapshot is the rolling market-mover snapshot persisted between
// sessions.
type MarketSnapshot struct {
	Gainers   []Stock   `json:"gainers"`
	Losers    []Stock   `json:"losers"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Theme is the display theme preference. Exactly two values exist.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle flips between the two themes.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Valid reports whether t is one of the two known themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Validate checks quote field constraints.
func (q *Quote) Validate() error {
	if strings.TrimSpace(q.Symbol) == "" {
		return errors.New("quote symbol must not be empty")
	}
	if q.Price < 0 {
		return errors.New("quote price must not be negative")
	}
	if q.Volume < 0 {
		return errors.New("quote volume must not be negative")
	}
	return nil
}
