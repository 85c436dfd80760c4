// Package repository implements persistence for hourly exchange-rate records.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrDuplicate is returned by Insert when the backend's uniqueness constraint
// on (currency_from, currency_to, hour) rejects the record.
var ErrDuplicate = errors.New("rate record already exists")

// RateRecord is a single stored observation. Records are always held in
// canonical direction (CurrencyFrom < CurrencyTo) and are never modified.
type RateRecord struct {
	CurrencyFrom string
	CurrencyTo   string
	Rate         decimal.Decimal
	Timestamp    time.Time
}

// Pair is a distinct canonical currency pair.
type Pair struct {
	From string
	To   string
}

// RateRepository is the narrow storage contract every backend satisfies.
// Lookups match the unordered pair {a, b}; a nil record with a nil error means no match.
type RateRepository interface {
	Insert(ctx context.Context, rec RateRecord) error
	QueryByPairAndTime(ctx context.Context, a, b string, at time.Time) (*RateRecord, error)
	QueryLatestByPair(ctx context.Context, a, b string) (*RateRecord, error)
	DistinctCodes(ctx context.Context) ([]string, error)
	DistinctPairs(ctx context.Context) ([]Pair, error)
	Ping(ctx context.Context) error
}

// RateString renders a rate with its full declared scale, trailing zeros included.
// decimal.String trims them, which would silently change the scale a later inversion truncates to.
func RateString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.StringFixed(0)
}
