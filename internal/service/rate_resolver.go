package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"ratehistory/internal/repository"
)

// HourLayout is the only accepted datetime query format; minutes and seconds are literal zeros.
const HourLayout = "2006-01-02 15:00:00"

// ResolvedRate is a stored rate expressed in the direction the caller asked for.
type ResolvedRate struct {
	Pair      string // "FROM/TO" in requested order
	Rate      decimal.Decimal
	Inverted  bool
	Timestamp time.Time
}

// ParseHour parses a "YYYY-MM-DD HH:00:00" value as a UTC hour.
func ParseHour(value string) (time.Time, error) {
	t, err := time.Parse(HourLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDatetime
	}
	return t, nil
}

// Resolve looks up the rate for from/to in either stored direction. With at set only the
// record for exactly that hour qualifies; otherwise the most recent record is used.
// A rate stored in the opposite direction is inverted and truncated toward zero to the
// stored rate's scale.
func (s *RateService) Resolve(ctx context.Context, from, to string, at *time.Time) (*ResolvedRate, error) {
	from, to, ok := normalizePair(from, to)
	if !ok {
		return nil, ErrNotFound
	}

	rec, err := s.selectRecord(ctx, from, to, at)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}

	res := &ResolvedRate{
		Pair:      from + "/" + to,
		Rate:      rec.Rate,
		Timestamp: rec.Timestamp,
	}
	if rec.CurrencyFrom == to {
		res.Inverted = true
		res.Rate = TruncatedReciprocal(rec.Rate)
	}
	return res, nil
}

func (s *RateService) selectRecord(ctx context.Context, from, to string, at *time.Time) (*repository.RateRecord, error) {
	a, b := canonicalPair(from, to)
	if at != nil && !IsTopOfHour(*at) {
		return nil, nil
	}

	key := latestCacheKey(a, b)
	if at != nil {
		key = hourlyCacheKey(a, b, *at)
	}

	if rec, ok := s.cacheGetRecord(ctx, key); ok {
		return rec, nil
	}

	var rec *repository.RateRecord
	var err error
	if at != nil {
		rec, err = s.repo.QueryByPairAndTime(ctx, from, to, at.UTC())
	} else {
		rec, err = s.repo.QueryLatestByPair(ctx, from, to)
	}
	if err != nil {
		s.log.Errorw("DB error resolving rate", "from", from, "to", to, "at", at, "error", err)
		return nil, ErrInternal
	}
	switch {
	case rec == nil:
	case at != nil:
		s.cacheSetRecord(ctx, key, rec, s.hourlyCacheTTL)
	default:
		s.cacheSetLatest(ctx, key, rec)
	}
	return rec, nil
}
