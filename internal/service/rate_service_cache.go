package service

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"ratehistory/internal/repository"
)

const cacheKeyPrefixResolve = "resolve:"

// The latest entry carries a "floor": the newest hour any insert has reported for the pair.
// A lookup may only cache a record at or above the floor, so a read that raced an insert
// cannot put the superseded record back.
//
// KEYS: latest key
// ARGV: from, to, rate, RFC3339 timestamp, unix seconds, ttl ms
var cacheLatestScript = redis.NewScript(`
local ts = tonumber(ARGV[5])
local cur = redis.call('HGET', KEYS[1], 'unix')
if cur and tonumber(cur) >= ts then
  return 0
end
local floor = redis.call('HGET', KEYS[1], 'floor')
if floor and tonumber(floor) > ts then
  return 0
end
redis.call('HSET', KEYS[1], 'from', ARGV[1], 'to', ARGV[2], 'rate', ARGV[3], 'timestamp', ARGV[4], 'unix', ARGV[5])
redis.call('PEXPIRE', KEYS[1], ARGV[6])
return 1
`)

// advanceLatestScript raises the floor to an inserted hour and replaces the cached record
// when the inserted one is newer. An older insert leaves the cached record alone.
//
// KEYS: latest key
// ARGV: from, to, rate, RFC3339 timestamp, unix seconds, ttl ms
var advanceLatestScript = redis.NewScript(`
local ts = tonumber(ARGV[5])
local floor = redis.call('HGET', KEYS[1], 'floor')
if not floor or tonumber(floor) < ts then
  redis.call('HSET', KEYS[1], 'floor', ARGV[5])
end
local cur = redis.call('HGET', KEYS[1], 'unix')
if cur and tonumber(cur) < ts then
  redis.call('HSET', KEYS[1], 'from', ARGV[1], 'to', ARGV[2], 'rate', ARGV[3], 'timestamp', ARGV[4], 'unix', ARGV[5])
end
redis.call('PEXPIRE', KEYS[1], ARGV[6])
return 1
`)

// Keys are built from the canonical pair so both request directions share an entry.
func latestCacheKey(from, to string) string {
	return cacheKeyPrefixResolve + "{" + from + ":" + to + "}:latest"
}

func hourlyCacheKey(from, to string, at time.Time) string {
	return cacheKeyPrefixResolve + "{" + from + ":" + to + "}:" + strconv.FormatInt(at.UTC().Unix(), 10)
}

func (s *RateService) cacheGetRecord(ctx context.Context, key string) (*repository.RateRecord, bool) {
	if s.cache == nil {
		return nil, false
	}

	vals, err := s.cache.HMGet(ctx, key, "from", "to", "rate", "timestamp").Result()
	if err != nil || len(vals) != 4 {
		return nil, false
	}

	var fields [4]string
	for i, v := range vals {
		str, ok := asString(v)
		if !ok {
			return nil, false
		}
		fields[i] = str
	}

	rate, err := decimal.NewFromString(fields[2])
	if err != nil {
		return nil, false
	}
	ts, err := time.Parse(time.RFC3339, fields[3])
	if err != nil {
		return nil, false
	}

	return &repository.RateRecord{
		CurrencyFrom: fields[0],
		CurrencyTo:   fields[1],
		Rate:         rate,
		Timestamp:    ts.UTC(),
	}, true
}

func (s *RateService) cacheSetRecord(ctx context.Context, key string, rec *repository.RateRecord, ttl time.Duration) {
	if s.cache == nil {
		return
	}

	pipe := s.cache.Pipeline()
	pipe.HSet(ctx, key,
		"from", rec.CurrencyFrom,
		"to", rec.CurrencyTo,
		"rate", repository.RateString(rec.Rate),
		"timestamp", rec.Timestamp.UTC().Format(time.RFC3339))
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnw("Failed to update cache", "key", key, "error", err)
	}
}

func latestScriptArgs(rec *repository.RateRecord, ttl time.Duration) []any {
	return []any{
		rec.CurrencyFrom,
		rec.CurrencyTo,
		repository.RateString(rec.Rate),
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.Timestamp.Unix(),
		ttl.Milliseconds(),
	}
}

// cacheSetLatest caches rec as the pair's latest record unless a newer record or insert
// has already been seen.
func (s *RateService) cacheSetLatest(ctx context.Context, key string, rec *repository.RateRecord) {
	if s.cache == nil {
		return
	}

	if err := cacheLatestScript.Run(ctx, s.cache, []string{key}, latestScriptArgs(rec, s.latestCacheTTL)...).Err(); err != nil {
		s.log.Warnw("Failed to update cache", "key", key, "error", err)
	}
}

// cacheAdvanceLatest reports a stored record to the pair's latest entry. Hourly entries
// never need this because stored records are immutable.
func (s *RateService) cacheAdvanceLatest(ctx context.Context, rec *repository.RateRecord) {
	if s.cache == nil {
		return
	}

	key := latestCacheKey(rec.CurrencyFrom, rec.CurrencyTo)
	if err := advanceLatestScript.Run(ctx, s.cache, []string{key}, latestScriptArgs(rec, s.latestCacheTTL)...).Err(); err != nil {
		s.log.Warnw("Failed to advance latest cache, dropping it", "key", key, "error", err)
		_ = s.cache.Del(ctx, key).Err()
	}
}

func asString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	default:
		return "", false
	}
}
