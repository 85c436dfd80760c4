package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	redisKeyPairsSet = "rates:pairs"
	redisKeyCodesSet = "rates:codes"
)

// insertRateScript claims the (pair, hour) slot with HSETNX and only then indexes it,
// so the whole insert is a single atomic step on the server.
//
// KEYS: rates hash, hours zset, pairs set, codes set
// ARGV: unix hour, rate, pair member, from code, to code
var insertRateScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 0 then
  return 0
end
redis.call('ZADD', KEYS[2], ARGV[1], ARGV[1])
redis.call('SADD', KEYS[3], ARGV[3])
redis.call('SADD', KEYS[4], ARGV[4], ARGV[5])
return 1
`)

// RedisRateRepository stores rate records in Redis: one hash of hour->rate per pair,
// plus a sorted set of hours for latest lookups.
type RedisRateRepository struct {
	rdb *redis.Client
}

// NewRedisRateRepository creates a new RedisRateRepository.
func NewRedisRateRepository(rdb *redis.Client) *RedisRateRepository {
	return &RedisRateRepository{rdb: rdb}
}

var _ RateRepository = (*RedisRateRepository)(nil)

func pairMember(from, to string) string {
	return from + ":" + to
}

func ratesKey(from, to string) string {
	return "rates:{" + pairMember(from, to) + "}"
}

func hoursKey(from, to string) string {
	return "rates:hours:{" + pairMember(from, to) + "}"
}

// orderedPair returns {a, b} in canonical order.
func orderedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// Insert atomically writes a canonical record.
func (r *RedisRateRepository) Insert(ctx context.Context, rec RateRecord) error {
	if rec.CurrencyFrom >= rec.CurrencyTo {
		return fmt.Errorf("insert exchange rate (redis): non-canonical pair %s/%s", rec.CurrencyFrom, rec.CurrencyTo)
	}

	hour := strconv.FormatInt(rec.Timestamp.UTC().Unix(), 10)
	keys := []string{
		ratesKey(rec.CurrencyFrom, rec.CurrencyTo),
		hoursKey(rec.CurrencyFrom, rec.CurrencyTo),
		redisKeyPairsSet,
		redisKeyCodesSet,
	}
	inserted, err := insertRateScript.Run(ctx, r.rdb, keys,
		hour, RateString(rec.Rate), pairMember(rec.CurrencyFrom, rec.CurrencyTo), rec.CurrencyFrom, rec.CurrencyTo,
	).Int()
	if err != nil {
		return fmt.Errorf("insert exchange rate (redis): %w", err)
	}
	if inserted == 0 {
		return ErrDuplicate
	}
	return nil
}

// QueryByPairAndTime returns the record for {a, b} at exactly the given hour.
func (r *RedisRateRepository) QueryByPairAndTime(ctx context.Context, a, b string, at time.Time) (*RateRecord, error) {
	from, to := orderedPair(a, b)
	unix := at.UTC().Unix()
	return r.getRecord(ctx, from, to, unix)
}

// QueryLatestByPair returns the most recent record for {a, b}.
func (r *RedisRateRepository) QueryLatestByPair(ctx context.Context, a, b string) (*RateRecord, error) {
	from, to := orderedPair(a, b)
	hours, err := r.rdb.ZRevRange(ctx, hoursKey(from, to), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("query latest hour: %w", err)
	}
	if len(hours) == 0 {
		return nil, nil
	}
	unix, err := strconv.ParseInt(hours[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse stored hour %q: %w", hours[0], err)
	}
	return r.getRecord(ctx, from, to, unix)
}

func (r *RedisRateRepository) getRecord(ctx context.Context, from, to string, unix int64) (*RateRecord, error) {
	raw, err := r.rdb.HGet(ctx, ratesKey(from, to), strconv.FormatInt(unix, 10)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exchange rate: %w", err)
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("parse stored rate %q: %w", raw, err)
	}
	return &RateRecord{
		CurrencyFrom: from,
		CurrencyTo:   to,
		Rate:         rate,
		Timestamp:    time.Unix(unix, 0).UTC(),
	}, nil
}

// DistinctCodes returns every code found in either position, sorted.
func (r *RedisRateRepository) DistinctCodes(ctx context.Context) ([]string, error) {
	codes, err := r.rdb.SMembers(ctx, redisKeyCodesSet).Result()
	if err != nil {
		return nil, fmt.Errorf("query distinct codes: %w", err)
	}
	sort.Strings(codes)
	return codes, nil
}

// DistinctPairs returns every stored canonical pair ordered by (from, to).
func (r *RedisRateRepository) DistinctPairs(ctx context.Context) ([]Pair, error) {
	members, err := r.rdb.SMembers(ctx, redisKeyPairsSet).Result()
	if err != nil {
		return nil, fmt.Errorf("query distinct pairs: %w", err)
	}
	sort.Strings(members)

	pairs := make([]Pair, 0, len(members))
	for _, m := range members {
		from, to, ok := strings.Cut(m, ":")
		if !ok {
			return nil, fmt.Errorf("malformed pair member %q", m)
		}
		pairs = append(pairs, Pair{From: from, To: to})
	}
	return pairs, nil
}

// Ping checks Redis connectivity.
func (r *RedisRateRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
