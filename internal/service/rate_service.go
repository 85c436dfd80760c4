// Package service implements the rate history core: canonical writes, bidirectional
// resolution and the code/pair catalog.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ratehistory/internal/config"
	"ratehistory/internal/repository"
)

// RateServiceInterface defines the operations available to the HTTP gateway and the ingestion worker.
type RateServiceInterface interface {
	Insert(ctx context.Context, c RateCandidate) error
	EnqueueIngest(ctx context.Context, cs []RateCandidate) (int, error)
	Resolve(ctx context.Context, from, to string, at *time.Time) (*ResolvedRate, error)
	ListCurrencyCodes(ctx context.Context) ([]string, error)
	ListPairs(ctx context.Context) ([]string, error)
}

// TaskEnqueuer hands ingestion work to the background queue.
type TaskEnqueuer interface {
	EnqueueIngestTask(ctx context.Context, payload IngestRatePayload) error
}

// RateService defines business logic for exchange-rate records
type RateService struct {
	repo           repository.RateRepository
	validator      Validator
	enqueuer       TaskEnqueuer
	cache          *redis.Client
	log            *zap.SugaredLogger
	latestCacheTTL time.Duration
	hourlyCacheTTL time.Duration
}

// NewRateService creates a new RateService. enqueuer and cache may be nil.
func NewRateService(repo repository.RateRepository, validator Validator, enqueuer TaskEnqueuer, cache *redis.Client, logger *zap.SugaredLogger, cacheCfg config.CacheConfig) *RateService {
	return &RateService{
		repo:           repo,
		validator:      validator,
		enqueuer:       enqueuer,
		cache:          cache,
		log:            logger,
		latestCacheTTL: time.Duration(cacheCfg.LatestRateTTLSec) * time.Second,
		hourlyCacheTTL: time.Duration(cacheCfg.HourlyRateTTLSec) * time.Second,
	}
}

var _ RateServiceInterface = (*RateService)(nil)

// Insert validates a raw observation, rewrites it into canonical direction and persists it.
// A reversed pair is swapped and its rate replaced by the exact reciprocal. Duplicate
// detection is left entirely to the store's uniqueness constraint.
func (s *RateService) Insert(ctx context.Context, c RateCandidate) error {
	rec, err := s.canonicalize(c)
	if err != nil {
		return err
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrDuplicateRate
		}
		s.log.Errorw("DB error inserting rate",
			"pair", rec.CurrencyFrom+"/"+rec.CurrencyTo, "timestamp", rec.Timestamp, "error", err)
		return ErrInternal
	}

	s.cacheAdvanceLatest(ctx, &rec)
	s.log.Infow("Stored rate",
		"pair", rec.CurrencyFrom+"/"+rec.CurrencyTo,
		"rate", repository.RateString(rec.Rate),
		"timestamp", rec.Timestamp.Format(time.RFC3339))
	return nil
}

func (s *RateService) canonicalize(c RateCandidate) (repository.RateRecord, error) {
	c.From = strings.ToUpper(c.From)
	c.To = strings.ToUpper(c.To)
	if err := s.validator.Validate(c); err != nil {
		return repository.RateRecord{}, err
	}

	rec := repository.RateRecord{
		CurrencyFrom: c.From,
		CurrencyTo:   c.To,
		Rate:         c.Rate,
		Timestamp:    c.Timestamp.UTC(),
	}
	if rec.CurrencyFrom > rec.CurrencyTo {
		rec.CurrencyFrom, rec.CurrencyTo = rec.CurrencyTo, rec.CurrencyFrom
		rec.Rate = ExactReciprocal(c.Rate)
	}
	return rec, nil
}

// EnqueueIngest validates every candidate up front and then queues one ingestion task per
// observation. It returns the number of tasks enqueued before any failure.
func (s *RateService) EnqueueIngest(ctx context.Context, cs []RateCandidate) (int, error) {
	if s.enqueuer == nil {
		return 0, ErrInternalQueue
	}

	payloads := make([]IngestRatePayload, 0, len(cs))
	for i, c := range cs {
		if _, err := s.canonicalize(c); err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
		payloads = append(payloads, newIngestRatePayload(c))
	}

	for i, p := range payloads {
		if err := s.enqueuer.EnqueueIngestTask(ctx, p); err != nil {
			s.log.Errorw("Failed to enqueue ingest task", "index", i, "pair", p.From+"/"+p.To, "error", err)
			return i, ErrInternalQueue
		}
	}

	s.log.Infow("Enqueued ingest tasks", "count", len(payloads))
	return len(payloads), nil
}
