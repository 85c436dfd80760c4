package api

import (
	"context"
	"errors"
	"time"

	"ratehistory/internal/service"
)

// mockRateService implements service.RateServiceInterface for testing.
type mockRateService struct {
	insertFunc        func(ctx context.Context, c service.RateCandidate) error
	enqueueIngestFunc func(ctx context.Context, cs []service.RateCandidate) (int, error)
	resolveFunc       func(ctx context.Context, from, to string, at *time.Time) (*service.ResolvedRate, error)
	listCodesFunc     func(ctx context.Context) ([]string, error)
	listPairsFunc     func(ctx context.Context) ([]string, error)
}

func (m *mockRateService) Insert(ctx context.Context, c service.RateCandidate) error {
	return m.insertFunc(ctx, c)
}

func (m *mockRateService) EnqueueIngest(ctx context.Context, cs []service.RateCandidate) (int, error) {
	return m.enqueueIngestFunc(ctx, cs)
}

func (m *mockRateService) Resolve(ctx context.Context, from, to string, at *time.Time) (*service.ResolvedRate, error) {
	return m.resolveFunc(ctx, from, to, at)
}

func (m *mockRateService) ListCurrencyCodes(ctx context.Context) ([]string, error) {
	return m.listCodesFunc(ctx)
}

func (m *mockRateService) ListPairs(ctx context.Context) ([]string, error) {
	return m.listPairsFunc(ctx)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

var errUnreachable = errors.New("connection refused")
