package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ratehistory/internal/repository"
)

type mockRateRepo struct {
	mock.Mock
}

func (m *mockRateRepo) Insert(ctx context.Context, rec repository.RateRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockRateRepo) QueryByPairAndTime(ctx context.Context, a, b string, at time.Time) (*repository.RateRecord, error) {
	args := m.Called(ctx, a, b, at)
	rec, _ := args.Get(0).(*repository.RateRecord)
	return rec, args.Error(1)
}

func (m *mockRateRepo) QueryLatestByPair(ctx context.Context, a, b string) (*repository.RateRecord, error) {
	args := m.Called(ctx, a, b)
	rec, _ := args.Get(0).(*repository.RateRecord)
	return rec, args.Error(1)
}

func (m *mockRateRepo) DistinctCodes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	codes, _ := args.Get(0).([]string)
	return codes, args.Error(1)
}

func (m *mockRateRepo) DistinctPairs(ctx context.Context) ([]repository.Pair, error) {
	args := m.Called(ctx)
	pairs, _ := args.Get(0).([]repository.Pair)
	return pairs, args.Error(1)
}

func (m *mockRateRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueIngestTask(ctx context.Context, payload IngestRatePayload) error {
	return m.Called(ctx, payload).Error(0)
}
