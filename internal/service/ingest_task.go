package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ratehistory/internal/repository"
)

// TaskTypeIngestRate is the Asynq task type for a single observation from the ingestion adapter.
const TaskTypeIngestRate = "rate:ingest"

// IngestRatePayload is the payload structure for rate ingestion Asynq tasks.
// Rate travels as a string so no precision is lost in JSON.
type IngestRatePayload struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Rate      string    `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

func newIngestRatePayload(c RateCandidate) IngestRatePayload {
	return IngestRatePayload{
		From:      c.From,
		To:        c.To,
		Rate:      repository.RateString(c.Rate),
		Timestamp: c.Timestamp.UTC(),
	}
}

// Candidate converts the payload back into an insert candidate.
func (p IngestRatePayload) Candidate() (RateCandidate, error) {
	rate, err := decimal.NewFromString(p.Rate)
	if err != nil {
		return RateCandidate{}, fmt.Errorf("%w: rate %q is not a decimal", ErrValidation, p.Rate)
	}
	return RateCandidate{From: p.From, To: p.To, Rate: rate, Timestamp: p.Timestamp}, nil
}
