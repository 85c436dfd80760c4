package service

import (
	"context"
	"sort"
)

// ListCurrencyCodes returns every code stored on either side of a pair, deduplicated and ascending.
func (s *RateService) ListCurrencyCodes(ctx context.Context) ([]string, error) {
	codes, err := s.repo.DistinctCodes(ctx)
	if err != nil {
		s.log.Errorw("DB error listing currency codes", "error", err)
		return nil, ErrInternal
	}

	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// ListPairs returns the distinct canonical pairs as 6-character "FROMTO" strings.
// The result is sorted ascending, which is also (from, to) order since codes are fixed-width.
func (s *RateService) ListPairs(ctx context.Context) ([]string, error) {
	pairs, err := s.repo.DistinctPairs(ctx)
	if err != nil {
		s.log.Errorw("DB error listing currency pairs", "error", err)
		return nil, ErrInternal
	}

	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.From+p.To)
	}
	sort.Strings(out)
	return out, nil
}
