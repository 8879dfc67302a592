package app

import (
	"context"
	"fmt"
	"time"

	"hotel_acceptance/internal/domain"
)

type QueryService struct {
	repo     domain.RunStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.RunStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// GetRun summarises a run. Unfinished runs are not cached since their
// counts still move.
func (s *QueryService) GetRun(ctx context.Context, id string) (RunView, error) {
	key := "run:" + id
	var rv RunView
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &rv); ok {
			return rv, nil
		}
	}
	sum, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return RunView{}, err
	}
	rv = mapRun(sum)
	if s.cache != nil && rv.FinishedAt != nil {
		_ = s.cache.Set(ctx, key, rv, int(s.cacheTTL.Seconds()))
	}
	return rv, nil
}

func (s *QueryService) ListResults(ctx context.Context, runID string, q domain.ResultsQuery) (ResultsPage, error) {
	// the run must exist and be finished for the page to be cacheable
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return ResultsPage{}, err
	}

	key := fmt.Sprintf("results:%s:%s:%s:%d", runID, deref(q.Suite), deref(q.Status), q.Limit)
	var out ResultsPage
	if s.cache != nil && run.FinishedAt != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}
	rs, err := s.repo.ListResults(ctx, runID, q)
	if err != nil {
		return ResultsPage{}, err
	}
	out = mapResults(runID, rs)
	if s.cache != nil && run.FinishedAt != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

func deref[T ~string](p *T) string {
	if p == nil {
		return "*"
	}
	return string(*p)
}
