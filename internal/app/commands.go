package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"hotel_acceptance/internal/domain"
)

// PurgeReport counts what a purge did with each pending ledger entry.
type PurgeReport struct {
	Deleted int
	Missing int // already gone from the AUT
	Failed  int
	Errs    []error
}

// CleanupService removes AUT bookings the suite left behind.
type CleanupService struct {
	api     domain.BookingAPI
	ledger  domain.Ledger
	workers int64
	log     zerolog.Logger
}

func NewCleanupService(api domain.BookingAPI, l domain.Ledger, workers int, log zerolog.Logger) *CleanupService {
	if workers < 1 {
		workers = 1
	}
	return &CleanupService{api: api, ledger: l, workers: int64(workers), log: log}
}

func (s *CleanupService) Pending(ctx context.Context) ([]domain.LedgerEntry, error) {
	return s.ledger.Pending(ctx)
}

// Purge deletes every pending booking with at most workers requests in
// flight. Entries are forgotten once the AUT no longer holds the booking.
func (s *CleanupService) Purge(ctx context.Context) (PurgeReport, error) {
	entries, err := s.ledger.Pending(ctx)
	if err != nil {
		return PurgeReport{}, err
	}

	var (
		mu  sync.Mutex
		rep PurgeReport
		wg  sync.WaitGroup
	)
	sem := semaphore.NewWeighted(s.workers)
	for _, e := range entries {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return rep, err
		}
		wg.Add(1)
		go func(e domain.LedgerEntry) {
			defer wg.Done()
			defer sem.Release(1)

			outcome, err := s.purgeOne(ctx, e)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				rep.Failed++
				rep.Errs = append(rep.Errs, err)
			case outcome == "missing":
				rep.Missing++
			default:
				rep.Deleted++
			}
		}(e)
	}
	wg.Wait()
	s.log.Info().
		Int("deleted", rep.Deleted).
		Int("missing", rep.Missing).
		Int("failed", rep.Failed).
		Msg("purge completed")
	return rep, nil
}

func (s *CleanupService) purgeOne(ctx context.Context, e domain.LedgerEntry) (string, error) {
	outcome := "deleted"
	err := s.api.DeleteBooking(ctx, e.BookingID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		outcome = "missing"
	case err != nil:
		s.log.Warn().Int64("booking_id", e.BookingID).Str("scenario", e.ScenarioID).Err(err).Msg("purge failed")
		return "", fmt.Errorf("booking %d: %w", e.BookingID, err)
	}
	if err := s.ledger.Forget(ctx, e.BookingID); err != nil {
		return "", fmt.Errorf("forget %d: %w", e.BookingID, err)
	}
	s.log.Debug().Int64("booking_id", e.BookingID).Str("outcome", outcome).Msg("purged")
	return outcome, nil
}
