package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hotel_acceptance/internal/adapters/observability"
	"hotel_acceptance/internal/check"
	"hotel_acceptance/internal/domain"
	"hotel_acceptance/internal/ui"
)

// RunnerDeps wires a Runner. API, Ledger and Store are optional: without
// API there is no provisioning or teardown, without Store results are only
// returned.
type RunnerDeps struct {
	API      domain.BookingAPI
	Ledger   domain.Ledger
	Store    domain.RunStore
	Log      zerolog.Logger
	Now      func() time.Time
	Teardown bool
}

// Runner executes scenarios against a ui.Driver and records their results
// under one run id.
type Runner struct {
	runID    string
	api      domain.BookingAPI
	ledger   domain.Ledger
	store    domain.RunStore
	log      zerolog.Logger
	now      func() time.Time
	teardown bool

	mu     sync.Mutex
	roomID int64
}

func NewRunner(runID string, d RunnerDeps) *Runner {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Runner{
		runID:    runID,
		api:      d.API,
		ledger:   d.Ledger,
		store:    d.Store,
		log:      d.Log,
		now:      d.Now,
		teardown: d.Teardown,
	}
}

func (r *Runner) RunID() string { return r.runID }

// Begin registers the run with the store.
func (r *Runner) Begin(ctx context.Context, baseURL string) error {
	if r.store == nil {
		return nil
	}
	return r.store.CreateRun(ctx, domain.Run{ID: r.runID, BaseURL: baseURL, StartedAt: r.now()})
}

func (r *Runner) Finish(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	return r.store.FinishRun(ctx, r.runID, r.now())
}

// RunBooking executes one room booking scenario on drv. The returned error
// is the terminal failure, or the soft failure report when only diagnostic
// checks failed.
func (r *Runner) RunBooking(ctx context.Context, drv ui.Driver, sc BookingScenario) (domain.ScenarioResult, error) {
	return r.run(ctx, domain.SuiteRoomBooking, sc.ID, sc.Title, func(rec *check.Recorder) error {
		page := ui.NewHomePage(drv, r.now)
		if err := page.Open(ctx); err != nil {
			return err
		}
		req := sc.Request
		if sc.Precondition == RangeAlreadyBooked {
			cleanup, err := r.provision(ctx, rec, page, sc)
			if err != nil {
				return err
			}
			defer cleanup()
		}
		if err := page.BookRoom(ctx, rec, req); err != nil {
			return err
		}
		err := page.Await(ctx, rec, sc.Expect)
		if sc.Expect.Success && req.Range != nil {
			r.cleanup(ctx, rec, sc.ID, *req.Range, req.Guest)
		}
		return err
	})
}

// RunNightDisplay selects each range of nd in turn. The first label that
// does not match ends the scenario.
func (r *Runner) RunNightDisplay(ctx context.Context, drv ui.Driver, nd NightDisplay) (domain.ScenarioResult, error) {
	return r.run(ctx, domain.SuiteRoomBooking, nd.ID, nd.Title, func(rec *check.Recorder) error {
		page := ui.NewHomePage(drv, r.now)
		if err := page.Open(ctx); err != nil {
			return err
		}
		if err := page.OpenBooking(ctx, rec); err != nil {
			return err
		}
		for i, rng := range nd.Ranges {
			err := rec.Step(fmt.Sprintf("Check Display %02d", i+1), func() error {
				return page.CheckNights(ctx, rec, rng)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Runner) RunContact(ctx context.Context, drv ui.Driver, sc ContactScenario) (domain.ScenarioResult, error) {
	return r.run(ctx, domain.SuiteSendEmail, sc.ID, sc.Title, func(rec *check.Recorder) error {
		page := ui.NewHomePage(drv, r.now)
		if err := page.Open(ctx); err != nil {
			return err
		}
		if err := page.SendMessage(ctx, rec, sc.Message); err != nil {
			return err
		}
		return page.Await(ctx, rec, sc.Expect)
	})
}

func (r *Runner) run(ctx context.Context, suite domain.Suite, id, title string, body func(rec *check.Recorder) error) (domain.ScenarioResult, error) {
	l := observability.ScenarioLogger(r.log, string(suite), id).With().Str("run_id", r.runID).Logger()
	rec := check.New(id, l)
	started := r.now()
	l.Info().Str("title", title).Msg("scenario started")

	terminal := body(rec)

	res := domain.ScenarioResult{
		RunID:        r.runID,
		Suite:        suite,
		ScenarioID:   id,
		Title:        title,
		Status:       rec.Status(terminal),
		SoftFailures: rec.Failures(),
		StartedAt:    started,
		Duration:     r.now().Sub(started),
	}
	if terminal != nil {
		res.HardError = terminal.Error()
	}
	observability.ObserveScenario(string(suite), string(res.Status), res.Duration)

	if r.store != nil {
		if err := r.store.SaveResult(context.WithoutCancel(ctx), res); err != nil {
			l.Warn().Err(err).Msg("save result failed")
		}
	}

	ev := l.Info()
	if res.Status != domain.StatusPassed {
		ev = l.Warn()
	}
	ev.Str("status", string(res.Status)).
		Int("soft_failures", len(res.SoftFailures)).
		Dur("duration", res.Duration).
		Msg("scenario finished")

	if terminal != nil {
		return res, terminal
	}
	return res, rec.Err()
}

// provision makes sure the scenario's range is already booked. With API
// access the booking is created directly and removed afterwards; without
// it the booking is made through the form first.
func (r *Runner) provision(ctx context.Context, rec *check.Recorder, page *ui.HomePage, sc BookingScenario) (func(), error) {
	req := sc.Request
	if req.Range == nil {
		return nil, fmt.Errorf("%s: precondition needs a date range", sc.ID)
	}
	rng := *req.Range
	noop := func() {}

	if r.api == nil {
		err := rec.Step("Book a room first", func() error {
			if err := page.BookRoom(ctx, rec, req); err != nil {
				return err
			}
			return page.Await(ctx, rec, bookingOK())
		})
		if err != nil {
			return nil, err
		}
		if err := page.CloseConfirmation(ctx, rec); err != nil {
			return nil, err
		}
		return noop, nil
	}

	var b domain.Booking
	err := rec.Step("Provision existing booking", func() error {
		roomID, err := r.room(ctx)
		if err != nil {
			return err
		}
		b, err = r.api.CreateBooking(ctx, roomID, rng, req.Guest)
		if errors.Is(err, domain.ErrConflict) {
			// a leftover from an earlier run holds the range already
			rec.Logger().Info().Str("range", rng.String()).Msg("range already booked")
			b = domain.Booking{}
			return nil
		}
		if err != nil {
			return err
		}
		r.remember(ctx, rec, sc.ID, b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("provision %s: %w", rng, err)
	}
	return func() {
		if b.ID != 0 {
			r.remove(ctx, rec, b.ID)
		}
		// also catches a second booking the AUT should have refused
		r.cleanup(ctx, rec, sc.ID, rng, req.Guest)
	}, nil
}

// cleanup removes the bookings the scenario made for guest over rng.
func (r *Runner) cleanup(ctx context.Context, rec *check.Recorder, scenarioID string, rng domain.DateRange, g domain.Guest) {
	if r.api == nil || !r.teardown {
		return
	}
	ctx = context.WithoutCancel(ctx)
	roomID, err := r.room(ctx)
	if err != nil {
		rec.Logger().Warn().Err(err).Msg("teardown: rooms lookup failed")
		return
	}
	bs, err := r.api.Bookings(ctx, roomID)
	if err != nil {
		rec.Logger().Warn().Err(err).Msg("teardown: bookings lookup failed")
		return
	}
	for _, b := range bs {
		if !matches(b, rng, g) {
			continue
		}
		r.remember(ctx, rec, scenarioID, b)
		r.remove(ctx, rec, b.ID)
	}
}

func (r *Runner) remember(ctx context.Context, rec *check.Recorder, scenarioID string, b domain.Booking) {
	if r.ledger == nil {
		return
	}
	err := r.ledger.Record(ctx, domain.LedgerEntry{
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		RunID:      r.runID,
		ScenarioID: scenarioID,
		CheckIn:    b.CheckIn,
		CheckOut:   b.CheckOut,
	})
	if err != nil {
		rec.Logger().Warn().Err(err).Int64("booking_id", b.ID).Msg("ledger record failed")
	}
}

// remove deletes a booking and forgets it. A failed delete stays in the
// ledger for the janitor.
func (r *Runner) remove(ctx context.Context, rec *check.Recorder, id int64) {
	if !r.teardown {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := r.api.DeleteBooking(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		rec.Logger().Warn().Err(err).Int64("booking_id", id).Msg("teardown: delete failed")
		return
	}
	if r.ledger != nil {
		if err := r.ledger.Forget(ctx, id); err != nil {
			rec.Logger().Warn().Err(err).Int64("booking_id", id).Msg("ledger forget failed")
		}
	}
	rec.Logger().Debug().Int64("booking_id", id).Msg("teardown: booking removed")
}

// room is the room behind the first "Book this room" button.
func (r *Runner) room(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roomID != 0 {
		return r.roomID, nil
	}
	rooms, err := r.api.Rooms(ctx)
	if err != nil {
		return 0, err
	}
	if len(rooms) == 0 {
		return 0, fmt.Errorf("rooms: %w", domain.ErrNotFound)
	}
	r.roomID = rooms[0].ID
	return r.roomID, nil
}

func matches(b domain.Booking, rng domain.DateRange, g domain.Guest) bool {
	return sameDay(b.CheckIn, rng.Start) &&
		strings.EqualFold(b.FirstName, g.FirstName) &&
		strings.EqualFold(b.LastName, g.LastName)
}

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}
