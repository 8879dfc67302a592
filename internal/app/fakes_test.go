package app_test

import (
	"context"
	"sync"
	"time"

	"hotel_acceptance/internal/app"
	"hotel_acceptance/internal/domain"
)

type fakeAPI struct {
	mu        sync.Mutex
	nextID    int64
	rooms     []domain.Room
	bookings  []domain.Booking
	created   int
	deleted   []int64
	createErr error
	deleteErr map[int64]error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100, rooms: []domain.Room{{ID: 1, Name: "101"}, {ID: 2, Name: "102"}}}
}

func (f *fakeAPI) Login(ctx context.Context) error { return nil }

func (f *fakeAPI) Rooms(ctx context.Context) ([]domain.Room, error) { return f.rooms, nil }

func (f *fakeAPI) CreateBooking(ctx context.Context, roomID int64, r domain.DateRange, g domain.Guest) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Booking{}, f.createErr
	}
	f.nextID++
	f.created++
	b := domain.Booking{ID: f.nextID, RoomID: roomID, FirstName: g.FirstName, LastName: g.LastName, CheckIn: r.Start, CheckOut: r.End}
	f.bookings = append(f.bookings, b)
	return b, nil
}

func (f *fakeAPI) Bookings(ctx context.Context, roomID int64) ([]domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.RoomID == roomID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeAPI) DeleteBooking(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	for i, b := range f.bookings {
		if b.ID == id {
			f.bookings = append(f.bookings[:i], f.bookings[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memLedger struct {
	mu      sync.Mutex
	entries map[int64]domain.LedgerEntry
	records int
}

func newLedger(es ...domain.LedgerEntry) *memLedger {
	l := &memLedger{entries: map[int64]domain.LedgerEntry{}}
	for _, e := range es {
		l.entries[e.BookingID] = e
	}
	return l
}

func (l *memLedger) Record(ctx context.Context, e domain.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records++
	l.entries[e.BookingID] = e
	return nil
}

func (l *memLedger) Forget(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, id)
	return nil
}

func (l *memLedger) Pending(ctx context.Context) ([]domain.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.LedgerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	return out, nil
}

type memStore struct {
	mu       sync.Mutex
	runs     map[string]domain.Run
	results  []domain.ScenarioResult
	getCalls int
}

func newStore() *memStore { return &memStore{runs: map[string]domain.Run{}} }

func (s *memStore) CreateRun(ctx context.Context, r domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	return nil
}

func (s *memStore) FinishRun(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.FinishedAt = &at
	s.runs[id] = r
	return nil
}

func (s *memStore) SaveResult(ctx context.Context, res domain.ScenarioResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
	return nil
}

func (s *memStore) GetRun(ctx context.Context, id string) (domain.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	r, ok := s.runs[id]
	if !ok {
		return domain.RunSummary{}, domain.ErrNotFound
	}
	sum := domain.RunSummary{Run: r}
	for _, res := range s.results {
		if res.RunID != id {
			continue
		}
		sum.Total++
		switch res.Status {
		case domain.StatusPassed:
			sum.Passed++
		case domain.StatusSoftFailed:
			sum.SoftFailed++
		case domain.StatusFailed:
			sum.Failed++
		case domain.StatusError:
			sum.Errored++
		}
	}
	return sum, nil
}

func (s *memStore) ListResults(ctx context.Context, runID string, q domain.ResultsQuery) ([]domain.ScenarioResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ScenarioResult
	for _, r := range s.results {
		if r.RunID != runID || (q.Suite != nil && r.Suite != *q.Suite) || (q.Status != nil && r.Status != *q.Status) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *app.RunView:
		*d = v.(app.RunView)
	case *app.ResultsPage:
		*d = v.(app.ResultsPage)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}
