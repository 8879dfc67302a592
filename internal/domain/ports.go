package domain

import (
	"context"
	"time"
)

// Room is a bookable room as listed by the AUT.
type Room struct {
	ID   int64
	Name string
}

// Booking is a reservation held by the AUT.
type Booking struct {
	ID        int64
	RoomID    int64
	FirstName string
	LastName  string
	CheckIn   time.Time
	CheckOut  time.Time
}

// BookingAPI is the AUT's admin REST surface, used for fixtures and teardown.
type BookingAPI interface {
	Login(ctx context.Context) error
	Rooms(ctx context.Context) ([]Room, error)
	CreateBooking(ctx context.Context, roomID int64, r DateRange, g Guest) (Booking, error)
	Bookings(ctx context.Context, roomID int64) ([]Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
}

// LedgerEntry remembers a booking the suite created in the AUT.
type LedgerEntry struct {
	BookingID  int64     `json:"booking_id"`
	RoomID     int64     `json:"room_id"`
	RunID      string    `json:"run_id"`
	ScenarioID string    `json:"scenario_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
}

// Ledger tracks AUT bookings created by the suite until they are removed,
// so repeated runs do not accumulate state.
type Ledger interface {
	Record(ctx context.Context, e LedgerEntry) error
	Forget(ctx context.Context, bookingID int64) error
	Pending(ctx context.Context) ([]LedgerEntry, error)
}

type RunStore interface {
	// Write paths
	CreateRun(ctx context.Context, r Run) error
	FinishRun(ctx context.Context, id string, at time.Time) error
	SaveResult(ctx context.Context, res ScenarioResult) error

	// Read paths
	GetRun(ctx context.Context, id string) (RunSummary, error)
	ListResults(ctx context.Context, runID string, q ResultsQuery) ([]ScenarioResult, error)
}

type ResultsQuery struct {
	Suite  *Suite
	Status *Status
	Limit  int
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
