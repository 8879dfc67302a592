package redisad

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"hotel_acceptance/internal/adapters/observability"
	"hotel_acceptance/internal/domain"
)

// LedgerKey is the hash holding one field per booking the suite created.
const LedgerKey = "hotelsuite:ledger:bookings"

type Ledger struct{ c *redis.Client }

func NewLedger(c *redis.Client) *Ledger { return &Ledger{c: c} }

func (l *Ledger) Record(ctx context.Context, e domain.LedgerEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := l.c.HSet(ctx, LedgerKey, field(e.BookingID), b).Err(); err != nil {
		return fmt.Errorf("ledger record %d: %w", e.BookingID, err)
	}
	observability.ObserveLedger("record")
	return nil
}

func (l *Ledger) Forget(ctx context.Context, bookingID int64) error {
	if err := l.c.HDel(ctx, LedgerKey, field(bookingID)).Err(); err != nil {
		return fmt.Errorf("ledger forget %d: %w", bookingID, err)
	}
	observability.ObserveLedger("forget")
	return nil
}

// Pending lists unremoved bookings, oldest booking id first.
func (l *Ledger) Pending(ctx context.Context) ([]domain.LedgerEntry, error) {
	m, err := l.c.HGetAll(ctx, LedgerKey).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger pending: %w", err)
	}
	out := make([]domain.LedgerEntry, 0, len(m))
	for k, v := range m {
		var e domain.LedgerEntry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("ledger entry %s: %w", k, err)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingID < out[j].BookingID })
	return out, nil
}

func field(id int64) string { return strconv.FormatInt(id, 10) }

var _ domain.Ledger = (*Ledger)(nil)
