package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "hotel_acceptance/internal/adapters/redis"
	"hotel_acceptance/internal/domain"
)

func newServer(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr
}

func TestLedger_RecordPendingForget(t *testing.T) {
	mr := newServer(t)
	l := redisad.NewLedger(redisad.NewClient(mr.Addr(), "", 0))
	ctx := context.Background()

	in := time.Date(2024, 12, 14, 0, 0, 0, 0, time.UTC)
	for _, id := range []int64{9, 3} {
		require.NoError(t, l.Record(ctx, domain.LedgerEntry{
			BookingID: id, RoomID: 1, RunID: "run-1", ScenarioID: "RBK-03",
			CheckIn: in, CheckOut: in.AddDate(0, 0, 3),
		}))
	}

	got, err := l.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 3, got[0].BookingID)
	assert.Equal(t, "RBK-03", got[1].ScenarioID)
	assert.True(t, got[1].CheckOut.Equal(in.AddDate(0, 0, 3)))

	require.NoError(t, l.Forget(ctx, 3))
	got, err = l.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.EqualValues(t, 9, got[0].BookingID)

	// recording the same booking twice keeps one entry
	require.NoError(t, l.Record(ctx, domain.LedgerEntry{BookingID: 9, RunID: "run-2"}))
	keys, err := mr.HKeys(redisad.LedgerKey)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestLedger_CorruptEntry(t *testing.T) {
	mr := newServer(t)
	mr.HSet(redisad.LedgerKey, "1", "{not json")
	l := redisad.NewLedger(redisad.NewClient(mr.Addr(), "", 0))

	_, err := l.Pending(context.Background())
	require.Error(t, err)
}

func TestCache_MissSetHitDel(t *testing.T) {
	mr := newServer(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	var dst map[string]int
	ok, err := c.Get(ctx, "k", &dst)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", map[string]int{"passed": 20}, 60))
	assert.Equal(t, 60*time.Second, mr.TTL("k"))

	ok, err = c.Get(ctx, "k", &dst)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20, dst["passed"])

	require.NoError(t, c.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}
