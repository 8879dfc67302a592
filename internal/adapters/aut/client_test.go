package aut_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_acceptance/internal/adapters/aut"
	"hotel_acceptance/internal/domain"
)

// fakeAPI is a minimal stand-in for the AUT admin API.
type fakeAPI struct {
	logins       int32
	posts        int32 // booking creations received
	failures     int32 // 503s to serve on booking creation
	throttles    int32 // 429s to serve on booking creation
	roomFailures int32 // 503s to serve on the room list
	deleted      []string
	created      map[string]any
}

func (f *fakeAPI) router(t *testing.T) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.logins, 1)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["username"] != "admin" || in["password"] != "password" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "tok-1"})
		w.WriteHeader(http.StatusOK)
	})
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ck, err := r.Cookie("token"); err != nil || ck.Value != "tok-1" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
			})
		})
		r.Get("/api/room", func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&f.roomFailures, -1) >= 0 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"rooms":[{"roomid":1,"roomName":"101"},{"roomid":2,"roomName":"102"}]}`))
		})
		r.Post("/api/booking", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&f.posts, 1)
			if atomic.AddInt32(&f.throttles, -1) >= 0 {
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			if atomic.AddInt32(&f.failures, -1) >= 0 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f.created))
			dates := f.created["bookingdates"].(map[string]any)
			if dates["checkin"] == "2024-12-14" && f.created["firstname"] == "Dup" {
				w.WriteHeader(http.StatusConflict)
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"bookingid":42}`))
		})
		r.Get("/api/booking", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("roomid"))
			_, _ = w.Write([]byte(`{"bookings":[{"bookingid":7,"roomid":1,"firstname":"John","lastname":"Doe","depositpaid":false,"bookingdates":{"checkin":"2024-12-07","checkout":"2024-12-10"}}]}`))
		})
		r.Delete("/api/booking/{id}", func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if id == "404" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			f.deleted = append(f.deleted, id)
			w.WriteHeader(http.StatusAccepted)
		})
	})
	return r
}

func newClient(t *testing.T, f *fakeAPI) *aut.Client {
	t.Helper()
	ts := httptest.NewServer(f.router(t))
	t.Cleanup(ts.Close)
	cl, err := aut.New(ts.URL+"/api", "admin", "password", 100) // high RPS for tests
	require.NoError(t, err)
	return cl
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := aut.New("http://x", "", "", 1)
	require.Error(t, err)
}

func TestRooms_LogsInLazily(t *testing.T) {
	f := &fakeAPI{}
	cl := newClient(t, f)

	rooms, err := cl.Rooms(ctx(t))
	require.NoError(t, err)
	assert.Equal(t, []domain.Room{{ID: 1, Name: "101"}, {ID: 2, Name: "102"}}, rooms)

	_, err = cl.Rooms(ctx(t))
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.logins), "token is reused")
}

func TestLogin_BadCredentials(t *testing.T) {
	f := &fakeAPI{}
	ts := httptest.NewServer(f.router(t))
	defer ts.Close()
	cl, err := aut.New(ts.URL+"/api", "admin", "nope", 100)
	require.NoError(t, err)

	err = cl.Login(ctx(t))
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRooms_RetriesTransientFailures(t *testing.T) {
	f := &fakeAPI{roomFailures: 2}
	cl := newClient(t, f)

	rooms, err := cl.Rooms(ctx(t))
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

// A 5xx on creation may come after the booking was stored, so it is not
// sent again.
func TestCreateBooking_NoRetryAfterServerError(t *testing.T) {
	f := &fakeAPI{failures: 1}
	cl := newClient(t, f)
	r := domain.MustDateRange(time.Date(2024, 12, 7, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC))

	_, err := cl.CreateBooking(ctx(t), 1, r, domain.Guest{FirstName: "John", LastName: "Doe"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.posts))
}

func TestCreateBooking_RetriesWhenThrottled(t *testing.T) {
	f := &fakeAPI{throttles: 2}
	cl := newClient(t, f)
	r := domain.MustDateRange(time.Date(2024, 12, 7, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC))

	b, err := cl.CreateBooking(ctx(t), 1, r, domain.Guest{FirstName: "John", LastName: "Doe", Email: "john@example.com", Phone: "12345678901"})
	require.NoError(t, err)

	assert.EqualValues(t, 3, atomic.LoadInt32(&f.posts))
	assert.EqualValues(t, 42, b.ID)
	assert.EqualValues(t, 1, b.RoomID)
	assert.Equal(t, r.Start, b.CheckIn)
	assert.Equal(t, "2024-12-10", f.created["bookingdates"].(map[string]any)["checkout"])
	assert.Equal(t, false, f.created["depositpaid"])
}

func TestCreateBooking_Conflict(t *testing.T) {
	f := &fakeAPI{}
	cl := newClient(t, f)
	r := domain.MustDateRange(time.Date(2024, 12, 14, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 17, 0, 0, 0, 0, time.UTC))

	_, err := cl.CreateBooking(ctx(t), 1, r, domain.Guest{FirstName: "Dup", LastName: "Doe"})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestBookingsAndDelete(t *testing.T) {
	f := &fakeAPI{}
	cl := newClient(t, f)

	bs, err := cl.Bookings(ctx(t), 1)
	require.NoError(t, err)
	require.Len(t, bs, 1)
	assert.Equal(t, "John", bs[0].FirstName)
	assert.Equal(t, time.Date(2024, 12, 10, 0, 0, 0, 0, time.UTC), bs[0].CheckOut)

	require.NoError(t, cl.DeleteBooking(ctx(t), bs[0].ID))
	assert.Equal(t, []string{"7"}, f.deleted)

	err = cl.DeleteBooking(ctx(t), 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
