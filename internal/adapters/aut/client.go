// Package aut talks to the admin REST API of the application under test.
// The suite uses it to provision preconditions and to remove the bookings
// it created; it never replaces the browser for the behaviour under test.
package aut

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hotel_acceptance/internal/adapters/observability"
	"hotel_acceptance/internal/domain"
)

type Client struct {
	base     string
	hc       *http.Client
	user     string
	password string
	rl       *rate.Limiter

	mu    sync.Mutex
	token string
}

func New(base, user, password string, rps int) (*Client, error) {
	if user == "" || password == "" {
		return nil, fmt.Errorf("admin credentials are required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		hc:       &http.Client{Timeout: 20 * time.Second},
		user:     user,
		password: password,
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- wire types ----

type bookingDates struct {
	CheckIn  string `json:"checkin"`
	CheckOut string `json:"checkout"`
}

type bookingBody struct {
	BookingID   int64        `json:"bookingid,omitempty"`
	RoomID      int64        `json:"roomid"`
	FirstName   string       `json:"firstname"`
	LastName    string       `json:"lastname"`
	DepositPaid bool         `json:"depositpaid"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Dates       bookingDates `json:"bookingdates"`
}

func (b bookingBody) toDomain() (domain.Booking, error) {
	in, err := time.Parse(time.DateOnly, b.Dates.CheckIn)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("booking %d checkin: %w", b.BookingID, err)
	}
	out, err := time.Parse(time.DateOnly, b.Dates.CheckOut)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("booking %d checkout: %w", b.BookingID, err)
	}
	return domain.Booking{
		ID: b.BookingID, RoomID: b.RoomID,
		FirstName: b.FirstName, LastName: b.LastName,
		CheckIn: in, CheckOut: out,
	}, nil
}

// ---- Public API ----

func (c *Client) Login(ctx context.Context) error {
	body := map[string]string{"username": c.user, "password": c.password}
	var out struct {
		Token string `json:"token"`
	}
	resp, err := c.send(ctx, "auth/login", http.MethodPost, c.base+"/auth/login", body, &out, false)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	tok := out.Token
	if tok == "" {
		for _, ck := range resp.Cookies() {
			if ck.Name == "token" {
				tok = ck.Value
			}
		}
	}
	if tok == "" {
		return fmt.Errorf("login: %w: no token in response", domain.ErrUnauthorized)
	}
	c.mu.Lock()
	c.token = tok
	c.mu.Unlock()
	return nil
}

func (c *Client) Rooms(ctx context.Context) ([]domain.Room, error) {
	var out struct {
		Rooms []struct {
			RoomID   int64  `json:"roomid"`
			RoomName string `json:"roomName"`
		} `json:"rooms"`
	}
	if err := c.call(ctx, "room", http.MethodGet, c.base+"/room", nil, &out); err != nil {
		return nil, err
	}
	rooms := make([]domain.Room, 0, len(out.Rooms))
	for _, r := range out.Rooms {
		rooms = append(rooms, domain.Room{ID: r.RoomID, Name: r.RoomName})
	}
	return rooms, nil
}

func (c *Client) CreateBooking(ctx context.Context, roomID int64, r domain.DateRange, g domain.Guest) (domain.Booking, error) {
	in := bookingBody{
		RoomID:    roomID,
		FirstName: g.FirstName,
		LastName:  g.LastName,
		Email:     g.Email,
		Phone:     g.Phone,
		Dates: bookingDates{
			CheckIn:  r.Start.Format(time.DateOnly),
			CheckOut: r.End.Format(time.DateOnly),
		},
	}
	var out struct {
		BookingID int64       `json:"bookingid"`
		Booking   bookingBody `json:"booking"`
	}
	if err := c.call(ctx, "booking", http.MethodPost, c.base+"/booking", in, &out); err != nil {
		return domain.Booking{}, fmt.Errorf("create booking %s: %w", r, err)
	}
	b := out.Booking
	if b.BookingID == 0 {
		b.BookingID = out.BookingID
	}
	if b.Dates.CheckIn == "" {
		b.RoomID, b.FirstName, b.LastName, b.Dates = in.RoomID, in.FirstName, in.LastName, in.Dates
	}
	return b.toDomain()
}

func (c *Client) Bookings(ctx context.Context, roomID int64) ([]domain.Booking, error) {
	var out struct {
		Bookings []bookingBody `json:"bookings"`
	}
	u := c.base + "/booking?roomid=" + strconv.FormatInt(roomID, 10)
	if err := c.call(ctx, "booking", http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	bs := make([]domain.Booking, 0, len(out.Bookings))
	for _, b := range out.Bookings {
		d, err := b.toDomain()
		if err != nil {
			return nil, err
		}
		bs = append(bs, d)
	}
	return bs, nil
}

func (c *Client) DeleteBooking(ctx context.Context, id int64) error {
	u := fmt.Sprintf("%s/booking/%d", c.base, id)
	if err := c.call(ctx, "booking/{id}", http.MethodDelete, u, nil, nil); err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	return nil
}

// ---- Internals ----

// call sends an authenticated request, logging in first when no token is
// held and once more when the token was rejected.
func (c *Client) call(ctx context.Context, endpoint, method, url string, body, out any) error {
	if c.currentToken() == "" {
		if err := c.Login(ctx); err != nil {
			return err
		}
	}
	_, err := c.send(ctx, endpoint, method, url, body, out, true)
	if errors.Is(err, domain.ErrUnauthorized) {
		if err := c.Login(ctx); err != nil {
			return err
		}
		_, err = c.send(ctx, endpoint, method, url, body, out, true)
	}
	return err
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// send performs one logical request with client-side rate limiting and
// retries, decoding a JSON response into out when out is non-nil.
// Retries on 429, honoring Retry-After when provided. Transient 5xx and
// network errors are retried only for idempotent methods: a POST that
// failed that way may still have been applied.
func (c *Client) send(ctx context.Context, endpoint, method, url string, body, out any, auth bool) (*http.Response, error) {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = b
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if tok := c.currentToken(); auth && tok != "" {
			req.AddCookie(&http.Cookie{Name: "token", Value: tok})
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-acceptance/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("aut", endpoint, 0, time.Since(start))
			// network error or context canceled
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if !idempotent(method) {
				return nil, lastErr
			}
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr
		}
		observability.ObserveExternal("aut", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted:
			defer resp.Body.Close()
			if out == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				return resp, nil
			}
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
				return resp, err
			}
			return resp, nil

		case http.StatusNoContent:
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return resp, nil

		case http.StatusNotFound:
			resp.Body.Close()
			return resp, domain.ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return resp, domain.ErrUnauthorized

		case http.StatusConflict:
			resp.Body.Close()
			return resp, domain.ErrConflict

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if resp.StatusCode != http.StatusTooManyRequests && !idempotent(method) {
				return nil, lastErr
			}
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return resp, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return nil, lastErr
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

var _ domain.BookingAPI = (*Client)(nil)
