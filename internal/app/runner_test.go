package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_acceptance/internal/app"
	"hotel_acceptance/internal/check"
	"hotel_acceptance/internal/domain"
	"hotel_acceptance/internal/fixtures"
	"hotel_acceptance/internal/ui"
	"hotel_acceptance/internal/ui/uitest"
)

var page = ui.NewHomePage(nil, nil)

func bookingScenario(t *testing.T, id string) app.BookingScenario {
	t.Helper()
	for _, sc := range app.BookingScenarios(today, fixtures.MustLoad("").RoomBook) {
		if sc.ID == id {
			return sc
		}
	}
	t.Fatalf("no scenario %s", id)
	return app.BookingScenario{}
}

func contactScenario(t *testing.T, id string) app.ContactScenario {
	t.Helper()
	for _, sc := range app.ContactScenarios(fixtures.MustLoad("").SendEmail) {
		if sc.ID == id {
			return sc
		}
	}
	t.Fatalf("no scenario %s", id)
	return app.ContactScenario{}
}

// readyForm makes every diagnostic check of a booking over r pass.
func readyForm(drv *uitest.Driver, r *domain.DateRange) {
	drv.Show(page.Firstname, page.Lastname, page.Email, page.Phone)
	if r != nil {
		drv.Show(ui.Text(domain.MonthLabel(r.Start)), ui.NightsText(*r))
	}
}

func newRunner(api domain.BookingAPI, l domain.Ledger, st domain.RunStore) *app.Runner {
	return app.NewRunner("run-1", app.RunnerDeps{API: api, Ledger: l, Store: st, Log: zerolog.Nop(), Now: clock, Teardown: true})
}

func TestRunBooking_SuccessIsTornDown(t *testing.T) {
	sc := bookingScenario(t, "RBK-01")
	drv := uitest.New()
	readyForm(drv, sc.Request.Range)
	drv.OnClick(page.BookBtn, func(d *uitest.Driver) { d.Show(ui.Heading(domain.HeadingBookingSuccess)) })

	api, led, st := newFakeAPI(), newLedger(), newStore()
	// the form booking as the AUT stores it
	_, err := api.CreateBooking(context.Background(), 1, *sc.Request.Range, sc.Request.Guest)
	require.NoError(t, err)
	// someone else's booking over the same range stays
	_, err = api.CreateBooking(context.Background(), 1, *sc.Request.Range, domain.Guest{FirstName: "Mary", LastName: "Major"})
	require.NoError(t, err)

	res, err := newRunner(api, led, st).RunBooking(context.Background(), drv, sc)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPassed, res.Status)
	assert.Equal(t, []int64{101}, api.deleted)
	assert.Equal(t, 1, led.records)
	assert.Empty(t, led.entries)

	require.Len(t, st.results, 1)
	assert.Equal(t, "RBK-01", st.results[0].ScenarioID)
	assert.Equal(t, domain.SuiteRoomBooking, st.results[0].Suite)
	assert.Equal(t, "run-1", st.results[0].RunID)
}

func TestRunBooking_TeardownFailureStaysInLedger(t *testing.T) {
	sc := bookingScenario(t, "RBK-01")
	drv := uitest.New()
	readyForm(drv, sc.Request.Range)
	drv.OnClick(page.BookBtn, func(d *uitest.Driver) { d.Show(ui.Heading(domain.HeadingBookingSuccess)) })

	api, led := newFakeAPI(), newLedger()
	b, err := api.CreateBooking(context.Background(), 1, *sc.Request.Range, sc.Request.Guest)
	require.NoError(t, err)
	api.deleteErr = map[int64]error{b.ID: errors.New("502 bad gateway")}

	_, err = newRunner(api, led, nil).RunBooking(context.Background(), drv, sc)
	require.NoError(t, err)
	require.Contains(t, led.entries, b.ID)
	assert.Equal(t, "RBK-01", led.entries[b.ID].ScenarioID)
}

func TestRunBooking_AlreadyBookedProvisionedThroughAPI(t *testing.T) {
	sc := bookingScenario(t, "RBK-03")
	drv := uitest.New()
	readyForm(drv, sc.Request.Range)
	drv.OnClick(page.BookBtn, func(d *uitest.Driver) { d.Show(ui.Text(domain.MsgAlreadyBooked).FirstMatch()) })

	api, led := newFakeAPI(), newLedger()
	res, err := newRunner(api, led, nil).RunBooking(context.Background(), drv, sc)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPassed, res.Status)

	assert.Equal(t, 1, api.created)
	assert.Equal(t, []int64{101}, api.deleted)
	assert.Empty(t, led.entries)
	assert.Equal(t, 1, drv.Count("click "+page.BookBtn.String()), "only the scenario's own submission goes through the form")
}

func TestRunBooking_AlreadyBookedWithoutAPIBooksThroughFormFirst(t *testing.T) {
	sc := bookingScenario(t, "RBK-03")
	drv := uitest.New()
	readyForm(drv, sc.Request.Range)
	heading := ui.Heading(domain.HeadingBookingSuccess)
	clicks := 0
	drv.OnClick(page.BookBtn, func(d *uitest.Driver) {
		clicks++
		if clicks == 1 {
			d.Show(heading)
			return
		}
		d.Show(ui.Text(domain.MsgAlreadyBooked).FirstMatch())
	})
	drv.OnClick(page.CloseBtn, func(d *uitest.Driver) { d.Hide(heading) })

	res, err := newRunner(nil, nil, nil).RunBooking(context.Background(), drv, sc)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPassed, res.Status)
	assert.Equal(t, 2, drv.Count("click "+page.BookBtn.String()))
	assert.Equal(t, 1, drv.Count("click "+page.CloseBtn.String()))
}

func TestRunBooking_ConflictingLeftoverStillSatisfiesPrecondition(t *testing.T) {
	sc := bookingScenario(t, "RBK-03")
	drv := uitest.New()
	readyForm(drv, sc.Request.Range)
	drv.OnClick(page.BookBtn, func(d *uitest.Driver) { d.Show(ui.Text(domain.MsgAlreadyBooked).FirstMatch()) })

	api := newFakeAPI()
	api.createErr = domain.ErrConflict

	res, err := newRunner(api, newLedger(), nil).RunBooking(context.Background(), drv, sc)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPassed, res.Status)
}

func TestRunBooking_TerminalCheckFails(t *testing.T) {
	sc := bookingScenario(t, "RBK-01")
	drv := uitest.New()
	readyForm(drv, sc.Request.Range)
	st := newStore()

	res, err := newRunner(newFakeAPI(), newLedger(), st).RunBooking(context.Background(), drv, sc)
	var hf *check.HardFailure
	require.ErrorAs(t, err, &hf)
	assert.Equal(t, "Check result", hf.Step)
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.NotEmpty(t, res.HardError)
	require.Len(t, st.results, 1)
	assert.Equal(t, domain.StatusFailed, st.results[0].Status)
}

func TestRunBooking_SoftFailuresReportedOnce(t *testing.T) {
	sc := bookingScenario(t, "RBK-10")
	drv := uitest.New()
	drv.Show(page.Firstname, page.Lastname, page.Email, page.Phone)
	// neither the month header nor the nights label appear
	drv.OnClick(page.BookBtn, func(d *uitest.Driver) { d.Show(ui.Text("size must be between 3 and 18").FirstMatch()) })

	res, err := newRunner(nil, nil, nil).RunBooking(context.Background(), drv, sc)
	var sf *check.SoftFailures
	require.ErrorAs(t, err, &sf)
	assert.Len(t, sf.Failures, 2)
	assert.Equal(t, domain.StatusSoftFailed, res.Status)
	assert.Len(t, res.SoftFailures, 2)
	assert.Empty(t, res.HardError)
}

func TestRunBooking_PastRangeJudgedOnTheAnswer(t *testing.T) {
	sc := bookingScenario(t, "RBK-04")

	t.Run("late acceptance fails", func(t *testing.T) {
		drv := uitest.New()
		readyForm(drv, sc.Request.Range)
		drv.OnClickAfter(page.BookBtn, 200*time.Millisecond, func(d *uitest.Driver) {
			d.Show(ui.Heading(domain.HeadingBookingSuccess))
		})

		res, err := newRunner(nil, nil, nil).RunBooking(context.Background(), drv, sc)
		var hf *check.HardFailure
		require.ErrorAs(t, err, &hf)
		assert.Equal(t, domain.StatusFailed, res.Status)
	})

	t.Run("late rejection passes", func(t *testing.T) {
		drv := uitest.New()
		readyForm(drv, sc.Request.Range)
		drv.OnClickAfter(page.BookBtn, 200*time.Millisecond, func(d *uitest.Driver) {})

		res, err := newRunner(nil, nil, nil).RunBooking(context.Background(), drv, sc)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPassed, res.Status)
	})
}

func TestRunBooking_InteractionErrorIsNotAFailedCheck(t *testing.T) {
	sc := bookingScenario(t, "RBK-01")
	drv := uitest.New()
	drv.FailOn("open /", errors.New("net::ERR_NAME_NOT_RESOLVED"))

	res, err := newRunner(nil, nil, nil).RunBooking(context.Background(), drv, sc)
	require.Error(t, err)
	assert.Equal(t, domain.StatusError, res.Status)
	assert.Len(t, drv.Calls(), 1)
}

func TestRunNightDisplay(t *testing.T) {
	nd := app.NightDisplayScenario(today)
	drv := uitest.New()
	readyForm(drv, nil)
	drv.Show(ui.Text(domain.MonthLabel(today)))
	for _, r := range nd.Ranges {
		drv.Show(ui.NightsText(r))
	}

	res, err := newRunner(nil, nil, nil).RunNightDisplay(context.Background(), drv, nd)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPassed, res.Status)
	assert.Zero(t, drv.Count("click "+page.BookBtn.String()), "nothing is submitted")
	assert.Equal(t, 4, drv.Count("up"))
}

func TestRunNightDisplay_StopsAtFirstWrongLabel(t *testing.T) {
	nd := app.NightDisplayScenario(today)
	drv := uitest.New()
	readyForm(drv, nil)
	drv.Show(ui.Text(domain.MonthLabel(today)), ui.NightsText(nd.Ranges[0]), ui.NightsText(nd.Ranges[1]))

	res, err := newRunner(nil, nil, nil).RunNightDisplay(context.Background(), drv, nd)
	var hf *check.HardFailure
	require.ErrorAs(t, err, &hf)
	assert.Equal(t, "Check Display 03", hf.Step)
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.Equal(t, 3, drv.Count("up"))
}

func TestRunContact(t *testing.T) {
	cases := []struct {
		id    string
		shows ui.Element
	}{
		{"SND-01", ui.Heading("Thanks for getting in touch John")},
		{"SND-02", ui.Text("Name may not be blank").FirstMatch()},
		{"SND-20", ui.Text("Message must be between 20 and 2000 characters").FirstMatch()},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			sc := contactScenario(t, tc.id)
			drv := uitest.New()
			drv.OnClick(page.SubmitBtn, func(d *uitest.Driver) { d.Show(tc.shows) })

			res, err := newRunner(nil, nil, nil).RunContact(context.Background(), drv, sc)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusPassed, res.Status)
			assert.Equal(t, domain.SuiteSendEmail, res.Suite)
		})
	}
}

func TestRunContact_AcceptedWhenRejectionExpected(t *testing.T) {
	sc := contactScenario(t, "SND-07")
	drv := uitest.New()
	// the AUT greets the sender, so the generic heading matches
	drv.OnClick(page.SubmitBtn, func(d *uitest.Driver) { d.Show(ui.Heading(domain.HeadingContactSuccess)) })

	res, err := newRunner(nil, nil, nil).RunContact(context.Background(), drv, sc)
	var hf *check.HardFailure
	require.ErrorAs(t, err, &hf)
	assert.Equal(t, domain.StatusFailed, res.Status)
}

func TestRunnerBeginFinish(t *testing.T) {
	st := newStore()
	r := newRunner(nil, nil, st)
	require.NoError(t, r.Begin(context.Background(), "https://automationintesting.online"))
	require.NoError(t, r.Finish(context.Background()))

	sum, err := st.GetRun(context.Background(), r.RunID())
	require.NoError(t, err)
	require.NotNil(t, sum.FinishedAt)
	assert.Equal(t, today, sum.StartedAt)
}
