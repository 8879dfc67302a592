package mysql_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_acceptance/internal/domain"
	mysqlrepo "hotel_acceptance/internal/storage/mysql"
)

func newMock(t *testing.T) (*mysqlrepo.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return mysqlrepo.New(db), mock
}

func TestSaveResult_EncodesSoftFailures(t *testing.T) {
	repo, mock := newMock(t)
	started := time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scenario_results")).
		WithArgs("run-1", "RBK-06", "room-book", "blank first name", "soft_failed",
			nil, `[{"step":"fill guest","check":"firstname echo","message":"boom","at":"2024-11-03T10:00:00Z"}]`,
			started, int64(1500)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveResult(context.Background(), domain.ScenarioResult{
		RunID: "run-1", Suite: domain.SuiteRoomBooking, ScenarioID: "RBK-06",
		Title: "blank first name", Status: domain.StatusSoftFailed,
		SoftFailures: []domain.SoftFailure{{Step: "fill guest", Check: "firstname echo", Message: "boom", At: started}},
		StartedAt:    started, Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)
}

func TestSaveResult_EmptySoftFailuresIsArray(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scenario_results")).
		WithArgs("run-1", "SND-01", "send-email", "happy path", "failed",
			"heading not visible", "[]", sqlmock.AnyArg(), int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SaveResult(context.Background(), domain.ScenarioResult{
		RunID: "run-1", Suite: domain.SuiteSendEmail, ScenarioID: "SND-01", Title: "happy path",
		Status: domain.StatusFailed, HardError: "heading not visible",
	}))
}

func TestFinishRun_UnknownRun(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE runs SET finished_at")).
		WithArgs(sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.FinishRun(context.Background(), "missing", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetRun_AggregatesStatuses(t *testing.T) {
	repo, mock := newMock(t)
	started := time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM runs")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "base_url", "started_at", "finished_at"}).
			AddRow("run-1", "https://automationintesting.online", started, nil))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("passed", 17).
			AddRow("soft_failed", 2).
			AddRow("failed", 1))

	s, err := repo.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", s.ID)
	assert.Nil(t, s.FinishedAt)
	assert.Equal(t, 20, s.Total)
	assert.Equal(t, 17, s.Passed)
	assert.Equal(t, 2, s.SoftFailed)
	assert.Equal(t, 1, s.Failed)
	assert.Zero(t, s.Errored)
}

func TestGetRun_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM runs")).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "base_url", "started_at", "finished_at"}))

	_, err := repo.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListResults_Filters(t *testing.T) {
	repo, mock := newMock(t)
	started := time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC)
	suite := domain.SuiteRoomBooking
	status := domain.StatusSoftFailed

	mock.ExpectQuery(regexp.QuoteMeta("AND suite = ? AND status = ? ORDER BY suite, scenario_id LIMIT ?")).
		WithArgs("run-1", "room-book", "soft_failed", 5).
		WillReturnRows(sqlmock.NewRows([]string{
			"run_id", "scenario_id", "suite", "title", "status", "hard_error", "soft_failures", "started_at", "duration_ms",
		}).AddRow("run-1", "RBK-10", "room-book", "first name too short", "soft_failed", nil,
			`[{"step":"book room","check":"nights label","message":"x","at":"2024-11-03T10:00:00Z"}]`, started, int64(2300)))

	got, err := repo.ListResults(context.Background(), "run-1", domain.ResultsQuery{Suite: &suite, Status: &status, Limit: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusSoftFailed, got[0].Status)
	assert.Equal(t, 2300*time.Millisecond, got[0].Duration)
	require.Len(t, got[0].SoftFailures, 1)
	assert.Equal(t, "nights label", got[0].SoftFailures[0].Check)
	assert.Empty(t, got[0].HardError)
}
