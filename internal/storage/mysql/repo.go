package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hotel_acceptance/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateRun(ctx context.Context, run domain.Run) error {
	_, err := r.db.ExecContext(ctx, insertRunSQL,
		run.ID,
		run.BaseURL,
		run.StartedAt.UTC(),
		valTime(run.FinishedAt),
	)
	return err
}

func (r *Repo) FinishRun(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, finishRunSQL, at.UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) SaveResult(ctx context.Context, res domain.ScenarioResult) error {
	soft := res.SoftFailures
	if soft == nil {
		soft = []domain.SoftFailure{}
	}
	b, err := json.Marshal(soft)
	if err != nil {
		return fmt.Errorf("encode soft failures: %w", err)
	}
	_, err = r.db.ExecContext(ctx, upsertResultSQL,
		res.RunID,
		res.ScenarioID,
		string(res.Suite),
		res.Title,
		string(res.Status),
		valStr(res.HardError),
		string(b),
		res.StartedAt.UTC(),
		res.Duration.Milliseconds(),
	)
	return err
}

func (r *Repo) GetRun(ctx context.Context, id string) (domain.RunSummary, error) {
	var s domain.RunSummary
	var finished sql.NullTime
	err := r.db.QueryRowContext(ctx, getRunSQL, id).
		Scan(&s.ID, &s.BaseURL, &s.StartedAt, &finished)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.RunSummary{}, domain.ErrNotFound
		}
		return domain.RunSummary{}, err
	}
	if finished.Valid {
		t := finished.Time
		s.FinishedAt = &t
	}

	rows, err := r.db.QueryContext(ctx, countByStatusSQL, id)
	if err != nil {
		return domain.RunSummary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return domain.RunSummary{}, err
		}
		s.Total += n
		switch domain.Status(status) {
		case domain.StatusPassed:
			s.Passed = n
		case domain.StatusSoftFailed:
			s.SoftFailed = n
		case domain.StatusFailed:
			s.Failed = n
		case domain.StatusError:
			s.Errored = n
		}
	}
	if err := rows.Err(); err != nil {
		return domain.RunSummary{}, err
	}
	return s, nil
}

func (r *Repo) ListResults(ctx context.Context, runID string, q domain.ResultsQuery) ([]domain.ScenarioResult, error) {
	var sb strings.Builder
	sb.WriteString(listResultsPrefix)
	args := []any{runID}
	if q.Suite != nil {
		sb.WriteString(" AND suite = ?")
		args = append(args, string(*q.Suite))
	}
	if q.Status != nil {
		sb.WriteString(" AND status = ?")
		args = append(args, string(*q.Status))
	}
	sb.WriteString(" ORDER BY suite, scenario_id")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScenarioResult
	for rows.Next() {
		var (
			res       domain.ScenarioResult
			suite     string
			status    string
			hardErr   sql.NullString
			softRaw   []byte
			durMillis int64
		)
		if err := rows.Scan(
			&res.RunID,
			&res.ScenarioID,
			&suite,
			&res.Title,
			&status,
			&hardErr,
			&softRaw,
			&res.StartedAt,
			&durMillis,
		); err != nil {
			return nil, err
		}
		res.Suite = domain.Suite(suite)
		res.Status = domain.Status(status)
		if hardErr.Valid {
			res.HardError = hardErr.String
		}
		if len(softRaw) > 0 {
			if err := json.Unmarshal(softRaw, &res.SoftFailures); err != nil {
				return nil, fmt.Errorf("decode soft failures of %s: %w", res.ScenarioID, err)
			}
		}
		res.Duration = time.Duration(durMillis) * time.Millisecond
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ domain.RunStore = (*Repo)(nil)
