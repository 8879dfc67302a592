package app

import (
	"time"

	"hotel_acceptance/internal/domain"
)

// RunView is the report API shape of a run.
type RunView struct {
	ID         string     `json:"id"`
	BaseURL    string     `json:"base_url"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Total      int        `json:"total"`
	Passed     int        `json:"passed"`
	SoftFailed int        `json:"soft_failed"`
	Failed     int        `json:"failed"`
	Errored    int        `json:"errored"`
	OK         bool       `json:"ok"`
}

type ResultView struct {
	Suite        string               `json:"suite"`
	ScenarioID   string               `json:"scenario_id"`
	Title        string               `json:"title"`
	Status       string               `json:"status"`
	HardError    string               `json:"hard_error,omitempty"`
	SoftFailures []domain.SoftFailure `json:"soft_failures"`
	StartedAt    time.Time            `json:"started_at"`
	DurationMS   int64                `json:"duration_ms"`
}

type ResultsPage struct {
	RunID string       `json:"run_id"`
	Items []ResultView `json:"items"`
}

func mapRun(s domain.RunSummary) RunView {
	return RunView{
		ID:         s.ID,
		BaseURL:    s.BaseURL,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Total:      s.Total,
		Passed:     s.Passed,
		SoftFailed: s.SoftFailed,
		Failed:     s.Failed,
		Errored:    s.Errored,
		// soft failures do not fail a run
		OK: s.Failed == 0 && s.Errored == 0,
	}
}

func mapResults(runID string, rs []domain.ScenarioResult) ResultsPage {
	out := ResultsPage{RunID: runID, Items: make([]ResultView, 0, len(rs))}
	for _, r := range rs {
		soft := r.SoftFailures
		if soft == nil {
			soft = []domain.SoftFailure{}
		}
		out.Items = append(out.Items, ResultView{
			Suite:        string(r.Suite),
			ScenarioID:   r.ScenarioID,
			Title:        r.Title,
			Status:       string(r.Status),
			HardError:    r.HardError,
			SoftFailures: soft,
			StartedAt:    r.StartedAt,
			DurationMS:   r.Duration.Milliseconds(),
		})
	}
	return out
}
