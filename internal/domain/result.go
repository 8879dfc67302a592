package domain

import "time"

type Suite string

const (
	SuiteRoomBooking Suite = "room-book"
	SuiteSendEmail   Suite = "send-email"
)

type Status string

const (
	StatusPassed     Status = "passed"
	StatusSoftFailed Status = "soft_failed" // terminal check passed, diagnostics did not
	StatusFailed     Status = "failed"      // terminal check failed
	StatusError      Status = "error"       // interaction or infrastructure error
)

// SoftFailure is a non-fatal check that did not hold.
type SoftFailure struct {
	Step    string    `json:"step"`
	Check   string    `json:"check"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type ScenarioResult struct {
	RunID        string
	Suite        Suite
	ScenarioID   string
	Title        string
	Status       Status
	HardError    string
	SoftFailures []SoftFailure
	StartedAt    time.Time
	Duration     time.Duration
}

type Run struct {
	ID         string
	BaseURL    string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// RunSummary aggregates the results recorded for a run.
type RunSummary struct {
	Run
	Total      int
	Passed     int
	SoftFailed int
	Failed     int
	Errored    int
}
