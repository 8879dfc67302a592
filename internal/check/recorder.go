// Package check separates diagnostic (soft) checks from the terminal (hard)
// check of a scenario. Soft failures are collected and reported once at the
// end of the scenario; a hard failure stops it immediately.
package check

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hotel_acceptance/internal/adapters/observability"
	"hotel_acceptance/internal/domain"
)

// HardFailure is returned when the terminal check of a scenario does not hold.
type HardFailure struct {
	Step  string
	Check string
	Err   error
}

func (e *HardFailure) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("%s: %v", e.Check, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Step, e.Check, e.Err)
}

func (e *HardFailure) Unwrap() error { return e.Err }

// SoftFailures is the end-of-scenario report of every soft check that failed.
type SoftFailures struct {
	Scenario string
	Failures []domain.SoftFailure
}

func (e *SoftFailures) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d soft check(s) failed", e.Scenario, len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  - [%s] %s: %s", f.Step, f.Check, f.Message)
	}
	return b.String()
}

type Recorder struct {
	scenario string
	log      zerolog.Logger
	now      func() time.Time

	mu   sync.Mutex
	step string
	soft []domain.SoftFailure
}

func New(scenario string, l zerolog.Logger) *Recorder {
	return &Recorder{scenario: scenario, log: l, now: time.Now}
}

func (r *Recorder) Scenario() string { return r.scenario }

func (r *Recorder) Logger() *zerolog.Logger { return &r.log }

// Step runs fn as a named step. Soft failures recorded inside fn are
// attributed to it; the error fn returns is passed through unchanged.
func (r *Recorder) Step(name string, fn func() error) error {
	r.mu.Lock()
	prev := r.step
	r.step = name
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.step = prev
		r.mu.Unlock()
	}()

	start := r.now()
	r.log.Debug().Str("step", name).Msg("step started")
	err := fn()
	if err != nil {
		r.log.Warn().Err(err).Str("step", name).Dur("duration", r.now().Sub(start)).Msg("step failed")
		return err
	}
	r.log.Debug().Str("step", name).Dur("duration", r.now().Sub(start)).Msg("step finished")
	return nil
}

// Soft records err against check and lets the scenario continue.
// It returns err only when it is a context error, which must not be
// downgraded.
func (r *Recorder) Soft(check string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	r.mu.Lock()
	f := domain.SoftFailure{Step: r.step, Check: check, Message: err.Error(), At: r.now()}
	r.soft = append(r.soft, f)
	r.mu.Unlock()

	observability.ObserveSoftFailure(check)
	r.log.Warn().Str("step", f.Step).Str("check", check).Err(err).Msg("soft check failed")
	return nil
}

// Hard wraps a failed terminal check. A nil err yields nil.
func (r *Recorder) Hard(check string, err error) error {
	if err == nil {
		return nil
	}
	r.mu.Lock()
	step := r.step
	r.mu.Unlock()
	r.log.Error().Str("step", step).Str("check", check).Err(err).Msg("hard check failed")
	return &HardFailure{Step: step, Check: check, Err: err}
}

func (r *Recorder) Failures() []domain.SoftFailure {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SoftFailure, len(r.soft))
	copy(out, r.soft)
	return out
}

// Err returns a *SoftFailures when any soft check failed.
func (r *Recorder) Err() error {
	fs := r.Failures()
	if len(fs) == 0 {
		return nil
	}
	return &SoftFailures{Scenario: r.scenario, Failures: fs}
}

// Status classifies the scenario from its terminal error and soft record.
func (r *Recorder) Status(terminal error) domain.Status {
	var hf *HardFailure
	switch {
	case terminal == nil && len(r.Failures()) == 0:
		return domain.StatusPassed
	case terminal == nil:
		return domain.StatusSoftFailed
	case errors.As(terminal, &hf):
		return domain.StatusFailed
	default:
		return domain.StatusError
	}
}
