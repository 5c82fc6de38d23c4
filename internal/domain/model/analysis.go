// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/oplozada/estadistica/internal/domain/types"
)

// Status is the lifecycle state of an asynchronous analysis.
type Status string

// Analysis states. Pending analyses wait in the queue; done and failed are terminal.
const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Analysis is one submitted concordance evaluation and its outcome.
type Analysis struct {
	ID          string           `json:"id"`
	Fingerprint string           `json:"fingerprint"`
	Status      Status           `json:"status"`
	Alpha       float64          `json:"alpha"`
	Scores      []types.ScoreRow `json:"scores,omitempty"`
	Result      *types.Result    `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Terminal reports whether the analysis will not change any more.
func (a *Analysis) Terminal() bool {
	return a.Status == StatusDone || a.Status == StatusFailed
}

// Complete records a successful evaluation.
func (a *Analysis) Complete(res types.Result, at time.Time) {
	a.Status = StatusDone
	a.Result = &res
	a.Error = ""
	a.UpdatedAt = at
}

// Fail records a failed evaluation.
func (a *Analysis) Fail(err error, at time.Time) {
	a.Status = StatusFailed
	a.Result = nil
	a.Error = err.Error()
	a.UpdatedAt = at
}
