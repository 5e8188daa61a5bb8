package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a research run. Completed and failed
// are terminal.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// ResearchRun is one execution of the full pipeline for one niche.
type ResearchRun struct {
	ID            string       `json:"run_id"`
	Niche         string       `json:"niche"`
	Status        RunStatus    `json:"status"`
	ProductsFound int          `json:"products_found"`
	ErrorLog      string       `json:"error_log,omitempty"`
	Trends        TrendContext `json:"trends,omitempty"`
	StartedAt     time.Time    `json:"started_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
}

// NewResearchRun creates a run in the running state with a fresh id.
func NewResearchRun(niche string) *ResearchRun {
	return &ResearchRun{
		ID:        uuid.NewString(),
		Niche:     niche,
		Status:    RunRunning,
		StartedAt: time.Now().UTC(),
	}
}

// Terminal reports whether the run has reached a final state.
func (r *ResearchRun) Terminal() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}
