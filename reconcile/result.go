package reconcile

import (
	"hotel-pms/models"
)

// Action is the runner's per-room outcome category.
type Action string

const (
	ActionNone                  Action = "none"
	ActionUpdated               Action = "updated"
	ActionSkippedManualOverride Action = "skipped_manual_override"
	ActionOverstayCorrected     Action = "overstay_corrected"
	ActionCritical              Action = "critical"
	ActionError                 Action = "error"
)

// Result is the stable per-room outcome shape. The daily sync job, the manual
// sync endpoint and the availability read all consume these fields; do not
// rename them.
type Result struct {
	RoomNumber string            `json:"room_number"`
	OldStatus  models.RoomStatus `json:"old_status"`
	NewStatus  models.RoomStatus `json:"new_status"`
	Reason     Reason            `json:"reason"`
	Action     Action            `json:"action"`
	Error      string            `json:"error,omitempty"`
}

type Summary struct {
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

func (s *Summary) add(r Result) {
	switch r.Action {
	case ActionUpdated, ActionOverstayCorrected:
		s.Updated++
	case ActionNone:
		s.Unchanged++
	case ActionSkippedManualOverride:
		s.Skipped++
	case ActionCritical, ActionError:
		s.Errors++
	}
}

// BatchResult aggregates one reconcile-all run. RunID correlates log lines
// and audit details produced by the same pass.
type BatchResult struct {
	RunID   string   `json:"run_id"`
	AsOf    string   `json:"as_of"`
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}
