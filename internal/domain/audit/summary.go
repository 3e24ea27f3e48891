package audit

import "math"

// Summary is derived from a session's checkpoint set and never
// persisted. It is recomputed after every checkpoint mutation.
type Summary struct {
	Total           int `json:"total_checkpoints"`
	Completed       int `json:"completed_checkpoints"`
	Failed          int `json:"failed_checkpoints"`
	CriticalPending int `json:"critical_pending"`
	Progress        int `json:"progress"`
}

// Summarize computes the summary for a checkpoint set. Pure and
// idempotent; safe to call on every mutation.
//
// CriticalPending deliberately counts only PENDING critical checkpoints.
// A critical checkpoint sitting IN_PROGRESS does not block completion;
// that mirrors the behavior the product shipped with, ambiguous as it
// is, and is pinned by a test rather than silently corrected.
func Summarize(checkpoints []*Checkpoint) Summary {
	s := Summary{Total: len(checkpoints)}

	for _, cp := range checkpoints {
		switch cp.Status {
		case CheckpointCompleted:
			s.Completed++
		case CheckpointFailed:
			s.Failed++
		}
		if cp.IsCritical && cp.Status == CheckpointPending {
			s.CriticalPending++
		}
	}

	if s.Total > 0 {
		s.Progress = int(math.Round(100 * float64(s.Completed) / float64(s.Total)))
	}

	return s
}

// CanComplete reports whether the session may be finalized: no pending
// critical checkpoint, no failure, and at least one completion.
func (s Summary) CanComplete() bool {
	return s.CriticalPending == 0 && s.Failed == 0 && s.Completed > 0
}
