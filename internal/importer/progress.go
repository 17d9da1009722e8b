package importer

import (
	"sync"
	"time"

	"github.com/vmunix/heroimport/internal/events"
)

// Snapshot is the live progress of one job. It exists only in memory.
type Snapshot struct {
	ImportID     int64     `json:"importId"`
	FileName     string    `json:"fileName"`
	Status       Status    `json:"status"`
	Processed    int       `json:"processedRecords"`
	Total        int       `json:"totalRecords"`
	Success      int       `json:"successfulRecords"`
	Failed       int       `json:"failedRecords"`
	Percent      int       `json:"progress"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (s Snapshot) progress() events.Progress {
	return events.Progress{
		ImportID:     s.ImportID,
		FileName:     s.FileName,
		Status:       string(s.Status),
		Processed:    s.Processed,
		Total:        s.Total,
		Success:      s.Success,
		Failed:       s.Failed,
		Percent:      s.Percent,
		ErrorMessage: s.ErrorMessage,
	}
}

// snapshotFromJob reconstructs progress from the durable record.
func snapshotFromJob(j *Job) Snapshot {
	updated := j.StartTime
	if j.EndTime != nil {
		updated = *j.EndTime
	}
	return Snapshot{
		ImportID:     j.ID,
		FileName:     j.FileName,
		Status:       j.Status,
		Processed:    j.SuccessCount + j.FailCount,
		Total:        j.TotalRecords,
		Success:      j.SuccessCount,
		Failed:       j.FailCount,
		Percent:      j.Percent(),
		ErrorMessage: j.ErrorMessage,
		UpdatedAt:    updated,
	}
}

// Tracker holds the latest snapshot per job. Each key is written only by the
// worker running that job; readers may be concurrent.
type Tracker struct {
	mu        sync.RWMutex
	snapshots map[int64]Snapshot
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{snapshots: make(map[int64]Snapshot)}
}

// Put stores s as the latest snapshot of its job. Once a terminal snapshot
// is stored, further writes fail with ErrSnapshotFinal.
func (t *Tracker) Put(s Snapshot) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.snapshots[s.ImportID]; ok {
		if cur.Status.IsTerminal() {
			return ErrSnapshotFinal
		}
		if s.Processed < cur.Processed {
			return ErrStaleSnapshot
		}
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	t.snapshots[s.ImportID] = s
	return nil
}

// Get returns the latest snapshot for a job.
func (t *Tracker) Get(id int64) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.snapshots[id]
	return s, ok
}

// Len returns the number of tracked jobs.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.snapshots)
}

// ForgetFinished drops every terminal snapshot and returns how many were removed.
// Running jobs keep their snapshots.
func (t *Tracker) ForgetFinished() int {
	return t.PruneFinished(0)
}

// PruneFinished drops terminal snapshots last updated more than olderThan ago.
func (t *Tracker) PruneFinished(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, s := range t.snapshots {
		if s.Status.IsTerminal() && !s.UpdatedAt.After(cutoff) {
			delete(t.snapshots, id)
			removed++
		}
	}
	return removed
}
