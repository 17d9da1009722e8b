package importer

import (
	"time"

	"github.com/vmunix/heroimport/pkg/record"
)

// Status is the lifecycle state of an import job.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// validTransitions defines allowed state transitions.
// Key is the "from" status, value is list of valid "to" statuses.
var validTransitions = map[Status][]Status{
	StatusRunning:   {StatusCompleted, StatusFailed},
	StatusCompleted: {}, // terminal
	StatusFailed:    {}, // terminal
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s Status) CanTransitionTo(target Status) bool {
	for _, v := range validTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if this status has no valid outgoing transitions.
func (s Status) IsTerminal() bool {
	valid, ok := validTransitions[s]
	return ok && len(valid) == 0
}

// Owner identifies who submitted a job. Authentication happens upstream.
type Owner struct {
	Name    string
	IsAdmin bool
}

// Job is the durable record of one import.
type Job struct {
	ID           int64         `json:"id"`
	FileName     string        `json:"fileName"`
	Format       record.Format `json:"format"`
	ContentType  string        `json:"contentType,omitempty"`
	Status       Status        `json:"status"`
	Owner        string        `json:"userName"`
	IsAdmin      bool          `json:"isAdmin"`
	TotalRecords int           `json:"totalRecords"`
	SuccessCount int           `json:"successfulRecords"`
	FailCount    int           `json:"failedRecords"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      *time.Time    `json:"endTime,omitempty"`
}

// Percent returns the share of processed records, 0 while the total is unknown.
func (j *Job) Percent() int {
	return percent(j.SuccessCount, j.FailCount, j.TotalRecords)
}

// Upload is one file handed to Submit.
type Upload struct {
	FileName string
	Data     []byte
}

// SubmitResult is the per-file outcome of a batch submission.
type SubmitResult struct {
	FileName string
	Job      *Job
	Err      error
}

func percent(success, failed, total int) int {
	if total <= 0 {
		return 0
	}
	return (success + failed) * 100 / total
}
