package importer

import (
	"errors"
	"fmt"

	"github.com/vmunix/heroimport/pkg/record"
)

var (
	// ErrEmptyFile indicates an upload with no content.
	ErrEmptyFile = errors.New("file is empty")

	// ErrUnsupportedFormat indicates an upload that is neither .csv nor .json.
	ErrUnsupportedFormat = record.ErrUnsupportedFormat

	// ErrNoFiles indicates a batch submission without any files.
	ErrNoFiles = errors.New("no files provided")

	// ErrTooManyFiles indicates a batch larger than the configured limit.
	ErrTooManyFiles = errors.New("too many files")

	// ErrJobNotFound indicates the import job doesn't exist.
	ErrJobNotFound = errors.New("import job not found")

	// ErrJobFinished indicates a write to a job that already reached a terminal status.
	ErrJobFinished = errors.New("import job already finished")

	// ErrPermissionDenied indicates a non-administrator attempted an admin-only operation.
	ErrPermissionDenied = errors.New("permission denied: only administrators can clear import history")

	// ErrSnapshotFinal indicates a progress write after the job's terminal snapshot.
	ErrSnapshotFinal = errors.New("progress snapshot is final")

	// ErrStaleSnapshot indicates a progress write that would move processed count backwards.
	ErrStaleSnapshot = errors.New("progress snapshot is older than the stored one")

	// ErrPoolClosed indicates the worker pool no longer accepts work.
	ErrPoolClosed = errors.New("worker pool is closed")
)

// FormatError rejects an upload before any job is created.
type FormatError struct {
	FileName string
	Err      error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %v", e.FileName, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports the first rule a candidate violated.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError wraps a store failure during an import write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
