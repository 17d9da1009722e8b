package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// HistoryFilter specifies criteria for listing jobs.
type HistoryFilter struct {
	Owner        *string
	ExcludeAdmin bool
	Limit        int
}

// HistoryStore persists import jobs.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a history store.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Create inserts j as a RUNNING job with zero counts.
// Sets ID, Status and StartTime on j.
func (s *HistoryStore) Create(ctx context.Context, j *Job) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO import_jobs (file_name, format, content_type, status, owner, is_admin, start_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.FileName, j.Format, j.ContentType, StatusRunning, j.Owner, j.IsAdmin, now,
	)
	if err != nil {
		return fmt.Errorf("insert import job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	j.ID = id
	j.Status = StatusRunning
	j.StartTime = now
	j.TotalRecords, j.SuccessCount, j.FailCount = 0, 0, 0
	return nil
}

// SetTotal records the parsed record count of a running job.
func (s *HistoryStore) SetTotal(ctx context.Context, id int64, total int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE import_jobs SET total_records = ?
		WHERE id = ? AND status = ?`,
		total, id, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("set total for job %d: %w", id, err)
	}
	return s.checkUpdated(ctx, id, result)
}

// Finish moves a running job to a terminal status with its final counts.
// Returns ErrJobFinished if the job is already terminal and ErrJobNotFound if
// it no longer exists.
func (s *HistoryStore) Finish(ctx context.Context, id int64, status Status, success, failed int, errMsg string) error {
	if !StatusRunning.CanTransitionTo(status) {
		return fmt.Errorf("finish job %d: invalid status %s", id, status)
	}

	var msg *string
	if errMsg != "" {
		msg = &errMsg
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE import_jobs
		SET status = ?, success_count = ?, fail_count = ?, error_message = ?, end_time = ?
		WHERE id = ? AND status = ?`,
		status, success, failed, msg, time.Now().UTC(), id, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("finish job %d: %w", id, err)
	}
	return s.checkUpdated(ctx, id, result)
}

// checkUpdated distinguishes a missing job from a terminal one when a
// guarded update touched no rows.
func (s *HistoryStore) checkUpdated(ctx context.Context, id int64, result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return ErrJobFinished
}

const selectJob = `
	SELECT id, file_name, format, content_type, status, owner, is_admin, total_records,
		success_count, fail_count, error_message, start_time, end_time
	FROM import_jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	j := &Job{}
	var errMsg sql.NullString
	var end sql.NullTime
	err := row.Scan(&j.ID, &j.FileName, &j.Format, &j.ContentType, &j.Status, &j.Owner, &j.IsAdmin,
		&j.TotalRecords, &j.SuccessCount, &j.FailCount, &errMsg, &j.StartTime, &end)
	if err != nil {
		return nil, err
	}
	j.ErrorMessage = errMsg.String
	if end.Valid {
		t := end.Time
		j.EndTime = &t
	}
	return j, nil
}

// Get retrieves a job by ID.
// Returns ErrJobNotFound if the job does not exist.
func (s *HistoryStore) Get(ctx context.Context, id int64) (*Job, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx, selectJob+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %d: %w", id, ErrJobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	return j, nil
}

// List returns jobs matching the filter, highest ID first.
func (s *HistoryStore) List(ctx context.Context, f HistoryFilter) ([]*Job, error) {
	var conditions []string
	var args []any

	if f.Owner != nil {
		conditions = append(conditions, "owner = ?")
		args = append(args, *f.Owner)
	}
	if f.ExcludeAdmin {
		conditions = append(conditions, "is_admin = 0")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := selectJob + whereClause + ` ORDER BY id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list import jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan import job: %w", err)
		}
		results = append(results, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import jobs: %w", err)
	}

	return results, nil
}

// Clear deletes every job and returns how many were removed.
func (s *HistoryStore) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM import_jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear import jobs: %w", err)
	}
	return result.RowsAffected()
}

// FailInterrupted marks jobs left RUNNING by a previous process as FAILED.
func (s *HistoryStore) FailInterrupted(ctx context.Context, reason string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE import_jobs SET status = ?, error_message = ?, end_time = ?
		WHERE status = ?`,
		StatusFailed, reason, time.Now().UTC(), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted jobs: %w", err)
	}
	return result.RowsAffected()
}
