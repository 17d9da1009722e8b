// Package importer runs bulk imports of human records: it accepts uploads,
// schedules them on a bounded worker pool, validates and stores each record,
// and tracks per-job progress.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/vmunix/heroimport/internal/events"
	"github.com/vmunix/heroimport/internal/humans"
	"github.com/vmunix/heroimport/pkg/record"
)

//go:generate mockgen -destination=mocks/mock_importer.go -package=mocks . Publisher,RecordLookup

// DefaultMaxBatchFiles is the largest batch SubmitBatch accepts.
const DefaultMaxBatchFiles = 5

// DefaultRecordDelay paces record processing so progress is observable.
const DefaultRecordDelay = 5 * time.Millisecond

// Publisher delivers events to observers. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Records is the record store imports write to.
type Records interface {
	RecordLookup
	Create(ctx context.Context, h *humans.Human) error
}

// Config for the importer.
type Config struct {
	MaxBatchFiles   int
	RecordDelay     time.Duration // pause between records, 0 disables
	ContinueOnError bool          // count failed records and keep going instead of aborting
}

// Deps are the collaborators of an Importer. Bus may be nil.
type Deps struct {
	Records Records
	History *HistoryStore
	Tracker *Tracker
	Pool    *Pool
	Bus     Publisher
}

// Importer owns the job lifecycle.
type Importer struct {
	records   Records
	history   *HistoryStore
	tracker   *Tracker
	validator *Validator
	pool      *Pool
	bus       Publisher
	cfg       Config
	log       *slog.Logger
}

// New creates a new importer.
func New(deps Deps, cfg Config, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBatchFiles < 1 {
		cfg.MaxBatchFiles = DefaultMaxBatchFiles
	}
	return &Importer{
		records:   deps.Records,
		history:   deps.History,
		tracker:   deps.Tracker,
		validator: NewValidator(deps.Records),
		pool:      deps.Pool,
		bus:       deps.Bus,
		cfg:       cfg,
		log:       log,
	}
}

// checkUpload rejects empty files and unsupported suffixes.
func checkUpload(name string, data []byte) (record.Format, error) {
	if len(data) == 0 {
		return "", &FormatError{FileName: name, Err: ErrEmptyFile}
	}
	format, err := record.FormatFromFileName(name)
	if err != nil {
		return "", &FormatError{FileName: name, Err: err}
	}
	return format, nil
}

// Submit creates a RUNNING job for up and schedules it. It returns as soon
// as the job is recorded; processing happens on the worker pool.
// Format problems are reported as *FormatError before anything is stored.
func (i *Importer) Submit(ctx context.Context, up Upload, owner Owner) (*Job, error) {
	name := SanitizeFileName(up.FileName)
	format, err := checkUpload(name, up.Data)
	if err != nil {
		return nil, err
	}

	job := &Job{
		FileName:    name,
		Format:      format,
		ContentType: mimetype.Detect(up.Data).String(),
		Owner:       owner.Name,
		IsAdmin:     owner.IsAdmin,
	}
	if err := i.history.Create(ctx, job); err != nil {
		return nil, &PersistenceError{Op: "create job", Err: err}
	}

	// The zero snapshot must exist before any worker can touch the job.
	if err := i.tracker.Put(Snapshot{ImportID: job.ID, FileName: name, Status: StatusRunning}); err != nil {
		i.log.Warn("initial snapshot rejected", "job_id", job.ID, "error", err)
	}
	i.publish(ctx, &events.ImportCreated{
		BaseEvent: events.NewBaseEvent(events.EventImportCreated, events.EntityImport, job.ID),
		ImportID:  job.ID,
		FileName:  name,
		Format:    string(format),
		Owner:     owner.Name,
	})

	work := *job
	data := up.Data
	err = i.pool.Go(fmt.Sprintf("import-%d", job.ID), func(ctx context.Context) {
		i.run(ctx, work, data)
	})
	if err != nil {
		p := &jobProgress{id: job.ID, fileName: name}
		i.finish(context.WithoutCancel(ctx), p, StatusFailed, "could not schedule import: "+err.Error())
		return nil, fmt.Errorf("schedule import %d: %w", job.ID, err)
	}

	i.log.Info("import submitted",
		"job_id", job.ID,
		"file_name", name,
		"format", format,
		"content_type", job.ContentType,
		"owner", owner.Name,
		"bytes", len(up.Data))
	return job, nil
}

// SubmitBatch submits up to the configured number of files. Files failing
// the format checks are skipped; any other submission error is reported in
// that file's result without affecting the others.
func (i *Importer) SubmitBatch(ctx context.Context, uploads []Upload, owner Owner) ([]SubmitResult, error) {
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}
	if len(uploads) > i.cfg.MaxBatchFiles {
		return nil, fmt.Errorf("%w: %d submitted, at most %d allowed", ErrTooManyFiles, len(uploads), i.cfg.MaxBatchFiles)
	}

	results := make([]SubmitResult, 0, len(uploads))
	for _, up := range uploads {
		job, err := i.Submit(ctx, up, owner)
		var fe *FormatError
		if errors.As(err, &fe) {
			i.log.Warn("skipping upload", "file_name", fe.FileName, "error", fe.Err)
			continue
		}
		results = append(results, SubmitResult{FileName: SanitizeFileName(up.FileName), Job: job, Err: err})
	}
	return results, nil
}

// jobProgress holds the counters of a running job. Only its worker touches it.
type jobProgress struct {
	id       int64
	fileName string
	total    int
	success  int
	failed   int
}

func (p *jobProgress) snapshot(status Status) Snapshot {
	return Snapshot{
		ImportID:  p.id,
		FileName:  p.fileName,
		Status:    status,
		Processed: p.success + p.failed,
		Total:     p.total,
		Success:   p.success,
		Failed:    p.failed,
		Percent:   percent(p.success, p.failed, p.total),
		UpdatedAt: time.Now(),
	}
}

// run processes one job to a terminal status. It never leaves the job RUNNING.
func (i *Importer) run(ctx context.Context, job Job, data []byte) {
	log := i.log.With("job_id", job.ID, "file_name", job.FileName)
	p := &jobProgress{id: job.ID, fileName: job.FileName}

	defer func() {
		if r := recover(); r != nil {
			log.Error("import panicked", "panic", fmt.Sprint(r))
			i.finish(ctx, p, StatusFailed, fmt.Sprintf("internal error: %v", r))
		}
	}()

	log.Info("import started", "format", job.Format)

	candidates, err := record.Parse(data, job.Format)
	if err != nil {
		log.Warn("parse failed", "error", err)
		i.finish(ctx, p, StatusFailed, err.Error())
		return
	}

	p.total = len(candidates)
	if err := i.history.SetTotal(ctx, job.ID, p.total); err != nil {
		if !errors.Is(err, ErrJobNotFound) {
			i.finish(ctx, p, StatusFailed, (&PersistenceError{Op: "save total", Err: err}).Error())
			return
		}
		log.Warn("job history removed while running", "error", err)
	}
	i.put(log, p.snapshot(StatusRunning))

	var failures []string
	for n, c := range candidates {
		if n > 0 && i.cfg.RecordDelay > 0 {
			time.Sleep(i.cfg.RecordDelay)
		}

		if err := i.importOne(ctx, job, c); err != nil {
			p.failed++
			msg := fmt.Sprintf("record %d: %v", n+1, err)
			log.Debug("record rejected", "record", n+1, "error", err)
			i.tick(ctx, log, p)
			if !i.cfg.ContinueOnError {
				i.finish(ctx, p, StatusFailed, msg)
				return
			}
			failures = append(failures, msg)
			continue
		}

		p.success++
		// the terminal snapshot follows the last record
		if p.success+p.failed < p.total {
			i.tick(ctx, log, p)
		}
	}

	var summary string
	if len(failures) > 0 {
		summary = fmt.Sprintf("%d of %d records failed; first: %s", len(failures), p.total, failures[0])
	}
	i.finish(ctx, p, StatusCompleted, summary)
}

func (i *Importer) importOne(ctx context.Context, job Job, c record.Candidate) error {
	if err := i.validator.Validate(ctx, c); err != nil {
		return err
	}

	h := toHuman(c, job.Owner)
	if err := i.records.Create(ctx, h); err != nil {
		if errors.Is(err, humans.ErrDuplicate) {
			// lost a race with a concurrent job after validation
			return &ValidationError{Field: "name", Rule: RuleUniqueLocation, Message: err.Error(), Err: err}
		}
		return &PersistenceError{Op: "create human", Err: err}
	}

	i.publish(ctx, &events.HumanCreated{
		BaseEvent: events.NewBaseEvent(events.EventHumanCreated, events.EntityHuman, h.ID),
		HumanID:   h.ID,
		Name:      h.Name,
		ImportID:  job.ID,
	})
	return nil
}

func toHuman(c record.Candidate, owner string) *humans.Human {
	h := &humans.Human{
		Name:             strings.TrimSpace(*c.Name),
		Coordinates:      humans.Coordinates{X: *c.Coordinates.X, Y: *c.Coordinates.Y},
		RealHero:         *c.RealHero,
		HasToothpick:     c.HasToothpick,
		Mood:             string(*c.Mood),
		ImpactSpeed:      *c.ImpactSpeed,
		MinutesOfWaiting: *c.MinutesOfWaiting,
		Owner:            owner,
	}
	if c.Car.ID != nil {
		h.Car.ID = *c.Car.ID
	} else {
		h.Car.Name = strings.TrimSpace(*c.Car.Name)
	}
	if c.WeaponType != nil {
		w := string(*c.WeaponType)
		h.WeaponType = &w
	}
	return h
}

func (i *Importer) tick(ctx context.Context, log *slog.Logger, p *jobProgress) {
	s := p.snapshot(StatusRunning)
	i.put(log, s)
	i.publish(ctx, events.NewImportProgressed(s.progress()))
}

func (i *Importer) put(log *slog.Logger, s Snapshot) {
	if err := i.tracker.Put(s); err != nil {
		log.Warn("progress snapshot rejected", "status", s.Status, "error", err)
	}
}

// finish persists the terminal status, then stores and publishes the final snapshot.
func (i *Importer) finish(ctx context.Context, p *jobProgress, status Status, msg string) {
	log := i.log.With("job_id", p.id, "file_name", p.fileName)

	if err := i.history.Finish(ctx, p.id, status, p.success, p.failed, msg); err != nil {
		switch {
		case errors.Is(err, ErrJobNotFound):
			log.Warn("job history removed before completion")
		case errors.Is(err, ErrJobFinished):
			log.Warn("job already finished", "status", status)
		default:
			log.Error("failed to persist job result", "status", status, "error", err)
		}
	}

	s := p.snapshot(status)
	s.ErrorMessage = msg
	if status == StatusCompleted {
		s.Percent = 100
	}
	i.put(log, s)

	if status == StatusCompleted {
		i.publish(ctx, events.NewImportCompleted(s.progress()))
	} else {
		i.publish(ctx, events.NewImportFailed(s.progress()))
	}

	log.Info("import finished",
		"status", status,
		"total", p.total,
		"success", p.success,
		"failed", p.failed,
		"error", msg)
}

func (i *Importer) publish(ctx context.Context, e events.Event) {
	if i.bus == nil {
		return
	}
	if err := i.bus.Publish(ctx, e); err != nil {
		i.log.Warn("failed to publish event", "type", e.EventType(), "entity_id", e.EntityID(), "error", err)
	}
}

// Progress returns the live snapshot of a job, or one reconstructed from its
// history record when the job is no longer tracked.
func (i *Importer) Progress(ctx context.Context, id int64) (*Snapshot, error) {
	if s, ok := i.tracker.Get(id); ok {
		return &s, nil
	}
	job, err := i.history.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s := snapshotFromJob(job)
	return &s, nil
}

// Job returns the history record of a job.
func (i *Importer) Job(ctx context.Context, id int64) (*Job, error) {
	return i.history.Get(ctx, id)
}

// History lists jobs visible to owner, newest first. Administrators see
// every job; everyone else sees their own jobs that were not submitted with
// administrator rights.
func (i *Importer) History(ctx context.Context, owner Owner) ([]*Job, error) {
	f := HistoryFilter{}
	if !owner.IsAdmin {
		f.Owner = &owner.Name
		f.ExcludeAdmin = true
	}
	jobs, err := i.history.List(ctx, f)
	if err != nil {
		return nil, &PersistenceError{Op: "list history", Err: err}
	}
	return jobs, nil
}

// ClearHistory deletes all job history. Only administrators may call it;
// for anyone else it returns ErrPermissionDenied and changes nothing.
func (i *Importer) ClearHistory(ctx context.Context, owner Owner) (int64, error) {
	if !owner.IsAdmin {
		return 0, ErrPermissionDenied
	}

	n, err := i.history.Clear(ctx)
	if err != nil {
		return 0, &PersistenceError{Op: "clear history", Err: err}
	}
	dropped := i.tracker.ForgetFinished()

	i.publish(ctx, &events.HistoryCleared{
		BaseEvent: events.NewBaseEvent(events.EventHistoryCleared, events.EntityImport, 0),
		ClearedBy: owner.Name,
		Count:     n,
	})
	i.log.Info("import history cleared", "owner", owner.Name, "jobs", n, "snapshots", dropped)
	return n, nil
}

// Stats returns worker pool occupancy and the number of tracked snapshots.
func (i *Importer) Stats() (PoolStats, int) {
	return i.pool.Stats(), i.tracker.Len()
}
