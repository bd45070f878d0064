package appointments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"hospital-admin-dashboard/internal/metrics"
	"hospital-admin-dashboard/internal/models"
)

// Store is the data-access surface the engine mutates through.
type Store interface {
	List(ctx context.Context) ([]models.Appointment, error)
	Edit(ctx context.Context, id string, payload any) error
	Approve(ctx context.Context, id, serialNumber string) error
	Cancel(ctx context.Context, id, reason string) error
}

// AuditRecorder persists a record of each mutation and sweep run.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

type actorKey struct{}

// WithActor tags ctx with the user performing an action, for the audit trail.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok {
		return actor
	}
	return ""
}

// LoadState describes the most recent load attempt.
type LoadState struct {
	Loaded   bool
	LoadedAt time.Time
	Err      error
}

// Engine owns the appointment collection for the dashboard session.
// Load, Sweep, Approve, Update and Cancel are the only ways to change it.
type Engine struct {
	store   Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	audit   AuditRecorder
	now     func() time.Time
	loc     *time.Location
	rows    *RowModes

	// issued is the token of the most recently started load.
	issued atomic.Uint64

	mu           sync.RWMutex
	appointments []models.Appointment
	applied      uint64
	state        LoadState
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the time zone that defines "today" and day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithAudit attaches an audit recorder.
func WithAudit(r AuditRecorder) Option {
	return func(e *Engine) { e.audit = r }
}

// NewEngine creates an Engine with an empty collection.
func NewEngine(store Store, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		logger:       logger,
		now:          time.Now,
		loc:          time.Local,
		rows:         NewRowModes(),
		appointments: []models.Appointment{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Location returns the engine's time zone.
func (e *Engine) Location() *time.Location { return e.loc }

// Rows returns the per-row editor tracker.
func (e *Engine) Rows() *RowModes { return e.rows }

// Snapshot returns a copy of the collection in server order.
func (e *Engine) Snapshot() []models.Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]models.Appointment(nil), e.appointments...)
}

// State returns the outcome of the last load.
func (e *Engine) State() LoadState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Find returns the appointment with id from the current collection.
func (e *Engine) Find(id string) (models.Appointment, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, a := range e.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}

// Load fetches the whole collection and replaces the in-memory copy. On
// failure the previous collection is kept and the error is recorded.
// A response that arrives after a newer load has been applied is dropped.
func (e *Engine) Load(ctx context.Context) error {
	token := e.issued.Add(1)
	list, err := e.store.List(ctx)
	e.metrics.ObserveLoad(err)

	e.mu.Lock()
	defer e.mu.Unlock()

	if token < e.applied {
		e.logger.Debug("Discarding stale appointment load",
			zap.Uint64("token", token),
			zap.Uint64("applied", e.applied),
		)
		return err
	}

	if err != nil {
		e.state.Err = err
		e.logger.Error("Failed to load appointments", zap.Error(err))
		return err
	}

	e.appointments = list
	e.applied = token
	e.state = LoadState{Loaded: true, LoadedAt: e.now()}

	present := make(map[string]struct{}, len(list))
	for _, a := range list {
		present[a.ID] = struct{}{}
	}
	e.rows.prune(present)
	e.logger.Debug("Loaded appointments", zap.Int("count", len(list)))
	return nil
}

// Refresh loads the collection and then runs the sweep over it.
func (e *Engine) Refresh(ctx context.Context) (SweepResult, error) {
	if err := e.Load(ctx); err != nil {
		return SweepResult{}, err
	}
	return e.Sweep(ctx)
}

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Candidates int      `json:"candidates"`
	Cancelled  []string `json:"cancelled"`
	Failed     []string `json:"failed"`
	Skipped    []string `json:"skipped"`
	Reloaded   bool     `json:"reloaded"`
}

// Missed returns the appointments the sweep would cancel right now.
func (e *Engine) Missed() []models.Appointment {
	return e.missedAt(e.now())
}

func (e *Engine) missedAt(now time.Time) []models.Appointment {
	var missed []models.Appointment
	for _, a := range e.Snapshot() {
		if IsMissed(a, now, e.loc) {
			missed = append(missed, a)
		}
	}
	return missed
}

// Sweep cancels every missed appointment with the no-show reason. Failures
// are logged and do not stop the pass. When at least one cancellation
// succeeds the collection is reloaded once. The returned error is only
// the reload error. A candidate that was approved, cancelled or removed
// after the candidates were collected is skipped.
func (e *Engine) Sweep(ctx context.Context) (SweepResult, error) {
	started := time.Now()
	now := e.now()
	missed := e.missedAt(now)
	result := SweepResult{
		Candidates: len(missed),
		Cancelled:  []string{},
		Failed:     []string{},
		Skipped:    []string{},
	}

	for _, a := range missed {
		if err := e.rows.acquire(a.ID); err != nil {
			result.Skipped = append(result.Skipped, a.ID)
			continue
		}
		if current, ok := e.Find(a.ID); !ok || !IsMissed(current, now, e.loc) {
			e.rows.release(a.ID)
			e.logger.Debug("Appointment changed before auto-cancellation, skipping",
				zap.String("appointment_id", a.ID),
			)
			result.Skipped = append(result.Skipped, a.ID)
			continue
		}
		err := e.store.Cancel(ctx, a.ID, models.ReasonNoShow)
		e.rows.release(a.ID)
		if err != nil {
			e.logger.Warn("Auto-cancellation failed",
				zap.String("appointment_id", a.ID),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, a.ID)
			continue
		}
		result.Cancelled = append(result.Cancelled, a.ID)
	}

	e.metrics.ObserveSweep(result.Candidates, len(result.Cancelled), len(result.Failed), time.Since(started))
	if result.Candidates > 0 {
		e.logger.Info("Auto-cancellation sweep finished",
			zap.Int("candidates", result.Candidates),
			zap.Int("cancelled", len(result.Cancelled)),
			zap.Int("failed", len(result.Failed)),
			zap.Int("skipped", len(result.Skipped)),
		)
		e.record(ctx, models.AuditEntry{
			Action:     models.AuditSweep,
			Success:    len(result.Failed) == 0,
			Detail:     models.ReasonNoShow,
			Candidates: result.Candidates,
			Cancelled:  len(result.Cancelled),
			Failed:     len(result.Failed),
		})
	}

	if len(result.Cancelled) == 0 {
		return result, nil
	}
	result.Reloaded = true
	if err := e.Load(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// Approve assigns a serial number. Blank serials are rejected before any
// request is made.
func (e *Engine) Approve(ctx context.Context, id, serialNumber string) error {
	serial, err := NormalizeSerial(serialNumber)
	if err != nil {
		return err
	}
	if _, err := e.mutable(id, ModeEdit); err != nil {
		return err
	}

	return e.mutate(ctx, "approve", id, serial, func() error {
		return e.store.Approve(ctx, id, serial)
	})
}

// Update writes the edit form back to the API.
func (e *Engine) Update(ctx context.Context, id string, form EditForm) error {
	if err := ValidateForm(form); err != nil {
		return err
	}
	current, err := e.mutable(id, ModeSerial)
	if err != nil {
		return err
	}

	payload := ToPayload(form)
	// A serial number, once assigned, is never cleared from here.
	if payload.SerialNumber == "" {
		payload.SerialNumber = strings.TrimSpace(current.SerialNumber)
	}

	return e.mutate(ctx, "update", id, "", func() error {
		return e.store.Edit(ctx, id, payload)
	})
}

// Cancel moves an appointment to the terminal cancelled state.
func (e *Engine) Cancel(ctx context.Context, id, reason string) error {
	if _, err := e.mutable(id, ModeNone); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = models.ReasonManual
	}

	return e.mutate(ctx, "cancel", id, reason, func() error {
		return e.store.Cancel(ctx, id, reason)
	})
}

// RecordCreate audits a booking forwarded to the API. A successful booking
// reloads the collection so the new row is listed; the reload error is
// returned.
func (e *Engine) RecordCreate(ctx context.Context, id string, err error) error {
	e.metrics.ObserveMutation(string(models.AuditCreate), err)
	entry := models.AuditEntry{
		Action:        models.AuditCreate,
		AppointmentID: id,
		Success:       err == nil,
	}
	if err != nil {
		entry.Detail = err.Error()
		e.record(ctx, entry)
		return nil
	}
	e.record(ctx, entry)
	return e.Load(ctx)
}

// mutable checks that id exists, is not cancelled and is not open in the
// conflicting editor mode.
func (e *Engine) mutable(id string, conflicting Mode) (models.Appointment, error) {
	a, ok := e.Find(id)
	if !ok {
		return models.Appointment{}, ErrNotFound
	}
	if DeriveStatus(a) == StatusCancelled {
		return a, ErrAlreadyCancelled
	}
	if conflicting != ModeNone && e.rows.Mode(id) == conflicting {
		return a, ErrModeConflict
	}
	return a, nil
}

func (e *Engine) mutate(ctx context.Context, op, id, detail string, call func() error) error {
	if err := e.rows.acquire(id); err != nil {
		return err
	}
	defer e.rows.release(id)

	err := call()
	e.metrics.ObserveMutation(op, err)
	entry := models.AuditEntry{
		Action:        models.AuditAction(op),
		AppointmentID: id,
		Success:       err == nil,
		Detail:        detail,
	}
	if err != nil {
		entry.Detail = err.Error()
		e.record(ctx, entry)
		e.logger.Warn("Appointment mutation failed",
			zap.String("operation", op),
			zap.String("appointment_id", id),
			zap.Error(err),
		)
		return err
	}
	e.record(ctx, entry)

	_ = e.rows.Set(id, ModeNone)
	if err := e.Load(ctx); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Warn("Reload after mutation failed",
			zap.String("operation", op),
			zap.String("appointment_id", id),
			zap.Error(err),
		)
	}
	return nil
}

func (e *Engine) record(ctx context.Context, entry models.AuditEntry) {
	if e.audit == nil {
		return
	}
	if entry.Actor == "" {
		entry.Actor = actorFrom(ctx)
	}
	e.audit.Record(ctx, entry)
}
