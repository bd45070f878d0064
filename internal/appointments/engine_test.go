package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hospital-admin-dashboard/internal/apiclient"
	"hospital-admin-dashboard/internal/models"
)

func newTestEngine(store Store, opts ...Option) *Engine {
	opts = append([]Option{WithClock(fixedClock), WithLocation(time.UTC)}, opts...)
	return NewEngine(store, zap.NewNop(), opts...)
}

func loaded(t *testing.T, store *fakeStore, opts ...Option) *Engine {
	t.Helper()
	e := newTestEngine(store, opts...)
	require.NoError(t, e.Load(context.Background()))
	return e
}

func TestEngine_LoadReplacesCollection(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1"}, models.Appointment{ID: "2"})
	e := loaded(t, store)
	assert.Len(t, e.Snapshot(), 2)
	assert.True(t, e.State().Loaded)

	store.list = []models.Appointment{{ID: "3"}}
	require.NoError(t, e.Load(context.Background()))
	assert.Equal(t, []string{"3"}, ids(e.Snapshot()))
}

func TestEngine_LoadFailureKeepsPreviousCollection(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1"})
	e := loaded(t, store)

	store.listErr = &apiclient.Error{Kind: apiclient.KindNetwork, Err: errors.New("dial tcp")}
	err := e.Load(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{"1"}, ids(e.Snapshot()))
	assert.True(t, e.State().Loaded)
	assert.Equal(t, err, e.State().Err)
}

func TestEngine_FirstLoadFailureIsDistinctFromEmpty(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("boom")
	e := newTestEngine(store)

	require.Error(t, e.Load(context.Background()))
	assert.Empty(t, e.Snapshot())
	assert.False(t, e.State().Loaded)
	assert.Error(t, e.State().Err)
}

// slowStore blocks its first List call until released.
type slowStore struct {
	*fakeStore
	entered chan struct{}
	release chan struct{}
	calls   int
}

func (s *slowStore) List(ctx context.Context) ([]models.Appointment, error) {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	s.mu.Unlock()
	if first {
		close(s.entered)
		<-s.release
		return []models.Appointment{{ID: "stale"}}, nil
	}
	return []models.Appointment{{ID: "fresh"}}, nil
}

func TestEngine_StaleLoadIsDiscarded(t *testing.T) {
	store := &slowStore{fakeStore: newFakeStore(), entered: make(chan struct{}), release: make(chan struct{})}
	e := newTestEngine(store)

	done := make(chan error)
	go func() { done <- e.Load(context.Background()) }()
	<-store.entered

	require.NoError(t, e.Load(context.Background()))
	close(store.release)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"fresh"}, ids(e.Snapshot()))
}

func TestEngine_SweepCancelsMissedAndReloadsOnce(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "y", CreatedAt: models.NewTimestamp(day(2024, 1, 10, 9))})
	audit := &recorder{}
	e := loaded(t, store, WithAudit(audit))

	result, err := e.Sweep(context.Background())
	require.NoError(t, err)

	listCalls, cancels, _, _ := store.calls()
	assert.Equal(t, 2, listCalls, "initial load plus exactly one reload")
	assert.Equal(t, []cancelCall{{ID: "y", Reason: "Auto-cancelled due to no-show"}}, cancels)
	assert.Equal(t, []string{"y"}, result.Cancelled)
	assert.True(t, result.Reloaded)

	got, ok := e.Find("y")
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, DeriveStatus(got))
	assert.Equal(t, models.ReasonNoShow, got.CancellationReason)

	entries := audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditSweep, entries[0].Action)
	assert.Equal(t, 1, entries[0].Cancelled)
}

func TestEngine_SweepIsIdempotent(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "y", CreatedAt: models.NewTimestamp(day(2024, 1, 10, 9))})
	e := loaded(t, store)

	_, err := e.Sweep(context.Background())
	require.NoError(t, err)
	second, err := e.Sweep(context.Background())
	require.NoError(t, err)

	listCalls, cancels, _, _ := store.calls()
	assert.Len(t, cancels, 1)
	assert.Equal(t, 2, listCalls)
	assert.Zero(t, second.Candidates)
	assert.False(t, second.Reloaded)
}

func TestEngine_SweepSkipsSerialCancelledAndToday(t *testing.T) {
	yesterday := models.NewTimestamp(day(2024, 1, 10, 9))
	store := newFakeStore(
		models.Appointment{ID: "serial", SerialNumber: "9", CreatedAt: yesterday},
		models.Appointment{ID: "cancelled", Status: models.StatusCancelled, CreatedAt: yesterday},
		models.Appointment{ID: "today", CreatedAt: models.NewTimestamp(day(2024, 1, 11, 8))},
		models.Appointment{ID: "future", CreatedAt: yesterday, AppointmentDate: ts(day(2024, 1, 12, 8))},
	)
	e := loaded(t, store)

	result, err := e.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Candidates)

	listCalls, cancels, _, _ := store.calls()
	assert.Empty(t, cancels)
	assert.Equal(t, 1, listCalls)
}

func TestEngine_SweepToleratesPartialFailure(t *testing.T) {
	yesterday := models.NewTimestamp(day(2024, 1, 10, 9))
	store := newFakeStore(
		models.Appointment{ID: "a", CreatedAt: yesterday},
		models.Appointment{ID: "b", CreatedAt: yesterday},
		models.Appointment{ID: "c", CreatedAt: yesterday},
	)
	store.cancelErr["b"] = &apiclient.Error{Kind: apiclient.KindServer, StatusCode: 500}
	e := loaded(t, store)

	result, err := e.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Candidates)
	assert.Equal(t, []string{"a", "c"}, result.Cancelled)
	assert.Equal(t, []string{"b"}, result.Failed)

	listCalls, _, _, _ := store.calls()
	assert.Equal(t, 2, listCalls)
}

func TestEngine_SweepAllFailedDoesNotReload(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "a", CreatedAt: models.NewTimestamp(day(2024, 1, 10, 9))})
	store.cancelErr["a"] = errors.New("offline")
	e := loaded(t, store)

	result, err := e.Sweep(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Reloaded)

	listCalls, _, _, _ := store.calls()
	assert.Equal(t, 1, listCalls)
}

func TestEngine_RefreshLoadsThenSweeps(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "y", CreatedAt: models.NewTimestamp(day(2024, 1, 10, 9))})
	e := newTestEngine(store)

	result, err := e.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, result.Cancelled)
}

func TestEngine_ApproveRejectsBlankSerialWithoutNetwork(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1"})
	e := loaded(t, store)
	before := e.Snapshot()

	err := e.Approve(context.Background(), "1", "   ")
	require.ErrorIs(t, err, ErrSerialRequired)

	listCalls, _, approvals, _ := store.calls()
	assert.Equal(t, 1, listCalls)
	assert.Zero(t, approvals)
	assert.Equal(t, before, e.Snapshot())
}

func TestEngine_ApproveTrimsReloadsAndClosesEditor(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1"})
	audit := &recorder{}
	e := loaded(t, store, WithAudit(audit))
	require.NoError(t, e.Rows().Set("1", ModeSerial))

	ctx := WithActor(context.Background(), "admin-7")
	require.NoError(t, e.Approve(ctx, "1", " 15 "))

	assert.Equal(t, "15", store.approvals["1"])
	got, _ := e.Find("1")
	assert.Equal(t, StatusComplete, DeriveStatus(got))
	assert.Equal(t, ModeNone, e.Rows().Mode("1"))

	entries := audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditApprove, entries[0].Action)
	assert.Equal(t, "admin-7", entries[0].Actor)
	assert.True(t, entries[0].Success)
}

func TestEngine_ApproveFailureLeavesStateUnchanged(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1"})
	e := loaded(t, store)
	require.NoError(t, e.Rows().Set("1", ModeSerial))
	store.mutateErr = &apiclient.Error{Kind: apiclient.KindServer, StatusCode: 409, Message: "Serial already used"}

	err := e.Approve(context.Background(), "1", "15")
	require.Error(t, err)
	assert.Equal(t, "Serial already used", apiclient.Message(err, "Failed to approve"))
	assert.Equal(t, ModeSerial, e.Rows().Mode("1"))

	listCalls, _, _, _ := store.calls()
	assert.Equal(t, 1, listCalls)
}

func TestEngine_ApproveBlockedWhileEditing(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1"})
	e := loaded(t, store)
	require.NoError(t, e.Rows().Set("1", ModeEdit))

	require.ErrorIs(t, e.Approve(context.Background(), "1", "4"), ErrModeConflict)
}

func TestEngine_UpdateCoercesAndKeepsSerial(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1", PatientName: "Old", SerialNumber: "7"})
	e := loaded(t, store)

	form := ToEditForm(e.Snapshot()[0])
	form.PatientName = "New"
	form.Age = "40"
	form.SerialNumber = ""
	require.NoError(t, e.Update(context.Background(), "1", form))

	payload, ok := store.edits["1"].(models.AppointmentPayload)
	require.True(t, ok)
	assert.Equal(t, "7", payload.SerialNumber)
	require.NotNil(t, payload.Age)
	assert.Equal(t, 40, *payload.Age)

	got, _ := e.Find("1")
	assert.Equal(t, "New", got.PatientName)
	assert.Equal(t, "7", got.SerialNumber)
}

func TestEngine_UpdateValidationBlocksRequest(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1", PatientName: "Old"})
	e := loaded(t, store)

	err := e.Update(context.Background(), "1", EditForm{})
	require.Error(t, err)
	assert.True(t, apiclient.IsKind(err, apiclient.KindValidation))
	_, _, _, edits := store.calls()
	assert.Zero(t, edits)
}

func TestEngine_CancelIsTerminal(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1"})
	e := loaded(t, store)

	require.NoError(t, e.Cancel(context.Background(), "1", ""))
	got, _ := e.Find("1")
	assert.Equal(t, StatusCancelled, DeriveStatus(got))
	assert.Equal(t, models.ReasonManual, got.CancellationReason)

	require.ErrorIs(t, e.Cancel(context.Background(), "1", "again"), ErrAlreadyCancelled)
	require.ErrorIs(t, e.Approve(context.Background(), "1", "3"), ErrAlreadyCancelled)
	require.ErrorIs(t, e.Update(context.Background(), "1", EditForm{PatientName: "x"}), ErrAlreadyCancelled)

	_, cancels, _, _ := store.calls()
	assert.Len(t, cancels, 1)
}

func TestEngine_UnknownAppointment(t *testing.T) {
	e := loaded(t, newFakeStore())
	require.ErrorIs(t, e.Cancel(context.Background(), "nope", ""), ErrNotFound)
}

func TestEngine_BusyRowRejectsSecondMutation(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1"})
	e := loaded(t, store)

	require.NoError(t, e.Rows().acquire("1"))
	require.ErrorIs(t, e.Cancel(context.Background(), "1", ""), ErrRowBusy)
	e.Rows().release("1")
	require.NoError(t, e.Cancel(context.Background(), "1", ""))
}

func TestEngine_SweepReadsZonelessDatesInEngineZone(t *testing.T) {
	restore := time.Local
	time.Local = time.UTC
	t.Cleanup(func() { time.Local = restore })

	var list models.AppointmentList
	require.NoError(t, json.Unmarshal([]byte(`{"appointments":[
		{"id":"tonight","createdAt":"2024-01-10T15:00:00","appointmentDate":"2024-01-11T02:00:00"},
		{"id":"yesterday","createdAt":"2024-01-10T23:30:00"}
	]}`), &list))

	newYork := time.FixedZone("EST", -5*60*60)
	store := newFakeStore(list.Appointments...)
	e := NewEngine(store, zap.NewNop(),
		WithClock(func() time.Time { return time.Date(2024, 1, 11, 9, 0, 0, 0, newYork) }),
		WithLocation(newYork),
	)

	result, err := e.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"yesterday"}, result.Cancelled)

	got, _ := e.Find("tonight")
	assert.Equal(t, StatusPending, DeriveStatus(got))
}

func TestEngine_SweepSkipsRowApprovedMidPass(t *testing.T) {
	yesterday := models.NewTimestamp(day(2024, 1, 10, 9))
	store := newFakeStore(
		models.Appointment{ID: "1", CreatedAt: yesterday},
		models.Appointment{ID: "2", CreatedAt: yesterday},
	)
	e := loaded(t, store)

	store.onCancel = func(id string) {
		if id == "1" {
			require.NoError(t, e.Approve(context.Background(), "2", "A-7"))
		}
	}

	result, err := e.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Candidates)
	assert.Equal(t, []string{"1"}, result.Cancelled)
	assert.Equal(t, []string{"2"}, result.Skipped)

	_, cancels, _, _ := store.calls()
	assert.Equal(t, []cancelCall{{ID: "1", Reason: models.ReasonNoShow}}, cancels)

	got, _ := e.Find("2")
	assert.Equal(t, "A-7", got.SerialNumber)
	assert.Equal(t, StatusComplete, DeriveStatus(got))
}

func TestEngine_LoadDropsEditorsOfVanishedRows(t *testing.T) {
	store := newFakeStore(models.Appointment{ID: "1"}, models.Appointment{ID: "2"})
	e := loaded(t, store)
	require.NoError(t, e.Rows().Set("1", ModeEdit))
	require.NoError(t, e.Rows().Set("2", ModeSerial))

	store.list = []models.Appointment{{ID: "2"}}
	require.NoError(t, e.Load(context.Background()))
	assert.Equal(t, map[string]Mode{"2": ModeSerial}, e.Rows().Snapshot())

	store.listErr = errors.New("boom")
	require.Error(t, e.Load(context.Background()))
	assert.Equal(t, map[string]Mode{"2": ModeSerial}, e.Rows().Snapshot())
}
