package appointments

import (
	"context"
	"sync"
	"time"

	"hospital-admin-dashboard/internal/models"
)

// today is the fixed clock used across the package tests.
var today = time.Date(2024, 1, 11, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func ts(t time.Time) *models.Timestamp {
	v := models.NewTimestamp(t)
	return &v
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

type cancelCall struct {
	ID     string
	Reason string
}

// fakeStore is an in-memory Store that applies successful mutations.
type fakeStore struct {
	mu        sync.Mutex
	list      []models.Appointment
	listCalls int
	listErr   error
	cancelErr map[string]error
	mutateErr error
	cancels   []cancelCall
	approvals map[string]string
	edits     map[string]any

	// onCancel runs before each Cancel, outside the store lock.
	onCancel func(id string)
}

func newFakeStore(appts ...models.Appointment) *fakeStore {
	return &fakeStore{
		list:      appts,
		cancelErr: map[string]error{},
		approvals: map[string]string{},
		edits:     map[string]any{},
	}
}

func (s *fakeStore) List(ctx context.Context) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]models.Appointment(nil), s.list...), nil
}

func (s *fakeStore) Edit(ctx context.Context, id string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mutateErr != nil {
		return s.mutateErr
	}
	s.edits[id] = payload
	if p, ok := payload.(models.AppointmentPayload); ok {
		for i := range s.list {
			if s.list[i].ID == id {
				s.list[i].PatientName = p.PatientName
				s.list[i].Age = p.Age
				s.list[i].SerialNumber = p.SerialNumber
			}
		}
	}
	return nil
}

func (s *fakeStore) Approve(ctx context.Context, id, serial string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mutateErr != nil {
		return s.mutateErr
	}
	s.approvals[id] = serial
	for i := range s.list {
		if s.list[i].ID == id {
			s.list[i].SerialNumber = serial
		}
	}
	return nil
}

func (s *fakeStore) Cancel(ctx context.Context, id, reason string) error {
	if s.onCancel != nil {
		s.onCancel(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels = append(s.cancels, cancelCall{ID: id, Reason: reason})
	if err := s.cancelErr[id]; err != nil {
		return err
	}
	if s.mutateErr != nil {
		return s.mutateErr
	}
	for i := range s.list {
		if s.list[i].ID == id {
			s.list[i].Status = models.StatusCancelled
			s.list[i].CancellationReason = reason
		}
	}
	return nil
}

func (s *fakeStore) calls() (list int, cancels []cancelCall, approvals int, edits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls, append([]cancelCall(nil), s.cancels...), len(s.approvals), len(s.edits)
}

// recorder captures audit entries.
type recorder struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (r *recorder) Record(ctx context.Context, entry models.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recorder) all() []models.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AuditEntry(nil), r.entries...)
}
