package repository

import (
	"context"
	"net/url"
	"strings"

	"hospital-admin-dashboard/internal/models"
)

// API is the subset of apiclient.Client the repositories need.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// AppointmentRepository is the data-access layer for /appointment.
type AppointmentRepository struct {
	api API
}

// NewAppointmentRepository creates an AppointmentRepository.
func NewAppointmentRepository(api API) *AppointmentRepository {
	return &AppointmentRepository{api: api}
}

// List fetches every appointment. The API wraps the array in
// {"appointments": [...]}.
func (r *AppointmentRepository) List(ctx context.Context) ([]models.Appointment, error) {
	var body models.AppointmentList
	if err := r.api.Get(ctx, "/appointment", &body); err != nil {
		return nil, err
	}
	if body.Appointments == nil {
		return []models.Appointment{}, nil
	}
	return body.Appointments, nil
}

// Get fetches a single appointment.
func (r *AppointmentRepository) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.api.Get(ctx, "/appointment/"+url.PathEscape(id), &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// Add creates an appointment. The consultation type is sent upper-cased.
func (r *AppointmentRepository) Add(ctx context.Context, req models.CreateAppointmentRequest) (*models.Appointment, error) {
	req.ConsultationType = strings.ToUpper(strings.TrimSpace(req.ConsultationType))

	var created models.Appointment
	if err := r.api.Post(ctx, "/appointment/add", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Edit applies a partial update.
func (r *AppointmentRepository) Edit(ctx context.Context, id string, payload any) error {
	return r.api.Put(ctx, "/appointment/edit/"+url.PathEscape(id), payload, nil)
}

// Approve assigns a serial number through the edit endpoint.
func (r *AppointmentRepository) Approve(ctx context.Context, id, serialNumber string) error {
	return r.Edit(ctx, id, models.ApprovePayload{SerialNumber: serialNumber})
}

// Cancel marks an appointment cancelled and records the reason.
func (r *AppointmentRepository) Cancel(ctx context.Context, id, reason string) error {
	return r.Edit(ctx, id, models.CancelPayload{
		Status:             models.StatusCancelled,
		CancellationReason: reason,
	})
}

// Delete hard-deletes an appointment.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	return r.api.Delete(ctx, "/appointment/delete/"+url.PathEscape(id), nil)
}
