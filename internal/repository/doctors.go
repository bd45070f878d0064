package repository

import (
	"context"
	"net/url"

	"hospital-admin-dashboard/internal/models"
)

// DoctorRepository is the read-only data-access layer for /doctor.
type DoctorRepository struct {
	api API
}

// NewDoctorRepository creates a DoctorRepository.
func NewDoctorRepository(api API) *DoctorRepository {
	return &DoctorRepository{api: api}
}

// List fetches all doctors. Unlike /appointment, the body is a bare array.
func (r *DoctorRepository) List(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	if err := r.api.Get(ctx, "/doctor", &doctors); err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = []models.Doctor{}
	}
	return doctors, nil
}

// Get fetches one doctor.
func (r *DoctorRepository) Get(ctx context.Context, id string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.api.Get(ctx, "/doctor/"+url.PathEscape(id), &doctor); err != nil {
		return nil, err
	}
	return &doctor, nil
}
