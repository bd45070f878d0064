package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"hospital-admin-dashboard/internal/models"
	"hospital-admin-dashboard/internal/utils"
)

// DoctorSource lists doctors, usually through the Redis cache.
type DoctorSource interface {
	List(ctx context.Context) ([]models.Doctor, error)
}

// doctorInvalidator is implemented by cached doctor sources. A full reload
// drops the cached list so renamed or added doctors show up.
type doctorInvalidator interface {
	Invalidate(ctx context.Context) error
}

// DoctorHandler serves the doctor filter dropdown.
type DoctorHandler struct {
	Doctors DoctorSource
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(doctors DoctorSource) *DoctorHandler {
	return &DoctorHandler{Doctors: doctors}
}

// GetDoctors returns {id, name} options with names in the requested language.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	doctors, err := h.Doctors.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch doctors")
		return
	}

	lang := strings.ToLower(c.DefaultQuery("lang", models.LangEnglish))
	options := make([]models.DoctorOption, 0, len(doctors))
	for _, d := range doctors {
		options = append(options, models.DoctorOption{ID: d.ID, Name: d.DisplayName(lang)})
	}

	utils.Success(c, "Doctors fetched successfully", options)
}

func doctorName(ctx context.Context, source DoctorSource, id, lang string) (string, error) {
	doctors, err := source.List(ctx)
	if err != nil {
		return "", err
	}
	for _, d := range doctors {
		if d.ID == id {
			return d.DisplayName(lang), nil
		}
	}
	return "", nil
}
