package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-admin-dashboard/internal/appointments"
	"hospital-admin-dashboard/internal/export"
	"hospital-admin-dashboard/internal/models"
	"hospital-admin-dashboard/internal/printing"
	"hospital-admin-dashboard/internal/utils"
)

// AppointmentCreator forwards new bookings to the hospital API.
type AppointmentCreator interface {
	Add(ctx context.Context, req models.CreateAppointmentRequest) (*models.Appointment, error)
}

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Engine       *appointments.Engine
	View         *appointments.View
	Creator      AppointmentCreator
	Doctors      DoctorSource
	HospitalName string
	Logger       *zap.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(engine *appointments.Engine, view *appointments.View, creator AppointmentCreator, doctors DoctorSource, hospitalName string, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		Engine:       engine,
		View:         view,
		Creator:      creator,
		Doctors:      doctors,
		HospitalName: hospitalName,
		Logger:       logger,
	}
}

// ApproveRequest is the serial-entry submission.
type ApproveRequest struct {
	SerialNumber string `json:"serialNumber"`
}

// CancelRequest carries an optional cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ModeRequest opens or closes a row editor.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// ListAppointments applies the query-string criteria to the loaded collection.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	page, ok := h.query(c)
	if !ok {
		return
	}
	utils.Success(c, "Appointments fetched successfully", page)
}

// ExportAppointments streams the filtered list as a spreadsheet.
func (h *AppointmentHandler) ExportAppointments(c *gin.Context) {
	page, ok := h.query(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("appointments-%s.xlsx", time.Now().In(h.Engine.Location()).Format("20060102-1504"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)
	if err := export.WriteAppointments(c.Writer, page, h.Engine.Location()); err != nil {
		h.Logger.Error("Export failed", zap.Error(err))
		_ = c.Error(err)
	}
}

func (h *AppointmentHandler) query(c *gin.Context) (appointments.Page, bool) {
	var criteria appointments.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		utils.BadRequest(c, "Invalid query: "+err.Error())
		return appointments.Page{}, false
	}
	if err := criteria.Validate(); err != nil {
		respondError(c, err, "Invalid filters")
		return appointments.Page{}, false
	}
	page, err := h.View.Query(criteria)
	if err != nil {
		respondError(c, err, "Failed to filter appointments")
		return appointments.Page{}, false
	}
	return page, true
}

// GetAppointmentByID returns one appointment from the loaded collection.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	a, ok := h.find(c)
	if !ok {
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointments.Row{
		Appointment:   a,
		DisplayStatus: appointments.DeriveStatus(a),
		Mode:          h.Engine.Rows().Mode(a.ID),
	})
}

// GetEditForm returns the appointment as edit-row state.
func (h *AppointmentHandler) GetEditForm(c *gin.Context) {
	a, ok := h.find(c)
	if !ok {
		return
	}
	utils.Success(c, "Edit form fetched successfully", appointments.ToEditForm(a))
}

// PrintAppointment renders the printable slip.
func (h *AppointmentHandler) PrintAppointment(c *gin.Context) {
	a, ok := h.find(c)
	if !ok {
		return
	}

	opts := printing.Options{
		HospitalName: h.HospitalName,
		Location:     h.Engine.Location(),
	}
	if h.Doctors != nil && a.DoctorID != "" {
		if name, err := doctorName(c.Request.Context(), h.Doctors, a.DoctorID, c.DefaultQuery("lang", models.LangEnglish)); err == nil {
			opts.DoctorName = name
		} else {
			h.Logger.Warn("Doctor lookup for print failed", zap.String("doctor_id", a.DoctorID), zap.Error(err))
		}
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := printing.Render(c.Writer, a, opts); err != nil {
		h.Logger.Error("Print rendering failed", zap.String("appointment_id", a.ID), zap.Error(err))
		_ = c.Error(err)
	}
}

// CreateAppointment forwards a booking to the hospital API, records it in
// the audit trail and reloads.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req models.CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	created, err := h.Creator.Add(ctx, req)
	if err != nil {
		_ = h.Engine.RecordCreate(ctx, "", err)
		respondError(c, err, "Failed to create appointment")
		return
	}
	if err := h.Engine.RecordCreate(ctx, created.ID, nil); err != nil {
		h.Logger.Warn("Reload after create failed", zap.Error(err))
	}

	utils.Created(c, "Appointment created successfully", created)
}

// ApproveAppointment assigns a serial number.
func (h *AppointmentHandler) ApproveAppointment(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	id := c.Param("id")
	if err := h.Engine.Approve(c.Request.Context(), id, req.SerialNumber); err != nil {
		respondError(c, err, "Failed to approve")
		return
	}
	h.respondWithRow(c, id, "Appointment approved successfully")
}

// UpdateAppointment writes an edited row.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	var form appointments.EditForm
	if err := c.ShouldBindJSON(&form); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	id := c.Param("id")
	if err := h.Engine.Update(c.Request.Context(), id, form); err != nil {
		respondError(c, err, "Failed to update")
		return
	}
	h.respondWithRow(c, id, "Appointment updated successfully")
}

// CancelAppointment cancels an appointment. An empty body is allowed.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request payload: "+err.Error())
			return
		}
	}

	id := c.Param("id")
	if err := h.Engine.Cancel(c.Request.Context(), id, req.Reason); err != nil {
		respondError(c, err, "Failed to cancel")
		return
	}
	h.respondWithRow(c, id, "Appointment cancelled successfully")
}

// SetRowMode opens or closes the edit or serial editor on a row.
func (h *AppointmentHandler) SetRowMode(c *gin.Context) {
	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	mode, err := appointments.ParseMode(req.Mode)
	if err != nil {
		respondError(c, err, "Invalid mode")
		return
	}

	a, ok := h.find(c)
	if !ok {
		return
	}
	if mode != appointments.ModeNone && appointments.DeriveStatus(a) == appointments.StatusCancelled {
		respondError(c, appointments.ErrAlreadyCancelled, "Invalid mode")
		return
	}
	if err := h.Engine.Rows().Set(a.ID, mode); err != nil {
		respondError(c, err, "Invalid mode")
		return
	}
	utils.Success(c, "Row mode updated", gin.H{"id": a.ID, "mode": mode})
}

// ReloadAppointments drops the cached doctor list, reloads the collection
// and runs the sweep.
func (h *AppointmentHandler) ReloadAppointments(c *gin.Context) {
	if inv, ok := h.Doctors.(doctorInvalidator); ok {
		if err := inv.Invalidate(c.Request.Context()); err != nil {
			h.Logger.Warn("Doctor cache invalidation failed", zap.Error(err))
		}
	}

	result, err := h.Engine.Refresh(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load appointments")
		return
	}
	utils.Success(c, "Appointments reloaded", result)
}

// SweepAppointments runs the auto-cancellation sweep on the loaded collection.
func (h *AppointmentHandler) SweepAppointments(c *gin.Context) {
	result, err := h.Engine.Sweep(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load appointments")
		return
	}
	utils.Success(c, "Sweep completed", result)
}

// GetView applies the stored filter state.
func (h *AppointmentHandler) GetView(c *gin.Context) {
	page, err := h.View.Current()
	if err != nil {
		respondError(c, err, "Failed to filter appointments")
		return
	}
	utils.Success(c, "View fetched successfully", page)
}

// SetFilters replaces all stored criteria in one step.
func (h *AppointmentHandler) SetFilters(c *gin.Context) {
	var criteria appointments.Criteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if _, err := h.View.Filters().Set(criteria); err != nil {
		respondError(c, err, "Invalid filters")
		return
	}
	h.GetView(c)
}

// ResetFilters restores the default criteria.
func (h *AppointmentHandler) ResetFilters(c *gin.Context) {
	h.View.Filters().Reset()
	h.GetView(c)
}

func (h *AppointmentHandler) find(c *gin.Context) (models.Appointment, bool) {
	a, ok := h.Engine.Find(c.Param("id"))
	if !ok {
		respondError(c, appointments.ErrNotFound, "Appointment not found")
		return models.Appointment{}, false
	}
	return a, true
}

func (h *AppointmentHandler) respondWithRow(c *gin.Context, id, message string) {
	a, ok := h.Engine.Find(id)
	if !ok {
		utils.Success(c, message, nil)
		return
	}
	utils.Success(c, message, appointments.Row{
		Appointment:   a,
		DisplayStatus: appointments.DeriveStatus(a),
		Mode:          h.Engine.Rows().Mode(id),
	})
}
