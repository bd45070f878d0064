// Package fakeapi serves an in-memory stand-in for the hospital REST API
// so that data-access, engine and handler tests run against real HTTP.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hospital-admin-dashboard/internal/models"
)

// Edit records one PUT /appointment/edit/:id call.
type Edit struct {
	ID   string
	Body map[string]any
}

// Server is the fake hospital API.
type Server struct {
	URL    string
	APIKey string

	mu           sync.Mutex
	appointments []models.Appointment
	doctors      []models.Doctor
	edits        []Edit
	deleted      []string
	created      []models.CreateAppointmentRequest
	listCalls    int
	doctorCalls  int
	failList     int
	failEdit     map[string]int
}

// New starts a fake API that is shut down when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{APIKey: "test-key", failEdit: map[string]int{}}
	srv := httptest.NewServer(s.router())
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// SetAppointments replaces the stored appointments.
func (s *Server) SetAppointments(appts ...models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = append([]models.Appointment(nil), appts...)
}

// SetDoctors replaces the stored doctors.
func (s *Server) SetDoctors(doctors ...models.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctors = append([]models.Doctor(nil), doctors...)
}

// FailList makes GET /appointment answer with status until cleared with 0.
func (s *Server) FailList(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failList = status
}

// FailEdit makes PUT /appointment/edit/:id answer with status for id.
func (s *Server) FailEdit(id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failEdit[id] = status
}

// ListCalls returns the number of GET /appointment requests served.
func (s *Server) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// DoctorCalls returns the number of GET /doctor requests served.
func (s *Server) DoctorCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doctorCalls
}

// Edits returns a copy of the recorded edit calls.
func (s *Server) Edits() []Edit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Edit(nil), s.edits...)
}

// Deleted returns the ids hard-deleted so far.
func (s *Server) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// Created returns the create requests received so far.
func (s *Server) Created() []models.CreateAppointmentRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CreateAppointmentRequest(nil), s.created...)
}

// Appointment returns the stored appointment with id.
func (s *Server) Appointment(id string) (models.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return models.Appointment{}, false
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("x-api-key") != s.APIKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid API key"})
			return
		}
		c.Next()
	})

	r.GET("/appointment", s.listAppointments)
	r.GET("/appointment/:id", s.getAppointment)
	r.POST("/appointment/add", s.addAppointment)
	r.PUT("/appointment/edit/:id", s.editAppointment)
	r.DELETE("/appointment/delete/:id", s.deleteAppointment)
	r.GET("/doctor", s.listDoctors)
	r.GET("/doctor/:id", s.getDoctor)
	return r
}

func (s *Server) listAppointments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.failList != 0 {
		c.JSON(s.failList, gin.H{"message": "Could not load appointments"})
		return
	}
	c.JSON(http.StatusOK, models.AppointmentList{Appointments: append([]models.Appointment{}, s.appointments...)})
}

func (s *Server) getAppointment(c *gin.Context) {
	a, ok := s.Appointment(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) addAppointment(c *gin.Context) {
	var req models.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, req)
	appt := models.Appointment{
		ID:               uuid.New().String(),
		DoctorID:         req.DoctorID,
		PatientID:        req.PatientID,
		SerialNumber:     req.SerialNumber,
		ConsultationFee:  req.ConsultationFee,
		ConsultationType: req.ConsultationType,
		PaymentMethod:    req.PaymentMethod,
	}
	s.appointments = append(s.appointments, appt)
	c.JSON(http.StatusCreated, appt)
}

func (s *Server) editAppointment(c *gin.Context) {
	id := c.Param("id")
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, Edit{ID: id, Body: body})
	if status, ok := s.failEdit[id]; ok && status != 0 {
		c.JSON(status, gin.H{"message": fmt.Sprintf("Appointment %s could not be updated", id)})
		return
	}
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			applyEdit(&s.appointments[i], body)
			c.JSON(http.StatusOK, s.appointments[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
}

func (s *Server) deleteAppointment(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
			s.deleted = append(s.deleted, id)
			c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
}

func (s *Server) listDoctors(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctorCalls++
	c.JSON(http.StatusOK, append([]models.Doctor{}, s.doctors...))
}

func (s *Server) getDoctor(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.doctors {
		if d.ID == c.Param("id") {
			c.JSON(http.StatusOK, d)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Doctor not found"})
}

func applyEdit(a *models.Appointment, body map[string]any) {
	str := func(key string, dst *string) {
		if v, ok := body[key].(string); ok {
			*dst = v
		}
	}
	str("serialNumber", &a.SerialNumber)
	str("cancellationReason", &a.CancellationReason)
	str("patientName", &a.PatientName)
	str("mobileNumber", &a.MobileNumber)
	str("paymentMethod", &a.PaymentMethod)
	str("reason", &a.Reason)
	str("address", &a.Address)
	if v, ok := body["status"].(string); ok {
		a.Status = models.AppointmentStatus(v)
	}
	if v, ok := body["bloodGroup"]; ok {
		a.BloodGroup, _ = v.(string)
	}
	if v, ok := body["age"]; ok {
		a.Age = nil
		if f, ok := v.(float64); ok {
			age := int(f)
			a.Age = &age
		}
	}
	if v, ok := body["weight"]; ok {
		a.Weight = floatPtr(v)
	}
	if v, ok := body["consultationFee"]; ok {
		a.ConsultationFee = floatPtr(v)
	}
}

func floatPtr(v any) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}
