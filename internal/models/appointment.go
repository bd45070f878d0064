package models

// AppointmentStatus is the stored status of an appointment. Pending and
// complete are never stored; they are derived from the serial number.
type AppointmentStatus string

const (
	StatusActive    AppointmentStatus = "active"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Cancellation reasons recorded with a cancelled appointment.
const (
	ReasonNoShow = "Auto-cancelled due to no-show"
	ReasonManual = "Manually cancelled"
)

// Appointment is an appointment record as served by the hospital API.
type Appointment struct {
	ID                 string            `json:"id"`
	DoctorID           string            `json:"doctorId"`
	DoctorName         string            `json:"doctorName,omitempty"`
	PatientID          string            `json:"patientId,omitempty"`
	PatientName        string            `json:"patientName"`
	MobileNumber       string            `json:"mobileNumber"`
	SerialNumber       string            `json:"serialNumber,omitempty"`
	Status             AppointmentStatus `json:"status,omitempty"`
	CancellationReason string            `json:"cancellationReason,omitempty"`
	AppointmentDate    *Timestamp        `json:"appointmentDate,omitempty"`
	CreatedAt          Timestamp         `json:"createdAt"`

	Age              *int     `json:"age,omitempty"`
	Weight           *float64 `json:"weight,omitempty"`
	BloodGroup       string   `json:"bloodGroup,omitempty"`
	ConsultationFee  *float64 `json:"consultationFee,omitempty"`
	ConsultationType string   `json:"consultationType,omitempty"`
	PaymentMethod    string   `json:"paymentMethod,omitempty"`
	Reason           string   `json:"reason,omitempty"`
	Address          string   `json:"address,omitempty"`
}

// AppointmentList is the wrapped body of GET /appointment.
type AppointmentList struct {
	Appointments []Appointment `json:"appointments"`
}

// AppointmentPayload is the editable field set sent to PUT /appointment/edit/:id.
// Nil pointers are sent as JSON null.
type AppointmentPayload struct {
	PatientName     string   `json:"patientName"`
	MobileNumber    string   `json:"mobileNumber"`
	Age             *int     `json:"age"`
	Weight          *float64 `json:"weight"`
	BloodGroup      *string  `json:"bloodGroup"`
	ConsultationFee *float64 `json:"consultationFee"`
	PaymentMethod   string   `json:"paymentMethod"`
	Reason          string   `json:"reason"`
	Address         string   `json:"address"`
	// SerialNumber is only sent when the form carries one; an empty
	// value never clears an assigned serial.
	SerialNumber string `json:"serialNumber,omitempty"`
}

// ApprovePayload is the narrow update used to assign a serial number.
type ApprovePayload struct {
	SerialNumber string `json:"serialNumber"`
}

// CancelPayload moves an appointment to the cancelled state.
type CancelPayload struct {
	Status             AppointmentStatus `json:"status"`
	CancellationReason string            `json:"cancellationReason"`
}

// CreateAppointmentRequest is the body of POST /appointment/add.
type CreateAppointmentRequest struct {
	DoctorID          string   `json:"doctorId" binding:"required" validate:"required"`
	PatientID         string   `json:"patientId" binding:"required" validate:"required"`
	ScheduleID        string   `json:"scheduleId" binding:"required" validate:"required"`
	SerialNumber      string   `json:"serialNumber,omitempty"`
	ConsultationFee   *float64 `json:"consultationFee" validate:"omitempty,gte=0"`
	Vat               *float64 `json:"vat" validate:"omitempty,gte=0"`
	PromoCode         string   `json:"promoCode,omitempty"`
	ConsultationType  string   `json:"consultationType" binding:"required" validate:"required"`
	PaymentMethod     string   `json:"paymentMethod" binding:"required" validate:"required"`
	DirectorReference string   `json:"directorReference,omitempty"`
}
