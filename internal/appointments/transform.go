package appointments

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"hospital-admin-dashboard/internal/apiclient"
	"hospital-admin-dashboard/internal/models"
)

const (
	positiveSuffix = "_POSITIVE"
	negativeSuffix = "_NEGATIVE"
)

var validate = validator.New()

// EditForm is the edit-row state. Every field is a string; absent values
// are "" and never null.
type EditForm struct {
	PatientName     string `json:"patientName" validate:"required"`
	MobileNumber    string `json:"mobileNumber" validate:"omitempty,max=20"`
	Age             string `json:"age"`
	Weight          string `json:"weight"`
	BloodGroup      string `json:"bloodGroup" validate:"omitempty,max=16"`
	ConsultationFee string `json:"consultationFee"`
	PaymentMethod   string `json:"paymentMethod"`
	Reason          string `json:"reason"`
	Address         string `json:"address"`
	SerialNumber    string `json:"serialNumber"`
}

// ToEditForm converts a stored appointment into edit-row state.
func ToEditForm(a models.Appointment) EditForm {
	form := EditForm{
		PatientName:   a.PatientName,
		MobileNumber:  a.MobileNumber,
		BloodGroup:    DecodeBloodGroup(a.BloodGroup),
		PaymentMethod: a.PaymentMethod,
		Reason:        a.Reason,
		Address:       a.Address,
		SerialNumber:  a.SerialNumber,
	}
	if a.Age != nil {
		form.Age = strconv.Itoa(*a.Age)
	}
	if a.Weight != nil {
		form.Weight = strconv.FormatFloat(*a.Weight, 'f', -1, 64)
	}
	if a.ConsultationFee != nil {
		form.ConsultationFee = strconv.FormatFloat(*a.ConsultationFee, 'f', -1, 64)
	}
	return form
}

// ToPayload converts edit-row state into the API payload. Numeric fields
// that are blank or do not parse become nil.
func ToPayload(form EditForm) models.AppointmentPayload {
	return models.AppointmentPayload{
		PatientName:     strings.TrimSpace(form.PatientName),
		MobileNumber:    strings.TrimSpace(form.MobileNumber),
		Age:             parseInt(form.Age),
		Weight:          parseFloat(form.Weight),
		BloodGroup:      EncodeBloodGroup(form.BloodGroup),
		ConsultationFee: parseFloat(form.ConsultationFee),
		PaymentMethod:   form.PaymentMethod,
		Reason:          form.Reason,
		Address:         form.Address,
		SerialNumber:    strings.TrimSpace(form.SerialNumber),
	}
}

// ValidateForm checks an edit form before anything is sent.
func ValidateForm(form EditForm) error {
	if err := validate.Struct(form); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return apiclient.Validation("update", "Invalid value for "+errs[0].Field())
		}
		return apiclient.Validation("update", err.Error())
	}
	return nil
}

// NormalizeSerial trims a serial number and rejects blank input.
func NormalizeSerial(serial string) (string, error) {
	trimmed := strings.TrimSpace(serial)
	if trimmed == "" {
		return "", ErrSerialRequired
	}
	return trimmed, nil
}

// DecodeBloodGroup rewrites "A_POSITIVE" to "A+" and "O_NEGATIVE" to "O-".
func DecodeBloodGroup(stored string) string {
	switch {
	case strings.HasSuffix(stored, positiveSuffix):
		return strings.TrimSuffix(stored, positiveSuffix) + "+"
	case strings.HasSuffix(stored, negativeSuffix):
		return strings.TrimSuffix(stored, negativeSuffix) + "-"
	default:
		return stored
	}
}

// EncodeBloodGroup is the inverse of DecodeBloodGroup. Blank input is nil.
func EncodeBloodGroup(display string) *string {
	v := strings.ToUpper(strings.TrimSpace(display))
	if v == "" {
		return nil
	}
	switch {
	case strings.HasSuffix(v, "+"):
		v = strings.TrimSuffix(v, "+") + positiveSuffix
	case strings.HasSuffix(v, "-"):
		v = strings.TrimSuffix(v, "-") + negativeSuffix
	}
	return &v
}

func parseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f := parseFloat(s)
	if f == nil || math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	n := int(*f)
	return &n
}
