package printing

import (
	"html/template"
	"io"
	"strconv"
	"time"

	"hospital-admin-dashboard/internal/appointments"
	"hospital-admin-dashboard/internal/models"
)

// Options carries the context a slip needs beyond the appointment itself.
type Options struct {
	HospitalName string
	DoctorName   string
	Location     *time.Location
	PrintedAt    time.Time
}

type slip struct {
	HospitalName    string
	ID              string
	SerialNumber    string
	Status          appointments.Status
	Date            string
	PatientName     string
	MobileNumber    string
	Age             string
	Weight          string
	BloodGroup      string
	Address         string
	DoctorName      string
	DoctorID        string
	ConsultationFee string
	PaymentMethod   string
	Reason          string
	PrintedAt       string
}

var slipTemplate = template.Must(template.New("slip").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Appointment {{.ID}}</title>
<style>
body { font-family: sans-serif; margin: 24px; }
h1 { font-size: 20px; margin-bottom: 4px; }
table { border-collapse: collapse; width: 100%; margin-top: 12px; }
th, td { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.meta { color: #555; font-size: 12px; }
</style>
</head>
<body onload="window.print()">
<h1>{{.HospitalName}}</h1>
<p class="meta">Appointment slip · printed {{.PrintedAt}}</p>
<table>
<tr><th>Serial</th><td>{{if .SerialNumber}}{{.SerialNumber}}{{else}}Not assigned{{end}}</td></tr>
<tr><th>Status</th><td>{{.Status}}</td></tr>
<tr><th>Date</th><td>{{.Date}}</td></tr>
</table>
<h2>Patient</h2>
<table>
<tr><th>Name</th><td>{{.PatientName}}</td></tr>
<tr><th>Mobile</th><td>{{.MobileNumber}}</td></tr>
<tr><th>Age</th><td>{{.Age}}</td></tr>
<tr><th>Weight</th><td>{{.Weight}}</td></tr>
<tr><th>Blood group</th><td>{{.BloodGroup}}</td></tr>
<tr><th>Address</th><td>{{.Address}}</td></tr>
</table>
<h2>Doctor</h2>
<table>
<tr><th>Name</th><td>{{.DoctorName}}</td></tr>
<tr><th>ID</th><td>{{.DoctorID}}</td></tr>
</table>
<h2>Consultation</h2>
<table>
<tr><th>Fee</th><td>{{.ConsultationFee}}</td></tr>
<tr><th>Payment</th><td>{{.PaymentMethod}}</td></tr>
<tr><th>Reason</th><td>{{.Reason}}</td></tr>
</table>
</body>
</html>
`))

// Render writes a printable HTML slip for a. The page opens the browser's
// print dialog when loaded.
func Render(w io.Writer, a models.Appointment, opts Options) error {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	printedAt := opts.PrintedAt
	if printedAt.IsZero() {
		printedAt = time.Now()
	}
	hospital := opts.HospitalName
	if hospital == "" {
		hospital = "Hospital"
	}
	doctor := opts.DoctorName
	if doctor == "" {
		doctor = a.DoctorName
	}

	s := slip{
		HospitalName:  hospital,
		ID:            a.ID,
		SerialNumber:  a.SerialNumber,
		Status:        appointments.DeriveStatus(a),
		PatientName:   a.PatientName,
		MobileNumber:  a.MobileNumber,
		BloodGroup:    appointments.DecodeBloodGroup(a.BloodGroup),
		Address:       a.Address,
		DoctorName:    doctor,
		DoctorID:      a.DoctorID,
		PaymentMethod: a.PaymentMethod,
		Reason:        a.Reason,
		PrintedAt:     printedAt.In(loc).Format("02 Jan 2006 15:04"),
	}
	if d := appointments.EffectiveDate(a, loc); !d.IsZero() {
		s.Date = d.In(loc).Format("02 Jan 2006")
	}
	if a.Age != nil {
		s.Age = strconv.Itoa(*a.Age)
	}
	if a.Weight != nil {
		s.Weight = strconv.FormatFloat(*a.Weight, 'f', -1, 64) + " kg"
	}
	if a.ConsultationFee != nil {
		s.ConsultationFee = strconv.FormatFloat(*a.ConsultationFee, 'f', 2, 64)
	}

	return slipTemplate.Execute(w, s)
}
