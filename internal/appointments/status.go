package appointments

import (
	"strings"
	"time"

	"hospital-admin-dashboard/internal/models"
)

// Status is the display status of an appointment, derived at read time.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusComplete  Status = "COMPLETE"
	StatusCancelled Status = "CANCELLED"
)

// DeriveStatus is the single source of truth for badges, filters and counts.
func DeriveStatus(a models.Appointment) Status {
	if a.Status == models.StatusCancelled {
		return StatusCancelled
	}
	if strings.TrimSpace(a.SerialNumber) != "" {
		return StatusComplete
	}
	return StatusPending
}

// EffectiveDate is the date used for every day-based comparison: the
// appointment date when set, otherwise the creation time. Zone-less values
// are read as wall clock time in loc.
func EffectiveDate(a models.Appointment, loc *time.Location) time.Time {
	if a.AppointmentDate != nil && !a.AppointmentDate.IsZero() {
		return a.AppointmentDate.Anchor(loc)
	}
	return a.CreatedAt.Anchor(loc)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func endOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

// IsMissed reports whether the sweep should cancel a: it has no serial
// number, is not cancelled, and its effective day is before today in loc.
func IsMissed(a models.Appointment, now time.Time, loc *time.Location) bool {
	if strings.TrimSpace(a.SerialNumber) != "" {
		return false
	}
	if DeriveStatus(a) == StatusCancelled {
		return false
	}
	effective := EffectiveDate(a, loc)
	if effective.IsZero() {
		return false
	}
	return startOfDay(effective, loc).Before(startOfDay(now, loc))
}
