package appointments

import (
	"strings"
	"sync"
	"time"

	"hospital-admin-dashboard/internal/apiclient"
	"hospital-admin-dashboard/internal/models"
)

// DateLayout is the format of the date-range bounds.
const DateLayout = "2006-01-02"

// StatusFilter selects rows by derived status.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "pending"
	FilterComplete  StatusFilter = "complete"
	FilterCancelled StatusFilter = "cancelled"
)

// Criteria are the list filters. All active criteria must match.
type Criteria struct {
	Status    StatusFilter `json:"status" form:"status"`
	DoctorID  string       `json:"doctorId" form:"doctorId"`
	Search    string       `json:"search" form:"search"`
	StartDate string       `json:"startDate" form:"startDate"`
	EndDate   string       `json:"endDate" form:"endDate"`
}

// DefaultCriteria matches every appointment.
func DefaultCriteria() Criteria {
	return Criteria{Status: FilterAll}
}

// Normalize fills defaults and trims whitespace. Search is kept as typed
// so that it matches as a raw substring.
func (c Criteria) Normalize() Criteria {
	c.Status = StatusFilter(strings.ToLower(strings.TrimSpace(string(c.Status))))
	if c.Status == "" {
		c.Status = FilterAll
	}
	c.DoctorID = strings.TrimSpace(c.DoctorID)
	if strings.EqualFold(c.DoctorID, "all") {
		c.DoctorID = ""
	}
	c.StartDate = strings.TrimSpace(c.StartDate)
	c.EndDate = strings.TrimSpace(c.EndDate)
	return c
}

// Validate rejects unknown statuses and malformed dates.
func (c Criteria) Validate() error {
	c = c.Normalize()
	switch c.Status {
	case FilterAll, FilterPending, FilterComplete, FilterCancelled:
	default:
		return apiclient.Validation("filter", "Unknown status filter "+string(c.Status))
	}
	for _, d := range []string{c.StartDate, c.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err != nil {
			return apiclient.Validation("filter", "Dates must use YYYY-MM-DD")
		}
	}
	return nil
}

// matcher is a compiled Criteria.
type matcher struct {
	status   StatusFilter
	doctorID string
	search   string
	lowered  string
	start    time.Time
	end      time.Time
	loc      *time.Location
}

func compile(c Criteria, loc *time.Location) (matcher, error) {
	if err := c.Validate(); err != nil {
		return matcher{}, err
	}
	c = c.Normalize()
	m := matcher{
		status:   c.Status,
		doctorID: c.DoctorID,
		loc:      loc,
	}
	if strings.TrimSpace(c.Search) != "" {
		m.search = c.Search
		m.lowered = strings.ToLower(c.Search)
	}
	if c.StartDate != "" {
		d, _ := time.ParseInLocation(DateLayout, c.StartDate, loc)
		m.start = startOfDay(d, loc)
	}
	if c.EndDate != "" {
		d, _ := time.ParseInLocation(DateLayout, c.EndDate, loc)
		m.end = endOfDay(d, loc)
	}
	return m, nil
}

func (m matcher) match(a models.Appointment) bool {
	if m.status != FilterAll && !statusMatches(m.status, DeriveStatus(a)) {
		return false
	}
	if m.doctorID != "" && a.DoctorID != m.doctorID {
		return false
	}
	if m.search != "" &&
		!strings.Contains(strings.ToLower(a.PatientName), m.lowered) &&
		!strings.Contains(a.MobileNumber, m.search) {
		return false
	}
	if !m.start.IsZero() || !m.end.IsZero() {
		d := EffectiveDate(a, m.loc)
		if !m.start.IsZero() && d.Before(m.start) {
			return false
		}
		if !m.end.IsZero() && d.After(m.end) {
			return false
		}
	}
	return true
}

func statusMatches(f StatusFilter, s Status) bool {
	switch f {
	case FilterPending:
		return s == StatusPending
	case FilterComplete:
		return s == StatusComplete
	case FilterCancelled:
		return s == StatusCancelled
	}
	return true
}

// Apply returns the appointments matching c, in their original order.
// It never modifies list.
func Apply(list []models.Appointment, c Criteria, loc *time.Location) ([]models.Appointment, error) {
	m, err := compile(c, loc)
	if err != nil {
		return nil, err
	}
	out := make([]models.Appointment, 0, len(list))
	for _, a := range list {
		if m.match(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Summary counts a filtered list by derived status.
type Summary struct {
	Total     int `json:"total"`
	Complete  int `json:"complete"`
	Pending   int `json:"pending"`
	Cancelled int `json:"cancelled"`
}

// Summarize counts list by derived status. Pass the filtered list so the
// counts follow the filters.
func Summarize(list []models.Appointment) Summary {
	s := Summary{Total: len(list)}
	for _, a := range list {
		switch DeriveStatus(a) {
		case StatusComplete:
			s.Complete++
		case StatusPending:
			s.Pending++
		case StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// FilterState holds the current criteria of the list view. Set and Reset
// replace all criteria in one step.
type FilterState struct {
	mu       sync.RWMutex
	criteria Criteria
	version  uint64
}

// NewFilterState starts from DefaultCriteria.
func NewFilterState() *FilterState {
	return &FilterState{criteria: DefaultCriteria()}
}

// Get returns the criteria and their version.
func (s *FilterState) Get() (Criteria, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria, s.version
}

// Set validates and installs c.
func (s *FilterState) Set(c Criteria) (uint64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = c.Normalize()
	s.version++
	return s.version, nil
}

// Reset restores DefaultCriteria.
func (s *FilterState) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = DefaultCriteria()
	s.version++
	return s.version
}
