package appointments

import (
	"time"

	"hospital-admin-dashboard/internal/apiclient"
	"hospital-admin-dashboard/internal/models"
)

// Row is one rendered table row. DisplayStatus and Mode are computed per
// query and never stored on the appointment.
type Row struct {
	models.Appointment
	DisplayStatus Status `json:"displayStatus"`
	Mode          Mode   `json:"mode"`
}

// Page is a view-ready list with its summary.
type Page struct {
	Appointments []Row     `json:"appointments"`
	Summary      Summary   `json:"summary"`
	Criteria     Criteria  `json:"criteria"`
	Version      uint64    `json:"version,omitempty"`
	Loaded       bool      `json:"loaded"`
	LoadedAt     time.Time `json:"loadedAt,omitempty"`
	LoadError    string    `json:"loadError,omitempty"`
}

// View joins the engine's collection with a FilterState.
type View struct {
	engine  *Engine
	filters *FilterState
}

// NewView creates a View.
func NewView(engine *Engine, filters *FilterState) *View {
	return &View{engine: engine, filters: filters}
}

// Filters exposes the view's filter state.
func (v *View) Filters() *FilterState { return v.filters }

// Current applies the stored criteria.
func (v *View) Current() (Page, error) {
	c, version := v.filters.Get()
	page, err := v.Query(c)
	page.Version = version
	return page, err
}

// Query applies c without touching the stored criteria.
func (v *View) Query(c Criteria) (Page, error) {
	filtered, err := Apply(v.engine.Snapshot(), c, v.engine.Location())
	if err != nil {
		return Page{}, err
	}

	modes := v.engine.Rows().Snapshot()
	rows := make([]Row, len(filtered))
	for i, a := range filtered {
		mode, ok := modes[a.ID]
		if !ok {
			mode = ModeNone
		}
		rows[i] = Row{Appointment: a, DisplayStatus: DeriveStatus(a), Mode: mode}
	}

	state := v.engine.State()
	page := Page{
		Appointments: rows,
		Summary:      Summarize(filtered),
		Criteria:     c.Normalize(),
		Loaded:       state.Loaded,
		LoadedAt:     state.LoadedAt,
	}
	if state.Err != nil {
		page.LoadError = apiclient.Message(state.Err, "Failed to load appointments")
	}
	return page, nil
}
