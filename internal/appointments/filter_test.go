package appointments

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-admin-dashboard/internal/models"
)

func sampleCollection() []models.Appointment {
	created := models.NewTimestamp(day(2024, 1, 9, 8))
	return []models.Appointment{
		{ID: "1", DoctorID: "D1", PatientName: "Abdul Karim", MobileNumber: "01711000000", SerialNumber: "3", CreatedAt: created},
		{ID: "2", DoctorID: "D2", PatientName: "Nasrin Akter", MobileNumber: "01890981111", CreatedAt: created},
		{ID: "3", DoctorID: "D1", PatientName: "Rafiq Islam", MobileNumber: "01890981234", CreatedAt: created},
		{ID: "4", DoctorID: "D1", PatientName: "Salma Begum", MobileNumber: "01890985555", Status: models.StatusCancelled, CreatedAt: created},
		{ID: "5", DoctorID: "D1", PatientName: "Jamal Uddin", MobileNumber: "01555000000", CreatedAt: created},
	}
}

func ids(list []models.Appointment) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func TestApply_CompoundCriteria(t *testing.T) {
	got, err := Apply(sampleCollection(), Criteria{Status: FilterPending, DoctorID: "D1", Search: "098"}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(got))
}

func TestApply_DefaultsMatchEverythingInOrder(t *testing.T) {
	list := sampleCollection()
	got, err := Apply(list, DefaultCriteria(), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(got))

	got, err = Apply(list, Criteria{}, time.UTC)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestApply_StatusUsesDerivedStatus(t *testing.T) {
	list := sampleCollection()
	for filter, want := range map[StatusFilter][]string{
		FilterComplete:  {"1"},
		FilterPending:   {"2", "3", "5"},
		FilterCancelled: {"4"},
	} {
		got, err := Apply(list, Criteria{Status: filter}, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, want, ids(got), filter)
	}
}

func TestApply_SearchNameCaseInsensitiveMobileRaw(t *testing.T) {
	list := sampleCollection()

	got, err := Apply(list, Criteria{Search: "rafiq"}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids(got))

	got, err = Apply(list, Criteria{Search: "0155"}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, ids(got))

	got, err = Apply(list, Criteria{Search: "BEGUM"}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, ids(got))
}

func TestApply_DateRangeInclusiveEndOfDay(t *testing.T) {
	appt := models.Appointment{
		ID:              "late",
		CreatedAt:       models.NewTimestamp(day(2024, 1, 1, 9)),
		AppointmentDate: ts(time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)),
	}
	list := []models.Appointment{appt}

	got, err := Apply(list, Criteria{StartDate: "2024-01-10", EndDate: "2024-01-10"}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, ids(got))

	got, err = Apply(list, Criteria{StartDate: "2024-01-11"}, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Apply(list, Criteria{EndDate: "2024-01-09"}, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Apply(list, Criteria{EndDate: "2024-01-10"}, time.UTC)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestApply_DateRangeFallsBackToCreatedAt(t *testing.T) {
	list := []models.Appointment{{ID: "c", CreatedAt: models.NewTimestamp(day(2024, 1, 9, 0))}}

	got, err := Apply(list, Criteria{StartDate: "2024-01-09", EndDate: "2024-01-09"}, time.UTC)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestApply_Idempotent(t *testing.T) {
	list := sampleCollection()
	c := Criteria{Status: FilterPending, DoctorID: "D1"}

	first, err := Apply(list, c, time.UTC)
	require.NoError(t, err)
	second, err := Apply(list, c, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, sampleCollection(), list)
}

func TestApply_RejectsBadCriteria(t *testing.T) {
	_, err := Apply(sampleCollection(), Criteria{Status: "done"}, time.UTC)
	require.Error(t, err)

	_, err = Apply(sampleCollection(), Criteria{StartDate: "10/01/2024"}, time.UTC)
	require.Error(t, err)
}

func TestSummarize_FollowsFilteredSet(t *testing.T) {
	list := sampleCollection()

	all := Summarize(list)
	assert.Equal(t, Summary{Total: 5, Complete: 1, Pending: 3, Cancelled: 1}, all)

	filtered, err := Apply(list, Criteria{DoctorID: "D1"}, time.UTC)
	require.NoError(t, err)
	s := Summarize(filtered)
	assert.Equal(t, Summary{Total: 4, Complete: 1, Pending: 2, Cancelled: 1}, s)
	assert.Equal(t, s.Total, s.Complete+s.Pending+s.Cancelled)
}

func TestFilterState_SetAndResetAreWholeUpdates(t *testing.T) {
	state := NewFilterState()

	c, v0 := state.Get()
	assert.Equal(t, DefaultCriteria(), c)

	v1, err := state.Set(Criteria{Status: FilterCancelled, DoctorID: "D1", Search: "karim", StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.NoError(t, err)
	assert.Equal(t, v0+1, v1)

	v2 := state.Reset()
	assert.Equal(t, v1+1, v2)
	c, v := state.Get()
	assert.Equal(t, DefaultCriteria(), c)
	assert.Equal(t, v2, v)

	_, err = state.Set(Criteria{Status: "archived"})
	require.Error(t, err)
	_, v = state.Get()
	assert.Equal(t, v2, v)
}

func TestCriteria_NormalizeTreatsAllDoctorAsEmpty(t *testing.T) {
	c := Criteria{Status: " Pending ", DoctorID: "all", Search: "  098 "}.Normalize()
	assert.Equal(t, Criteria{Status: FilterPending, Search: "  098 "}, c)
}

func TestApply_SearchIsRawSubstring(t *testing.T) {
	list := []models.Appointment{
		{ID: "a", PatientName: "Rafiq", MobileNumber: "09801234567"},
		{ID: "b", PatientName: "Nasrin", MobileNumber: "0171 098 555"},
	}

	got, err := Apply(list, Criteria{Search: " 098"}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(got))

	got, err = Apply(list, Criteria{Search: "   "}, time.UTC)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestApply_ZonelessDatesUseFilterZone(t *testing.T) {
	restore := time.Local
	time.Local = time.UTC
	t.Cleanup(func() { time.Local = restore })

	var list models.AppointmentList
	require.NoError(t, json.Unmarshal([]byte(`{"appointments":[
		{"id":"late","createdAt":"2024-01-01T09:00:00","appointmentDate":"2024-01-10T23:00:00"}
	]}`), &list))
	dhaka := time.FixedZone("BDT", 6*60*60)

	got, err := Apply(list.Appointments, Criteria{StartDate: "2024-01-10", EndDate: "2024-01-10"}, dhaka)
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, ids(got))

	got, err = Apply(list.Appointments, Criteria{StartDate: "2024-01-11"}, dhaka)
	require.NoError(t, err)
	assert.Empty(t, got)
}
