package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/frontdesk/internal/model"
)

func TestVerificationStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want model.VerificationStatus
	}{
		{"verified", model.StatusVerified},
		{"Verified", model.StatusVerified},
		{"VERIFIED", model.StatusVerified},
		{"needs_review", model.StatusNeedsReview},
		{"Needs_Review", model.StatusNeedsReview},
		{"NEEDS_REVIEW", model.StatusNeedsReview},
		{"expired", model.StatusExpired},
		{"EXPIRED", model.StatusExpired},
		{"", DefaultVerificationStatus},
		{"pending_docs", model.VerificationStatus("pending_docs")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, VerificationStatus(tt.raw), "raw=%q", tt.raw)
	}
}

func TestVerificationStatusPassthroughNotCanonical(t *testing.T) {
	got := VerificationStatus("pending_docs")
	assert.False(t, got.Canonical())
}

func TestDateTimeAppendsUTCDesignator(t *testing.T) {
	assert.Equal(t, "2024-01-01T10:00:00Z", DateTime("2024-01-01T10:00:00"))
}

func TestDateTimeIdempotent(t *testing.T) {
	inputs := []string{
		"2024-01-01T10:00:00",
		"2024-01-01T10:00:00Z",
		"2024-01-01T10:00:00z",
		"2024-01-01T10:00:00+05:30",
		"2024-01-01T10:00:00-08:00",
		"",
		"not a timestamp",
	}
	for _, s := range inputs {
		once := DateTime(s)
		assert.Equal(t, once, DateTime(once), "input=%q", s)
	}
}

func TestAppointmentStatusAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, model.AppointmentCompleted, AppointmentStatusAt("2024-06-01T11:59:59Z", now))
	assert.Equal(t, model.AppointmentUpcoming, AppointmentStatusAt("2024-06-01T12:00:00Z", now))
	assert.Equal(t, model.AppointmentUpcoming, AppointmentStatusAt("2024-06-01T12:00:01Z", now))

	// Unparseable input falls open to Upcoming.
	assert.Equal(t, DefaultAppointmentStatus, AppointmentStatusAt("garbage", now))
	assert.Equal(t, DefaultAppointmentStatus, AppointmentStatusAt("", now))
}

func TestAppointmentFromRecord(t *testing.T) {
	copay := 35.0
	rec := model.AppointmentRecord{
		ID:            1,
		ScheduledTime: "2024-01-01T10:00:00",
		Patient:       &model.PatientRef{ID: 7, FirstName: "Jo", LastName: "Doe"},
		Insurance: &model.InsuranceRef{
			Provider:    "Acme Health",
			Status:      "verified",
			Copay:       &copay,
			LastChecked: "2023-12-30T08:00:00",
		},
	}

	appt := Appointment(rec)

	assert.Equal(t, int64(1), appt.ID)
	assert.Equal(t, "Jo Doe", appt.PatientName)
	assert.Equal(t, "7", appt.PatientID)
	assert.Equal(t, model.StatusVerified, appt.InsuranceStatus)
	assert.Equal(t, "Acme Health", appt.Insurance)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), appt.DateTime)
	if assert.NotNil(t, appt.Copay) {
		assert.Equal(t, 35.0, *appt.Copay)
	}
	if assert.NotNil(t, appt.LastVerified) {
		assert.Equal(t, time.Date(2023, 12, 30, 8, 0, 0, 0, time.UTC), *appt.LastVerified)
	}
}

func TestAppointmentDefaultsMissingFields(t *testing.T) {
	appt := Appointment(model.AppointmentRecord{ID: 2, ScheduledTime: "nonsense"})

	assert.Equal(t, "", appt.PatientName)
	assert.Equal(t, "", appt.PatientID)
	assert.Equal(t, DefaultInsuranceName, appt.Insurance)
	assert.Equal(t, DefaultVerificationStatus, appt.InsuranceStatus)
	assert.True(t, appt.DateTime.IsZero())
	assert.Nil(t, appt.Copay)
	assert.Nil(t, appt.LastVerified)
	assert.Equal(t, model.AppointmentUpcoming, appt.StatusAt(time.Now()))
}

func TestAppointmentTopLevelStatusFallback(t *testing.T) {
	appt := Appointment(model.AppointmentRecord{
		ID:                 3,
		VerificationStatus: "expired",
		Provider:           "Umbrella",
	})

	assert.Equal(t, model.StatusExpired, appt.InsuranceStatus)
	assert.Equal(t, "Umbrella", appt.Insurance)
}

func TestAlertFromRecord(t *testing.T) {
	alert := Alert(model.AlertRecord{
		ID:            9,
		AppointmentID: 4,
		Type:          "insurance",
		Message:       "Insurance expired for patient Jo Doe.",
		Severity:      "critical",
		Resolved:      true,
		CreatedAt:     "2024-02-01T09:30:00",
	})

	assert.Equal(t, "9", alert.ID)
	assert.Equal(t, int64(4), alert.AppointmentID)
	assert.Equal(t, model.SeverityCritical, alert.Severity)
	assert.True(t, alert.Resolved)
	assert.Equal(t, time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC), alert.Timestamp)
}
