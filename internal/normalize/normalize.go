// Package normalize translates the heterogeneous server representations into
// the canonical client model. Every fallback applied to missing or malformed
// input is a named fail-open default, not an error path.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/frontdesk/internal/model"
)

// Fail-open defaults.
const (
	// DefaultVerificationStatus substitutes for an empty or absent raw status.
	DefaultVerificationStatus = model.StatusNeedsReview
	// DefaultAppointmentStatus substitutes for an unparseable timestamp.
	DefaultAppointmentStatus = model.AppointmentUpcoming
	// DefaultInsuranceName substitutes for a missing provider name.
	DefaultInsuranceName = "—"
)

var timezoneSuffix = regexp.MustCompile(`([zZ]|[+-]\d{2}:\d{2})$`)

// VerificationStatus maps raw server statuses onto the canonical labels,
// case-insensitively. Unrecognized non-empty values pass through unchanged.
func VerificationStatus(raw string) model.VerificationStatus {
	if raw == "" {
		return DefaultVerificationStatus
	}
	switch strings.ToLower(raw) {
	case "verified":
		return model.StatusVerified
	case "needs_review":
		return model.StatusNeedsReview
	case "expired":
		return model.StatusExpired
	}
	return model.VerificationStatus(raw)
}

// DateTime appends a UTC designator to timestamps the server emits without
// one; they represent UTC instants. Idempotent: a value that already carries
// a timezone is returned unchanged.
func DateTime(raw string) string {
	if raw == "" {
		return raw
	}
	if timezoneSuffix.MatchString(raw) {
		return raw
	}
	return raw + "Z"
}

// Instant parses a server timestamp after DateTime normalization. The zero
// time signals an unparseable value.
func Instant(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, DateTime(raw))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AppointmentStatusAt derives the appointment status for a raw timestamp at
// the given instant. Pure function of wall-clock time; recomputed on every
// read, never cached.
func AppointmentStatusAt(scheduledTime string, now time.Time) model.AppointmentStatus {
	t := Instant(scheduledTime)
	if t.IsZero() {
		return DefaultAppointmentStatus
	}
	if t.Before(now) {
		return model.AppointmentCompleted
	}
	return model.AppointmentUpcoming
}

// Appointment converts a wire record into the canonical shape, defaulting
// missing nested fields defensively.
func Appointment(rec model.AppointmentRecord) model.Appointment {
	appt := model.Appointment{
		ID:        rec.ID,
		Insurance: rec.Provider,
		Copay:     rec.Copay,
	}

	rawStatus := rec.VerificationStatus
	if rec.Insurance != nil {
		if rec.Insurance.Status != "" {
			rawStatus = rec.Insurance.Status
		}
		if rec.Insurance.Provider != "" {
			appt.Insurance = rec.Insurance.Provider
		}
		if appt.Copay == nil {
			appt.Copay = rec.Insurance.Copay
		}
		if t := Instant(rec.Insurance.LastChecked); !t.IsZero() {
			appt.LastVerified = &t
		}
	}
	appt.InsuranceStatus = VerificationStatus(rawStatus)
	if appt.Insurance == "" {
		appt.Insurance = DefaultInsuranceName
	}

	if rec.Patient != nil {
		appt.PatientName = strings.TrimSpace(rec.Patient.FirstName + " " + rec.Patient.LastName)
		appt.PatientID = strconv.FormatInt(rec.Patient.ID, 10)
	}

	appt.DateTime = Instant(rec.ScheduledTime)
	return appt
}

// Alert converts a wire record into the canonical shape, parsing created_at
// and carrying resolved through unchanged.
func Alert(rec model.AlertRecord) model.Alert {
	return model.Alert{
		ID:            strconv.FormatInt(rec.ID, 10),
		Type:          rec.Type,
		Severity:      model.AlertSeverity(rec.Severity),
		Title:         alertTitle(rec.Type),
		Message:       rec.Message,
		AppointmentID: rec.AppointmentID,
		Timestamp:     Instant(rec.CreatedAt),
		Resolved:      rec.Resolved,
	}
}

func alertTitle(alertType string) string {
	if alertType == "" {
		return "Alert"
	}
	words := strings.ReplaceAll(alertType, "_", " ")
	return strings.ToUpper(words[:1]) + words[1:] + " alert"
}

// Patient converts a roster record into the read-only summary.
func Patient(rec model.PatientRecord) model.Patient {
	p := model.Patient{
		ID:               rec.ID,
		FirstName:        rec.FirstName,
		LastName:         rec.LastName,
		CreatedAt:        rec.CreatedAt,
		AppointmentCount: rec.AppointmentCount,
	}
	if rec.DOB != nil {
		p.DOB = *rec.DOB
	}
	return p
}
