package model

import "time"

// VerificationStatus is an open set: the three canonical labels are known,
// anything else the server sends is carried through verbatim.
type VerificationStatus string

const (
	StatusVerified    VerificationStatus = "Verified"
	StatusNeedsReview VerificationStatus = "Needs Review"
	StatusExpired     VerificationStatus = "Expired"
)

// Canonical reports whether the status is one of the three normalized labels.
func (s VerificationStatus) Canonical() bool {
	switch s {
	case StatusVerified, StatusNeedsReview, StatusExpired:
		return true
	}
	return false
}

type AppointmentStatus string

const (
	AppointmentUpcoming  AppointmentStatus = "Upcoming"
	AppointmentCompleted AppointmentStatus = "Completed"
)

// Appointment is the canonical client-side shape. DateTime is an absolute
// instant; a zero value means the server timestamp could not be parsed.
type Appointment struct {
	ID              int64              `json:"id"`
	PatientName     string             `json:"patient_name"`
	PatientID       string             `json:"patient_id"`
	DateTime        time.Time          `json:"date_time"`
	Insurance       string             `json:"insurance"`
	InsuranceStatus VerificationStatus `json:"insurance_status"`
	Copay           *float64           `json:"copay"`
	LastVerified    *time.Time         `json:"last_verified"`
}

// StatusAt derives the appointment status from wall-clock time. It is never
// stored: Completed holds iff the instant is strictly before now, and an
// unparseable (zero) instant falls open to Upcoming.
func (a Appointment) StatusAt(now time.Time) AppointmentStatus {
	if a.DateTime.IsZero() {
		return AppointmentUpcoming
	}
	if a.DateTime.Before(now) {
		return AppointmentCompleted
	}
	return AppointmentUpcoming
}

// Wire types for GET /appointments/ and GET /patient/portal/appointments.

type PatientRef struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type InsuranceRef struct {
	Provider    string   `json:"provider"`
	Status      string   `json:"status"`
	Copay       *float64 `json:"copay"`
	LastChecked string   `json:"last_checked"`
}

type AppointmentRecord struct {
	ID                 int64         `json:"id"`
	ScheduledTime      string        `json:"scheduled_time"`
	VerificationStatus string        `json:"verification_status"`
	Provider           string        `json:"provider"`
	Copay              *float64      `json:"copay"`
	Patient            *PatientRef   `json:"patient"`
	Insurance          *InsuranceRef `json:"insurance"`
}

type AppointmentList struct {
	Appointments []AppointmentRecord `json:"appointments"`
	Total        int                 `json:"total"`
}
