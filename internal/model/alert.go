package model

import "time"

type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critical"
	SeverityWarning  AlertSeverity = "warning"
	SeverityInfo     AlertSeverity = "info"
)

// Alert is either loaded from the server or synthesized locally when a
// status mutation produces an actionable condition. Resolved alerts stay in
// the collection until explicitly removed.
type Alert struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	Severity      AlertSeverity `json:"severity"`
	Title         string        `json:"title"`
	Message       string        `json:"message"`
	AppointmentID int64         `json:"appointment_id,omitempty"`
	PatientID     string        `json:"patient_id,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
	Resolved      bool          `json:"resolved"`
}

// AlertRecord is the GET /alerts wire shape.
type AlertRecord struct {
	ID            int64  `json:"id"`
	AppointmentID int64  `json:"appointment_id"`
	Type          string `json:"type"`
	Message       string `json:"message"`
	Severity      string `json:"severity"`
	Resolved      bool   `json:"resolved"`
	CreatedAt     string `json:"created_at"`
}

// AlertUpdateRequest is the PATCH /alerts/{id} body.
type AlertUpdateRequest struct {
	Resolved bool `json:"resolved"`
}
