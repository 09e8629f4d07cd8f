package model

// Patient is the read-only roster summary. Loaded, never mutated locally.
type Patient struct {
	ID               int64  `json:"id"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	DOB              string `json:"dob"`
	CreatedAt        string `json:"created_at"`
	AppointmentCount int    `json:"appointment_count"`
}

// PatientRecord is the GET /patients wire shape.
type PatientRecord struct {
	ID               int64   `json:"id"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	DOB              *string `json:"dob"`
	CreatedAt        string  `json:"created_at"`
	AppointmentCount int     `json:"appointment_count"`
}

// PatientDetail is the GET /patients/{id} payload, returned to the caller
// as-is rather than stored.
type PatientDetail struct {
	ID               int64                   `json:"id"`
	FirstName        string                  `json:"first_name"`
	LastName         string                  `json:"last_name"`
	Email            *string                 `json:"email"`
	Phone            *string                 `json:"phone"`
	DOB              *string                 `json:"dob"`
	Appointments     []AppointmentDetail     `json:"appointments"`
	InsuranceRecords []InsuranceRecordDetail `json:"insurance_records"`
}

type AppointmentDetail struct {
	ID                 int64    `json:"id"`
	ScheduledTime      string   `json:"scheduled_time"`
	VerificationStatus string   `json:"verification_status"`
	Copay              *float64 `json:"copay"`
	Provider           *string  `json:"provider"`
}

type InsuranceRecordDetail struct {
	Provider    string   `json:"provider"`
	Status      string   `json:"status"`
	Copay       *float64 `json:"copay"`
	LastChecked *string  `json:"last_checked"`
	PolicyID    *string  `json:"policy_id"`
}
