package model

// Insurance verification wire types.

type ReverifyResponse struct {
	AppointmentID int64    `json:"appointment_id"`
	Status        string   `json:"status"`
	Provider      string   `json:"provider"`
	Copay         *float64 `json:"copay"`
}

type PayerVerificationRequest struct {
	PatientName   string  `json:"patient_name" validate:"required"`
	DOB           *string `json:"dob,omitempty"`
	PolicyID      *string `json:"policy_id,omitempty"`
	AppointmentID *int64  `json:"appointment_id,omitempty"`
}

type PayerVerificationResponse struct {
	Provider   string   `json:"provider"`
	Status     string   `json:"status"`
	PlanType   string   `json:"plan_type"`
	Copay      *float64 `json:"copay"`
	Deductible float64  `json:"deductible"`
	VerifiedAt string   `json:"verified_at"`
	Message    string   `json:"message"`
}

type SimulationResult struct {
	AppointmentID int64    `json:"appointment_id"`
	Patient       string   `json:"patient"`
	Provider      string   `json:"provider"`
	Status        string   `json:"status"`
	Copay         *float64 `json:"copay"`
	LastChecked   string   `json:"last_checked"`
}

type SimulationResponse struct {
	Results []SimulationResult `json:"results"`
}
