package model

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleBilling Role = "billing"
	RolePatient Role = "patient"
)

// Session is the authenticated identity persisted across reloads.
type Session struct {
	UserID      int64  `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
	ClinicID    int64  `json:"clinic_id,omitempty"`
	Token       string `json:"token"`
}

// IsAuthenticated holds exactly when a token is present.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Token != ""
}
