package model

// AuthRequest types
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	ClinicName string `json:"clinic_name" validate:"required"`
	FullName   string `json:"full_name"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Role       Role   `json:"role" validate:"required,oneof=admin staff"`
}

type PatientRegisterRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	Phone     *string `json:"phone"`
	DOB       *string `json:"dob"`
}

// AuthResponse types
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Profile is the /auth/me payload for both identity namespaces. Staff
// profiles carry role and clinic_id, patient profiles first/last name.
type Profile struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Role      Role   `json:"role,omitempty"`
	ClinicID  int64  `json:"clinic_id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
