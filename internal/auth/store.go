// Package auth holds the session state for the three identity classes and
// the login, signup and logout operations behind it.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/storage"
	"github.com/jwalitptl/frontdesk/pkg/logger"
)

// API is the subset of the front desk client the auth store calls.
type API interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.TokenResponse, error)
	Me(ctx context.Context, token string) (*model.Profile, error)
	PatientLogin(ctx context.Context, req model.LoginRequest) (*model.TokenResponse, error)
	PatientRegister(ctx context.Context, req model.PatientRegisterRequest) error
	PatientMe(ctx context.Context, token string) (*model.Profile, error)
}

// Store owns the current session. Overlapping operations are not queued;
// callers are expected to disable triggers while Loading reports true.
type Store struct {
	mu       sync.Mutex
	api      API
	sessions storage.SessionStore
	logger   *logger.Logger
	validate *validator.Validate

	session *model.Session
	loading bool
	lastErr string
}

func NewStore(api API, sessions storage.SessionStore, log *logger.Logger) *Store {
	return &Store{
		api:      api,
		sessions: sessions,
		logger:   log.WithComponent("auth"),
		validate: validator.New(),
	}
}

// Restore loads the persisted session. A session whose token has already
// expired is discarded so the caller starts unauthenticated.
func (s *Store) Restore() error {
	session, err := s.sessions.LoadSession()
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	if tokenExpired(session.Token, time.Now()) {
		s.logger.Info("discarding expired session", "email", session.Email)
		if err := s.sessions.ClearSession(); err != nil {
			s.logger.Error(err, "failed to clear expired session")
		}
		return nil
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	return nil
}

// tokenExpired parses the token without verifying its signature; only the
// exp claim matters here, the server is the authority on validity.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

// Login exchanges staff credentials for a token, fetches the profile and
// persists the session before returning.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.begin()

	req := model.LoginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return s.fail(err, "Invalid email or password")
	}

	tokens, err := s.api.Login(ctx, req)
	if err != nil {
		return s.fail(err, "Invalid email or password")
	}

	profile, err := s.api.Me(ctx, tokens.AccessToken)
	if err != nil {
		return s.fail(err, "Invalid email or password")
	}

	session := &model.Session{
		UserID:      profile.ID,
		Email:       profile.Email,
		DisplayName: emailLocalPart(profile.Email),
		Role:        profile.Role,
		ClinicID:    profile.ClinicID,
		Token:       tokens.AccessToken,
	}
	return s.establish(session)
}

// Signup registers a new clinic plus staff identity in one call. Any role
// other than admin normalizes to staff at this boundary.
func (s *Store) Signup(ctx context.Context, clinicName, userName, email, password string, role model.Role) error {
	s.begin()

	if role != model.RoleAdmin {
		role = model.RoleStaff
	}
	req := model.RegisterRequest{
		ClinicName: clinicName,
		FullName:   userName,
		Email:      email,
		Password:   password,
		Role:       role,
	}
	if err := s.validate.Struct(req); err != nil {
		return s.fail(err, "Signup failed")
	}

	tokens, err := s.api.Register(ctx, req)
	if err != nil {
		return s.fail(err, "Signup failed")
	}

	profile, err := s.api.Me(ctx, tokens.AccessToken)
	if err != nil {
		return s.fail(err, "Signup failed")
	}

	displayName := userName
	if displayName == "" {
		displayName = emailLocalPart(profile.Email)
	}
	session := &model.Session{
		UserID:      profile.ID,
		Email:       profile.Email,
		DisplayName: displayName,
		Role:        profile.Role,
		ClinicID:    profile.ClinicID,
		Token:       tokens.AccessToken,
	}
	return s.establish(session)
}

// PatientLogin is the patient-namespace login flow.
func (s *Store) PatientLogin(ctx context.Context, email, password string) error {
	s.begin()

	req := model.LoginRequest{Email: email, Password: password}
	if err := s.validate.Struct(req); err != nil {
		return s.fail(err, "Invalid email or password")
	}

	tokens, err := s.api.PatientLogin(ctx, req)
	if err != nil {
		return s.fail(err, "Invalid email or password")
	}

	profile, err := s.api.PatientMe(ctx, tokens.AccessToken)
	if err != nil {
		return s.fail(err, "Invalid email or password")
	}

	session := &model.Session{
		UserID:      profile.ID,
		Email:       profile.Email,
		DisplayName: strings.TrimSpace(profile.FirstName + " " + profile.LastName),
		Role:        model.RolePatient,
		Token:       tokens.AccessToken,
	}
	return s.establish(session)
}

// PatientSignup registers a patient identity. It does not authenticate; the
// caller logs in separately afterwards.
func (s *Store) PatientSignup(ctx context.Context, firstName, lastName, email, password, dob, phone string) error {
	s.begin()

	req := model.PatientRegisterRequest{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  password,
		Phone:     optional(phone),
		DOB:       optional(dob),
	}
	if err := s.validate.Struct(req); err != nil {
		return s.fail(err, "Registration failed")
	}

	if err := s.api.PatientRegister(ctx, req); err != nil {
		return s.fail(err, "Registration failed")
	}

	s.mu.Lock()
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()
	return nil
}

// Logout clears the persisted session and in-memory state unconditionally.
// Safe to call regardless of authentication status.
func (s *Store) Logout() {
	if err := s.sessions.ClearSession(); err != nil {
		s.logger.Error(err, "failed to clear persisted session")
	}

	s.mu.Lock()
	s.session = nil
	s.lastErr = ""
	s.mu.Unlock()
}

// Session returns a copy of the current session, or nil.
func (s *Store) Session() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.IsAuthenticated()
}

// Token implements the API client token source from in-memory state.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the message captured by the last failed operation.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

// fail records the message for display and re-throws; the session itself is
// left unchanged.
func (s *Store) fail(err error, fallback string) error {
	message := err.Error()
	if message == "" {
		message = fallback
	}

	s.mu.Lock()
	s.loading = false
	s.lastErr = message
	s.mu.Unlock()
	return err
}

// establish persists the session synchronously before the operation
// resolves, then swaps it into memory.
func (s *Store) establish(session *model.Session) error {
	if err := s.sessions.SaveSession(session); err != nil {
		return s.fail(err, "failed to persist session")
	}

	s.mu.Lock()
	s.session = session
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()

	s.logger.Info("session established", "email", session.Email, "role", string(session.Role))
	return nil
}

func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
