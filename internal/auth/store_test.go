package auth

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/storage"
	apperrors "github.com/jwalitptl/frontdesk/pkg/errors"
	"github.com/jwalitptl/frontdesk/pkg/logger"
)

type fakeAPI struct {
	login           func(req model.LoginRequest) (*model.TokenResponse, error)
	register        func(req model.RegisterRequest) (*model.TokenResponse, error)
	me              func(token string) (*model.Profile, error)
	patientLogin    func(req model.LoginRequest) (*model.TokenResponse, error)
	patientRegister func(req model.PatientRegisterRequest) error
	patientMe       func(token string) (*model.Profile, error)

	loginCalls int
}

func (f *fakeAPI) Login(_ context.Context, req model.LoginRequest) (*model.TokenResponse, error) {
	f.loginCalls++
	return f.login(req)
}

func (f *fakeAPI) Register(_ context.Context, req model.RegisterRequest) (*model.TokenResponse, error) {
	return f.register(req)
}

func (f *fakeAPI) Me(_ context.Context, token string) (*model.Profile, error) {
	return f.me(token)
}

func (f *fakeAPI) PatientLogin(_ context.Context, req model.LoginRequest) (*model.TokenResponse, error) {
	return f.patientLogin(req)
}

func (f *fakeAPI) PatientRegister(_ context.Context, req model.PatientRegisterRequest) error {
	return f.patientRegister(req)
}

func (f *fakeAPI) PatientMe(_ context.Context, token string) (*model.Profile, error) {
	return f.patientMe(token)
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func newTestStore(api *fakeAPI) (*Store, *storage.FileStore) {
	sessions := storage.NewFileStore(afero.NewMemMapFs(), "state")
	return NewStore(api, sessions, testLogger()), sessions
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "desk@clinic.test",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestLoginEstablishesAndPersistsSession(t *testing.T) {
	api := &fakeAPI{
		login: func(req model.LoginRequest) (*model.TokenResponse, error) {
			assert.Equal(t, "desk@clinic.test", req.Email)
			return &model.TokenResponse{AccessToken: "tok-1", TokenType: "bearer"}, nil
		},
		me: func(token string) (*model.Profile, error) {
			assert.Equal(t, "tok-1", token)
			return &model.Profile{ID: 5, Email: "desk@clinic.test", Role: model.RoleStaff, ClinicID: 2}, nil
		},
	}
	store, sessions := newTestStore(api)

	require.NoError(t, store.Login(context.Background(), "desk@clinic.test", "pw123"))

	session := store.Session()
	require.NotNil(t, session)
	assert.Equal(t, int64(5), session.UserID)
	assert.Equal(t, "desk", session.DisplayName)
	assert.Equal(t, model.RoleStaff, session.Role)
	assert.Equal(t, "tok-1", store.Token())
	assert.True(t, store.IsAuthenticated())
	assert.False(t, store.Loading())
	assert.Equal(t, "", store.Err())

	persisted, err := sessions.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, session, persisted)
}

func TestLoginFailureSurfacesServerMessage(t *testing.T) {
	api := &fakeAPI{
		login: func(req model.LoginRequest) (*model.TokenResponse, error) {
			return nil, apperrors.NewRequest(http.StatusUnauthorized, "Invalid credentials", "Invalid email or password")
		},
	}
	store, sessions := newTestStore(api)

	err := store.Login(context.Background(), "desk@clinic.test", "wrong")
	require.Error(t, err)

	// Server text verbatim, not the fallback.
	assert.Equal(t, "Invalid credentials", store.Err())
	assert.False(t, store.Loading())
	assert.Nil(t, store.Session())
	assert.False(t, store.IsAuthenticated())

	persisted, loadErr := sessions.LoadSession()
	require.NoError(t, loadErr)
	assert.Nil(t, persisted)
}

func TestLoginValidatesBeforeCalling(t *testing.T) {
	api := &fakeAPI{
		login: func(req model.LoginRequest) (*model.TokenResponse, error) {
			return &model.TokenResponse{AccessToken: "tok"}, nil
		},
	}
	store, _ := newTestStore(api)

	err := store.Login(context.Background(), "not-an-email", "pw")
	require.Error(t, err)
	assert.Equal(t, 0, api.loginCalls)
	assert.NotEmpty(t, store.Err())
}

func TestSignupNormalizesRoleToStaff(t *testing.T) {
	var gotRole model.Role
	api := &fakeAPI{
		register: func(req model.RegisterRequest) (*model.TokenResponse, error) {
			gotRole = req.Role
			return &model.TokenResponse{AccessToken: "tok-2"}, nil
		},
		me: func(token string) (*model.Profile, error) {
			return &model.Profile{ID: 1, Email: "owner@clinic.test", Role: model.RoleStaff, ClinicID: 9}, nil
		},
	}
	store, _ := newTestStore(api)

	err := store.Signup(context.Background(), "Sunrise Clinic", "Pat Owner", "owner@clinic.test", "longenough", model.RoleBilling)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStaff, gotRole)

	session := store.Session()
	require.NotNil(t, session)
	assert.Equal(t, "Pat Owner", session.DisplayName)
}

func TestSignupKeepsAdminRole(t *testing.T) {
	var gotRole model.Role
	api := &fakeAPI{
		register: func(req model.RegisterRequest) (*model.TokenResponse, error) {
			gotRole = req.Role
			return &model.TokenResponse{AccessToken: "tok-3"}, nil
		},
		me: func(token string) (*model.Profile, error) {
			return &model.Profile{ID: 1, Email: "owner@clinic.test", Role: model.RoleAdmin, ClinicID: 9}, nil
		},
	}
	store, _ := newTestStore(api)

	require.NoError(t, store.Signup(context.Background(), "Sunrise Clinic", "Pat", "owner@clinic.test", "longenough", model.RoleAdmin))
	assert.Equal(t, model.RoleAdmin, gotRole)
}

func TestPatientLoginBuildsPatientSession(t *testing.T) {
	api := &fakeAPI{
		patientLogin: func(req model.LoginRequest) (*model.TokenResponse, error) {
			return &model.TokenResponse{AccessToken: "p-tok"}, nil
		},
		patientMe: func(token string) (*model.Profile, error) {
			return &model.Profile{ID: 12, Email: "jo@home.test", FirstName: "Jo", LastName: "Doe"}, nil
		},
	}
	store, _ := newTestStore(api)

	require.NoError(t, store.PatientLogin(context.Background(), "jo@home.test", "pw123"))

	session := store.Session()
	require.NotNil(t, session)
	assert.Equal(t, "Jo Doe", session.DisplayName)
	assert.Equal(t, model.RolePatient, session.Role)
}

func TestPatientSignupDoesNotAuthenticate(t *testing.T) {
	api := &fakeAPI{
		patientRegister: func(req model.PatientRegisterRequest) error {
			assert.Nil(t, req.Phone)
			require.NotNil(t, req.DOB)
			assert.Equal(t, "1990-04-01", *req.DOB)
			return nil
		},
	}
	store, _ := newTestStore(api)

	err := store.PatientSignup(context.Background(), "Jo", "Doe", "jo@home.test", "longenough", "1990-04-01", "")
	require.NoError(t, err)
	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, "", store.Err())
}

func TestLogoutIdempotent(t *testing.T) {
	api := &fakeAPI{
		login: func(req model.LoginRequest) (*model.TokenResponse, error) {
			return &model.TokenResponse{AccessToken: "tok"}, nil
		},
		me: func(token string) (*model.Profile, error) {
			return &model.Profile{ID: 1, Email: "desk@clinic.test", Role: model.RoleStaff}, nil
		},
	}
	store, sessions := newTestStore(api)

	require.NoError(t, store.Login(context.Background(), "desk@clinic.test", "pw123"))
	store.Logout()
	store.Logout()

	assert.False(t, store.IsAuthenticated())
	assert.Equal(t, "", store.Token())

	persisted, err := sessions.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

func TestRestoreKeepsValidSession(t *testing.T) {
	store, sessions := newTestStore(&fakeAPI{})
	require.NoError(t, sessions.SaveSession(&model.Session{
		Email: "desk@clinic.test",
		Role:  model.RoleStaff,
		Token: signedToken(t, time.Now().Add(time.Hour)),
	}))

	require.NoError(t, store.Restore())
	assert.True(t, store.IsAuthenticated())
}

func TestRestoreDiscardsExpiredSession(t *testing.T) {
	store, sessions := newTestStore(&fakeAPI{})
	require.NoError(t, sessions.SaveSession(&model.Session{
		Email: "desk@clinic.test",
		Role:  model.RoleStaff,
		Token: signedToken(t, time.Now().Add(-time.Hour)),
	}))

	require.NoError(t, store.Restore())
	assert.False(t, store.IsAuthenticated())

	// The stale persisted copy is cleared too.
	persisted, err := sessions.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

func TestRestoreKeepsOpaqueToken(t *testing.T) {
	store, sessions := newTestStore(&fakeAPI{})
	require.NoError(t, sessions.SaveSession(&model.Session{
		Email: "desk@clinic.test",
		Role:  model.RoleStaff,
		Token: "not-a-jwt",
	}))

	require.NoError(t, store.Restore())
	assert.True(t, store.IsAuthenticated())
}
