// Package insurance drives server-side verification and feeds the results
// back into the store.
package insurance

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/normalize"
	"github.com/jwalitptl/frontdesk/internal/store"
	"github.com/jwalitptl/frontdesk/pkg/logger"
)

// ErrRateLimited is returned when a manual re-check exceeds the local
// limiter; the server enforces the same 5/minute bound.
var ErrRateLimited = errors.New("reverification rate limit exceeded, try again shortly")

// API is the subset of the front desk client this service calls.
type API interface {
	ReverifyInsurance(ctx context.Context, appointmentID int64) (*model.ReverifyResponse, error)
	VerifyPayer(ctx context.Context, payerID string, req model.PayerVerificationRequest) (*model.PayerVerificationResponse, error)
	RunSimulation(ctx context.Context) (*model.SimulationResponse, error)
}

type Service struct {
	api     API
	store   *store.Store
	logger  *logger.Logger
	limiter *rate.Limiter
}

func NewService(api API, st *store.Store, log *logger.Logger) *Service {
	return &Service{
		api:    api,
		store:  st,
		logger: log.WithComponent("insurance"),
		// 5 manual re-checks per minute, matching the server's limit.
		limiter: rate.NewLimiter(rate.Every(12*time.Second), 5),
	}
}

// Reverify requests a fresh verification for an appointment and applies the
// authoritative result to the store, replacing any optimistic state.
func (s *Service) Reverify(ctx context.Context, appointmentID int64) (*model.ReverifyResponse, error) {
	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	result, err := s.api.ReverifyInsurance(ctx, appointmentID)
	if err != nil {
		s.logger.Error(err, "reverification failed", "appointment_id", appointmentID)
		return nil, err
	}

	status := normalize.VerificationStatus(result.Status)
	s.store.ApplyVerification(appointmentID, status, result.Copay)
	s.logger.Info("insurance reverified",
		"appointment_id", appointmentID, "status", string(status))
	return result, nil
}

// VerifyPayer runs an eligibility lookup against a specific payer. The
// result goes back to the caller; nothing is stored.
func (s *Service) VerifyPayer(ctx context.Context, payerID string, req model.PayerVerificationRequest) (*model.PayerVerificationResponse, error) {
	return s.api.VerifyPayer(ctx, payerID, req)
}

// RunSimulation sweeps the clinic's upcoming appointments server-side and
// returns the per-appointment outcomes.
func (s *Service) RunSimulation(ctx context.Context) (*model.SimulationResponse, error) {
	return s.api.RunSimulation(ctx)
}
