// Package store owns the appointments, alerts and patients collections and
// every operation that mutates them. Views hold no copies; they derive
// projections from snapshots on every read.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/normalize"
	"github.com/jwalitptl/frontdesk/internal/storage"
	"github.com/jwalitptl/frontdesk/pkg/logger"
	"github.com/jwalitptl/frontdesk/pkg/metrics"
)

// DefaultWindowHours is the staff appointment window when none is given.
const DefaultWindowHours = 720

const (
	detailCacheTTL     = 30 * time.Second
	detailCacheCleanup = time.Minute
)

// LoadState is the per-collection loading state machine. Re-enterable:
// loading may begin again from any state.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateLoaded
	StateError
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	}
	return "idle"
}

// API is the subset of the front desk client the store calls.
type API interface {
	Appointments(ctx context.Context, from, to time.Time) (*model.AppointmentList, error)
	PatientPortalAppointments(ctx context.Context) (*model.AppointmentList, error)
	Patients(ctx context.Context) ([]model.PatientRecord, error)
	Patient(ctx context.Context, id string) (*model.PatientDetail, error)
	Alerts(ctx context.Context) ([]model.AlertRecord, error)
	UpdateAlert(ctx context.Context, id string, req model.AlertUpdateRequest) error
}

// collection tracks the request sequence for one collection so a slow
// response can never overwrite a newer one: last settled request wins.
type collection struct {
	issued  uint64
	settled uint64
	state   LoadState
	lastErr string
}

func (c *collection) begin() uint64 {
	c.issued++
	c.state = StateLoading
	c.lastErr = ""
	return c.issued
}

// settle reports whether a response with the given sequence is still
// current, and records it as settled when it is.
func (c *collection) settle(seq uint64) bool {
	if seq < c.settled {
		return false
	}
	c.settled = seq
	return true
}

// Store is the application data store. It is created by the composition
// root and injected into consumers; there is no package-level instance.
type Store struct {
	mu       sync.Mutex
	api      API
	sessions storage.SessionStore
	logger   *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	appointments []model.Appointment
	alerts       []model.Alert
	patients     []model.Patient
	theme        string

	appointmentsCol collection
	patientsCol     collection
	alertsCol       collection

	detailCache *gocache.Cache
	watchers    []chan struct{}
}

// Option configures optional store collaborators.
type Option func(*Store)

// WithMetrics enables refresh and alert instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithClock overrides wall-clock time, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(api API, sessions storage.SessionStore, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		api:         api,
		sessions:    sessions,
		logger:      log.WithComponent("store"),
		now:         time.Now,
		theme:       "light",
		detailCache: gocache.New(detailCacheTTL, detailCacheCleanup),
	}
	for _, opt := range opts {
		opt(s)
	}

	if theme, err := sessions.LoadTheme(); err == nil && theme != "" {
		s.theme = theme
	}
	return s
}

// Subscribe returns a channel that receives a signal after every state
// change. Signals coalesce; consumers re-read snapshots when woken.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.watchers = append(s.watchers, ch)
	return ch
}

// notify must be called with the mutex held.
func (s *Store) notify() {
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// LoadAppointments fetches the staff window [now, now+hoursAhead] and
// replaces the whole collection. On failure the previous data stays and
// only the error is recorded.
func (s *Store) LoadAppointments(ctx context.Context, hoursAhead int) error {
	if hoursAhead <= 0 {
		hoursAhead = DefaultWindowHours
	}

	s.mu.Lock()
	seq := s.appointmentsCol.begin()
	from := s.now()
	s.notify()
	s.mu.Unlock()

	to := from.Add(time.Duration(hoursAhead) * time.Hour)
	list, err := s.api.Appointments(ctx, from, to)
	if err != nil {
		s.failAppointments(seq, err)
		return err
	}
	s.applyAppointments(seq, list)
	return nil
}

// LoadPatientAppointments is the patient-portal variant; the server scopes
// the window. It shares the appointments collection and its state.
func (s *Store) LoadPatientAppointments(ctx context.Context) error {
	s.mu.Lock()
	seq := s.appointmentsCol.begin()
	s.notify()
	s.mu.Unlock()

	list, err := s.api.PatientPortalAppointments(ctx)
	if err != nil {
		s.failAppointments(seq, err)
		return err
	}
	s.applyAppointments(seq, list)
	return nil
}

func (s *Store) applyAppointments(seq uint64, list *model.AppointmentList) {
	appointments := make([]model.Appointment, 0, len(list.Appointments))
	for _, rec := range list.Appointments {
		appointments = append(appointments, normalize.Appointment(rec))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.appointmentsCol.settle(seq) {
		s.logger.Debug("discarding stale appointments response", "seq", seq)
		return
	}
	s.appointments = appointments
	s.appointmentsCol.state = StateLoaded
	s.appointmentsCol.lastErr = ""
	s.observeRefresh("appointments", "ok")
	s.notify()
}

func (s *Store) failAppointments(seq uint64, err error) {
	message := err.Error()
	if message == "" {
		message = "Failed to load appointments"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.appointmentsCol.settle(seq) {
		return
	}
	s.appointmentsCol.state = StateError
	s.appointmentsCol.lastErr = message
	s.observeRefresh("appointments", "error")
	s.notify()
}

// LoadPatients replaces the patient roster.
func (s *Store) LoadPatients(ctx context.Context) error {
	s.mu.Lock()
	seq := s.patientsCol.begin()
	s.notify()
	s.mu.Unlock()

	records, err := s.api.Patients(ctx)
	if err != nil {
		message := err.Error()
		if message == "" {
			message = "Failed to load patients"
		}
		s.mu.Lock()
		if s.patientsCol.settle(seq) {
			s.patientsCol.state = StateError
			s.patientsCol.lastErr = message
			s.observeRefresh("patients", "error")
			s.notify()
		}
		s.mu.Unlock()
		return err
	}

	patients := make([]model.Patient, 0, len(records))
	for _, rec := range records {
		patients = append(patients, normalize.Patient(rec))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.patientsCol.settle(seq) {
		s.logger.Debug("discarding stale patients response", "seq", seq)
		return nil
	}
	s.patients = patients
	s.patientsCol.state = StateLoaded
	s.patientsCol.lastErr = ""
	s.observeRefresh("patients", "ok")
	s.notify()
	return nil
}

// FetchPatientDetail reads through to the server without touching the
// shared collections; the payload goes straight back to the caller. A falsy
// id short-circuits with no network call. Responses are kept for a short
// TTL so detail panes reopened in quick succession do not refetch.
func (s *Store) FetchPatientDetail(ctx context.Context, patientID string) (*model.PatientDetail, error) {
	if patientID == "" {
		return nil, nil
	}

	if cached, ok := s.detailCache.Get(patientID); ok {
		return cached.(*model.PatientDetail), nil
	}

	detail, err := s.api.Patient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	s.detailCache.Set(patientID, detail, gocache.DefaultExpiration)
	return detail, nil
}

// UpdateAppointmentStatus applies an optimistic local status change with no
// network call. Moving to Verified derives a copay placeholder; moving away
// clears it. A non-Verified result synthesizes an alert, the only path that
// creates alerts client-side.
func (s *Store) UpdateAppointmentStatus(appointmentID int64, status model.VerificationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.appointments {
		if s.appointments[i].ID == appointmentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.logger.Debug("status update for unknown appointment", "id", appointmentID)
		return
	}

	appt := &s.appointments[idx]
	appt.InsuranceStatus = status
	if status == model.StatusVerified {
		if appt.Copay == nil {
			copay := placeholderCopay(appointmentID)
			appt.Copay = &copay
		}
	} else {
		appt.Copay = nil
	}
	now := s.now()
	appt.LastVerified = &now

	if status != model.StatusVerified {
		s.prependAlertLocked(model.Alert{
			Type:          "insurance_" + strings.ReplaceAll(strings.ToLower(string(status)), " ", "_"),
			Severity:      severityFor(status),
			Title:         "Insurance " + string(status),
			Message:       appt.PatientName + "'s insurance needs attention",
			AppointmentID: appointmentID,
			PatientID:     appt.PatientID,
		})
		if s.metrics != nil {
			s.metrics.AlertsSynthesized.Inc()
		}
	}
	s.notify()
}

// ApplyVerification overwrites an appointment with a server-confirmed
// verification result; unlike UpdateAppointmentStatus the copay is the
// server's, not a placeholder.
func (s *Store) ApplyVerification(appointmentID int64, status model.VerificationStatus, copay *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.appointments {
		if s.appointments[i].ID != appointmentID {
			continue
		}
		appt := &s.appointments[i]
		appt.InsuranceStatus = status
		appt.Copay = copay
		now := s.now()
		appt.LastVerified = &now

		if status != model.StatusVerified {
			s.prependAlertLocked(model.Alert{
				Type:          "insurance_" + strings.ReplaceAll(strings.ToLower(string(status)), " ", "_"),
				Severity:      severityFor(status),
				Title:         "Insurance " + string(status),
				Message:       appt.PatientName + "'s insurance needs attention",
				AppointmentID: appointmentID,
				PatientID:     appt.PatientID,
			})
			if s.metrics != nil {
				s.metrics.AlertsSynthesized.Inc()
			}
		}
		s.notify()
		return
	}
}

func severityFor(status model.VerificationStatus) model.AlertSeverity {
	if status == model.StatusExpired {
		return model.SeverityCritical
	}
	return model.SeverityWarning
}

// placeholderCopay derives a deterministic stand-in amount until the next
// authoritative reload.
func placeholderCopay(appointmentID int64) float64 {
	return 20 + float64(appointmentID%4)*7
}

// AddAlert prepends an alert and returns its id.
func (s *Store) AddAlert(alert model.Alert) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.prependAlertLocked(alert)
	s.notify()
	return id
}

// prependAlertLocked must be called with the mutex held.
func (s *Store) prependAlertLocked(alert model.Alert) string {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = s.now()
	}
	alert.Resolved = false
	s.alerts = append([]model.Alert{alert}, s.alerts...)
	return alert.ID
}

// RemoveAlert drops an alert locally. This is a view-local dismissal: the
// API has no delete endpoint, resolution is the server-authoritative path.
func (s *Store) RemoveAlert(alertID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.alerts[:0]
	for _, a := range s.alerts {
		if a.ID != alertID {
			kept = append(kept, a)
		}
	}
	s.alerts = kept
	s.notify()
}

// ResolveAlert marks an alert resolved on the server, then mirrors it
// locally. On failure local state is untouched; resolved alerts stay in the
// collection until removed. Idempotent.
func (s *Store) ResolveAlert(ctx context.Context, alertID string) error {
	if err := s.api.UpdateAlert(ctx, alertID, model.AlertUpdateRequest{Resolved: true}); err != nil {
		s.logger.Error(err, "failed to resolve alert", "id", alertID)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == alertID {
			s.alerts[i].Resolved = true
			break
		}
	}
	s.notify()
	return nil
}

// LoadAlerts replaces the alerts collection from the server.
func (s *Store) LoadAlerts(ctx context.Context) error {
	s.mu.Lock()
	seq := s.alertsCol.begin()
	s.mu.Unlock()

	records, err := s.api.Alerts(ctx)
	if err != nil {
		s.logger.Error(err, "failed to load alerts")
		s.mu.Lock()
		if s.alertsCol.settle(seq) {
			s.observeRefresh("alerts", "error")
		}
		s.mu.Unlock()
		return err
	}

	alerts := make([]model.Alert, 0, len(records))
	for _, rec := range records {
		alerts = append(alerts, normalize.Alert(rec))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alertsCol.settle(seq) {
		s.logger.Debug("discarding stale alerts response", "seq", seq)
		return nil
	}
	s.alerts = alerts
	s.alertsCol.state = StateLoaded
	s.observeRefresh("alerts", "ok")
	s.notify()
	return nil
}

// ToggleTheme flips the persisted light/dark preference and returns the new
// value. Pure UI state; it lives here because the persisted preference does.
func (s *Store) ToggleTheme() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.theme == "light" {
		s.theme = "dark"
	} else {
		s.theme = "light"
	}
	if err := s.sessions.SaveTheme(s.theme); err != nil {
		s.logger.Error(err, "failed to persist theme")
	}
	s.notify()
	return s.theme
}

func (s *Store) observeRefresh(collection, status string) {
	if s.metrics != nil {
		s.metrics.RefreshCycles.WithLabelValues(collection, status).Inc()
	}
}

// Snapshots. Each returns a copy; mutating it cannot corrupt the store.

func (s *Store) Appointments() []model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

func (s *Store) Alerts() []model.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

func (s *Store) Patients() []model.Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Patient, len(s.patients))
	copy(out, s.patients)
	return out
}

func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Store) AppointmentsState() (LoadState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appointmentsCol.state, s.appointmentsCol.lastErr
}

func (s *Store) PatientsState() (LoadState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patientsCol.state, s.patientsCol.lastErr
}
