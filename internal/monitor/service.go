package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/internal/alerts"
	"github.com/aerosense/aerosense/internal/notifications"
	"github.com/aerosense/aerosense/internal/sensor"
	"github.com/aerosense/aerosense/internal/session"
	"github.com/aerosense/aerosense/internal/settings"
	"github.com/aerosense/aerosense/pkg/logger"
)

// State is the connection state of the monitoring subsystem.
type State string

const (
	StateDisconnected  State = "disconnected"
	StateConnectedIdle State = "connected_idle"
	StateSampling      State = "sampling"
)

// ErrNoActiveSession is returned by session mutations when no flight
// is being tracked.
var ErrNoActiveSession = errors.New("no active session")

// ErrSessionActive is returned when starting a session while one is
// already being tracked. The caller must end the current flight first;
// the previous behavior of silently overwriting the active session
// lost its readings.
var ErrSessionActive = errors.New("a session is already active")

// SessionStore is the persistence surface the monitor needs for
// sessions.
type SessionStore interface {
	SaveSession(*session.FlightSession) error
	GetSessions() ([]*session.FlightSession, error)
	GetSession(id string) (*session.FlightSession, error)
	GetActiveSession() (*session.FlightSession, error)
	DeleteSession(id string) error
}

// StateStore is the persistence surface for settings and the
// connected device.
type StateStore interface {
	GetSettings() settings.UserSettings
	SaveSettings(settings.UserSettings) error
	GetConnectedDevice() (*sensor.DeviceInfo, error)
	SaveConnectedDevice(*sensor.DeviceInfo) error
}

// Broadcaster pushes live updates to connected clients.
type Broadcaster interface {
	BroadcastReading(*airquality.Reading)
	BroadcastAlert(*alerts.Alert)
}

// Service owns the mutable monitoring state: connected device, active
// session, current reading, alerts, and settings. All mutation goes
// through its methods under one mutex, preserving the single-writer
// invariant. Persistence is best-effort: a failed write is logged and
// in-memory state remains the source of truth.
type Service struct {
	ble         sensor.Manager
	alerts      *alerts.Manager
	notifier    notifications.Notifier
	sessions    SessionStore
	state       StateStore
	broadcaster Broadcaster
	interval    time.Duration
	logger      *logger.Logger

	mu           sync.Mutex
	device       *sensor.DeviceInfo
	current      *airquality.Reading
	active       *session.FlightSession
	userSettings settings.UserSettings
	sampling     bool
	stopCh       chan struct{}
}

// NewService creates the monitoring service.
func NewService(
	ble sensor.Manager,
	alertManager *alerts.Manager,
	notifier notifications.Notifier,
	sessionStore SessionStore,
	stateStore StateStore,
	broadcaster Broadcaster,
	samplingInterval time.Duration,
	logger *logger.Logger,
) *Service {
	return &Service{
		ble:          ble,
		alerts:       alertManager,
		notifier:     notifier,
		sessions:     sessionStore,
		state:        stateStore,
		broadcaster:  broadcaster,
		interval:     samplingInterval,
		userSettings: settings.Defaults(),
		logger:       logger.Named("monitor"),
	}
}

// Restore loads persisted state on startup: settings, any in-progress
// session, and the last connected device. If a device was connected it
// is re-connected and sampling resumes.
func (s *Service) Restore(ctx context.Context) {
	s.mu.Lock()
	s.userSettings = s.state.GetSettings()
	s.mu.Unlock()

	active, err := s.sessions.GetActiveSession()
	if err != nil {
		s.logger.Error("Failed to restore active session", logger.Error(err))
	} else if active != nil {
		s.mu.Lock()
		s.active = active
		s.mu.Unlock()
		s.logger.Info("Restored active session",
			logger.String("session_id", active.ID),
			logger.Int("reading_count", len(active.Readings)))
	}

	device, err := s.state.GetConnectedDevice()
	if err != nil {
		s.logger.Error("Failed to restore connected device", logger.Error(err))
		return
	}
	if device == nil {
		return
	}

	if _, err := s.Connect(ctx, device.ID); err != nil {
		s.logger.Warn("Failed to reconnect persisted device",
			logger.String("device_id", device.ID),
			logger.Error(err))
	}
}

// ConnectionState returns the current state of the monitoring
// subsystem.
func (s *Service) ConnectionState() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.device == nil:
		return StateDisconnected
	case s.sampling:
		return StateSampling
	default:
		return StateConnectedIdle
	}
}

// Scan discovers nearby sensors.
func (s *Service) Scan(ctx context.Context) ([]sensor.DeviceInfo, error) {
	devices, err := s.ble.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	infos := make([]sensor.DeviceInfo, 0, len(devices))
	for _, d := range devices {
		infos = append(infos, d.ToDeviceInfo())
	}
	return infos, nil
}

// Connect connects to the given device and begins the sampling loop.
func (s *Service) Connect(ctx context.Context, deviceID string) (sensor.DeviceInfo, error) {
	info, err := s.ble.Connect(ctx, deviceID)
	if err != nil {
		return sensor.DeviceInfo{}, fmt.Errorf("connect failed: %w", err)
	}

	s.mu.Lock()
	s.device = &info
	s.mu.Unlock()

	if err := s.state.SaveConnectedDevice(&info); err != nil {
		s.logger.Error("Failed to persist connected device", logger.Error(err))
	}

	s.startSampling()
	return info, nil
}

// Disconnect tears down the device connection and stops sampling.
func (s *Service) Disconnect() error {
	s.mu.Lock()
	device := s.device
	s.mu.Unlock()

	if device == nil {
		return errors.New("no device connected")
	}

	s.stopSampling()

	if err := s.ble.Disconnect(device.ID); err != nil {
		s.logger.Warn("BLE disconnect failed", logger.Error(err))
	}

	s.mu.Lock()
	s.device = nil
	s.current = nil
	s.mu.Unlock()

	if err := s.state.SaveConnectedDevice(nil); err != nil {
		s.logger.Error("Failed to clear persisted device", logger.Error(err))
	}

	s.logger.Info("Device disconnected", logger.String("device_id", device.ID))
	return nil
}

// Device returns the connected device, or nil.
func (s *Service) Device() *sensor.DeviceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.device == nil {
		return nil
	}
	copied := *s.device
	return &copied
}

// CurrentReading returns the most recent reading, or nil.
func (s *Service) CurrentReading() *airquality.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// startSampling launches the periodic sampling loop. A guard prevents
// a second loop from being started while one is running.
func (s *Service) startSampling() {
	s.mu.Lock()
	if s.sampling {
		s.mu.Unlock()
		return
	}
	s.sampling = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.logger.Info("Sampling started", logger.Duration("interval", s.interval))

	go func() {
		// Take an immediate sample so the dashboard has data before
		// the first tick.
		s.sample()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				s.sample()
			}
		}
	}()
}

// stopSampling cancels the sampling loop if one is running.
func (s *Service) stopSampling() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sampling {
		return
	}
	close(s.stopCh)
	s.sampling = false
	s.logger.Info("Sampling stopped")
}

// sample runs one tick of the loop: obtain a reading, classify it,
// and append it to the active session. One reading per tick, no
// batching; a failed persistence write does not block the next tick.
func (s *Service) sample() {
	s.mu.Lock()
	device := s.device
	var phase *airquality.FlightPhase
	if s.active != nil {
		p := s.active.CurrentPhase
		phase = &p
	}
	s.mu.Unlock()

	if device == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	reading, err := s.ble.Read(ctx, device.ID, phase)
	if err != nil {
		s.logger.Warn("Failed to read from sensor", logger.Error(err))
		return
	}

	s.mu.Lock()
	s.current = reading
	if s.device != nil {
		s.device.LastSeen = reading.Timestamp
		if reading.Battery != nil {
			s.device.Battery = reading.Battery
		}
	}
	var snapshot *session.FlightSession
	if s.active != nil {
		s.active.Append(reading)
		snapshot = snapshotSession(s.active)
	}
	s.mu.Unlock()

	if alert := s.alerts.Evaluate(reading); alert != nil {
		if err := s.notifier.Notify(notifications.Render(alert, reading.CO2)); err != nil {
			s.logger.Warn("Failed to deliver notification", logger.Error(err))
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastAlert(alert)
		}
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastReading(reading)
	}

	if snapshot != nil {
		if err := s.sessions.SaveSession(snapshot); err != nil {
			s.logger.Error("Failed to persist session snapshot", logger.Error(err))
		}
	}
}

// StartSession begins tracking a flight. It fails if a session is
// already active.
func (s *Service) StartSession(airline, flightNumber, seat *string) (*session.FlightSession, error) {
	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return nil, ErrSessionActive
	}

	sess := session.New()
	sess.Airline = airline
	sess.FlightNumber = flightNumber
	sess.Seat = seat
	s.active = sess
	snapshot := snapshotSession(sess)
	s.mu.Unlock()

	if err := s.sessions.SaveSession(snapshot); err != nil {
		s.logger.Error("Failed to persist new session", logger.Error(err))
	}

	s.logger.Info("Session started", logger.String("session_id", sess.ID))
	return sess, nil
}

// EndSession freezes the active session, archives it, and clears all
// active alerts.
func (s *Service) EndSession() (*session.FlightSession, error) {
	s.mu.Lock()
	sess := s.active
	if sess == nil {
		s.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	sess.End(time.Now())
	s.active = nil
	snapshot := snapshotSession(sess)
	s.mu.Unlock()

	if err := s.sessions.SaveSession(snapshot); err != nil {
		s.logger.Error("Failed to archive session", logger.Error(err))
	}

	s.alerts.Clear()

	s.logger.Info("Session ended",
		logger.String("session_id", sess.ID),
		logger.Int("reading_count", len(sess.Readings)))
	return sess, nil
}

// ActiveSession returns a snapshot of the in-progress session, or nil.
func (s *Service) ActiveSession() *session.FlightSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	return snapshotSession(s.active)
}

// SetPhase moves the active session to the given flight phase.
func (s *Service) SetPhase(phase airquality.FlightPhase) error {
	if !airquality.IsValidPhase(string(phase)) {
		return fmt.Errorf("unknown flight phase: %s", phase)
	}

	s.mu.Lock()
	sess := s.active
	if sess == nil {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	sess.CurrentPhase = phase
	snapshot := snapshotSession(sess)
	s.mu.Unlock()

	if err := s.sessions.SaveSession(snapshot); err != nil {
		s.logger.Error("Failed to persist phase change", logger.Error(err))
	}
	return nil
}

// AddHydration adds to the session's hydration accumulator.
func (s *Service) AddHydration(ml int) error {
	if ml <= 0 {
		return fmt.Errorf("hydration amount must be positive, got %d", ml)
	}

	s.mu.Lock()
	sess := s.active
	if sess == nil {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	sess.HydrationMl += ml
	snapshot := snapshotSession(sess)
	s.mu.Unlock()

	if err := s.sessions.SaveSession(snapshot); err != nil {
		s.logger.Error("Failed to persist hydration", logger.Error(err))
	}
	return nil
}

// Sessions returns archived sessions, most recent first. A storage
// failure yields an empty list.
func (s *Service) Sessions() []*session.FlightSession {
	sessions, err := s.sessions.GetSessions()
	if err != nil {
		s.logger.Error("Failed to load sessions", logger.Error(err))
		return []*session.FlightSession{}
	}
	if sessions == nil {
		sessions = []*session.FlightSession{}
	}
	return sessions
}

// Session returns one session by ID, checking the active session
// before the archive.
func (s *Service) Session(id string) (*session.FlightSession, error) {
	s.mu.Lock()
	if s.active != nil && s.active.ID == id {
		sess := snapshotSession(s.active)
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	sess, err := s.sessions.GetSession(id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return sess, nil
}

// SessionStats computes the aggregate summary for one session.
func (s *Service) SessionStats(id string) (session.Stats, error) {
	sess, err := s.Session(id)
	if err != nil {
		return session.Stats{}, err
	}
	return session.ComputeStats(sess, time.Now()), nil
}

// DeleteSession removes an archived session.
func (s *Service) DeleteSession(id string) error {
	return s.sessions.DeleteSession(id)
}

// Alerts returns the active alerts, newest first.
func (s *Service) Alerts() []*alerts.Alert {
	return s.alerts.Active()
}

// DismissAlert removes the alert with the given ID.
func (s *Service) DismissAlert(id string) bool {
	return s.alerts.Dismiss(id)
}

// Settings returns the current user settings.
func (s *Service) Settings() settings.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userSettings
}

// UpdateSettings overwrites the user settings wholesale.
func (s *Service) UpdateSettings(userSettings settings.UserSettings) error {
	if !userSettings.Valid() {
		return errors.New("invalid settings")
	}

	s.mu.Lock()
	s.userSettings = userSettings
	s.mu.Unlock()

	if err := s.state.SaveSettings(userSettings); err != nil {
		s.logger.Error("Failed to persist settings", logger.Error(err))
	}
	return nil
}

// Stop shuts down the sampling loop.
func (s *Service) Stop() {
	s.stopSampling()
}

// snapshotSession copies a session so persistence can run outside the
// service mutex without racing the sampler. Readings are immutable, so
// copying the slice header list is enough.
func snapshotSession(sess *session.FlightSession) *session.FlightSession {
	copied := *sess
	copied.Readings = make([]*airquality.Reading, len(sess.Readings))
	copy(copied.Readings, sess.Readings)
	return &copied
}
