package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/pkg/logger"
)

// Alert is a derived, transient notice raised when a reading crosses a
// severity boundary.
type Alert struct {
	ID           string                `json:"id"`
	Level        airquality.AlertLevel `json:"level"`
	Headline     string                `json:"headline"`
	Metric       string                `json:"metric"`
	Action       string                `json:"action"`
	Evidence     *string               `json:"evidence"`
	Timestamp    time.Time             `json:"timestamp"`
	Acknowledged bool                  `json:"acknowledged"`
}

// Manager owns the set of active alerts. At most one unacknowledged
// alert per severity tier exists at a time, so repeated readings in
// the same band do not spam new alerts.
type Manager struct {
	mu     sync.RWMutex
	active []*Alert
	logger *logger.Logger
}

// NewManager creates an alert manager.
func NewManager(logger *logger.Logger) *Manager {
	return &Manager{
		active: []*Alert{},
		logger: logger.Named("alerts"),
	}
}

// Evaluate classifies the reading and raises an alert if it enters the
// warning or critical band and no unacknowledged alert of that tier is
// already active. It returns the new alert, or nil if none was raised.
func (m *Manager) Evaluate(r *airquality.Reading) *Alert {
	level := airquality.Classify(r.CO2)
	if level != airquality.LevelCritical && level != airquality.LevelWarning {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.active {
		if a.Level == level && !a.Acknowledged {
			return nil
		}
	}

	alert := newAlert(level, r.CO2)
	m.active = append([]*Alert{alert}, m.active...)

	m.logger.Info("Alert raised",
		logger.String("level", string(level)),
		logger.Int("co2_ppm", r.CO2),
		logger.String("alert_id", alert.ID))

	return alert
}

// Active returns a snapshot of the active alerts, newest first.
func (m *Manager) Active() []*Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Alert, len(m.active))
	copy(out, m.active)
	return out
}

// Dismiss removes exactly the alert with the given ID.
func (m *Manager) Dismiss(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.active {
		if a.ID == id {
			m.active = append(m.active[:i], m.active[i+1:]...)
			m.logger.Debug("Alert dismissed", logger.String("alert_id", id))
			return true
		}
	}
	return false
}

// Clear drops all active alerts. Called when the owning session ends.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.active) > 0 {
		m.logger.Debug("Clearing active alerts", logger.Int("count", len(m.active)))
	}
	m.active = []*Alert{}
}

func newAlert(level airquality.AlertLevel, co2 int) *Alert {
	alert := &Alert{
		ID:        uuid.NewString(),
		Level:     level,
		Metric:    fmt.Sprintf("%d ppm", co2),
		Timestamp: time.Now(),
	}

	if level == airquality.LevelCritical {
		alert.Headline = "High CO2 Detected"
		alert.Action = "Open overhead vent fully and direct airflow toward your face."
		evidence := "Studies show cognitive performance decreases above 2500 ppm"
		alert.Evidence = &evidence
	} else {
		alert.Headline = "Elevated CO2 Levels"
		alert.Action = "Consider opening your air vent for better circulation."
	}

	return alert
}
