package notifications

import (
	"fmt"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/internal/alerts"
	"github.com/aerosense/aerosense/pkg/logger"
)

// Priority is the presentation priority of a notification.
type Priority string

const (
	PriorityLow     Priority = "low"
	PriorityDefault Priority = "default"
	PriorityHigh    Priority = "high"
	PriorityMax     Priority = "max"
)

// Notification is a rendered, delivery-ready notice. The delivery
// mechanism (native push, webhook) is an external collaborator.
type Notification struct {
	Title    string                `json:"title"`
	Body     string                `json:"body"`
	Priority Priority              `json:"priority"`
	Level    airquality.AlertLevel `json:"level"`
	CO2      int                   `json:"co2"`
}

// Notifier delivers rendered notifications.
type Notifier interface {
	Notify(n Notification) error
}

var levelTitles = map[airquality.AlertLevel]string{
	airquality.LevelGood:     "Air Quality Good",
	airquality.LevelAdvisory: "Air Quality Advisory",
	airquality.LevelWarning:  "Air Quality Warning",
	airquality.LevelCritical: "Critical Air Quality Alert",
}

var levelPriorities = map[airquality.AlertLevel]Priority{
	airquality.LevelGood:     PriorityLow,
	airquality.LevelAdvisory: PriorityDefault,
	airquality.LevelWarning:  PriorityHigh,
	airquality.LevelCritical: PriorityMax,
}

// Render builds the notification for an alert: tier-specific title,
// a body carrying the measured value and recommended action, and the
// tier's presentation priority.
func Render(alert *alerts.Alert, co2 int) Notification {
	return Notification{
		Title:    levelTitles[alert.Level],
		Body:     fmt.Sprintf("CO2 level: %d ppm. %s", co2, alert.Action),
		Priority: levelPriorities[alert.Level],
		Level:    alert.Level,
		CO2:      co2,
	}
}

// LogNotifier writes notifications to the application log. It is the
// default delivery path when no push transport is configured.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(notification Notification) error {
	n.logger.Info("Notification",
		logger.String("title", notification.Title),
		logger.String("body", notification.Body),
		logger.String("priority", string(notification.Priority)))
	return nil
}
