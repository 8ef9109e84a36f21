package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/internal/alerts"
	"github.com/aerosense/aerosense/pkg/logger"
)

func TestRenderCritical(t *testing.T) {
	alert := &alerts.Alert{
		Level:  airquality.LevelCritical,
		Action: "Open air vents and request cabin air circulation.",
	}

	n := Render(alert, 2650)

	assert.Equal(t, "Critical Air Quality Alert", n.Title)
	assert.Equal(t, "CO2 level: 2650 ppm. Open air vents and request cabin air circulation.", n.Body)
	assert.Equal(t, PriorityMax, n.Priority)
	assert.Equal(t, airquality.LevelCritical, n.Level)
	assert.Equal(t, 2650, n.CO2)
}

func TestRenderPriorityPerLevel(t *testing.T) {
	tests := []struct {
		level    airquality.AlertLevel
		title    string
		priority Priority
	}{
		{airquality.LevelGood, "Air Quality Good", PriorityLow},
		{airquality.LevelAdvisory, "Air Quality Advisory", PriorityDefault},
		{airquality.LevelWarning, "Air Quality Warning", PriorityHigh},
		{airquality.LevelCritical, "Critical Air Quality Alert", PriorityMax},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			n := Render(&alerts.Alert{Level: tt.level, Action: "act"}, 1000)
			assert.Equal(t, tt.title, n.Title)
			assert.Equal(t, tt.priority, n.Priority)
		})
	}
}

func TestLogNotifier(t *testing.T) {
	notifier := NewLogNotifier(logger.NewNop())
	err := notifier.Notify(Render(&alerts.Alert{Level: airquality.LevelWarning, Action: "act"}, 1500))
	assert.NoError(t, err)
}
