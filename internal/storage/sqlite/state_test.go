package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/internal/sensor"
	"github.com/aerosense/aerosense/internal/settings"
	"github.com/aerosense/aerosense/pkg/logger"
)

func newTestStateStorage(t *testing.T) *StateStorage {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStateStorage(db, logger.NewNop())
}

func TestSettingsDefaultWhenEmpty(t *testing.T) {
	storage := newTestStateStorage(t)
	assert.Equal(t, settings.Defaults(), storage.GetSettings())
}

func TestSettingsRoundTrip(t *testing.T) {
	storage := newTestStateStorage(t)

	custom := settings.Defaults()
	custom.DisplayName = "Frequent Flyer"
	custom.AvatarType = settings.AvatarPilot
	custom.UseCelsius = false
	custom.AlertSensitivity = settings.SensitivityHigh
	custom.IsPremium = true

	require.NoError(t, storage.SaveSettings(custom))
	assert.Equal(t, custom, storage.GetSettings())

	// Settings are a singleton row, overwritten wholesale
	custom.DisplayName = "Occasional Flyer"
	require.NoError(t, storage.SaveSettings(custom))
	assert.Equal(t, "Occasional Flyer", storage.GetSettings().DisplayName)
}

func TestConnectedDeviceRoundTrip(t *testing.T) {
	storage := newTestStateStorage(t)

	device, err := storage.GetConnectedDevice()
	require.NoError(t, err)
	assert.Nil(t, device)

	battery := 72.0
	saved := sensor.DeviceInfo{
		ID:          "aranet4_sim_001",
		Name:        "Aranet4 Home",
		Type:        airquality.DeviceAranet4,
		Battery:     &battery,
		LastSeen:    time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
		IsConnected: true,
	}
	require.NoError(t, storage.SaveConnectedDevice(&saved))

	device, err = storage.GetConnectedDevice()
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, saved.ID, device.ID)
	assert.Equal(t, airquality.DeviceAranet4, device.Type)
	require.NotNil(t, device.Battery)
	assert.InDelta(t, 72.0, *device.Battery, 0.001)
	assert.True(t, saved.LastSeen.Equal(device.LastSeen))
	assert.True(t, device.IsConnected)
}

func TestConnectedDeviceNilBattery(t *testing.T) {
	storage := newTestStateStorage(t)

	saved := sensor.DeviceInfo{
		ID:          "inkbird_sim_001",
		Name:        "INKBIRD IAM-T1",
		Type:        airquality.DeviceInkbird,
		LastSeen:    time.Now().UTC(),
		IsConnected: true,
	}
	require.NoError(t, storage.SaveConnectedDevice(&saved))

	device, err := storage.GetConnectedDevice()
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Nil(t, device.Battery)
}

func TestSaveConnectedDeviceNilClears(t *testing.T) {
	storage := newTestStateStorage(t)

	saved := sensor.DeviceInfo{
		ID:          "aranet4_sim_001",
		Name:        "Aranet4 Home",
		Type:        airquality.DeviceAranet4,
		LastSeen:    time.Now().UTC(),
		IsConnected: true,
	}
	require.NoError(t, storage.SaveConnectedDevice(&saved))
	require.NoError(t, storage.SaveConnectedDevice(nil))

	device, err := storage.GetConnectedDevice()
	require.NoError(t, err)
	assert.Nil(t, device)
}
