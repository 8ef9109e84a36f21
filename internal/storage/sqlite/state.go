package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aerosense/aerosense/internal/sensor"
	"github.com/aerosense/aerosense/internal/settings"
	"github.com/aerosense/aerosense/pkg/logger"
)

// StateStorage persists the singleton rows: user settings and the
// last connected device. Missing rows read back as defaults so the
// caller never observes a hard failure.
type StateStorage struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewStateStorage creates a new SQLite state storage
func NewStateStorage(db *sql.DB, logger *logger.Logger) *StateStorage {
	storage := &StateStorage{
		db:     db,
		logger: logger.Named("sqlite-state"),
	}

	if err := storage.initDB(); err != nil {
		logger.Error("Failed to initialize state storage", Error(err))
	}

	return storage
}

// initDB initializes the database tables
func (s *StateStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			payload TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS devices (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			battery REAL,
			last_seen TIMESTAMP NOT NULL,
			is_connected INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create devices table: %w", err)
	}

	return nil
}

// GetSettings loads user settings, overlaying persisted values on the
// defaults. A missing or unreadable row yields the defaults.
func (s *StateStorage) GetSettings() settings.UserSettings {
	defaults := settings.Defaults()

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM settings WHERE id = 1`).Scan(&payload)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Error("Failed to load settings, using defaults", Error(err))
		}
		return defaults
	}

	loaded := defaults
	if err := json.Unmarshal([]byte(payload), &loaded); err != nil {
		s.logger.Error("Failed to decode settings, using defaults", Error(err))
		return defaults
	}

	return loaded
}

// SaveSettings overwrites the settings singleton wholesale.
func (s *StateStorage) SaveSettings(userSettings settings.UserSettings) error {
	payload, err := json.Marshal(userSettings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO settings (id, payload) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}

// GetConnectedDevice returns the persisted connected device, or nil.
func (s *StateStorage) GetConnectedDevice() (*sensor.DeviceInfo, error) {
	var device sensor.DeviceInfo
	var battery sql.NullFloat64
	var lastSeen string
	var isConnected int

	err := s.db.QueryRow(
		`SELECT id, name, type, battery, last_seen, is_connected
		FROM devices
		WHERE is_connected = 1
		LIMIT 1`,
	).Scan(&device.ID, &device.Name, &device.Type, &battery, &lastSeen, &isConnected)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query connected device: %w", err)
	}

	if battery.Valid {
		device.Battery = &battery.Float64
	}
	device.LastSeen, err = time.Parse(time.RFC3339, lastSeen)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last_seen: %w", err)
	}
	device.IsConnected = isConnected == 1

	return &device, nil
}

// SaveConnectedDevice persists the device identity. Passing nil clears
// the connected device.
func (s *StateStorage) SaveConnectedDevice(device *sensor.DeviceInfo) error {
	if device == nil {
		if _, err := s.db.Exec(`UPDATE devices SET is_connected = 0`); err != nil {
			return fmt.Errorf("failed to clear connected device: %w", err)
		}
		return nil
	}

	var battery sql.NullFloat64
	if device.Battery != nil {
		battery = sql.NullFloat64{Float64: *device.Battery, Valid: true}
	}

	connected := 0
	if device.IsConnected {
		connected = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO devices (id, name, type, battery, last_seen, is_connected)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			battery = excluded.battery,
			last_seen = excluded.last_seen,
			is_connected = excluded.is_connected`,
		device.ID,
		device.Name,
		string(device.Type),
		battery,
		device.LastSeen.Format(time.RFC3339),
		connected,
	)
	if err != nil {
		return fmt.Errorf("failed to save device: %w", err)
	}

	return nil
}
