package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aerosense/aerosense/internal/airquality"
	"github.com/aerosense/aerosense/pkg/logger"
)

// Manager abstracts BLE operations so the monitor can run against
// simulated hardware or, eventually, a real adapter.
type Manager interface {
	// Scan discovers nearby sensors. It blocks for the scan window or
	// until the context is cancelled.
	Scan(ctx context.Context) ([]BLEDevice, error)
	// Connect establishes a connection to the device with the given ID.
	Connect(ctx context.Context, deviceID string) (DeviceInfo, error)
	// Disconnect tears down the connection to the device.
	Disconnect(deviceID string) error
	// Read obtains one reading from the connected device, tagged with
	// the flight phase active at capture time.
	Read(ctx context.Context, deviceID string, phase *airquality.FlightPhase) (*airquality.Reading, error)
}

// SimulatedManager fabricates a pair of well-known sensors and feeds
// readings from the mock generator. No radio I/O is performed.
type SimulatedManager struct {
	scanWindow   time.Duration
	connectDelay time.Duration
	logger       *logger.Logger

	mu         sync.Mutex
	connected  map[string]DeviceInfo
	generators map[string]*airquality.Generator

	devices []BLEDevice
}

// NewSimulatedManager creates a simulated BLE manager.
func NewSimulatedManager(scanWindow, connectDelay time.Duration, logger *logger.Logger) *SimulatedManager {
	return &SimulatedManager{
		scanWindow:   scanWindow,
		connectDelay: connectDelay,
		logger:       logger.Named("ble-sim"),
		connected:    make(map[string]DeviceInfo),
		generators:   make(map[string]*airquality.Generator),
		devices: []BLEDevice{
			{ID: "aranet4_sim_001", Name: "Aranet4 Home", RSSI: -65, ServiceUUIDs: []string{Aranet4ServiceUUID}},
			{ID: "inkbird_sim_001", Name: "INKBIRD IAM-T1", RSSI: -72, ServiceUUIDs: []string{InkbirdServiceUUID}},
		},
	}
}

// Scan returns the canned device list after the scan window elapses.
func (m *SimulatedManager) Scan(ctx context.Context) ([]BLEDevice, error) {
	m.logger.Debug("Starting simulated scan",
		logger.Duration("window", m.scanWindow))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.scanWindow):
	}

	devices := make([]BLEDevice, len(m.devices))
	copy(devices, m.devices)

	m.logger.Debug("Simulated scan complete",
		logger.Int("device_count", len(devices)))

	return devices, nil
}

// Connect simulates connection establishment with a short delay.
func (m *SimulatedManager) Connect(ctx context.Context, deviceID string) (DeviceInfo, error) {
	device, ok := m.findDevice(deviceID)
	if !ok {
		return DeviceInfo{}, fmt.Errorf("unknown device: %s", deviceID)
	}

	select {
	case <-ctx.Done():
		return DeviceInfo{}, ctx.Err()
	case <-time.After(m.connectDelay):
	}

	info := device.ToDeviceInfo()
	info.IsConnected = true

	m.mu.Lock()
	m.connected[deviceID] = info
	m.generators[deviceID] = airquality.NewGenerator(info.Type)
	m.mu.Unlock()

	m.logger.Info("Connected to simulated device",
		logger.String("device_id", deviceID),
		logger.String("name", info.Name),
		logger.String("type", string(info.Type)))

	return info, nil
}

// Disconnect tears down a simulated connection.
func (m *SimulatedManager) Disconnect(deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.connected[deviceID]; !ok {
		return fmt.Errorf("device not connected: %s", deviceID)
	}

	delete(m.connected, deviceID)
	delete(m.generators, deviceID)

	m.logger.Info("Disconnected simulated device",
		logger.String("device_id", deviceID))

	return nil
}

// Read fabricates one reading for the connected device.
func (m *SimulatedManager) Read(ctx context.Context, deviceID string, phase *airquality.FlightPhase) (*airquality.Reading, error) {
	m.mu.Lock()
	gen, ok := m.generators[deviceID]
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("device not connected: %s", deviceID)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return gen.Generate(phase), nil
}

func (m *SimulatedManager) findDevice(deviceID string) (BLEDevice, bool) {
	for _, d := range m.devices {
		if d.ID == deviceID {
			return d, true
		}
	}
	return BLEDevice{}, false
}
