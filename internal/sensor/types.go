package sensor

import (
	"strings"
	"time"

	"github.com/aerosense/aerosense/internal/airquality"
)

// Advertised GATT service UUIDs for the supported sensor families.
const (
	Aranet4ServiceUUID = "f0cd1400-95da-4f4b-9ac8-aa55d312af0c"
	Aranet4CharUUID    = "f0cd1503-95da-4f4b-9ac8-aa55d312af0c"

	InkbirdServiceUUID = "0000fff0-0000-1000-8000-00805f9b34fb"
	InkbirdCharUUID    = "0000fff4-0000-1000-8000-00805f9b34fb"
)

// BLEDevice describes a device seen during a scan.
type BLEDevice struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	RSSI         int      `json:"rssi"`
	ServiceUUIDs []string `json:"service_uuids"`
}

// DeviceInfo is the identity of a sensor as tracked by the service.
type DeviceInfo struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Type        airquality.DeviceType `json:"type"`
	Battery     *float64              `json:"battery"`
	LastSeen    time.Time             `json:"last_seen"`
	IsConnected bool                  `json:"is_connected"`
}

// IdentifyDeviceType classifies a device by vendor keyword in its name,
// falling back to advertised service UUID matching. Devices matching
// neither are classified unknown and are not decoded.
func IdentifyDeviceType(name string, serviceUUIDs []string) airquality.DeviceType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "aranet"):
		return airquality.DeviceAranet4
	case strings.Contains(lower, "inkbird"), strings.Contains(lower, "iam-t1"):
		return airquality.DeviceInkbird
	case strings.Contains(lower, "qingping"):
		return airquality.DeviceQingping
	}

	for _, id := range serviceUUIDs {
		switch strings.ToLower(id) {
		case Aranet4ServiceUUID:
			return airquality.DeviceAranet4
		case InkbirdServiceUUID:
			return airquality.DeviceInkbird
		}
	}

	return airquality.DeviceUnknown
}

// ToDeviceInfo converts a scan result into a tracked device identity.
func (d BLEDevice) ToDeviceInfo() DeviceInfo {
	name := d.Name
	if name == "" {
		name = "Unknown Device"
	}
	return DeviceInfo{
		ID:       d.ID,
		Name:     name,
		Type:     IdentifyDeviceType(d.Name, d.ServiceUUIDs),
		LastSeen: time.Now(),
	}
}
