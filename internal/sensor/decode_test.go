package sensor

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerosense/aerosense/internal/airquality"
)

// encodeAranet4 is the test-only inverse of the Aranet4 layout.
func encodeAranet4(co2, tempRaw, pressureRaw uint16, humidity, battery byte) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint16(buf[0:2], co2)
	binary.LittleEndian.PutUint16(buf[2:4], tempRaw)
	binary.LittleEndian.PutUint16(buf[4:6], pressureRaw)
	buf[6] = humidity
	buf[7] = battery
	return buf
}

// encodeInkbird is the test-only inverse of the Inkbird layout.
func encodeInkbird(co2, tempRaw, humidityRaw uint16) []byte {
	buf := make([]byte, 6)
	binary.LittleEndian.PutUint16(buf[0:2], co2)
	binary.LittleEndian.PutUint16(buf[2:4], tempRaw)
	binary.LittleEndian.PutUint16(buf[4:6], humidityRaw)
	return buf
}

func TestDecodeAranet4RoundTrip(t *testing.T) {
	tests := []struct {
		co2         uint16
		tempRaw     uint16
		pressureRaw uint16
		humidity    byte
		battery     byte
	}{
		{400, 5883, 10132, 45, 100},  // ~21C, 1013.2 hPa
		{2500, 5963, 8000, 15, 70},   // ~25C, cabin altitude pressure
		{0, 0, 0, 0, 0},
		{65535, 65535, 65535, 255, 255},
	}

	for _, tt := range tests {
		buf := encodeAranet4(tt.co2, tt.tempRaw, tt.pressureRaw, tt.humidity, tt.battery)
		r := Decode(buf, airquality.DeviceAranet4)

		require.NotNil(t, r.CO2)
		require.NotNil(t, r.Temperature)
		require.NotNil(t, r.Pressure)
		require.NotNil(t, r.Humidity)
		require.NotNil(t, r.Battery)

		assert.Equal(t, int(tt.co2), *r.CO2)
		assert.InDelta(t, float64(tt.tempRaw)/20-273.15, *r.Temperature, 1e-9)
		assert.InDelta(t, float64(tt.pressureRaw)/10, *r.Pressure, 1e-9)
		assert.Equal(t, float64(tt.humidity), *r.Humidity)
		assert.Equal(t, float64(tt.battery), *r.Battery)
	}
}

func TestDecodeInkbirdRoundTrip(t *testing.T) {
	tests := []struct {
		co2         uint16
		tempRaw     uint16
		humidityRaw uint16
	}{
		{800, 6100, 4500}, // 21C, 45%
		{1400, 4000, 0},   // 0C, 0%
		{65535, 65535, 65535},
	}

	for _, tt := range tests {
		buf := encodeInkbird(tt.co2, tt.tempRaw, tt.humidityRaw)
		r := Decode(buf, airquality.DeviceInkbird)

		require.NotNil(t, r.CO2)
		require.NotNil(t, r.Temperature)
		require.NotNil(t, r.Humidity)

		assert.Equal(t, int(tt.co2), *r.CO2)
		assert.InDelta(t, (float64(tt.tempRaw)-4000)/100, *r.Temperature, 1e-9)
		assert.InDelta(t, float64(tt.humidityRaw)/100, *r.Humidity, 1e-9)

		// Inkbird does not report pressure or battery
		assert.Nil(t, r.Pressure)
		assert.Nil(t, r.Battery)
	}
}

func TestDecodeShortBufferIsEmptyPartial(t *testing.T) {
	// 4 bytes into the 8-byte Aranet4 layout
	r := Decode([]byte{0x01, 0x02, 0x03, 0x04}, airquality.DeviceAranet4)
	assert.Nil(t, r.CO2)
	assert.Nil(t, r.Temperature)
	assert.Nil(t, r.Humidity)
	assert.Nil(t, r.Pressure)
	assert.Nil(t, r.Battery)

	// 5 bytes into the 6-byte Inkbird layout
	r = Decode([]byte{1, 2, 3, 4, 5}, airquality.DeviceInkbird)
	assert.Nil(t, r.CO2)

	// Empty buffer
	r = Decode(nil, airquality.DeviceAranet4)
	assert.Nil(t, r.CO2)
}

func TestDecodeUnknownModelNotDecoded(t *testing.T) {
	buf := encodeAranet4(1000, 5883, 10132, 45, 100)
	r := Decode(buf, airquality.DeviceUnknown)
	assert.Nil(t, r.CO2)

	r = Decode(buf, airquality.DeviceQingping)
	assert.Nil(t, r.CO2)
}

func TestIdentifyDeviceType(t *testing.T) {
	tests := []struct {
		name         string
		serviceUUIDs []string
		want         airquality.DeviceType
	}{
		{"Aranet4 Home", nil, airquality.DeviceAranet4},
		{"ARANET4 1C2D3", nil, airquality.DeviceAranet4},
		{"INKBIRD IAM-T1", nil, airquality.DeviceInkbird},
		{"iam-t1", nil, airquality.DeviceInkbird},
		{"Qingping Air Monitor", nil, airquality.DeviceQingping},
		{"", []string{Aranet4ServiceUUID}, airquality.DeviceAranet4},
		{"", []string{strings.ToUpper(InkbirdServiceUUID)}, airquality.DeviceInkbird},
		{"Mystery Sensor", []string{"0000180f-0000-1000-8000-00805f9b34fb"}, airquality.DeviceUnknown},
		{"", nil, airquality.DeviceUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IdentifyDeviceType(tt.name, tt.serviceUUIDs), "name=%q", tt.name)
	}
}
