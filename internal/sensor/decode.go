package sensor

import (
	"encoding/binary"

	"github.com/aerosense/aerosense/internal/airquality"
)

// PartialReading holds the fields a single characteristic read can
// report. Fields absent from the sensor's payload stay nil.
type PartialReading struct {
	CO2         *int
	Temperature *float64
	Humidity    *float64
	Pressure    *float64
	Battery     *float64
}

// Decode parses a raw characteristic payload for the given sensor
// model. Decoding is best-effort: a buffer shorter than the model's
// layout yields an empty partial reading, never an error. Unknown
// models are not decoded.
func Decode(data []byte, model airquality.DeviceType) PartialReading {
	switch model {
	case airquality.DeviceAranet4:
		return decodeAranet4(data)
	case airquality.DeviceInkbird:
		return decodeInkbird(data)
	default:
		return PartialReading{}
	}
}

// decodeAranet4 parses the Aranet4 8-byte current-readings layout:
// CO2 ppm u16le @0, temperature Kelvin-tenths*2 u16le @2,
// pressure hPa-tenths u16le @4, humidity % u8 @6, battery % u8 @7.
func decodeAranet4(data []byte) PartialReading {
	if len(data) < 8 {
		return PartialReading{}
	}

	co2 := int(binary.LittleEndian.Uint16(data[0:2]))
	temperature := float64(binary.LittleEndian.Uint16(data[2:4]))/20 - 273.15
	pressure := float64(binary.LittleEndian.Uint16(data[4:6])) / 10
	humidity := float64(data[6])
	battery := float64(data[7])

	return PartialReading{
		CO2:         &co2,
		Temperature: &temperature,
		Humidity:    &humidity,
		Pressure:    &pressure,
		Battery:     &battery,
	}
}

// decodeInkbird parses the Inkbird IAM-T1 6-byte layout:
// CO2 ppm u16le @0, temperature (u16le-4000)/100 C @2,
// humidity u16le/100 % @4. Pressure and battery are not reported.
func decodeInkbird(data []byte) PartialReading {
	if len(data) < 6 {
		return PartialReading{}
	}

	co2 := int(binary.LittleEndian.Uint16(data[0:2]))
	temperature := (float64(binary.LittleEndian.Uint16(data[2:4])) - 4000) / 100
	humidity := float64(binary.LittleEndian.Uint16(data[4:6])) / 100

	return PartialReading{
		CO2:         &co2,
		Temperature: &temperature,
		Humidity:    &humidity,
	}
}
