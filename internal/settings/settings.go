package settings

// AvatarType is the traveler persona shown on the profile.
type AvatarType string

const (
	AvatarPilot     AvatarType = "pilot"
	AvatarAttendant AvatarType = "attendant"
	AvatarPassenger AvatarType = "passenger"
)

// Sensitivity controls how eagerly alerts are surfaced to the user.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// UserSettings are process-wide user preferences. The singleton is
// loaded at startup and overwritten wholesale on each update.
type UserSettings struct {
	DisplayName      string      `json:"display_name"`
	AvatarType       AvatarType  `json:"avatar_type"`
	UseCelsius       bool        `json:"use_celsius"`
	AlertSensitivity Sensitivity `json:"alert_sensitivity"`
	HapticEnabled    bool        `json:"haptic_enabled"`
	IsPremium        bool        `json:"is_premium"`
}

// Defaults returns the settings applied before any user customization.
// Readers overlay these onto whatever subset was persisted.
func Defaults() UserSettings {
	return UserSettings{
		DisplayName:      "Traveler",
		AvatarType:       AvatarPassenger,
		UseCelsius:       true,
		AlertSensitivity: SensitivityMedium,
		HapticEnabled:    true,
		IsPremium:        false,
	}
}

// Valid reports whether the settings hold recognized enum values.
func (s UserSettings) Valid() bool {
	switch s.AvatarType {
	case AvatarPilot, AvatarAttendant, AvatarPassenger:
	default:
		return false
	}
	switch s.AlertSensitivity {
	case SensitivityLow, SensitivityMedium, SensitivityHigh:
	default:
		return false
	}
	return true
}
