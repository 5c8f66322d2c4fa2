package domain

// Ключи настроек ёмкости
const (
	// SystemDefaultKey системный лимит по умолчанию в capacity_settings
	SystemDefaultKey = "max_overlapping_appointments"

	// SystemScopeKey ключ системного лимита в кэше и сообщениях инвалидации
	SystemScopeKey = "system"
)

// Business validation constants
const (
	DefaultConflictListLimit = 20
	MaxNotesLength           = 1000
	MaxTitleLength           = 255
	MaxCapacityLimit         = 1000
)

// TimeLayout формат времени в API
const TimeLayout = "2006-01-02T15:04:05Z07:00"
