package domain

import "time"

// ScopeCapacity настройка ёмкости конкретной услуги или бригады
// MaxOverlap == nil означает "не задано", тогда действует системный лимит
type ScopeCapacity struct {
	Scope      CapacityScope
	MaxOverlap *int
	UpdatedAt  time.Time
}

// IsConfigured returns true if the scope has its own limit
func (c *ScopeCapacity) IsConfigured() bool {
	return c.MaxOverlap != nil
}

// SystemCapacity системный лимит по умолчанию
type SystemCapacity struct {
	MaxOverlappingAppointments int
	UpdatedAt                  time.Time
}
