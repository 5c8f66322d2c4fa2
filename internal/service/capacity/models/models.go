package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// UpdateScopeCapacityRequest запрос на изменение лимита услуги/бригады
// MaxOverlap == nil сбрасывает лимит к системному
type UpdateScopeCapacityRequest struct {
	MaxOverlap *int `json:"maxOverlap"`
}

// UpdateSystemCapacityRequest запрос на изменение системного лимита
type UpdateSystemCapacityRequest struct {
	MaxOverlappingAppointments *int `json:"maxOverlappingAppointments" validate:"required"`
}

// Response модели

// ScopeCapacityResponse лимит scope и действующее значение
type ScopeCapacityResponse struct {
	Scope        string    `json:"scope"`
	MaxOverlap   *int      `json:"maxOverlap"`
	EffectiveMax int       `json:"effectiveMax"`
	Source       string    `json:"source"` // scope | system
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// SystemCapacityResponse системный лимит
type SystemCapacityResponse struct {
	MaxOverlappingAppointments int       `json:"maxOverlappingAppointments"`
	UpdatedAt                  time.Time `json:"updatedAt"`
}

// FromDomainScope конвертирует настройку и действующий лимит в DTO
func FromDomainScope(c *domain.ScopeCapacity, limit domain.CapacityLimit) *ScopeCapacityResponse {
	return &ScopeCapacityResponse{
		Scope:        c.Scope.String(),
		MaxOverlap:   c.MaxOverlap,
		EffectiveMax: limit.Max,
		Source:       string(limit.Source),
		UpdatedAt:    c.UpdatedAt,
	}
}

// FromDomainSystem конвертирует системный лимит в DTO
func FromDomainSystem(c *domain.SystemCapacity) *SystemCapacityResponse {
	return &SystemCapacityResponse{
		MaxOverlappingAppointments: c.MaxOverlappingAppointments,
		UpdatedAt:                  c.UpdatedAt,
	}
}
