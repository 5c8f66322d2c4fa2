package domain

import "time"

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// IsValid проверяет, что статус известен
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// BookingType категория записи, определяет scope ёмкости
type BookingType string

const (
	BookingWalkIn BookingType = "walk-in"
	BookingOnSite BookingType = "on-site"
)

// Appointment represents one scheduled visit
type Appointment struct {
	ID          int64
	Title       string
	StartAt     time.Time
	EndAt       time.Time // exclusive
	Status      AppointmentStatus
	BookingType BookingType
	ServiceID   int64
	TeamID      *int64 // обязателен для on-site

	// Контактные данные клиента
	ClientName  *string
	ClientPhone *string
	ClientEmail *string
	Address     *string
	Notes       *string

	// Forced true, если запись допущена сверх лимита
	Forced bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment counts against capacity
func (a *Appointment) IsActive() bool {
	return a.Status != StatusCancelled
}

// Scope возвращает scope ёмкости записи
func (a *Appointment) Scope() (CapacityScope, error) {
	return ScopeFor(a.BookingType, a.ServiceID, a.TeamID)
}

// Overlaps проверяет пересечение с полуинтервалом [start, end)
func (a *Appointment) Overlaps(start, end time.Time) bool {
	return Overlaps(a.StartAt, a.EndAt, start, end)
}

// AppointmentFilter фильтр для списка записей (календарь)
type AppointmentFilter struct {
	From             time.Time // Обязательный параметр
	To               time.Time // Обязательный параметр, exclusive
	ServiceID        *int64
	TeamID           *int64
	IncludeCancelled bool
}
