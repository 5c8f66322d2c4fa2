package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// ListAppointmentsRequest запрос календарной ленты
type ListAppointmentsRequest struct {
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	ServiceID        *int64    `json:"serviceId,omitempty"`
	TeamID           *int64    `json:"teamId,omitempty"`
	IncludeCancelled bool      `json:"includeCancelled,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAppointmentsRequest) ToDomainFilter() domain.AppointmentFilter {
	return domain.AppointmentFilter{
		From:             r.From,
		To:               r.To,
		ServiceID:        r.ServiceID,
		TeamID:           r.TeamID,
		IncludeCancelled: r.IncludeCancelled,
	}
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Status      string    `json:"status"`
	BookingType string    `json:"bookingType"`
	ServiceID   int64     `json:"serviceId"`
	TeamID      *int64    `json:"teamId,omitempty"`

	ClientName  *string `json:"clientName,omitempty"`
	ClientPhone *string `json:"clientPhone,omitempty"`
	ClientEmail *string `json:"clientEmail,omitempty"`
	Address     *string `json:"address,omitempty"`
	Notes       *string `json:"notes,omitempty"`

	Forced bool `json:"forced"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	return &AppointmentResponse{
		ID:          a.ID,
		Title:       a.Title,
		Start:       a.StartAt,
		End:         a.EndAt,
		Status:      string(a.Status),
		BookingType: string(a.BookingType),
		ServiceID:   a.ServiceID,
		TeamID:      a.TeamID,
		ClientName:  a.ClientName,
		ClientPhone: a.ClientPhone,
		ClientEmail: a.ClientEmail,
		Address:     a.Address,
		Notes:       a.Notes,
		Forced:      a.Forced,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(list []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{Appointments: make([]AppointmentResponse, 0, len(list))}
	for _, a := range list {
		resp.Appointments = append(resp.Appointments, *FromDomainAppointment(a))
	}
	return resp
}
