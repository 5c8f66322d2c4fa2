package create_appointment

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	Title       string `json:"title"`
	Start       string `json:"start" validate:"required"` // "2026-03-02T10:00:00+03:00"
	End         string `json:"end" validate:"required"`
	BookingType string `json:"bookingType" validate:"required,oneof=walk-in on-site"`
	ServiceID   int64  `json:"serviceId" validate:"required,gt=0"`
	TeamID      *int64 `json:"teamId,omitempty" validate:"omitempty,gt=0"`

	ClientName  *string `json:"clientName,omitempty" validate:"omitempty,max=255"`
	ClientPhone *string `json:"clientPhone,omitempty" validate:"omitempty,max=32"`
	ClientEmail *string `json:"clientEmail,omitempty" validate:"omitempty,email"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Notes       *string `json:"notes,omitempty"`

	Force bool `json:"force"`
}

// OverlapWarningResponse предупреждение о записи сверх лимита
type OverlapWarningResponse struct {
	Message string `json:"message"`
}

// AppointmentCreatedResponse HTTP response model
type AppointmentCreatedResponse struct {
	Appointment    *models.AppointmentResponse `json:"appointment"`
	OverlapWarning *OverlapWarningResponse     `json:"overlapWarning,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest() (*createAppointment.Request, error) {
	start, err := time.Parse(domain.TimeLayout, r.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := time.Parse(domain.TimeLayout, r.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	return &createAppointment.Request{
		Title:       r.Title,
		Start:       start,
		End:         end,
		BookingType: r.BookingType,
		ServiceID:   r.ServiceID,
		TeamID:      r.TeamID,
		ClientName:  r.ClientName,
		ClientPhone: r.ClientPhone,
		ClientEmail: r.ClientEmail,
		Address:     r.Address,
		Notes:       r.Notes,
		Force:       r.Force,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentCreatedResponse {
	out := &AppointmentCreatedResponse{Appointment: resp.Appointment}
	if resp.OverlapWarning != nil {
		out.OverlapWarning = &OverlapWarningResponse{Message: resp.OverlapWarning.Message}
	}
	return out
}
