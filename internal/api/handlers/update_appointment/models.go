package update_appointment

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	updateAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/update_appointment"
)

// UpdateAppointmentRequest HTTP request model, запись заменяется целиком
type UpdateAppointmentRequest struct {
	Title       string `json:"title"`
	Start       string `json:"start" validate:"required"`
	End         string `json:"end" validate:"required"`
	BookingType string `json:"bookingType" validate:"required,oneof=walk-in on-site"`
	ServiceID   int64  `json:"serviceId" validate:"required,gt=0"`
	TeamID      *int64 `json:"teamId,omitempty" validate:"omitempty,gt=0"`

	ClientName  *string `json:"clientName,omitempty" validate:"omitempty,max=255"`
	ClientPhone *string `json:"clientPhone,omitempty" validate:"omitempty,max=32"`
	ClientEmail *string `json:"clientEmail,omitempty" validate:"omitempty,email"`
	Address     *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Notes       *string `json:"notes,omitempty"`

	// Status кроме cancelled, для отмены есть PATCH /cancel
	Status *string `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed completed"`

	Force bool `json:"force"`
}

// OverlapWarningResponse предупреждение о записи сверх лимита
type OverlapWarningResponse struct {
	Message string `json:"message"`
}

// AppointmentUpdatedResponse HTTP response model
type AppointmentUpdatedResponse struct {
	Appointment    *models.AppointmentResponse `json:"appointment"`
	OverlapWarning *OverlapWarningResponse     `json:"overlapWarning,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateAppointmentRequest) ToUseCaseRequest(id int64) (*updateAppointment.Request, error) {
	start, err := time.Parse(domain.TimeLayout, r.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := time.Parse(domain.TimeLayout, r.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	return &updateAppointment.Request{
		ID:          id,
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
		Status:      r.Status,
		Force:       r.Force,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *updateAppointment.Response) *AppointmentUpdatedResponse {
	out := &AppointmentUpdatedResponse{Appointment: resp.Appointment}
	if resp.OverlapWarning != nil {
		out.OverlapWarning = &OverlapWarningResponse{Message: resp.OverlapWarning.Message}
	}
	return out
}
