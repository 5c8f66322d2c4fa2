package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Request модель запроса на создание записи
type Request struct {
	Title       string
	Start       time.Time
	End         time.Time
	BookingType string
	ServiceID   int64
	TeamID      *int64

	ClientName  *string
	ClientPhone *string
	ClientEmail *string
	Address     *string
	Notes       *string

	// Force допустить запись сверх лимита
	Force bool
}

// OverlapWarning предупреждение о записи сверх лимита
type OverlapWarning struct {
	Message string
}

// Response модель ответа с созданной записью
type Response struct {
	Appointment    *models.AppointmentResponse
	OverlapWarning *OverlapWarning
}
