package update_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Request модель запроса на изменение записи
// Запись заменяется целиком: время, категория, услуга, бригада, контакты
type Request struct {
	ID          int64
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

	// Status новый статус, кроме cancelled (для отмены есть отдельная операция)
	Status *string

	Force bool
}

// OverlapWarning предупреждение о записи сверх лимита
type OverlapWarning struct {
	Message string
}

// Response модель ответа с обновлённой записью
type Response struct {
	Appointment    *models.AppointmentResponse
	OverlapWarning *OverlapWarning
}
