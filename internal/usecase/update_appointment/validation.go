package update_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest проверяет запрос без обращения к БД
func validateRequest(req *Request) error {
	if req.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}
	if req.Status != nil {
		status := domain.AppointmentStatus(*req.Status)
		if !status.IsValid() || status == domain.StatusCancelled {
			return fmt.Errorf("%w: invalid status %q", ErrInvalidInput, *req.Status)
		}
	}
	a := &domain.Appointment{}
	apply(a, req)
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// apply переносит изменяемые поля запроса в запись
// ID, CreatedAt и Forced не трогаются: forced пересчитывает движок
func apply(a *domain.Appointment, req *Request) {
	a.Title = req.Title
	a.StartAt = req.Start.UTC()
	a.EndAt = req.End.UTC()
	a.BookingType = domain.BookingType(req.BookingType)
	a.ServiceID = req.ServiceID
	a.TeamID = req.TeamID
	a.ClientName = req.ClientName
	a.ClientPhone = req.ClientPhone
	a.ClientEmail = req.ClientEmail
	a.Address = req.Address
	a.Notes = req.Notes
	if req.Status != nil {
		a.Status = domain.AppointmentStatus(*req.Status)
	}
}
