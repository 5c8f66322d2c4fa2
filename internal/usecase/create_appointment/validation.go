package create_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// toCandidate собирает кандидата из запроса и валидирует его
func toCandidate(req *Request) (*domain.Appointment, error) {
	a := &domain.Appointment{
		Title:       req.Title,
		StartAt:     req.Start.UTC(),
		EndAt:       req.End.UTC(),
		Status:      domain.StatusConfirmed,
		BookingType: domain.BookingType(req.BookingType),
		ServiceID:   req.ServiceID,
		TeamID:      req.TeamID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		Address:     req.Address,
		Notes:       req.Notes,
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return a, nil
}
