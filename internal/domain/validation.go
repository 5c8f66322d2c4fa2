package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidAppointment запись не проходит проверку полей
var ErrInvalidAppointment = errors.New("domain: invalid appointment")

// Validate проверяет поля записи до обращения к хранилищу
func (a *Appointment) Validate() error {
	if a.StartAt.IsZero() || a.EndAt.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidAppointment)
	}
	if !a.EndAt.After(a.StartAt) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidAppointment)
	}
	if a.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidAppointment)
	}
	if a.TeamID != nil && *a.TeamID <= 0 {
		return fmt.Errorf("%w: teamId must be positive", ErrInvalidAppointment)
	}
	if _, err := a.Scope(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAppointment, err)
	}
	if utf8.RuneCountInString(a.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title must not exceed %d characters", ErrInvalidAppointment, MaxTitleLength)
	}
	if a.Notes != nil && utf8.RuneCountInString(*a.Notes) > MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidAppointment, MaxNotesLength)
	}
	return nil
}
