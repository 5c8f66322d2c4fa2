package update_appointment

import (
	"context"
	"errors"
	"fmt"

	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
)

// UseCase use case для изменения записи
type UseCase struct {
	repo      AppointmentRepository
	scheduler Scheduler
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(repo AppointmentRepository, scheduler Scheduler, logger Logger) *UseCase {
	return &UseCase{repo: repo, scheduler: scheduler, logger: logger}
}

// Execute заменяет запись на месте: собственная строка не считается в пересечениях,
// в остальном проверка такая же, как при создании
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateAppointment: id=%d, type=%s, service=%d, start=%s, end=%s, force=%t",
		req.ID, req.BookingType, req.ServiceID, req.Start, req.End, req.Force)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("UpdateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущая запись
	current, err := uc.repo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("UpdateAppointment: appointment id=%d not found", req.ID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("UpdateAppointment: failed to get appointment id=%d: %v", req.ID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	if !current.IsActive() {
		uc.logger.Warn("UpdateAppointment: appointment id=%d is cancelled", req.ID)
		return nil, ErrCannotUpdate
	}

	// 3. Кандидат на месте старой строки
	cand := *current
	apply(&cand, req)

	res, err := uc.scheduler.Admit(ctx, scheduling.AdmitRequest{
		Candidate: &cand,
		Force:     req.Force,
		ExcludeID: &cand.ID,
	})
	if err != nil {
		return nil, uc.mapSchedulingError(req.ID, err)
	}

	uc.logger.Info("UpdateAppointment: successfully updated appointment id=%d, forced=%t",
		res.Appointment.ID, res.Appointment.Forced)

	resp := &Response{Appointment: models.FromDomainAppointment(res.Appointment)}
	if res.Warning != nil {
		resp.OverlapWarning = &OverlapWarning{Message: res.Warning.Message}
	}
	return resp, nil
}

func (uc *UseCase) mapSchedulingError(id int64, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrCapacityConflict):
		uc.logger.Warn("UpdateAppointment: id=%d capacity conflict: %v", id, err)
		return err
	case errors.Is(err, scheduling.ErrNotFound):
		uc.logger.Warn("UpdateAppointment: appointment id=%d deleted concurrently", id)
		return ErrAppointmentNotFound
	case errors.Is(err, scheduling.ErrCancelled):
		uc.logger.Warn("UpdateAppointment: appointment id=%d cancelled concurrently", id)
		return ErrCannotUpdate
	case errors.Is(err, scheduling.ErrValidation):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, scheduling.ErrTransientCommit), errors.Is(err, scheduling.ErrConfiguration):
		uc.logger.Error("UpdateAppointment: id=%d: %v", id, err)
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		uc.logger.Warn("UpdateAppointment: id=%d request aborted: %v", id, err)
		return err
	default:
		uc.logger.Error("UpdateAppointment: id=%d failed to admit: %v", id, err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
