package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
)

// UseCase use case для создания записи
type UseCase struct {
	scheduler Scheduler
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(scheduler Scheduler, logger Logger) *UseCase {
	return &UseCase{scheduler: scheduler, logger: logger}
}

// Execute выполняет use case создания записи
// Ошибки движка (ConflictError, ErrTransientCommit, ErrConfiguration) возвращаются без изменений
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: type=%s, service=%d, team=%s, start=%s, end=%s, force=%t",
		req.BookingType, req.ServiceID, formatID(req.TeamID), req.Start, req.End, req.Force)

	// 1. Валидация входных данных, до обращения к БД
	cand, err := toCandidate(req)
	if err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Решение и коммит под блокировкой scope
	res, err := uc.scheduler.Admit(ctx, scheduling.AdmitRequest{Candidate: cand, Force: req.Force})
	if err != nil {
		return nil, mapSchedulingError(uc.logger, err)
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d, forced=%t",
		res.Appointment.ID, res.Appointment.Forced)

	resp := &Response{Appointment: models.FromDomainAppointment(res.Appointment)}
	if res.Warning != nil {
		resp.OverlapWarning = &OverlapWarning{Message: res.Warning.Message}
	}
	return resp, nil
}

func mapSchedulingError(logger Logger, err error) error {
	switch {
	case errors.Is(err, scheduling.ErrCapacityConflict):
		logger.Warn("CreateAppointment: capacity conflict: %v", err)
		return err
	case errors.Is(err, scheduling.ErrValidation):
		logger.Warn("CreateAppointment: validation failed: %v", err)
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, scheduling.ErrTransientCommit), errors.Is(err, scheduling.ErrConfiguration):
		logger.Error("CreateAppointment: %v", err)
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Warn("CreateAppointment: request aborted: %v", err)
		return err
	default:
		logger.Error("CreateAppointment: failed to admit appointment: %v", err)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}

func formatID(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}
