package update_appointment

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	updateAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/update_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidTime          = "время должно быть в формате RFC3339"
	msgNotFound             = "запись не найдена"
	msgCancelled            = "отменённую запись нельзя изменить"
	msgCapacityExceeded     = "превышен лимит одновременных записей"
	msgRetryLater           = "не удалось сохранить запись из-за конкурирующих изменений, повторите запрос"
	msgNotConfigured        = "лимит одновременных записей не настроен"
)

type Handler struct {
	useCase UpdateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase UpdateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PUT /api/v1/appointments/{appointmentId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PUT /appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var httpReq UpdateAppointmentRequest
	if err := handlers.DecodeAndValidate(r, &httpReq); err != nil {
		h.logger.Warn("PUT /appointments/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody+": "+err.Error())
		return
	}

	req, err := httpReq.ToUseCaseRequest(id)
	if err != nil {
		h.logger.Warn("PUT /appointments/{id} - Invalid time format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime+": "+err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		var conflict *scheduling.ConflictError
		switch {
		case errors.As(err, &conflict):
			h.logger.Warn("PUT /appointments/{id} - Capacity exceeded: appointment_id=%d, count=%d, max=%d",
				id, conflict.Report.Count, conflict.Report.MaxAllowed)
			handlers.RespondConflict(w, msgCapacityExceeded, conflict.Report)

		case errors.Is(err, updateAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PUT /appointments/{id} - Appointment not found: appointment_id=%d", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, updateAppointment.ErrCannotUpdate):
			h.logger.Warn("PUT /appointments/{id} - Appointment cancelled: appointment_id=%d", id)
			handlers.RespondBadRequest(w, msgCancelled)

		case errors.Is(err, updateAppointment.ErrInvalidInput):
			h.logger.Warn("PUT /appointments/{id} - Validation failed: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, scheduling.ErrTransientCommit),
			errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.logger.Warn("PUT /appointments/{id} - Retryable failure: appointment_id=%d, error=%v", id, err)
			handlers.RespondRetryable(w, msgRetryLater)

		case errors.Is(err, scheduling.ErrConfiguration):
			h.logger.Error("PUT /appointments/{id} - Capacity not configured: appointment_id=%d", id)
			handlers.RespondError(w, http.StatusInternalServerError, msgNotConfigured)

		default:
			h.logger.Error("PUT /appointments/{id} - Failed to update appointment: appointment_id=%d, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /appointments/{id} - Appointment updated successfully: appointment_id=%d, forced=%t",
		id, result.Appointment.Forced)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
