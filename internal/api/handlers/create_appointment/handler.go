package create_appointment

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidTime        = "время должно быть в формате RFC3339"
	msgCapacityExceeded   = "превышен лимит одновременных записей"
	msgRetryLater         = "не удалось сохранить запись из-за конкурирующих изменений, повторите запрос"
	msgNotConfigured      = "лимит одновременных записей не настроен"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var httpReq CreateAppointmentRequest
	if err := handlers.DecodeAndValidate(r, &httpReq); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody+": "+err.Error())
		return
	}

	req, err := httpReq.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /appointments - Invalid time format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTime+": "+err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		var conflict *scheduling.ConflictError
		switch {
		case errors.As(err, &conflict):
			h.logger.Warn("POST /appointments - Capacity exceeded: service_id=%d, count=%d, max=%d",
				req.ServiceID, conflict.Report.Count, conflict.Report.MaxAllowed)
			handlers.RespondConflict(w, msgCapacityExceeded, conflict.Report)

		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Validation failed: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, scheduling.ErrTransientCommit):
			h.logger.Warn("POST /appointments - Transient commit failure: service_id=%d, error=%v", req.ServiceID, err)
			handlers.RespondRetryable(w, msgRetryLater)

		case errors.Is(err, scheduling.ErrConfiguration):
			h.logger.Error("POST /appointments - Capacity not configured: service_id=%d", req.ServiceID)
			handlers.RespondError(w, http.StatusInternalServerError, msgNotConfigured)

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.logger.Warn("POST /appointments - Request aborted: %v", err)
			handlers.RespondRetryable(w, msgRetryLater)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: service_id=%d, error=%v",
				req.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%d, forced=%t",
		result.Appointment.ID, result.Appointment.Forced)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
