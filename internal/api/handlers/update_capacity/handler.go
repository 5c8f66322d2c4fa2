package update_capacity

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/capacity"
	"github.com/m04kA/SMC-AppointmentService/internal/service/capacity/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidServiceID   = "некорректный ID услуги"
	msgInvalidTeamID      = "некорректный ID бригады"
)

type Handler struct {
	service CapacityService
	logger  Logger
}

func NewHandler(service CapacityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleService PUT /api/v1/services/{serviceId}/capacity
func (h *Handler) HandleService(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "serviceId")
	if err != nil {
		h.logger.Warn("PUT /services/{id}/capacity - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}
	h.handleScope(w, r, domain.ServiceScope(id))
}

// HandleTeam PUT /api/v1/teams/{teamId}/capacity
func (h *Handler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "teamId")
	if err != nil {
		h.logger.Warn("PUT /teams/{id}/capacity - Invalid team ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTeamID)
		return
	}
	h.handleScope(w, r, domain.TeamScope(id))
}

func (h *Handler) handleScope(w http.ResponseWriter, r *http.Request, scope domain.CapacityScope) {
	var req models.UpdateScopeCapacityRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("PUT capacity - Invalid request body: scope=%s, error=%v", scope, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	resp, err := h.service.SetScopeCapacity(r.Context(), scope, &req)
	if err != nil {
		switch {
		case errors.Is(err, capacity.ErrInvalidInput):
			h.logger.Warn("PUT capacity - Validation failed: scope=%s, error=%v", scope, err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PUT capacity - Failed to update capacity: scope=%s, error=%v", scope, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT capacity - Capacity updated successfully: scope=%s", scope)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// HandleSystem PUT /api/v1/settings/capacity
func (h *Handler) HandleSystem(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateSystemCapacityRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("PUT /settings/capacity - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody+": "+err.Error())
		return
	}

	resp, err := h.service.SetSystemCapacity(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, capacity.ErrInvalidInput):
			h.logger.Warn("PUT /settings/capacity - Validation failed: %v", err)
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("PUT /settings/capacity - Failed to update system capacity: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /settings/capacity - System capacity updated: max=%d", resp.MaxOverlappingAppointments)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
