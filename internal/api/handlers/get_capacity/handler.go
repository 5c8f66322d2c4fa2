package get_capacity

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/capacity"
)

const (
	msgInvalidServiceID = "некорректный ID услуги"
	msgInvalidTeamID    = "некорректный ID бригады"
	msgNotConfigured    = "системный лимит одновременных записей не настроен"
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

// HandleService GET /api/v1/services/{serviceId}/capacity
func (h *Handler) HandleService(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "serviceId")
	if err != nil {
		h.logger.Warn("GET /services/{id}/capacity - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}
	h.handleScope(w, r, domain.ServiceScope(id))
}

// HandleTeam GET /api/v1/teams/{teamId}/capacity
func (h *Handler) HandleTeam(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "teamId")
	if err != nil {
		h.logger.Warn("GET /teams/{id}/capacity - Invalid team ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTeamID)
		return
	}
	h.handleScope(w, r, domain.TeamScope(id))
}

func (h *Handler) handleScope(w http.ResponseWriter, r *http.Request, scope domain.CapacityScope) {
	resp, err := h.service.GetScopeCapacity(r.Context(), scope)
	if err != nil {
		switch {
		case errors.Is(err, capacity.ErrNoCapacityLimit):
			h.logger.Error("GET capacity - No limit for %s", scope)
			handlers.RespondError(w, http.StatusInternalServerError, msgNotConfigured)

		default:
			h.logger.Error("GET capacity - Failed to get capacity: scope=%s, error=%v", scope, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET capacity - Capacity retrieved successfully: scope=%s, effective=%d", scope, resp.EffectiveMax)
	handlers.RespondJSON(w, http.StatusOK, resp)
}

// HandleSystem GET /api/v1/settings/capacity
func (h *Handler) HandleSystem(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetSystemCapacity(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, capacity.ErrNoCapacityLimit):
			h.logger.Warn("GET /settings/capacity - System limit not configured")
			handlers.RespondNotFound(w, msgNotConfigured)

		default:
			h.logger.Error("GET /settings/capacity - Failed to get system capacity: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /settings/capacity - System capacity retrieved: max=%d", resp.MaxOverlappingAppointments)
	handlers.RespondJSON(w, http.StatusOK, resp)
}
