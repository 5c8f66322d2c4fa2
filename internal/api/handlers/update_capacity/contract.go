package update_capacity

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/capacity/models"
)

type CapacityService interface {
	SetScopeCapacity(ctx context.Context, scope domain.CapacityScope, req *models.UpdateScopeCapacityRequest) (*models.ScopeCapacityResponse, error)
	SetSystemCapacity(ctx context.Context, req *models.UpdateSystemCapacityRequest) (*models.SystemCapacityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
