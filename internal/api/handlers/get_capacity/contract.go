package get_capacity

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/capacity/models"
)

type CapacityService interface {
	GetScopeCapacity(ctx context.Context, scope domain.CapacityScope) (*models.ScopeCapacityResponse, error)
	GetSystemCapacity(ctx context.Context) (*models.SystemCapacityResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
