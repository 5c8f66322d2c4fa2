package scheduling

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	FindOverlapping(ctx context.Context, scope domain.CapacityScope, start, end time.Time, excludeID *int64) ([]*domain.Appointment, error)
	CountOverlapping(ctx context.Context, scope domain.CapacityScope, start, end time.Time, excludeID *int64) (int, error)
	LockScope(ctx context.Context, scope domain.CapacityScope) error
	Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
	Update(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error)
}

// LimitResolver интерфейс резолвера лимитов
type LimitResolver interface {
	ResolveLimit(ctx context.Context, scope domain.CapacityScope) (domain.CapacityLimit, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Recorder метрики планировщика
type Recorder interface {
	ObserveDecision(scopeKind, outcome string)
	ObserveRetry(reason string)
	ObserveTransientFailure()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
