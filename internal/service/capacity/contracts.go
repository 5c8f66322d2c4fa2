package capacity

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// CapacityRepository интерфейс хранилища настроек ёмкости
type CapacityRepository interface {
	GetScopeCapacity(ctx context.Context, scope domain.CapacityScope) (*domain.ScopeCapacity, error)
	SetScopeCapacity(ctx context.Context, scope domain.CapacityScope, maxOverlap *int) (*domain.ScopeCapacity, error)
	GetSystemDefault(ctx context.Context) (*domain.SystemCapacity, error)
	SetSystemDefault(ctx context.Context, value int) (*domain.SystemCapacity, error)
}

// LimitResolver интерфейс резолвера, используемый сервисом настроек
type LimitResolver interface {
	ResolveLimit(ctx context.Context, scope domain.CapacityScope) (domain.CapacityLimit, error)
	Invalidate(key string)
}

// Publisher рассылает инвалидацию кэша другим инстансам (Redis)
type Publisher interface {
	Publish(ctx context.Context, key string) error
}

// CacheRecorder метрики кэша лимитов
type CacheRecorder interface {
	ObserveCapacityCache(hit bool)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
