package capacity

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	capacityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/capacity"
)

// SystemCacheKey ключ кэша и инвалидации для системного лимита
const SystemCacheKey = domain.SystemScopeKey

// Resolver определяет действующий лимит scope: свой лимит, иначе системный
// Значения кэшируются на ttl. Устаревание допустимо, коммит перепроверяет
// пересечения под блокировкой, а лимит берётся свежий на каждой попытке после промаха
type Resolver struct {
	repo     CapacityRepository
	cache    *gocache.Cache
	recorder CacheRecorder
	logger   Logger
}

// NewResolver создает резолвер. ttl <= 0 отключает кэш. recorder может быть nil
func NewResolver(repo CapacityRepository, ttl time.Duration, recorder CacheRecorder, logger Logger) *Resolver {
	var cache *gocache.Cache
	if ttl > 0 {
		cache = gocache.New(ttl, 2*ttl)
	}
	return &Resolver{repo: repo, cache: cache, recorder: recorder, logger: logger}
}

// ResolveLimit возвращает действующий лимит scope
func (r *Resolver) ResolveLimit(ctx context.Context, scope domain.CapacityScope) (domain.CapacityLimit, error) {
	own, err := r.scopeLimit(ctx, scope)
	if err != nil {
		return domain.CapacityLimit{}, err
	}
	if own != nil {
		return domain.CapacityLimit{Scope: scope, Max: *own, Source: domain.LimitFromScope}, nil
	}

	system, err := r.systemLimit(ctx)
	if err != nil {
		return domain.CapacityLimit{}, err
	}
	return domain.CapacityLimit{Scope: scope, Max: system, Source: domain.LimitFromSystem}, nil
}

// Invalidate удаляет ключ ("service:1", "team:2" или "system") из кэша
func (r *Resolver) Invalidate(key string) {
	if r.cache != nil {
		r.cache.Delete(key)
	}
}

// InvalidateAll очищает кэш
func (r *Resolver) InvalidateAll() {
	if r.cache != nil {
		r.cache.Flush()
	}
}

// scopeLimit nil означает "не задано"; nil тоже кэшируется
func (r *Resolver) scopeLimit(ctx context.Context, scope domain.CapacityScope) (*int, error) {
	key := scope.String()
	if v, ok := r.lookup(key); ok {
		return v.(*int), nil
	}

	c, err := r.repo.GetScopeCapacity(ctx, scope)
	if err != nil {
		r.logger.Error("ResolveLimit: failed to get capacity for %s: %v", key, err)
		return nil, fmt.Errorf("%w: ResolveLimit - scope %s: %v", ErrInternal, key, err)
	}

	r.store(key, c.MaxOverlap)
	return c.MaxOverlap, nil
}

func (r *Resolver) systemLimit(ctx context.Context) (int, error) {
	if v, ok := r.lookup(SystemCacheKey); ok {
		return v.(int), nil
	}

	c, err := r.repo.GetSystemDefault(ctx)
	if err != nil {
		if errors.Is(err, capacityRepo.ErrSettingNotFound) {
			r.logger.Error("ResolveLimit: system default %s is not configured", domain.SystemDefaultKey)
			return 0, ErrNoCapacityLimit
		}
		r.logger.Error("ResolveLimit: failed to get system default: %v", err)
		return 0, fmt.Errorf("%w: ResolveLimit - system default: %v", ErrInternal, err)
	}

	r.store(SystemCacheKey, c.MaxOverlappingAppointments)
	return c.MaxOverlappingAppointments, nil
}

func (r *Resolver) lookup(key string) (interface{}, bool) {
	if r.cache == nil {
		return nil, false
	}
	v, ok := r.cache.Get(key)
	if r.recorder != nil {
		r.recorder.ObserveCapacityCache(ok)
	}
	return v, ok
}

func (r *Resolver) store(key string, v interface{}) {
	if r.cache != nil {
		r.cache.SetDefault(key, v)
	}
}
