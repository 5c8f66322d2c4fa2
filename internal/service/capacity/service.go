package capacity

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	capacityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/capacity"
	"github.com/m04kA/SMC-AppointmentService/internal/service/capacity/models"
)

// Service сервис настроек ёмкости
type Service struct {
	repo      CapacityRepository
	resolver  LimitResolver
	publisher Publisher
	logger    Logger
}

// NewService создает новый экземпляр сервиса. publisher может быть nil
func NewService(repo CapacityRepository, resolver LimitResolver, publisher Publisher, logger Logger) *Service {
	return &Service{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
		logger:    logger,
	}
}

// GetScopeCapacity возвращает лимит scope и действующее значение с учётом системного
func (s *Service) GetScopeCapacity(ctx context.Context, scope domain.CapacityScope) (*models.ScopeCapacityResponse, error) {
	c, err := s.repo.GetScopeCapacity(ctx, scope)
	if err != nil {
		s.logger.Error("GetScopeCapacity: failed to get %s: %v", scope, err)
		return nil, fmt.Errorf("%w: GetScopeCapacity - repository error: %v", ErrInternal, err)
	}

	limit, err := s.resolver.ResolveLimit(ctx, scope)
	if err != nil {
		return nil, err
	}

	return models.FromDomainScope(c, limit), nil
}

// SetScopeCapacity задает лимит scope, nil сбрасывает к системному
func (s *Service) SetScopeCapacity(ctx context.Context, scope domain.CapacityScope, req *models.UpdateScopeCapacityRequest) (*models.ScopeCapacityResponse, error) {
	if scope.ID <= 0 {
		return nil, fmt.Errorf("%w: %s id must be positive", ErrInvalidInput, scope.Kind)
	}
	if req.MaxOverlap != nil {
		if err := validateLimit(*req.MaxOverlap); err != nil {
			s.logger.Warn("SetScopeCapacity: validation failed for %s: %v", scope, err)
			return nil, err
		}
	}

	c, err := s.repo.SetScopeCapacity(ctx, scope, req.MaxOverlap)
	if err != nil {
		s.logger.Error("SetScopeCapacity: failed to set %s: %v", scope, err)
		return nil, fmt.Errorf("%w: SetScopeCapacity - repository error: %v", ErrInternal, err)
	}

	s.invalidate(ctx, scope.String())
	s.logger.Info("SetScopeCapacity: %s max_overlap=%s", scope, formatLimit(req.MaxOverlap))

	limit, err := s.resolver.ResolveLimit(ctx, scope)
	if err != nil {
		// лимит записан, но системный не задан: отдаём настройку без действующего значения
		if errors.Is(err, ErrNoCapacityLimit) {
			return models.FromDomainScope(c, domain.CapacityLimit{Scope: scope}), nil
		}
		return nil, err
	}
	return models.FromDomainScope(c, limit), nil
}

// GetSystemCapacity возвращает системный лимит
func (s *Service) GetSystemCapacity(ctx context.Context) (*models.SystemCapacityResponse, error) {
	c, err := s.repo.GetSystemDefault(ctx)
	if err != nil {
		if errors.Is(err, capacityRepo.ErrSettingNotFound) {
			return nil, ErrNoCapacityLimit
		}
		s.logger.Error("GetSystemCapacity: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetSystemCapacity - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainSystem(c), nil
}

// SetSystemCapacity задает системный лимит
func (s *Service) SetSystemCapacity(ctx context.Context, req *models.UpdateSystemCapacityRequest) (*models.SystemCapacityResponse, error) {
	if req.MaxOverlappingAppointments == nil {
		return nil, fmt.Errorf("%w: maxOverlappingAppointments is required", ErrInvalidInput)
	}
	if err := validateLimit(*req.MaxOverlappingAppointments); err != nil {
		s.logger.Warn("SetSystemCapacity: validation failed: %v", err)
		return nil, err
	}

	c, err := s.repo.SetSystemDefault(ctx, *req.MaxOverlappingAppointments)
	if err != nil {
		s.logger.Error("SetSystemCapacity: repository error: %v", err)
		return nil, fmt.Errorf("%w: SetSystemCapacity - repository error: %v", ErrInternal, err)
	}

	s.invalidate(ctx, SystemCacheKey)
	s.logger.Info("SetSystemCapacity: %s=%d", domain.SystemDefaultKey, c.MaxOverlappingAppointments)
	return models.FromDomainSystem(c), nil
}

// invalidate сбрасывает локальный кэш и оповещает остальные инстансы
// Ошибка публикации не фатальна: остальные инстансы увидят новое значение по TTL
func (s *Service) invalidate(ctx context.Context, key string) {
	s.resolver.Invalidate(key)
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, key); err != nil {
		s.logger.Warn("invalidate: failed to publish %s: %v", key, err)
	}
}

func validateLimit(v int) error {
	if v < 0 || v > domain.MaxCapacityLimit {
		return fmt.Errorf("%w: limit must be between 0 and %d", ErrInvalidInput, domain.MaxCapacityLimit)
	}
	return nil
}

func formatLimit(v *int) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *v)
}
