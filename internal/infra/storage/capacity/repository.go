package capacity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
)

const settingsTable = "capacity_settings"

// Repository хранилище настроек ёмкости: лимиты услуг, бригад и системный лимит
type Repository struct {
	db      DBExecutor
	dialect sqlbuilder.Dialect
}

// NewRepository создает новый экземпляр репозитория настроек ёмкости
func NewRepository(db DBExecutor, dialect sqlbuilder.Dialect) *Repository {
	return &Repository{db: db, dialect: dialect}
}

func scopeTable(kind domain.ScopeKind) (string, error) {
	switch kind {
	case domain.ScopeService:
		return "services", nil
	case domain.ScopeTeam:
		return "teams", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, kind)
}

// GetScopeCapacity возвращает лимит scope
// Если строки нет или max_overlap IS NULL, MaxOverlap == nil
func (r *Repository) GetScopeCapacity(ctx context.Context, scope domain.CapacityScope) (*domain.ScopeCapacity, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	table, err := scopeTable(scope.Kind)
	if err != nil {
		return nil, err
	}

	query, args, err := r.dialect.Select("max_overlap", "updated_at").
		From(table).
		Where(squirrel.Eq{"id": scope.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetScopeCapacity - build select query: %v", ErrBuildQuery, err)
	}

	var (
		maxOverlap sql.NullInt64
		updatedAt  sql.NullTime
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(&maxOverlap, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.ScopeCapacity{Scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetScopeCapacity - scan: %v", ErrScanRow, err)
	}

	result := &domain.ScopeCapacity{Scope: scope, UpdatedAt: updatedAt.Time.UTC()}
	if maxOverlap.Valid {
		v := int(maxOverlap.Int64)
		result.MaxOverlap = &v
	}
	return result, nil
}

// SetScopeCapacity задает лимит scope, nil сбрасывает к системному
func (r *Repository) SetScopeCapacity(ctx context.Context, scope domain.CapacityScope, maxOverlap *int) (*domain.ScopeCapacity, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	table, err := scopeTable(scope.Kind)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query, args, err := r.dialect.Insert(table).
		Columns("id", "max_overlap", "updated_at").
		Values(scope.ID, maxOverlap, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET max_overlap = EXCLUDED.max_overlap, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: SetScopeCapacity - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: SetScopeCapacity - execute upsert: %v", ErrExecQuery, err)
	}

	return &domain.ScopeCapacity{Scope: scope, MaxOverlap: maxOverlap, UpdatedAt: now}, nil
}

// GetSystemDefault возвращает системный лимит max_overlapping_appointments
func (r *Repository) GetSystemDefault(ctx context.Context) (*domain.SystemCapacity, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.dialect.Select("value", "updated_at").
		From(settingsTable).
		Where(squirrel.Eq{"name": domain.SystemDefaultKey}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetSystemDefault - build select query: %v", ErrBuildQuery, err)
	}

	var (
		value     int
		updatedAt sql.NullTime
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(&value, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSystemDefault - scan: %v", ErrScanRow, err)
	}

	return &domain.SystemCapacity{MaxOverlappingAppointments: value, UpdatedAt: updatedAt.Time.UTC()}, nil
}

// SetSystemDefault задает системный лимит
func (r *Repository) SetSystemDefault(ctx context.Context, value int) (*domain.SystemCapacity, error) {
	now := time.Now().UTC()
	if err := r.upsertSetting(ctx, value, now, "DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at"); err != nil {
		return nil, fmt.Errorf("%w: SetSystemDefault - execute upsert: %v", ErrExecQuery, err)
	}
	return &domain.SystemCapacity{MaxOverlappingAppointments: value, UpdatedAt: now}, nil
}

// EnsureSystemDefault записывает системный лимит, только если он еще не задан
// Используется при старте, чтобы значение из конфига не затирало изменённое через API
func (r *Repository) EnsureSystemDefault(ctx context.Context, value int) error {
	if err := r.upsertSetting(ctx, value, time.Now().UTC(), "DO NOTHING"); err != nil {
		return fmt.Errorf("%w: EnsureSystemDefault - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

func (r *Repository) upsertSetting(ctx context.Context, value int, now time.Time, onConflict string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.dialect.Insert(settingsTable).
		Columns("name", "value", "updated_at").
		Values(domain.SystemDefaultKey, value, now).
		Suffix("ON CONFLICT (name) " + onConflict).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	_, err = executor.ExecContext(ctx, query, args...)
	return err
}
