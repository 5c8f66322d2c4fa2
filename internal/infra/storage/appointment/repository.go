package appointment

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

const table = "appointments"

var columns = []string{
	"id",
	"title",
	"start_at",
	"end_at",
	"status",
	"booking_type",
	"service_id",
	"team_id",
	"client_name",
	"client_phone",
	"client_email",
	"address",
	"notes",
	"forced",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями
type Repository struct {
	db          DBExecutor
	dialect     sqlbuilder.Dialect
	lockTimeout time.Duration
}

// NewRepository создает новый экземпляр репозитория записей
// lockTimeout ограничивает ожидание блокировки scope (только postgres)
func NewRepository(db DBExecutor, dialect sqlbuilder.Dialect, lockTimeout time.Duration) *Repository {
	return &Repository{db: db, dialect: dialect, lockTimeout: lockTimeout}
}

// Create создает новую запись
// Если в контексте передана активная транзакция, использует её
func (r *Repository) Create(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	scope, err := a.Scope()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - derive scope: %v", ErrBuildQuery, err)
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	query, args, err := r.dialect.Insert(table).
		Columns(
			"title",
			"start_at",
			"end_at",
			"status",
			"booking_type",
			"service_id",
			"team_id",
			"scope_kind",
			"scope_id",
			"client_name",
			"client_phone",
			"client_email",
			"address",
			"notes",
			"forced",
			"created_at",
			"updated_at",
		).
		Values(
			a.Title,
			a.StartAt.UTC(),
			a.EndAt.UTC(),
			a.Status,
			a.BookingType,
			a.ServiceID,
			a.TeamID,
			scope.Kind,
			scope.ID,
			a.ClientName,
			a.ClientPhone,
			a.ClientEmail,
			a.Address,
			a.Notes,
			a.Forced,
			a.CreatedAt,
			a.UpdatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&a.ID); err != nil {
		return nil, classify(err, ErrExecQuery, "Create - execute insert")
	}

	a.StartAt = a.StartAt.UTC()
	a.EndAt = a.EndAt.UTC()
	return a, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.dialect.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	a, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, classify(err, ErrScanRow, "GetByID - scan")
	}
	return a, nil
}

// Update перезаписывает изменяемые поля записи, включая scope и флаг forced
func (r *Repository) Update(ctx context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	scope, err := a.Scope()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - derive scope: %v", ErrBuildQuery, err)
	}

	a.UpdatedAt = time.Now().UTC()

	query, args, err := r.dialect.Update(table).
		Set("title", a.Title).
		Set("start_at", a.StartAt.UTC()).
		Set("end_at", a.EndAt.UTC()).
		Set("status", a.Status).
		Set("booking_type", a.BookingType).
		Set("service_id", a.ServiceID).
		Set("team_id", a.TeamID).
		Set("scope_kind", scope.Kind).
		Set("scope_id", scope.ID).
		Set("client_name", a.ClientName).
		Set("client_phone", a.ClientPhone).
		Set("client_email", a.ClientEmail).
		Set("address", a.Address).
		Set("notes", a.Notes).
		Set("forced", a.Forced).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"id": a.ID}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, ErrExecQuery, "Update - execute update")
	}
	if err := requireAffected(res, "Update"); err != nil {
		if !errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		// запись есть, но её успели отменить
		if _, getErr := r.GetByID(ctx, a.ID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrAppointmentCancelled
	}

	a.StartAt = a.StartAt.UTC()
	a.EndAt = a.EndAt.UTC()
	return a, nil
}

// Cancel помечает запись отменённой. Отменённые записи не занимают ёмкость
func (r *Repository) Cancel(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.dialect.Update(table).
		Set("status", domain.StatusCancelled).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err, ErrExecQuery, "Cancel - execute update")
	}
	return requireAffected(res, "Cancel")
}

// Delete удаляет запись
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.dialect.Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	res, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err, ErrExecQuery, "Delete - execute delete")
	}
	return requireAffected(res, "Delete")
}

// FindOverlapping возвращает активные записи scope, пересекающие [start, end)
// excludeID исключает запись из результата (при обновлении)
func (r *Repository) FindOverlapping(ctx context.Context, scope domain.CapacityScope, start, end time.Time, excludeID *int64) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.overlapWhere(r.dialect.Select(columns...).From(table), scope, start, end, excludeID).
		OrderBy("start_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, ErrExecQuery, "FindOverlapping - execute select")
	}
	defer rows.Close()

	return scanAppointments(rows, "FindOverlapping")
}

// CountOverlapping число активных записей scope, пересекающих [start, end)
func (r *Repository) CountOverlapping(ctx context.Context, scope domain.CapacityScope, start, end time.Time, excludeID *int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.overlapWhere(r.dialect.Select("COUNT(*)").From(table), scope, start, end, excludeID).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, classify(err, ErrExecQuery, "CountOverlapping - execute select")
	}
	return count, nil
}

// полуинтервалы: existing.start < end AND existing.end > start
func (r *Repository) overlapWhere(b squirrel.SelectBuilder, scope domain.CapacityScope, start, end time.Time, excludeID *int64) squirrel.SelectBuilder {
	b = b.Where(squirrel.Eq{"scope_kind": scope.Kind, "scope_id": scope.ID}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		Where(squirrel.Lt{"start_at": end.UTC()}).
		Where(squirrel.Gt{"end_at": start.UTC()})
	if excludeID != nil {
		b = b.Where(squirrel.NotEq{"id": *excludeID})
	}
	return b
}

// List возвращает записи, пересекающие [filter.From, filter.To), по возрастанию начала
func (r *Repository) List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	b := r.dialect.Select(columns...).
		From(table).
		Where(squirrel.Lt{"start_at": filter.To.UTC()}).
		Where(squirrel.Gt{"end_at": filter.From.UTC()})

	if filter.ServiceID != nil {
		b = b.Where(squirrel.Eq{"service_id": *filter.ServiceID})
	}
	if filter.TeamID != nil {
		b = b.Where(squirrel.Eq{"team_id": *filter.TeamID})
	}
	if !filter.IncludeCancelled {
		b = b.Where(squirrel.NotEq{"status": domain.StatusCancelled})
	}

	query, args, err := b.OrderBy("start_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err, ErrExecQuery, "List - execute select")
	}
	defer rows.Close()

	return scanAppointments(rows, "List")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.StartAt,
		&a.EndAt,
		&a.Status,
		&a.BookingType,
		&a.ServiceID,
		&a.TeamID,
		&a.ClientName,
		&a.ClientPhone,
		&a.ClientEmail,
		&a.Address,
		&a.Notes,
		&a.Forced,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.StartAt = a.StartAt.UTC()
	a.EndAt = a.EndAt.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return &a, nil
}

func scanAppointments(rows *sql.Rows, op string) ([]*domain.Appointment, error) {
	var result []*domain.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan: %v", ErrScanRow, op, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, ErrScanRow, op+" - rows")
	}
	return result, nil
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - rows affected: %v", ErrExecQuery, op, err)
	}
	if affected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
