package appointment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/storagetest"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
)

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func newRepo(t *testing.T) (*Repository, *dbmetrics.DB) {
	db := storagetest.OpenSQLite(t)
	return NewRepository(db, sqlbuilder.SQLite, time.Second), db
}

func walkIn(serviceID int64, start, end time.Time) *domain.Appointment {
	return &domain.Appointment{
		Title:       "Haircut",
		StartAt:     start,
		EndAt:       end,
		Status:      domain.StatusConfirmed,
		BookingType: domain.BookingWalkIn,
		ServiceID:   serviceID,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	a := walkIn(1, at(14, 0), at(15, 0))
	a.ClientName = ptr.Ptr("Anna")
	a.Notes = ptr.Ptr("first visit")

	created, err := repo.Create(ctx, a)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Haircut", got.Title)
	assert.True(t, got.StartAt.Equal(at(14, 0)))
	assert.True(t, got.EndAt.Equal(at(15, 0)))
	assert.Equal(t, domain.BookingWalkIn, got.BookingType)
	assert.Equal(t, "Anna", *got.ClientName)
	assert.Nil(t, got.TeamID)
	assert.Nil(t, got.ClientEmail)
	assert.False(t, got.Forced)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRepository_FindOverlapping(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	inside, err := repo.Create(ctx, walkIn(1, at(14, 0), at(15, 0)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, walkIn(1, at(15, 0), at(16, 0))) // касается, не пересекает
	require.NoError(t, err)
	_, err = repo.Create(ctx, walkIn(2, at(14, 0), at(15, 0))) // другой scope
	require.NoError(t, err)
	cancelled, err := repo.Create(ctx, walkIn(1, at(14, 15), at(14, 45)))
	require.NoError(t, err)
	require.NoError(t, repo.Cancel(ctx, cancelled.ID))

	found, err := repo.FindOverlapping(ctx, domain.ServiceScope(1), at(14, 30), at(15, 0), nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, inside.ID, found[0].ID)

	count, err := repo.CountOverlapping(ctx, domain.ServiceScope(1), at(14, 30), at(15, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.CountOverlapping(ctx, domain.ServiceScope(1), at(14, 30), at(15, 0), &inside.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRepository_FindOverlapping_TeamScope(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	onSite := walkIn(1, at(9, 0), at(11, 0))
	onSite.BookingType = domain.BookingOnSite
	onSite.TeamID = ptr.Ptr(int64(7))
	_, err := repo.Create(ctx, onSite)
	require.NoError(t, err)

	// walk-in той же услуги не попадает в scope бригады
	_, err = repo.Create(ctx, walkIn(1, at(9, 0), at(11, 0)))
	require.NoError(t, err)

	found, err := repo.FindOverlapping(ctx, domain.TeamScope(7), at(10, 0), at(12, 0), nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, domain.BookingOnSite, found[0].BookingType)
}

func TestRepository_UpdateMovesScope(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, walkIn(1, at(14, 0), at(15, 0)))
	require.NoError(t, err)
	createdAt := a.CreatedAt

	a.ServiceID = 2
	a.StartAt = at(16, 0)
	a.EndAt = at(17, 0)
	a.Forced = true
	_, err = repo.Update(ctx, a)
	require.NoError(t, err)

	count, err := repo.CountOverlapping(ctx, domain.ServiceScope(1), at(14, 0), at(15, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ServiceID)
	assert.True(t, got.Forced)
	assert.True(t, got.CreatedAt.Equal(createdAt))

	_, err = repo.Update(ctx, &domain.Appointment{ID: 999, BookingType: domain.BookingWalkIn, ServiceID: 1,
		StartAt: at(1, 0), EndAt: at(2, 0), Status: domain.StatusConfirmed})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRepository_UpdateKeepsCancelled(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, walkIn(1, at(14, 0), at(15, 0)))
	require.NoError(t, err)
	require.NoError(t, repo.Cancel(ctx, a.ID))

	stale := *a
	stale.StartAt = at(15, 0)
	stale.EndAt = at(16, 0)
	_, err = repo.Update(ctx, &stale)
	assert.ErrorIs(t, err, ErrAppointmentCancelled)

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.True(t, got.StartAt.Equal(at(14, 0)))
}

func TestRepository_Delete(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, walkIn(1, at(14, 0), at(15, 0)))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), ErrAppointmentNotFound)
	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestRepository_List(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	late, err := repo.Create(ctx, walkIn(1, at(16, 0), at(17, 0)))
	require.NoError(t, err)
	early, err := repo.Create(ctx, walkIn(2, at(9, 0), at(10, 0)))
	require.NoError(t, err)
	cancelled, err := repo.Create(ctx, walkIn(1, at(12, 0), at(13, 0)))
	require.NoError(t, err)
	require.NoError(t, repo.Cancel(ctx, cancelled.ID))
	_, err = repo.Create(ctx, walkIn(1, day.Add(26*time.Hour), day.Add(27*time.Hour)))
	require.NoError(t, err)

	list, err := repo.List(ctx, domain.AppointmentFilter{From: day, To: day.Add(24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, early.ID, list[0].ID)
	assert.Equal(t, late.ID, list[1].ID)

	list, err = repo.List(ctx, domain.AppointmentFilter{
		From: day, To: day.Add(24 * time.Hour), ServiceID: ptr.Ptr(int64(1)), IncludeCancelled: true,
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, cancelled.ID, list[0].ID)
	assert.Equal(t, domain.StatusCancelled, list[0].Status)
}

func TestRepository_LockScope(t *testing.T) {
	repo, db := newRepo(t)

	assert.ErrorIs(t, repo.LockScope(context.Background(), domain.ServiceScope(1)), ErrLockOutsideTransaction)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	assert.NoError(t, repo.LockScope(dbmetrics.WithTx(context.Background(), tx), domain.ServiceScope(1)))
}

func TestLockKey_Stable(t *testing.T) {
	assert.Equal(t, LockKey(domain.ServiceScope(1)), LockKey(domain.ServiceScope(1)))
	assert.NotEqual(t, LockKey(domain.ServiceScope(1)), LockKey(domain.TeamScope(1)))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	plain := errors.New("syntax error")
	assert.Same(t, plain, Classify(plain))

	wrapped := classify(plain, ErrExecQuery, "op")
	assert.ErrorIs(t, wrapped, ErrExecQuery)
	assert.False(t, IsTransient(wrapped))

	assert.ErrorIs(t, Classify(&pq.Error{Code: "55P03"}), ErrLockTimeout)
	assert.ErrorIs(t, Classify(fmt.Errorf("commit: %w", &pq.Error{Code: "40001"})), ErrSerialization)
	assert.ErrorIs(t, Classify(&pq.Error{Code: "40P01"}), ErrSerialization)
	assert.True(t, IsTransient(Classify(&pq.Error{Code: "40P01"})))
	assert.False(t, IsTransient(Classify(&pq.Error{Code: "23505"})))
}
