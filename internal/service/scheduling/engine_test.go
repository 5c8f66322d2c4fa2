package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	capacityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/capacity"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/storagetest"
	capacitySvc "github.com/m04kA/SMC-AppointmentService/internal/service/capacity"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/retry"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

var testPolicy = retry.Policy{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

type fixture struct {
	engine   *Engine
	repo     *appointmentRepo.Repository
	capacity *capacityRepo.Repository
}

func newFixture(t *testing.T) *fixture {
	db := storagetest.OpenSQLite(t)
	repo := appointmentRepo.NewRepository(db, sqlbuilder.SQLite, time.Second)
	capRepo := capacityRepo.NewRepository(db, sqlbuilder.SQLite)
	resolver := capacitySvc.NewResolver(capRepo, 0, nil, nopLogger{})
	tx := txmanager.NewTransactionManager(db, storage.Isolation(sqlbuilder.SQLite))

	return &fixture{
		engine:   NewEngine(repo, resolver, tx, nil, nopLogger{}, Config{Retry: testPolicy, ConflictListLimit: 20}),
		repo:     repo,
		capacity: capRepo,
	}
}

func (f *fixture) setService(t *testing.T, id int64, limit int) {
	_, err := f.capacity.SetScopeCapacity(context.Background(), domain.ServiceScope(id), ptr.Ptr(limit))
	require.NoError(t, err)
}

func (f *fixture) setSystem(t *testing.T, limit int) {
	_, err := f.capacity.SetSystemDefault(context.Background(), limit)
	require.NoError(t, err)
}

var day = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func walkIn(serviceID int64, start, end time.Time) *domain.Appointment {
	return &domain.Appointment{
		Title:       "Walk-in",
		StartAt:     start,
		EndAt:       end,
		Status:      domain.StatusConfirmed,
		BookingType: domain.BookingWalkIn,
		ServiceID:   serviceID,
	}
}

func onSite(teamID int64, start, end time.Time) *domain.Appointment {
	a := walkIn(1, start, end)
	a.Title = "On-site"
	a.BookingType = domain.BookingOnSite
	a.TeamID = ptr.Ptr(teamID)
	return a
}

func TestAdmit_ServiceLimitOne_RejectThenForce(t *testing.T) {
	f := newFixture(t)
	f.setService(t, 1, 1)
	ctx := context.Background()

	first, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	require.NoError(t, err)
	assert.Nil(t, first.Warning)
	assert.False(t, first.Appointment.Forced)

	_, err = f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 30), at(15, 30))})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, ErrCapacityConflict)
	assert.Equal(t, 1, conflict.Report.Count)
	assert.Equal(t, 1, conflict.Report.MaxAllowed)
	assert.True(t, conflict.Report.CanForce)
	require.Len(t, conflict.Report.OverlappingAppointments, 1)
	assert.Equal(t, first.Appointment.ID, conflict.Report.OverlappingAppointments[0].ID)

	forced, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 30), at(15, 30)), Force: true})
	require.NoError(t, err)
	require.NotNil(t, forced.Warning)
	assert.True(t, forced.Appointment.Forced)
	assert.Equal(t, domain.OutcomeAcceptForced, forced.Decision.Outcome)

	stored, err := f.repo.GetByID(ctx, forced.Appointment.ID)
	require.NoError(t, err)
	assert.True(t, stored.Forced)
}

func TestAdmit_TeamFallsBackToSystemDefault(t *testing.T) {
	f := newFixture(t)
	f.setSystem(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.engine.Admit(ctx, AdmitRequest{Candidate: onSite(1, at(9, i*10), at(11, 0))})
		require.NoError(t, err, "booking %d", i)
	}

	_, err := f.engine.Admit(ctx, AdmitRequest{Candidate: onSite(1, at(10, 0), at(10, 30))})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 3, conflict.Report.Count)
	assert.Equal(t, 3, conflict.Report.MaxAllowed)

	// другая бригада не делит ёмкость
	_, err = f.engine.Admit(ctx, AdmitRequest{Candidate: onSite(2, at(10, 0), at(10, 30))})
	assert.NoError(t, err)
}

func TestAdmit_DeleteFreesCapacity(t *testing.T) {
	f := newFixture(t)
	f.setService(t, 1, 3)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		res, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
		require.NoError(t, err)
		ids = append(ids, res.Appointment.ID)
	}

	_, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	require.ErrorIs(t, err, ErrCapacityConflict)

	require.NoError(t, f.repo.Delete(ctx, ids[1]))

	res, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 15), at(14, 45))})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Decision.Count)
}

func TestAdmit_CancelledDoNotCount(t *testing.T) {
	f := newFixture(t)
	f.setService(t, 1, 1)
	ctx := context.Background()

	res, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	require.NoError(t, err)
	require.NoError(t, f.repo.Cancel(ctx, res.Appointment.ID))

	_, err = f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	assert.NoError(t, err)
}

func TestAdmit_UpdateExcludesOwnRow(t *testing.T) {
	f := newFixture(t)
	f.setService(t, 1, 1)
	ctx := context.Background()

	res, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	require.NoError(t, err)

	moved := *res.Appointment
	moved.StartAt = at(14, 30)
	moved.EndAt = at(15, 30)
	updated, err := f.engine.Admit(ctx, AdmitRequest{Candidate: &moved, ExcludeID: ptr.Ptr(moved.ID)})
	require.NoError(t, err)
	assert.Equal(t, res.Appointment.ID, updated.Appointment.ID)
	assert.Equal(t, 0, updated.Decision.Count)

	stored, err := f.repo.GetByID(ctx, moved.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartAt.Equal(at(14, 30)))
}

func TestAdmit_UpdateMovesAcrossScopes(t *testing.T) {
	f := newFixture(t)
	f.setService(t, 1, 1)
	_, err := f.capacity.SetScopeCapacity(context.Background(), domain.TeamScope(2), ptr.Ptr(1))
	require.NoError(t, err)
	ctx := context.Background()

	res, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	require.NoError(t, err)

	// walk-in service:1 -> on-site team:2 в то же время
	moved := *res.Appointment
	moved.BookingType = domain.BookingOnSite
	moved.TeamID = ptr.Ptr(int64(2))
	updated, err := f.engine.Admit(ctx, AdmitRequest{Candidate: &moved, ExcludeID: ptr.Ptr(moved.ID)})
	require.NoError(t, err)
	assert.Equal(t, domain.TeamScope(2), updated.Decision.Limit.Scope)
	assert.Equal(t, 0, updated.Decision.Count)

	// старый scope освободился
	freed, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	require.NoError(t, err)
	assert.Equal(t, 0, freed.Decision.Count)

	// в новом scope считается перенесённая запись
	_, err = f.engine.Admit(ctx, AdmitRequest{Candidate: onSite(2, at(14, 30), at(15, 30))})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.Report.Count)
	require.Len(t, conflict.Report.OverlappingAppointments, 1)
	assert.Equal(t, moved.ID, conflict.Report.OverlappingAppointments[0].ID)

	count, err := f.repo.CountOverlapping(ctx, domain.ServiceScope(1), at(14, 0), at(15, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAdmit_UpdateAfterConcurrentCancel(t *testing.T) {
	f := newFixture(t)
	f.setService(t, 1, 2)
	ctx := context.Background()

	res, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	require.NoError(t, err)

	// снимок прочитан до отмены
	stale := *res.Appointment
	require.NoError(t, f.repo.Cancel(ctx, stale.ID))

	stale.StartAt = at(15, 0)
	stale.EndAt = at(16, 0)
	_, err = f.engine.Admit(ctx, AdmitRequest{Candidate: &stale, ExcludeID: ptr.Ptr(stale.ID)})
	assert.ErrorIs(t, err, ErrCancelled)

	stored, err := f.repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.True(t, stored.StartAt.Equal(at(14, 0)))
}

func TestAdmit_UpdateIntoCrowdedSlotIsChecked(t *testing.T) {
	f := newFixture(t)
	f.setService(t, 1, 1)
	ctx := context.Background()

	_, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	require.NoError(t, err)
	other, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(16, 0), at(17, 0))})
	require.NoError(t, err)

	moved := *other.Appointment
	moved.StartAt = at(14, 30)
	moved.EndAt = at(15, 30)
	_, err = f.engine.Admit(ctx, AdmitRequest{Candidate: &moved, ExcludeID: ptr.Ptr(moved.ID)})
	assert.ErrorIs(t, err, ErrCapacityConflict)
}

func TestAdmit_ZeroLimit(t *testing.T) {
	f := newFixture(t)
	f.setService(t, 1, 0)
	ctx := context.Background()

	_, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, conflict.Report.Count)
	assert.Equal(t, 0, conflict.Report.MaxAllowed)

	res, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0)), Force: true})
	require.NoError(t, err)
	assert.NotNil(t, res.Warning)
	assert.True(t, res.Appointment.Forced)
}

func TestAdmit_NoLimitConfigured(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Admit(context.Background(), AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.NotErrorIs(t, err, ErrCapacityConflict)
}

func TestAdmit_Validation(t *testing.T) {
	f := newFixture(t)
	f.setSystem(t, 1)
	ctx := context.Background()

	_, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(15, 0), at(15, 0))})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(15, 0), at(14, 0))})
	assert.ErrorIs(t, err, ErrValidation)

	noTeam := onSite(1, at(14, 0), at(15, 0))
	noTeam.TeamID = nil
	_, err = f.engine.Admit(ctx, AdmitRequest{Candidate: noTeam})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdmit_ConcurrentRequestsNeverOvershoot(t *testing.T) {
	f := newFixture(t)
	f.setService(t, 1, 2)
	ctx := context.Background()

	const n = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		accepted  int
		conflicts int
		other     []error
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.engine.Admit(ctx, AdmitRequest{Candidate: walkIn(1, at(14, 0), at(15, 0))})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrCapacityConflict):
				conflicts++
			default:
				other = append(other, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 2, accepted)
	assert.Equal(t, 8, conflicts)

	count, err := f.repo.CountOverlapping(ctx, domain.ServiceScope(1), at(14, 0), at(15, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFindOverlapping_RejectsEmptyRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.FindOverlapping(context.Background(), domain.ServiceScope(1), at(14, 0), at(14, 0), nil)
	assert.ErrorIs(t, err, ErrValidation)
}
