package update_appointment

import (
	"context"
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
	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/retry"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// cancellingRepo отменяет запись сразу после чтения снимка,
// как если бы отмена закоммитилась между GetByID и коммитом
type cancellingRepo struct {
	*appointmentRepo.Repository
}

func (r cancellingRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	a, err := r.Repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Repository.Cancel(ctx, id); err != nil {
		return nil, err
	}
	return a, nil
}

func TestExecute_CancelBetweenReadAndCommit(t *testing.T) {
	ctx := context.Background()
	db := storagetest.OpenSQLite(t)
	repo := appointmentRepo.NewRepository(db, sqlbuilder.SQLite, time.Second)
	capRepo := capacityRepo.NewRepository(db, sqlbuilder.SQLite)
	_, err := capRepo.SetScopeCapacity(ctx, domain.ServiceScope(1), ptr.Ptr(2))
	require.NoError(t, err)

	engine := scheduling.NewEngine(
		repo,
		capacitySvc.NewResolver(capRepo, 0, nil, nopLogger{}),
		txmanager.NewTransactionManager(db, storage.Isolation(sqlbuilder.SQLite)),
		nil,
		nopLogger{},
		scheduling.Config{
			Retry:             retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond},
			ConflictListLimit: 20,
		},
	)

	a, err := repo.Create(ctx, &domain.Appointment{
		Title:       "Мойка",
		StartAt:     base,
		EndAt:       base.Add(time.Hour),
		Status:      domain.StatusConfirmed,
		BookingType: domain.BookingWalkIn,
		ServiceID:   1,
	})
	require.NoError(t, err)

	uc := NewUseCase(cancellingRepo{repo}, engine, nopLogger{})
	req := moveRequest()
	req.ID = a.ID
	req.Start = base.Add(time.Hour)
	req.End = base.Add(2 * time.Hour)

	_, err = uc.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrCannotUpdate)

	stored, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.True(t, stored.StartAt.Equal(base))
}
