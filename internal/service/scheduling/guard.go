package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
)

// commitResult итог коммита: записанная запись и решение, с которым она записана
type commitResult struct {
	appointment *domain.Appointment
	decision    domain.Decision
}

// commit в одной транзакции: блокировка scope, пересчёт пересечений, запись
//
// Для обычного допуска пересчёт обязан совпасть с числом, на котором
// принималось решение, иначе ErrStaleConflict и решение принимается заново.
// Forced допускается всегда, флаг forced и предупреждение пересчитываются
// по свежему числу.
func (e *Engine) commit(ctx context.Context, scope domain.CapacityScope, cand *domain.Appointment, excludeID *int64, d domain.Decision, force bool) (*commitResult, error) {
	var result *commitResult

	err := e.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := e.repo.LockScope(txCtx, scope); err != nil {
			return err
		}

		count, err := e.repo.CountOverlapping(txCtx, scope, cand.StartAt, cand.EndAt, excludeID)
		if err != nil {
			return err
		}

		final := d
		if force {
			final = decideCount(d.Limit, count, nil, true, e.listLimit)
		} else if count != d.Count {
			return fmt.Errorf("%w: %s decided on %d overlapping, found %d at commit", ErrStaleConflict, scope, d.Count, count)
		}

		cand.Forced = final.Forced()

		var saved *domain.Appointment
		if excludeID != nil {
			saved, err = e.repo.Update(txCtx, cand)
		} else {
			saved, err = e.repo.Create(txCtx, cand)
		}
		if err != nil {
			return err
		}

		result = &commitResult{appointment: saved, decision: final}
		return nil
	})
	if err != nil {
		// отменённый запрос: транзакция уже откатилась, повторять нечего
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, classifyCommitError(err)
	}
	return result, nil
}

// classifyCommitError приводит ошибку транзакции к ErrStaleConflict/ErrTransientCommit/ErrNotFound/ErrCancelled/ErrInternal
func classifyCommitError(err error) error {
	switch {
	case errors.Is(err, ErrStaleConflict):
		return err
	case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
		return ErrNotFound
	case errors.Is(err, appointmentRepo.ErrAppointmentCancelled):
		return ErrCancelled
	}

	if classified := appointmentRepo.Classify(err); appointmentRepo.IsTransient(classified) {
		return fmt.Errorf("%w: %w", ErrTransientCommit, classified)
	}
	return fmt.Errorf("%w: commit: %v", ErrInternal, err)
}

// retryReason метка повтора для метрик
func retryReason(err error) string {
	switch {
	case errors.Is(err, ErrStaleConflict):
		return "stale_conflict"
	case errors.Is(err, appointmentRepo.ErrLockTimeout):
		return "lock_timeout"
	default:
		return "serialization"
	}
}
