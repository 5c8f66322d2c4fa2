package appointment

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/sqlbuilder"
)

// LockScope сериализует коммиты одного scope до конца текущей транзакции
//
// Postgres: pg_advisory_xact_lock по 64-битному ключу scope с lock_timeout,
// коммиты разных scope идут параллельно.
// SQLite: транзакция уже открыта как BEGIN IMMEDIATE (_txlock=immediate),
// то есть держит блокировку писателя на всю базу, ожидание ограничено busy_timeout.
func (r *Repository) LockScope(ctx context.Context, scope domain.CapacityScope) error {
	tx, ok := dbmetrics.GetTx(ctx)
	if !ok {
		return ErrLockOutsideTransaction
	}

	if r.dialect != sqlbuilder.Postgres {
		return nil
	}

	if r.lockTimeout > 0 {
		timeout := fmt.Sprintf("%dms", r.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, "SELECT set_config('lock_timeout', $1, true)", timeout); err != nil {
			return classify(err, ErrExecQuery, "LockScope - set lock_timeout")
		}
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", LockKey(scope)); err != nil {
		return classify(err, ErrExecQuery, "LockScope - advisory lock")
	}
	return nil
}

// LockKey ключ advisory lock: FNV-1a от "service:<id>" / "team:<id>"
func LockKey(scope domain.CapacityScope) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(scope.String()))
	return int64(h.Sum64())
}
