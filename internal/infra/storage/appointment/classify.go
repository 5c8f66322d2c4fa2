package appointment

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Коды ошибок Postgres, после которых попытку можно повторить
const (
	pgSerializationFailure pq.ErrorCode = "40001"
	pgDeadlockDetected     pq.ErrorCode = "40P01"
	pgLockNotAvailable     pq.ErrorCode = "55P03"
)

// IsTransient true, если ошибка означает конкуренцию за блокировку, а не дефект запроса
func IsTransient(err error) bool {
	return errors.Is(err, ErrLockTimeout) || errors.Is(err, ErrSerialization)
}

// classify оборачивает ошибку драйвера в ErrLockTimeout/ErrSerialization,
// если это конкуренция, иначе в fallback
func classify(err error, fallback error, op string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgLockNotAvailable:
			return fmt.Errorf("%w: %s: %w", ErrLockTimeout, op, err)
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %s: %w", ErrSerialization, op, err)
		}
	}

	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3lib.SQLITE_BUSY, sqlite3lib.SQLITE_LOCKED:
			return fmt.Errorf("%w: %s: %w", ErrSerialization, op, err)
		}
	}

	return fmt.Errorf("%w: %s: %v", fallback, op, err)
}

// Classify размечает ошибки транзакции (begin/commit) как ErrLockTimeout/ErrSerialization
// Прочие ошибки возвращаются без изменений
func Classify(err error) error {
	if err == nil || IsTransient(err) {
		return err
	}
	classified := classify(err, err, "transaction")
	if IsTransient(classified) {
		return classified
	}
	return err
}
