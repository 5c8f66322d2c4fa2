package scheduling

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrValidation некорректный кандидат (диапазон, scope)
	ErrValidation = errors.New("scheduling: validation error")

	// ErrConfiguration для scope не определяется лимит
	ErrConfiguration = errors.New("scheduling: capacity limit is not configured")

	// ErrCapacityConflict лимит scope исчерпан, см. ConflictError
	ErrCapacityConflict = errors.New("scheduling: capacity conflict")

	// ErrStaleConflict пересечения изменились между решением и коммитом
	ErrStaleConflict = errors.New("scheduling: stale conflict decision")

	// ErrTransientCommit коммит не удался из-за конкуренции, запрос можно повторить
	ErrTransientCommit = errors.New("scheduling: transient commit failure")

	// ErrNotFound обновляемая запись не найдена
	ErrNotFound = errors.New("scheduling: appointment not found")

	// ErrCancelled обновляемую запись отменили до коммита
	ErrCancelled = errors.New("scheduling: appointment is cancelled")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("scheduling: internal error")
)

// ConflictError отказ с отчётом для UI разрешения конфликта
type ConflictError struct {
	Report domain.ConflictReport
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %d overlapping appointment(s), %d allowed",
		ErrCapacityConflict, e.Report.Count, e.Report.MaxAllowed)
}

func (e *ConflictError) Unwrap() error {
	return ErrCapacityConflict
}
