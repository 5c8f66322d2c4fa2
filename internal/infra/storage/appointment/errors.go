package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrAppointmentCancelled возвращается при попытке изменить отменённую запись
	ErrAppointmentCancelled = errors.New("appointment.repository: appointment is cancelled")

	// ErrLockTimeout возвращается, когда не удалось дождаться блокировки scope
	ErrLockTimeout = errors.New("appointment.repository: scope lock timeout")

	// ErrSerialization возвращается при serialization failure, deadlock или SQLITE_BUSY
	ErrSerialization = errors.New("appointment.repository: serialization failure")

	// ErrLockOutsideTransaction возвращается при попытке блокировки вне транзакции
	ErrLockOutsideTransaction = errors.New("appointment.repository: scope lock requires a transaction")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
