package capacity

import "errors"

var (
	// ErrSettingNotFound возвращается, когда системный лимит не задан
	ErrSettingNotFound = errors.New("capacity.repository: setting not found")

	// ErrUnknownScope возвращается для неизвестного вида scope
	ErrUnknownScope = errors.New("capacity.repository: unknown scope kind")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("capacity.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("capacity.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("capacity.repository: failed to scan row")
)
