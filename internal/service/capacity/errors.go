package capacity

import "errors"

var (
	// ErrNoCapacityLimit возвращается, когда для scope нет ни своего, ни системного лимита
	ErrNoCapacityLimit = errors.New("capacity: no capacity limit configured")

	// ErrInvalidInput возвращается при некорректном значении лимита
	ErrInvalidInput = errors.New("capacity: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("capacity: internal error")
)
