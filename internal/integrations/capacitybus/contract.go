package capacitybus

// Invalidator локальный кэш лимитов
type Invalidator interface {
	Invalidate(key string)
	InvalidateAll()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
