package create_appointment

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/scheduling"
)

// Scheduler интерфейс движка допуска записей
type Scheduler interface {
	Admit(ctx context.Context, req scheduling.AdmitRequest) (*scheduling.AdmitResult, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
