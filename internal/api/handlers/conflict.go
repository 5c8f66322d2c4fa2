package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// RetryAfter подсказка клиенту при 503
const RetryAfter = time.Second

// ConflictDetails детали конфликта для UI разрешения
type ConflictDetails struct {
	Count                   int                     `json:"count"`
	MaxAllowed              int                     `json:"maxAllowed"`
	OverlappingAppointments []OverlappingAppointment `json:"overlappingAppointments"`
}

// OverlappingAppointment краткая информация о пересекающейся записи
type OverlappingAppointment struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ConflictResponse тело ответа 409
type ConflictResponse struct {
	IsConflict bool            `json:"isConflict"`
	Message    string          `json:"message"`
	Details    ConflictDetails `json:"details"`
	CanForce   bool            `json:"canForce"`
}

// RetryableResponse тело ответа 503
type RetryableResponse struct {
	Retryable bool   `json:"retryable"`
	Message   string `json:"message"`
}

// RespondConflict отправляет отчёт о превышении лимита
func RespondConflict(w http.ResponseWriter, message string, report domain.ConflictReport) {
	overlapping := make([]OverlappingAppointment, 0, len(report.OverlappingAppointments))
	for _, o := range report.OverlappingAppointments {
		overlapping = append(overlapping, OverlappingAppointment{
			ID:    o.ID,
			Title: o.Title,
			Start: o.StartAt,
			End:   o.EndAt,
		})
	}

	RespondJSON(w, http.StatusConflict, ConflictResponse{
		IsConflict: true,
		Message:    message,
		Details: ConflictDetails{
			Count:                   report.Count,
			MaxAllowed:              report.MaxAllowed,
			OverlappingAppointments: overlapping,
		},
		CanForce: report.CanForce,
	})
}

// RespondRetryable отправляет 503 с Retry-After
func RespondRetryable(w http.ResponseWriter, message string) {
	w.Header().Set("Retry-After", strconv.Itoa(int(RetryAfter.Seconds())))
	RespondJSON(w, http.StatusServiceUnavailable, RetryableResponse{
		Retryable: true,
		Message:   message,
	})
}
