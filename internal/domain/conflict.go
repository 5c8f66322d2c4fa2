package domain

import "time"

// OverlapSummary конкурирующая запись, достаточная для отображения
type OverlapSummary struct {
	ID      int64
	Title   string
	StartAt time.Time
	EndAt   time.Time
}

// ConflictReport отчёт об отказе, не сохраняется
type ConflictReport struct {
	Count                   int
	MaxAllowed              int
	OverlappingAppointments []OverlapSummary
	CanForce                bool
}

// OverlapWarning предупреждение о допуске сверх лимита
type OverlapWarning struct {
	Message string
	Count   int
	Max     int
}

// DecisionOutcome результат решения
type DecisionOutcome string

const (
	OutcomeAccept       DecisionOutcome = "accepted"
	OutcomeAcceptForced DecisionOutcome = "forced"
	OutcomeReject       DecisionOutcome = "rejected"
)

// Decision решение о допуске кандидата
type Decision struct {
	Outcome DecisionOutcome
	// Count число существующих записей, на котором принято решение
	Count   int
	Limit   CapacityLimit
	Report  *ConflictReport // только для Reject
	Warning *OverlapWarning // только для AcceptForced
}

// Admitted true для Accept и AcceptForced
func (d Decision) Admitted() bool {
	return d.Outcome != OutcomeReject
}

// Forced true, если запись будет помечена forced
func (d Decision) Forced() bool {
	return d.Outcome == OutcomeAcceptForced
}
