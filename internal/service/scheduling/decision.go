package scheduling

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Decide решает судьбу кандидата по снимку пересечений. Чистая функция
//
//	force            -> допуск; forced и предупреждение, если count >= limit
//	count < limit    -> допуск
//	иначе            -> отказ с ConflictReport (первые listLimit пересечений)
//
// limit == 0 отклоняет всё, кроме force
func Decide(limit domain.CapacityLimit, existing []*domain.Appointment, force bool, listLimit int) domain.Decision {
	return decideCount(limit, len(existing), existing, force, listLimit)
}

func decideCount(limit domain.CapacityLimit, count int, existing []*domain.Appointment, force bool, listLimit int) domain.Decision {
	d := domain.Decision{Count: count, Limit: limit}

	switch {
	case force:
		if count >= limit.Max {
			d.Outcome = domain.OutcomeAcceptForced
			d.Warning = &domain.OverlapWarning{
				Message: overlapMessage(count, limit.Max),
				Count:   count,
				Max:     limit.Max,
			}
			return d
		}
		d.Outcome = domain.OutcomeAccept
	case count < limit.Max:
		d.Outcome = domain.OutcomeAccept
	default:
		d.Outcome = domain.OutcomeReject
		d.Report = buildReport(limit, count, existing, listLimit)
	}
	return d
}

func buildReport(limit domain.CapacityLimit, count int, existing []*domain.Appointment, listLimit int) *domain.ConflictReport {
	if listLimit <= 0 {
		listLimit = domain.DefaultConflictListLimit
	}
	n := len(existing)
	if n > listLimit {
		n = listLimit
	}

	overlapping := make([]domain.OverlapSummary, 0, n)
	for _, a := range existing[:n] {
		overlapping = append(overlapping, domain.OverlapSummary{
			ID:      a.ID,
			Title:   a.Title,
			StartAt: a.StartAt,
			EndAt:   a.EndAt,
		})
	}

	return &domain.ConflictReport{
		Count:                   count,
		MaxAllowed:              limit.Max,
		OverlappingAppointments: overlapping,
		CanForce:                true,
	}
}

func overlapMessage(count, maxAllowed int) string {
	if maxAllowed == 0 {
		return fmt.Sprintf("Booking is disabled for this scope; appointment was force-booked over %d existing appointment(s)", count)
	}
	return fmt.Sprintf("Appointment overlaps %d existing appointment(s), capacity is %d; it was force-booked", count, maxAllowed)
}
