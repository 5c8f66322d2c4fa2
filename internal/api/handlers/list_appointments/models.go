package list_appointments

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// parseQuery разбирает ?from&to[&serviceId][&teamId][&includeCancelled]
func parseQuery(q url.Values) (*models.ListAppointmentsRequest, error) {
	from, err := parseTime(q, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseTime(q, "to")
	if err != nil {
		return nil, err
	}

	req := &models.ListAppointmentsRequest{From: from, To: to}

	if req.ServiceID, err = parseOptionalID(q, "serviceId"); err != nil {
		return nil, err
	}
	if req.TeamID, err = parseOptionalID(q, "teamId"); err != nil {
		return nil, err
	}
	if raw := q.Get("includeCancelled"); raw != "" {
		if req.IncludeCancelled, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("invalid includeCancelled %q", raw)
		}
	}
	return req, nil
}

func parseTime(q url.Values, name string) (time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := time.Parse(domain.TimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, expected RFC3339", name, raw)
	}
	return t.UTC(), nil
}

func parseOptionalID(q url.Values, name string) (*int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &id, nil
}
