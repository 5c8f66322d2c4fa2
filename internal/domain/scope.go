package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ScopeKind тег scope ёмкости
type ScopeKind string

const (
	ScopeService ScopeKind = "service"
	ScopeTeam    ScopeKind = "team"
)

var (
	// ErrUnknownBookingType неизвестная категория записи
	ErrUnknownBookingType = errors.New("domain: unknown booking type")
	// ErrMissingScopeKey не указан ключ scope для категории
	ErrMissingScopeKey = errors.New("domain: missing scope key")
)

// CapacityScope группа, конкурирующая за ёмкость: Service(id) | Team(id)
type CapacityScope struct {
	Kind ScopeKind
	ID   int64
}

// ServiceScope scope услуги (walk-in)
func ServiceScope(id int64) CapacityScope {
	return CapacityScope{Kind: ScopeService, ID: id}
}

// TeamScope scope выездной бригады (on-site)
func TeamScope(id int64) CapacityScope {
	return CapacityScope{Kind: ScopeTeam, ID: id}
}

// String возвращает "service:<id>" или "team:<id>"
// Используется как ключ кэша и ключ advisory lock
func (s CapacityScope) String() string {
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}

// ParseScope разбирает строку вида "team:7"
func ParseScope(s string) (CapacityScope, error) {
	kind, rawID, ok := strings.Cut(s, ":")
	if !ok {
		return CapacityScope{}, fmt.Errorf("domain: invalid scope %q", s)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return CapacityScope{}, fmt.Errorf("domain: invalid scope id in %q", s)
	}
	switch ScopeKind(kind) {
	case ScopeService, ScopeTeam:
		return CapacityScope{Kind: ScopeKind(kind), ID: id}, nil
	}
	return CapacityScope{}, fmt.Errorf("domain: invalid scope kind in %q", s)
}

// ScopeFor определяет scope по категории записи
// walk-in -> Service(serviceID), on-site -> Team(teamID)
func ScopeFor(bookingType BookingType, serviceID int64, teamID *int64) (CapacityScope, error) {
	switch bookingType {
	case BookingWalkIn:
		if serviceID <= 0 {
			return CapacityScope{}, fmt.Errorf("%w: serviceId is required for walk-in", ErrMissingScopeKey)
		}
		return ServiceScope(serviceID), nil
	case BookingOnSite:
		if teamID == nil || *teamID <= 0 {
			return CapacityScope{}, fmt.Errorf("%w: teamId is required for on-site", ErrMissingScopeKey)
		}
		return TeamScope(*teamID), nil
	default:
		return CapacityScope{}, fmt.Errorf("%w: %q", ErrUnknownBookingType, bookingType)
	}
}
