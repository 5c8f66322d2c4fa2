package domain

// LimitSource откуда взят лимит
type LimitSource string

const (
	LimitFromScope  LimitSource = "scope"
	LimitFromSystem LimitSource = "system"
)

// CapacityLimit максимальное число пересекающихся активных записей в scope
// Max == 0 означает, что запись в scope отключена
type CapacityLimit struct {
	Scope  CapacityScope
	Max    int
	Source LimitSource
}
