package capacity

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	capacityRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/capacity"
)

type fakeRepo struct {
	mu          sync.Mutex
	scopes      map[domain.CapacityScope]*int
	system      *int
	scopeReads  int
	systemReads int
	err         error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{scopes: map[domain.CapacityScope]*int{}}
}

func (f *fakeRepo) GetScopeCapacity(_ context.Context, scope domain.CapacityScope) (*domain.ScopeCapacity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopeReads++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ScopeCapacity{Scope: scope, MaxOverlap: f.scopes[scope]}, nil
}

func (f *fakeRepo) SetScopeCapacity(_ context.Context, scope domain.CapacityScope, v *int) (*domain.ScopeCapacity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopes[scope] = v
	return &domain.ScopeCapacity{Scope: scope, MaxOverlap: v}, nil
}

func (f *fakeRepo) GetSystemDefault(context.Context) (*domain.SystemCapacity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systemReads++
	if f.system == nil {
		return nil, capacityRepo.ErrSettingNotFound
	}
	return &domain.SystemCapacity{MaxOverlappingAppointments: *f.system}, nil
}

func (f *fakeRepo) SetSystemDefault(_ context.Context, v int) (*domain.SystemCapacity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.system = &v
	return &domain.SystemCapacity{MaxOverlappingAppointments: v}, nil
}

type fakePublisher struct {
	keys []string
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, key string) error {
	p.keys = append(p.keys, key)
	return p.err
}

type cacheCounter struct{ hits, misses int }

func (c *cacheCounter) ObserveCapacityCache(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
