package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	capacitySvc "github.com/m04kA/SMC-AppointmentService/internal/service/capacity"
	"github.com/m04kA/SMC-AppointmentService/pkg/retry"
)

// Config параметры движка допуска
type Config struct {
	Retry             retry.Policy
	ConflictListLimit int
}

// AdmitRequest кандидат на запись
// ExcludeID задаётся при обновлении: собственная строка записи не считается
type AdmitRequest struct {
	Candidate *domain.Appointment
	Force     bool
	ExcludeID *int64
}

// AdmitResult записанная запись и необязательное предупреждение
type AdmitResult struct {
	Appointment *domain.Appointment
	Decision    domain.Decision
	Warning     *domain.OverlapWarning
}

// Engine конвеер допуска: лимит -> пересечения -> решение -> коммит под блокировкой
type Engine struct {
	repo      AppointmentRepository
	resolver  LimitResolver
	txManager TransactionManager
	recorder  Recorder
	logger    Logger
	policy    retry.Policy
	listLimit int
}

// NewEngine создает движок. recorder может быть nil
func NewEngine(
	repo AppointmentRepository,
	resolver LimitResolver,
	txManager TransactionManager,
	recorder Recorder,
	logger Logger,
	cfg Config,
) *Engine {
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}
	if cfg.ConflictListLimit <= 0 {
		cfg.ConflictListLimit = domain.DefaultConflictListLimit
	}
	return &Engine{
		repo:      repo,
		resolver:  resolver,
		txManager: txManager,
		recorder:  recorder,
		logger:    logger,
		policy:    cfg.Retry,
		listLimit: cfg.ConflictListLimit,
	}
}

// FindOverlapping активные записи scope, пересекающие [start, end)
func (e *Engine) FindOverlapping(ctx context.Context, scope domain.CapacityScope, start, end time.Time, excludeID *int64) ([]*domain.Appointment, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end must be after start", ErrValidation)
	}
	existing, err := e.repo.FindOverlapping(ctx, scope, start, end, excludeID)
	if err != nil {
		return nil, fmt.Errorf("%w: FindOverlapping - repository error: %v", ErrInternal, err)
	}
	return existing, nil
}

// Admit проводит кандидата через решение и коммит
// Отказ (ConflictError) окончателен. ErrStaleConflict и конкуренция за
// блокировку повторяются до policy.MaxAttempts, затем ErrTransientCommit
func (e *Engine) Admit(ctx context.Context, req AdmitRequest) (*AdmitResult, error) {
	cand := req.Candidate
	if cand == nil {
		return nil, fmt.Errorf("%w: candidate is required", ErrValidation)
	}
	if !cand.EndAt.After(cand.StartAt) {
		return nil, fmt.Errorf("%w: end must be after start", ErrValidation)
	}
	scope, err := cand.Scope()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var result *AdmitResult
	err = retry.Do(ctx, e.policy, isRetryable, func(attempt int) error {
		res, err := e.attempt(ctx, scope, req)
		if err != nil {
			return err
		}
		result = res
		return nil
	}, func(attempt int, err error, delay time.Duration) {
		e.observeRetry(retryReason(err))
		e.logger.Warn("Admit: %s attempt %d aborted, retrying in %s: %v", scope, attempt, delay, err)
	})

	if err != nil {
		var conflict *ConflictError
		switch {
		case errors.As(err, &conflict):
			e.observeDecision(scope, domain.OutcomeReject)
			e.logger.Warn("Admit: %s rejected, count=%d max=%d", scope, conflict.Report.Count, conflict.Report.MaxAllowed)
			return nil, err
		case isRetryable(err):
			e.observeTransient()
			e.logger.Error("Admit: %s gave up after %d attempts: %v", scope, e.policy.MaxAttempts, err)
			if errors.Is(err, ErrTransientCommit) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrTransientCommit, err)
		default:
			return nil, err
		}
	}

	e.observeDecision(scope, result.Decision.Outcome)
	if result.Warning != nil {
		e.logger.Warn("Admit: %s appointment id=%d force-booked over capacity, count=%d max=%d",
			scope, result.Appointment.ID, result.Decision.Count, result.Decision.Limit.Max)
	}
	return result, nil
}

func (e *Engine) attempt(ctx context.Context, scope domain.CapacityScope, req AdmitRequest) (*AdmitResult, error) {
	limit, err := e.resolver.ResolveLimit(ctx, scope)
	if err != nil {
		if errors.Is(err, capacitySvc.ErrNoCapacityLimit) {
			return nil, fmt.Errorf("%w: %s", ErrConfiguration, scope)
		}
		return nil, fmt.Errorf("%w: resolve limit: %v", ErrInternal, err)
	}

	existing, err := e.FindOverlapping(ctx, scope, req.Candidate.StartAt, req.Candidate.EndAt, req.ExcludeID)
	if err != nil {
		return nil, err
	}

	d := Decide(limit, existing, req.Force, e.listLimit)
	if !d.Admitted() {
		return nil, &ConflictError{Report: *d.Report}
	}

	res, err := e.commit(ctx, scope, req.Candidate, req.ExcludeID, d, req.Force)
	if err != nil {
		return nil, err
	}

	return &AdmitResult{
		Appointment: res.appointment,
		Decision:    res.decision,
		Warning:     res.decision.Warning,
	}, nil
}

func isRetryable(err error) bool {
	return errors.Is(err, ErrStaleConflict) || errors.Is(err, ErrTransientCommit)
}

func (e *Engine) observeDecision(scope domain.CapacityScope, outcome domain.DecisionOutcome) {
	if e.recorder != nil {
		e.recorder.ObserveDecision(string(scope.Kind), string(outcome))
	}
}

func (e *Engine) observeRetry(reason string) {
	if e.recorder != nil {
		e.recorder.ObserveRetry(reason)
	}
}

func (e *Engine) observeTransient() {
	if e.recorder != nil {
		e.recorder.ObserveTransientFailure()
	}
}
