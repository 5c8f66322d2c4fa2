package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy ограниченная политика повторов с экспоненциальной задержкой
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Notify вызывается перед каждым повтором
type Notify func(attempt int, err error, delay time.Duration)

// Do выполняет fn до MaxAttempts раз, пока isRetryable(err) == true
// Возвращает последнюю ошибку fn, либо ошибку контекста
func Do(ctx context.Context, p Policy, isRetryable func(error) bool, fn func(attempt int) error, notify Notify) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.MaxInterval = p.MaxDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.5
	exp.MaxElapsedTime = 0
	exp.Reset()

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, d time.Duration) { notify(attempt, err, d) }
	}

	return backoff.RetryNotify(op, b, onRetry)
}
