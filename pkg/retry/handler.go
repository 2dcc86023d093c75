package retry

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rohmanhakim/shell-cache/pkg/failure"
)

// Retry executes the provided function with retry logic.
// It will retry the function up to MaxAttempts times, applying exponential backoff
// with jitter between attempts. Only retryable errors will trigger a retry.
//
// Type parameter T represents the return type of the function being retried.
func Retry[T any](retryParam RetryParam, fn func() (T, failure.ClassifiedError)) (T, failure.ClassifiedError) {
	var lastErr failure.ClassifiedError
	var zero T

	if retryParam.MaxAttempts < 1 {
		return zero, &RetryError{
			Message:   "max attempt cannot be 0",
			Cause:     ErrZeroAttempt,
			Retryable: true,
		}
	}

	// Initialize random number generator with the provided seed
	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		result, err := fn()

		// Success case: no error
		if err == nil {
			return result, nil
		}

		lastErr = err

		// If not retryable, return immediately
		if !isErrorRetryable(err) {
			return zero, err
		}

		// If this was the last attempt, break and return exhausted error
		if attempt == retryParam.MaxAttempts {
			break
		}

		time.Sleep(backoffDelay(attempt, retryParam.Jitter, rng, retryParam.BackoffParam))
	}

	// Return the "zero value" of T and the final error when reached max attempts
	return zero, &RetryError{
		Message:   fmt.Sprintf("exhausted %d attempts. Last error: %v", retryParam.MaxAttempts, lastErr),
		Cause:     ErrExhaustedAttempts,
		Retryable: true, // still recoverable at signal level; a later flush may succeed
	}
}

// backoffDelay computes the wait before the next attempt: an exponential curve
// capped at MaxDuration, plus a seed-controlled jitter.
func backoffDelay(attempt int, jitter time.Duration, rng *rand.Rand, param BackoffParam) time.Duration {
	exp := float64(param.InitialDuration()) * math.Pow(param.Multiplier(), float64(attempt-1))
	delay := time.Duration(exp)
	if param.MaxDuration() > 0 && delay > param.MaxDuration() {
		delay = param.MaxDuration()
	}
	if jitter > 0 {
		delay += time.Duration(rng.Int63n(int64(jitter)))
	}
	return delay
}

// isErrorRetryable checks if an error should be retried.
// It uses type assertion to check for the Retryable property.
func isErrorRetryable(err failure.ClassifiedError) bool {
	type hasRetryable interface {
		IsRetryable() bool
	}

	if r, ok := err.(hasRetryable); ok {
		return r.IsRetryable()
	}

	// Default to retryable if we can't determine
	return true
}
