// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package client

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

// maxJitter caps the random component added to each backoff delay.
const maxJitter = 100 * time.Millisecond

// retryTransient runs operation, retrying up to maxRetries additional times
// when it fails with a transient upstream status. Terminal statuses and
// non-status errors return immediately.
//
// Backoff before retry n (0-based) is baseDelay * 2^n plus random jitter up
// to 100ms. The sleep and jitter functions are injectable for deterministic
// tests.
func retryTransient(
	ctx context.Context,
	operation func() error,
	maxRetries int,
	baseDelay time.Duration,
	sleep func(context.Context, time.Duration) error,
	jitter func() time.Duration,
) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 0 {
				slog.Debug("upstream call succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		if !isTransient(lastErr) || attempt == maxRetries {
			return lastErr
		}

		delay := baseDelay<<attempt + jitter()
		slog.Debug("transient upstream failure, backing off",
			"attempt", attempt, "maxRetries", maxRetries, "delay", delay, "error", lastErr)

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func isTransient(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Transient()
}

func randomJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(maxJitter)))
}
