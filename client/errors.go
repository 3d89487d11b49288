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
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConfigRequired is returned when the client is constructed without
	// a configuration.
	ErrConfigRequired = errors.New("config required")

	// ErrMissingEndpoint indicates the upstream endpoint is not configured.
	ErrMissingEndpoint = errors.New("search endpoint not configured")

	// ErrMissingAPIKey indicates the upstream credential is not configured.
	// Detected before any network call.
	ErrMissingAPIKey = errors.New("search api key not configured")

	// ErrCacheRequired is returned when caching is enabled without a store.
	ErrCacheRequired = errors.New("cache store required when caching is enabled")

	// ErrBucketRequired is returned when the client is constructed without
	// a rate limiter.
	ErrBucketRequired = errors.New("rate limiter required")
)

// StatusError is a non-2xx upstream response. Only 429 and 503 are
// transient; everything else is terminal and never retried.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upstream search: %s: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("upstream search: %s", e.Status)
}

// Transient reports whether the status merits a retry.
func (e *StatusError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusServiceUnavailable
}
