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


package aggregate

import "errors"

var (
	// ErrSearcherRequired is returned when an aggregator is constructed
	// without a searcher.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrAggregatorRequired is returned when a refresher is constructed
	// without an aggregator.
	ErrAggregatorRequired = errors.New("aggregator required")

	// ErrEmptyCatalog indicates a catalog with no categories.
	ErrEmptyCatalog = errors.New("catalog has no categories")

	// ErrRefresherRunning is returned when a running refresher is started
	// again.
	ErrRefresherRunning = errors.New("refresher already running")
)
