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


package core

import "errors"

// Domain errors
var (
	// ErrInvalidCriteria indicates a SearchCriteria failed validation.
	ErrInvalidCriteria = errors.New("invalid search criteria")

	// ErrNegativeRadius indicates a location filter with a negative radius.
	ErrNegativeRadius = errors.New("radius cannot be negative")

	// ErrInvertedCapacity indicates MinCapacity exceeds MaxCapacity.
	ErrInvertedCapacity = errors.New("minimum capacity exceeds maximum capacity")
)
