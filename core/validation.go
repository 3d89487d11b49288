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

import "fmt"

// ValidateCriteria checks a SearchCriteria for values that can never match.
//
// The query builder itself never rejects criteria (a malformed filter simply
// returns zero matches upstream), so validation is only applied at input
// boundaries such as the CLI.
func ValidateCriteria(c SearchCriteria) error {
	if c.Location != nil && c.Location.RadiusMiles < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCriteria, ErrNegativeRadius)
	}
	if c.MinCapacity != nil && c.MaxCapacity != nil && *c.MinCapacity > *c.MaxCapacity {
		return fmt.Errorf("%w: %w", ErrInvalidCriteria, ErrInvertedCapacity)
	}
	return nil
}
