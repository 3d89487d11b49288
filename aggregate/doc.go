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


// Package aggregate assembles cross-category "browse by industry" views.
//
// A catalog maps human-facing category names to free-form equipment labels,
// which a synonym table resolves to concrete equipment-type filter values.
// Aggregation prefers one combined upstream query per category and falls
// back to per-type queries on failure, fanning out over bounded worker
// pools so upstream load is capped regardless of catalog size. A failed
// category degrades to an empty item; it never aborts the run.
package aggregate
