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


// Package client implements the search client against the upstream
// geo-indexed equipment search service.
//
// A search runs: cache lookup, rate-limited HTTP call with bounded retry on
// transient statuses, response normalization (purchase-only re-flagging),
// cache store. Expected failure modes never surface as panics; every
// failure returns an empty, non-nil result alongside the error so callers
// can render "no results" without special cases.
package client
