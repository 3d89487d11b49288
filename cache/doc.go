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


// Package cache provides the in-process TTL result cache keyed by serialized
// search criteria.
//
// The store is backed by BadgerDB, in-memory by default; pointing it at a
// directory keeps the warm cache across restarts. Staleness is decided at
// read time: entries past their TTL are ignored, never proactively purged,
// so acceptable staleness is bounded by the TTL alone.
package cache
