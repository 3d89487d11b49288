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


// Package geo provides great-circle distance math, service-radius membership
// tests, and coordinate resolution over the heterogeneous location shapes
// returned by the upstream search service.
//
// All functions are pure. Invalid inputs are not validated; garbage
// coordinates produce garbage distances, matching the behavior of every
// caller upstream of this package.
package geo
