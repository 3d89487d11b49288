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


// Package query translates search criteria into the upstream service's
// request body: OData-style boolean filter predicates, a geo-distance
// predicate, Lucene-style prefix/fuzzy keyword expressions, and an ordering
// hint.
//
// Building is pure string assembly with no error conditions. Malformed
// criteria simply produce a filter that matches nothing upstream.
package query
