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


// Package ratelimit provides the shared token-bucket gate applied to every
// outbound call to the upstream search service.
//
// One Bucket is constructed per process and passed by reference to every
// caller. Refill is computed lazily from elapsed wall-clock time at
// acquisition, not by a background timer, so an idle bucket costs nothing.
package ratelimit
