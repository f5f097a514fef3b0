/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

// Repository marks repository interfaces. An interface that embeds it,
// directly or through other interfaces, gets a synthesized proxy.
type Repository interface{}

// MarkerID is the catalog ID of Repository when interfaces are loaded from
// Go packages.
const MarkerID = "github.com/tomoncle/repoproxy/repository.Repository"
