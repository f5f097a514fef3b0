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

package dispatch

import (
	"context"
)

// Query invokes method and collects its rows as T.
func Query[T any](ctx context.Context, p *Proxy, method string, args Args) ([]T, error) {
	var out []T
	if err := p.Invoke(ctx, method, args, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryOne invokes method and scans a single row or value into T.
func QueryOne[T any](ctx context.Context, p *Proxy, method string, args Args) (T, error) {
	var out T
	err := p.Invoke(ctx, method, args, &out)
	return out, err
}

// Exec invokes method for its side effects.
func Exec(ctx context.Context, p *Proxy, method string, args Args) error {
	return p.Invoke(ctx, method, args, nil)
}
