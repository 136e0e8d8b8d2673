// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

package conc

import "golang.org/x/sync/singleflight"

// Singleflight collapses concurrent calls for the same string key into one
// execution of the supplied function; every caller receives the shared
// result. It is a typed facade over golang.org/x/sync/singleflight.Group,
// whose any-valued results it asserts back to T. The zero value is ready to
// use.
type Singleflight[T any] struct {
	group singleflight.Group
}

// SingleflightResult carries the outcome of a DoChan call. Shared reports
// whether the value was also handed to other callers of the same key.
type SingleflightResult[T any] struct {
	Val    T
	Err    error
	Shared bool
}

// Do executes fn, making sure only one execution for key is in flight at a
// time. Duplicate callers block and receive the value and error of the one
// execution; shared reports whether that happened.
func (sf *Singleflight[T]) Do(key string, fn func() (T, error)) (val T, err error, shared bool) {
	raw, err, shared := sf.group.Do(key, func() (any, error) {
		return fn()
	})
	if raw != nil {
		val = raw.(T)
	}
	return val, err, shared
}

// DoChan is like Do but returns immediately, delivering the result on the
// returned channel once fn completes.
func (sf *Singleflight[T]) DoChan(key string, fn func() (T, error)) <-chan SingleflightResult[T] {
	ch := make(chan SingleflightResult[T], 1)
	go func() {
		val, err, shared := sf.Do(key, fn)
		ch <- SingleflightResult[T]{
			Val:    val,
			Err:    err,
			Shared: shared,
		}
	}()
	return ch
}

// Forget drops the in-flight execution for key; the next Do for it runs fn
// again instead of waiting on the earlier call.
func (sf *Singleflight[T]) Forget(key string) {
	sf.group.Forget(key)
}
