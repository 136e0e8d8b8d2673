// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

package conc

// Future is a result handle for an asynchronous task.
// The result is readable after the inner channel is closed.
type Future[T any] struct {
	ch    chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		ch: make(chan struct{}),
	}
}

// Await blocks until the task completes and returns its result and error.
func (future *Future[T]) Await() (T, error) {
	<-future.ch
	return future.value, future.err
}

// Value blocks until the task completes and returns its result.
func (future *Future[T]) Value() T {
	<-future.ch
	return future.value
}

// OK blocks until the task completes, true if it succeeded.
func (future *Future[T]) OK() bool {
	<-future.ch
	return future.err == nil
}

// Err blocks until the task completes and returns its error.
func (future *Future[T]) Err() error {
	<-future.ch
	return future.err
}

// Inner exposes the done channel for select statements.
func (future *Future[T]) Inner() <-chan struct{} {
	return future.ch
}

// Go spawns a goroutine executing fn and returns a Future for its result.
func Go[T any](fn func() (T, error)) *Future[T] {
	future := newFuture[T]()
	go func() {
		defer close(future.ch)
		future.value, future.err = fn()
	}()
	return future
}

type errable interface {
	Err() error
}

// BlockOnAll waits for all futures to complete
// and returns the first error it met.
func BlockOnAll[T errable](futures ...T) error {
	var err error
	for _, future := range futures {
		if e := future.Err(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// AwaitAll waits for all futures to complete,
// it returns at once when any error occurs.
func AwaitAll[T errable](futures ...T) error {
	for _, future := range futures {
		if err := future.Err(); err != nil {
			return err
		}
	}
	return nil
}
