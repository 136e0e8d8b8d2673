// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

package ierr

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	retryableFlag       = 1 << 16
	CanceledCode  int32 = 10000
	TimeoutCode   int32 = 10001
)

// Leaf errors of the loader. Check whether an existing one fits before
// adding a new code.
var (
	// ErrInvalidKey: the requested key is not a well-formed absolute
	// http(s) URL. Reported before any cache or network activity.
	ErrInvalidKey = newImageError("invalid image key", 1, false)

	// ErrNetwork: transport failure or non-success HTTP status while
	// fetching the image bytes. A later load retries the network.
	ErrNetwork = newImageError("image fetch failed", 2, true)

	// ErrDecode: bytes were fetched but are not a decodable image.
	ErrDecode = newImageError("image decode failed", 3, false)

	// ErrLoaderClosed: load was called on a closed loader.
	ErrLoaderClosed = newImageError("loader closed", 4, false)

	// Never allow returning this out of the package, keep only for
	// converting unknown errors to imageError.
	errUnexpected = newImageError("unexpected error", (1<<16)-1, false)
)

type imageError struct {
	msg     string
	errCode int32
}

func newImageError(msg string, code int32, retryable bool) imageError {
	if retryable {
		code |= retryableFlag
	}
	return imageError{
		msg:     msg,
		errCode: code,
	}
}

func (e imageError) code() int32 {
	return e.errCode
}

func (e imageError) Error() string {
	return e.msg
}

func (e imageError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(imageError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

// Code returns the error code of the given error,
// WARN: DO NOT use this for error type judgement, use errors.Is instead.
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch cause := cause.(type) {
	case imageError:
		return cause.code()
	default:
		if errors.Is(cause, context.Canceled) {
			return CanceledCode
		} else if errors.Is(cause, context.DeadlineExceeded) {
			return TimeoutCode
		}
		return errUnexpected.code()
	}
}

// IsRetryable reports whether the error carries the retryable flag.
func IsRetryable(err error) bool {
	return Code(err)&retryableFlag != 0
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

// Combine merges the non-nil errors into one error, nil if all are nil.
func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}
