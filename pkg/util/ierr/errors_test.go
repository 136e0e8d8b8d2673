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
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrInvalidKey("not a url")
	s.ErrorIs(err, ErrInvalidKey)
	s.Equal(Code(ErrInvalidKey), Code(err))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errors.New("rogue")))
	s.Equal(int32(0), Code(nil))

	sameCodeErr := newImageError("new error", ErrInvalidKey.errCode, false)
	s.True(sameCodeErr.Is(ErrInvalidKey))
}

func (s *ErrSuite) TestWrap() {
	err := WrapErrNetwork("http://example.com/a.png", errors.New("connection refused"), "fetch attempt 3")
	s.ErrorIs(err, ErrNetwork)
	s.Contains(err.Error(), "connection refused")
	s.Contains(err.Error(), "fetch attempt 3")

	err = WrapErrNetworkStatus("http://example.com/a.png", 503)
	s.ErrorIs(err, ErrNetwork)
	s.Contains(err.Error(), "503")

	err = WrapErrDecode("http://example.com/a.png", errors.New("image: unknown format"))
	s.ErrorIs(err, ErrDecode)

	err = WrapErrLoaderClosed("http://example.com/a.png")
	s.ErrorIs(err, ErrLoaderClosed)
}

func (s *ErrSuite) TestRetryable() {
	s.False(IsRetryable(ErrInvalidKey))
	s.False(IsRetryable(ErrDecode))
	s.False(IsRetryable(ErrLoaderClosed))
	s.True(IsRetryable(ErrNetwork))
	s.True(IsRetryable(WrapErrNetworkStatus("http://example.com", 502)))
	s.False(IsRetryable(nil))
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  error
	)

	err := Combine(errFirst, errSecond, errThird)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.Contains(err.Error(), "first")
	s.Contains(err.Error(), "second")
}

func (s *ErrSuite) TestCombineOnlyNil() {
	s.NoError(Combine(nil, nil))
	s.NoError(Combine())
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
