// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

package log

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxLogKeyType struct{}

var ctxLogKey = ctxLogKeyType{}

var global atomic.Pointer[zap.Logger]

func init() {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		panic(err)
	}
	global.Store(logger)
}

// L returns the process-wide logger.
func L() *zap.Logger {
	return global.Load()
}

// SetLogger replaces the process-wide logger, returning the previous one.
func SetLogger(logger *zap.Logger) *zap.Logger {
	return global.Swap(logger)
}

// Ctx returns the logger bound to ctx by WithFields, or the global logger.
func Ctx(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return L()
	}
	if logger, ok := ctx.Value(ctxLogKey).(*zap.Logger); ok {
		return logger
	}
	return L()
}

// WithFields binds a child logger carrying the given fields to ctx.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, ctxLogKey, Ctx(ctx).With(fields...))
}
