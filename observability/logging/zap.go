// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package logging

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts go.uber.org/zap to the Logger interface, for
// deployments that want zap's sink/encoder ecosystem (JSON or console
// encoding, log rotation, sampling at the zap layer) instead of
// StructuredLogger's plain JSON-to-writer behavior.
type ZapLogger struct {
	base         *zap.Logger
	mu           sync.Mutex
	level        zap.AtomicLevel
	samplingRate float64
}

// NewZapLogger builds a ZapLogger at the given level, JSON-encoding to
// stdout in the manner of zap's production config.
func NewZapLogger(level Level) (*ZapLogger, error) {
	atom := zap.NewAtomicLevelAt(zapLevel(level))
	cfg := zap.Config{
		Level:            atom,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{base: base, level: atom, samplingRate: 1.0}, nil
}

func zapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(ctx context.Context, fields ...Field) []zap.Field {
	all := extractContextFields(ctx)
	all = append(all, fields...)
	out := make([]zap.Field, len(all))
	for i, f := range all {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}

// Debug logs a debug message.
func (l *ZapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.base.Debug(msg, toZapFields(ctx, fields...)...)
}

// Info logs an informational message.
func (l *ZapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.base.Info(msg, toZapFields(ctx, fields...)...)
}

// Warn logs a warning message.
func (l *ZapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.base.Warn(msg, toZapFields(ctx, fields...)...)
}

// Error logs an error message.
func (l *ZapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.base.Error(msg, toZapFields(ctx, fields...)...)
}

// Fatal logs a fatal message and exits, matching zap.Logger.Fatal's
// own os.Exit(1) behavior.
func (l *ZapLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.base.Fatal(msg, toZapFields(ctx, fields...)...)
}

// With creates a child logger with persistent fields.
func (l *ZapLogger) With(fields ...Field) Logger {
	zfields := make([]zap.Field, len(fields))
	for i, f := range fields {
		zfields[i] = zap.Any(f.Key, f.Value)
	}
	return &ZapLogger{
		base:         l.base.With(zfields...),
		level:        l.level,
		samplingRate: l.samplingRate,
	}
}

// SetLevel sets the minimum log level.
func (l *ZapLogger) SetLevel(level Level) {
	l.level.SetLevel(zapLevel(level))
}

// SetSamplingRate sets the sampling rate for debug logs. zap's own
// sampling core operates on message+level buckets rather than a flat
// probability, so this is tracked for interface parity with
// StructuredLogger but does not itself throttle output; configure a
// zap.SamplerConfig at construction time for that.
func (l *ZapLogger) SetSamplingRate(rate float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rate < 0.0 {
		rate = 0.0
	}
	if rate > 1.0 {
		rate = 1.0
	}
	l.samplingRate = rate
}

// Sync flushes any buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}
