// Copyright 2021 The rest-client Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package logsink builds the loggers that receive the REST client's
// request and response lines.
//
// A sink is named by a target string: "stdout" or "stderr" for the
// standard streams, any other non-empty string for a file that is
// appended to, and the empty string for no logging at all. NewMemory
// returns a logger that appends lines to an in-memory collection.
package logsink

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing one line per entry to target. The empty
// target yields a no-op logger.
func New(target string) (*zap.Logger, error) {
	if target == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(zapcore.InfoLevel),
		Encoding:          "console",
		EncoderConfig:     encoderConfig(),
		OutputPaths:       []string{target},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}
	return cfg.Build()
}

// NewOrNop is like New but falls back to a no-op logger if the sink
// cannot be opened.
func NewOrNop(target string) *zap.Logger {
	logger, err := New(target)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		TimeKey:        zapcore.OmitKey,
		LevelKey:       zapcore.OmitKey,
		NameKey:        zapcore.OmitKey,
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		StacktraceKey:  zapcore.OmitKey,
	}
}

// Memory is an in-memory log sink. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	lines   []string
	partial strings.Builder
}

// NewMemory returns a logger that appends each entry as one line to
// the returned Memory.
func NewMemory() (*zap.Logger, *Memory) {
	m := &Memory{}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), m, zapcore.InfoLevel)
	return zap.New(core), m
}

// Write appends the complete lines in p. A trailing partial line is
// held until its newline arrives.
func (m *Memory) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partial.Write(p)
	s := m.partial.String()
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			break
		}
		m.lines = append(m.lines, s[:i])
		s = s[i+1:]
	}
	m.partial.Reset()
	m.partial.WriteString(s)
	return len(p), nil
}

// Sync does nothing.
func (m *Memory) Sync() error {
	return nil
}

// Lines returns a copy of the lines written so far.
func (m *Memory) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

// Reset discards all lines.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	m.partial.Reset()
}
