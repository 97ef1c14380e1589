package telemetry

import (
	"time"

	"go.uber.org/zap"
)

// Tracer is the injected diagnostics collaborator. The engine works
// identically with the no-op implementation.
type Tracer interface {
	StartSpan(name string) Span
}

type Span interface {
	SetAttribute(key string, value any)
	RecordError(err error)
	End()
}

type noopTracer struct{}
type noopSpan struct{}

func (noopTracer) StartSpan(string) Span  { return noopSpan{} }
func (noopSpan) SetAttribute(string, any) {}
func (noopSpan) RecordError(error)        {}
func (noopSpan) End()                     {}

// Noop returns a tracer that drops everything.
func Noop() Tracer {
	return noopTracer{}
}

// NewLogTracer emits spans as debug log lines, attributes included.
func NewLogTracer(logger *zap.SugaredLogger) Tracer {
	return &logTracer{logger: logger}
}

type logTracer struct {
	logger *zap.SugaredLogger
}

func (t *logTracer) StartSpan(name string) Span {
	return &logSpan{logger: t.logger, name: name, start: time.Now()}
}

type logSpan struct {
	logger *zap.SugaredLogger
	name   string
	start  time.Time
	attrs  []any
	err    error
}

func (s *logSpan) SetAttribute(key string, value any) {
	s.attrs = append(s.attrs, key, value)
}

func (s *logSpan) RecordError(err error) {
	s.err = err
}

func (s *logSpan) End() {
	args := append([]any{"span", s.name, "elapsed", time.Since(s.start)}, s.attrs...)
	if s.err != nil {
		args = append(args, "error", s.err)
		s.logger.Warnw("span finished with error", args...)
		return
	}
	s.logger.Debugw("span finished", args...)
}
