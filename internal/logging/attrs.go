package logging

import (
	"context"
	"log/slog"
	"time"
)

type Attr = slog.Attr

// EventType values classify build lifecycle lines under FieldEventType.
type EventType string

const (
	EventBuildStart    EventType = "build_start"
	EventBuildComplete EventType = "build_complete"
	EventBuildFailure  EventType = "build_failure"
	EventStageStart    EventType = "stage_start"
	EventStageCached   EventType = "stage_cached"
	EventStageComplete EventType = "stage_complete"
	EventStageFailure  EventType = "stage_failure"
	EventTaskForgotten EventType = "task_forgotten"
	EventPageImported  EventType = "page_imported"
)

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Alert(value string) Attr { return slog.String(FieldAlert, value) }

// Event tags a lifecycle line.
func Event(kind EventType) Attr { return slog.String(FieldEventType, string(kind)) }

// Task names the graph node a line is about, e.g. "extract-03" or "render".
func Task(name string) Attr { return slog.String(FieldTask, name) }

// Chapter records a 1-based chapter ordinal.
func Chapter(n int) Attr { return slog.Int(FieldChapter, n) }

// Hint attaches the operator's next step to a failure.
func Hint(text string) Attr { return slog.String(FieldErrorHint, text) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger tags every line with a component name. A nil logger
// falls back to a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
