package workflow

import (
	"context"
	"errors"

	"quire/internal/logging"
	"quire/internal/notifications"
	"quire/internal/services"
	"quire/internal/stagecache"
)

func (m *Manager) reportFailure(ctx context.Context, report *stagecache.Report, runErr error) {
	logger := logging.WithContext(ctx, m.logger)
	task := ""
	if failed := report.Failure(); failed != nil {
		task = failed.Task
	}
	logger.Error("build failed",
		logging.Event(logging.EventBuildFailure),
		logging.Task(task),
		logging.String("error_kind", services.Kind(runErr)),
		logging.Alert("build_failure"),
		logging.Error(runErr),
	)

	if m.notifier == nil || errors.Is(runErr, context.Canceled) {
		return
	}
	if err := m.notifier.Publish(ctx, notifications.EventBuildFailed, notifications.Payload{
		"task":  task,
		"error": runErr.Error(),
	}); err != nil {
		logger.Debug("failure notification failed", logging.Error(err))
	}
}
