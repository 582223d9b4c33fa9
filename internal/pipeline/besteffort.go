package pipeline

import (
	"log/slog"

	"castpress/internal/logging"
)

// bestEffort runs a post-completion task whose failure must never
// affect the job's terminal status. Errors and panics are logged and
// swallowed.
func bestEffort(logger *slog.Logger, task string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("post-completion task panicked",
				logging.String("task", task),
				logging.Any("panic", r),
			)
		}
	}()
	if err := fn(); err != nil {
		logger.Warn("post-completion task failed",
			logging.String("task", task),
			logging.Error(err),
		)
	}
}
