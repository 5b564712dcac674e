package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Task is a long-running background job that returns when ctx is cancelled.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Start launches every task on g. A task that stops because ctx was
// cancelled is not treated as a failure; any other error cancels the group.
func Start(ctx context.Context, g *errgroup.Group, logger *zap.Logger, tasks ...Task) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, task := range tasks {
		task := task
		if task.Run == nil {
			continue
		}
		g.Go(func() error {
			logger.Info("worker started", zap.String("worker", task.Name))
			err := task.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker stopped", zap.String("worker", task.Name), zap.Error(err))
				return err
			}
			logger.Info("worker stopped", zap.String("worker", task.Name))
			return nil
		})
	}
}
