package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// Run executes a single task to completion and logs its failure.
func Run(ctx context.Context, task TaskInterface) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	task.Start()

	slog.Debug("Task started", "type", task.GetType(), "id", task.GetID(), "document", task.GetDocument())

	if err := task.Execute(ctx); err != nil {
		slog.Error("Task failed",
			"type", task.GetType(),
			"id", task.GetID(),
			"duration", task.GetDuration(),
			"error", err)
		return fmt.Errorf("task %s failed: %w", task.GetType(), err)
	}

	return nil
}
