package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hnreport/internal/types"
)

// Targets publishes to every target in order. Delivery is not retried: the
// first failure stops the fan-out.
type Targets []Target

func (t Targets) Initialize(ctx context.Context, logger *slog.Logger) error {
	for _, target := range t {
		logger.Debug("Initializing target", "target", target.Name())
		if err := target.Initialize(ctx); err != nil {
			return fmt.Errorf("failed to initialize target %s: %w", target.Name(), err)
		}
	}
	return nil
}

func (t Targets) Publish(ctx context.Context, summary types.Summary, logger *slog.Logger) error {
	for _, target := range t {
		logger.Debug("Publishing to target", "item_id", summary.ID(), "target", target.Name())
		if err := target.Publish(ctx, summary); err != nil {
			logger.Error("Failed to publish", "item_id", summary.ID(), "target", target.Name(), "error", err)
			return fmt.Errorf("%w: target %s: %w", ErrDelivery, target.Name(), err)
		}
		logger.Info("Published", "item_id", summary.ID(), "target", target.Name())
	}
	return nil
}

func (t Targets) Flush(ctx context.Context, logger *slog.Logger) error {
	for _, target := range t {
		flusher, ok := target.(Flusher)
		if !ok {
			continue
		}
		if err := flusher.Flush(ctx); err != nil {
			logger.Error("Failed to flush target", "target", target.Name(), "error", err)
			return fmt.Errorf("%w: target %s: %w", ErrDelivery, target.Name(), err)
		}
	}
	return nil
}

func (t Targets) Shutdown(ctx context.Context, logger *slog.Logger) error {
	var errs []error
	for _, target := range t {
		logger.Debug("Shutting down target", "target", target.Name())
		if err := target.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("target %s shutdown error: %w", target.Name(), err))
		}
	}
	return errors.Join(errs...)
}
