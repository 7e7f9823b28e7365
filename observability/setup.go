package observability

import (
	"context"
	"errors"
	"fmt"
)

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(ctx context.Context) error

// Setup installs the tracer and meter providers when cfg.Enabled. The
// returned ShutdownFunc is always safe to call.
func Setup(ctx context.Context, cfg Config, info ServiceInfo) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := InitTracer(ctx, cfg, info)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	mp, err := InitMeter(ctx, cfg, info)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("observability: %w", err)
	}

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
