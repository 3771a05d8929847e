// Package lifecycle starts and stops the long-lived parts of the server
// (store, tracing, audit log, config watcher, HTTP listener) in dependency
// order.
package lifecycle

import "context"

// Component is anything the Manager can start and stop.
type Component interface {
	// Start brings the component up. It must return once the component is
	// ready; long-running work belongs in a goroutine.
	Start(ctx context.Context) error

	// Stop releases resources and should honour the context deadline.
	Stop(ctx context.Context) error

	// Name identifies the component in logs and errors.
	Name() string
}

// Hook adapts a pair of functions to Component. Nil functions are no-ops.
type Hook struct {
	ID      string
	OnStart func(ctx context.Context) error
	OnStop  func(ctx context.Context) error
}

// Start implements Component.
func (h *Hook) Start(ctx context.Context) error {
	if h.OnStart == nil {
		return nil
	}
	return h.OnStart(ctx)
}

// Stop implements Component.
func (h *Hook) Stop(ctx context.Context) error {
	if h.OnStop == nil {
		return nil
	}
	return h.OnStop(ctx)
}

// Name implements Component.
func (h *Hook) Name() string {
	return h.ID
}

// Closer wraps something with a Close method (store, audit log) as a
// component that only needs stopping.
func Closer(name string, c interface{ Close() error }) Component {
	return &Hook{
		ID:     name,
		OnStop: func(context.Context) error { return c.Close() },
	}
}
