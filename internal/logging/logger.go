// Package logging defines the small structured-logging contract the rest of
// the code depends on, so the concrete backend stays swappable.
package logging

import "context"

// Logger writes structured, context-aware log records. The variadic args are
// alternating key-value pairs:
//
//	log.Info(ctx, "file uploaded", "record_id", id, "user_id", userID)
type Logger interface {
	// Info records normal operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records unusual but recoverable conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a derived logger that attaches the given key-value pairs
	// to every record.
	With(args ...any) Logger
}
