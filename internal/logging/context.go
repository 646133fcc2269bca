package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldExternalID is the standardized structured logging key for archive book ids.
	FieldExternalID = "external_id"
	// FieldRunID correlates every line emitted by one ingestion batch.
	FieldRunID = "run_id"
	// FieldPosition is the 1-based position of an entry within a batch.
	FieldPosition = "position"
	// FieldTotal is the number of entries in a batch.
	FieldTotal = "total"
	// FieldURL is the request target of an outbound call.
	FieldURL = "url"
	// FieldAttempt is the 1-based attempt number of a retried call.
	FieldAttempt = "attempt"
	// FieldEventType names the kind of event for warnings and errors.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

type contextKey int

const (
	runIDKey contextKey = iota
	externalIDKey
)

// WithRunID tags ctx with a batch run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext returns the run identifier stored by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// WithExternalID tags ctx with the book currently being processed.
func WithExternalID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, externalIDKey, id)
}

// ExternalIDFromContext returns the book id stored by WithExternalID.
func ExternalIDFromContext(ctx context.Context) (int, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(externalIDKey).(int)
	return id, ok
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if id, ok := ExternalIDFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldExternalID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
