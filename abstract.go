package digest

import "context"

// AbstractWriter durably writes the text artifact for one processed item
// and returns its path. A returned path always refers to a non-empty file
// on disk; a write that leaves a missing or empty file behind is an
// EINTERNAL error even when no write call failed.
type AbstractWriter interface {
	WriteAbstract(ctx context.Context, text, sourceName string, timestamp int64, title string) (string, error)
}

// RawWriter persists raw normalized text to a side debug location, grouped
// by pipeline run. Purely diagnostic; callers ignore write failures.
type RawWriter interface {
	WriteRaw(ctx context.Context, runID, title, text string) (string, error)
}
