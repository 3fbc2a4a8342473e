package mock

import (
	"context"

	"github.com/fwojciec/digest"
)

var _ digest.AbstractWriter = (*AbstractWriter)(nil)

// AbstractWriter is a mock implementation of digest.AbstractWriter.
type AbstractWriter struct {
	WriteAbstractFn func(ctx context.Context, text, sourceName string, timestamp int64, title string) (string, error)
}

func (m *AbstractWriter) WriteAbstract(ctx context.Context, text, sourceName string, timestamp int64, title string) (string, error) {
	return m.WriteAbstractFn(ctx, text, sourceName, timestamp, title)
}

var _ digest.RawWriter = (*RawWriter)(nil)

// RawWriter is a mock implementation of digest.RawWriter.
type RawWriter struct {
	WriteRawFn func(ctx context.Context, runID, title, text string) (string, error)
}

func (m *RawWriter) WriteRaw(ctx context.Context, runID, title, text string) (string, error) {
	return m.WriteRawFn(ctx, runID, title, text)
}
