// Package fs persists pipeline artifacts to the local filesystem using a
// deterministic directory layout.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/digest"
)

// maxFilenameRunes caps the title portion of generated filenames, the
// ellipsis marker included.
const maxFilenameRunes = 100

// underscoreRunRe matches runs of underscores left over after whitespace
// substitution.
var underscoreRunRe = regexp.MustCompile(`_+`)

// unsafeChars maps filesystem-hostile characters to fullwidth lookalikes so
// titles stay readable in the filename.
var unsafeChars = strings.NewReplacer(
	"/", "／",
	"\\", "＼",
	":", "：",
	"*", "＊",
	"?", "？",
	`"`, "＂",
	"<", "＜",
	">", "＞",
	"|", "｜",
)

// Ensure Writer implements the writer interfaces at compile time.
var (
	_ digest.AbstractWriter = (*Writer)(nil)
	_ digest.RawWriter      = (*Writer)(nil)
)

// Writer stores summaries under root/{source}/{date}/ and raw debug dumps
// under debugRoot/{runID}/. Paths are fully determined by their inputs so a
// re-run overwrites rather than duplicates.
type Writer struct {
	root      string
	debugRoot string
}

// Option configures a Writer.
type Option func(*Writer)

// WithDebugRoot sets the directory for raw content dumps. Defaults to
// root/raw.
func WithDebugRoot(dir string) Option {
	return func(w *Writer) {
		w.debugRoot = dir
	}
}

// NewWriter creates a Writer rooted at the given directory.
func NewWriter(root string, opts ...Option) *Writer {
	w := &Writer{
		root:      root,
		debugRoot: filepath.Join(root, "raw"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteAbstract stores a summary and returns its path. The layout is
// root/{source}/{YYYYMMDD}/{timestamp}_{title}.txt, with the date taken
// from the publish timestamp.
func (w *Writer) WriteAbstract(ctx context.Context, text, sourceName string, timestamp int64, title string) (string, error) {
	day := time.Unix(timestamp, 0).UTC().Format("20060102")
	dir := filepath.Join(w.root, SanitizeFilename(sourceName), day)
	name := fmt.Sprintf("%d_%s.txt", timestamp, SanitizeFilename(title))

	return w.writeFile(ctx, dir, name, text)
}

// WriteRaw stores pre-summarization content for debugging, grouped by run.
func (w *Writer) WriteRaw(ctx context.Context, runID, title, text string) (string, error) {
	dir := filepath.Join(w.debugRoot, runID)
	name := SanitizeFilename(title) + ".txt"

	return w.writeFile(ctx, dir, name, text)
}

// writeFile creates the directory, writes the file, and verifies the
// result landed non-empty on disk.
func (w *Writer) writeFile(ctx context.Context, dir, name, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", digest.Errorf(digest.EINVALID, "refusing to write empty file %s", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", digest.Errorf(digest.EINTERNAL, "create directory %s: %v", dir, err)
	}

	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", digest.Errorf(digest.EINTERNAL, "write %s: %v", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", digest.Errorf(digest.EINTERNAL, "verify %s: %v", path, err)
	}
	if info.Size() == 0 {
		return "", digest.Errorf(digest.EINTERNAL, "wrote empty file %s", path)
	}

	return path, nil
}

// SanitizeFilename makes an arbitrary title safe to use as a file or
// directory name: hostile characters become fullwidth lookalikes,
// whitespace runs become single underscores, and overlong names are
// truncated with an ellipsis marker.
func SanitizeFilename(name string) string {
	name = unsafeChars.Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = underscoreRunRe.ReplaceAllString(name, "_")

	if name == "" {
		return "untitled"
	}

	if runes := []rune(name); len(runes) > maxFilenameRunes {
		name = string(runes[:maxFilenameRunes-3]) + "..."
	}

	return name
}
