package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/digest"
)

// Ensure ReportGenerator implements digest.ReportGenerator at compile time.
var _ digest.ReportGenerator = (*ReportGenerator)(nil)

// ReportGenerator renders Markdown digest reports from persisted articles,
// one report per source, under root/{YYYYMMDD}/{source}/.
type ReportGenerator struct {
	root    string
	sources digest.SourceService
	reports digest.ReportService
	now     func() time.Time
}

// ReportOption configures a ReportGenerator.
type ReportOption func(*ReportGenerator)

// WithNow overrides the clock. Useful for testing.
func WithNow(now func() time.Time) ReportOption {
	return func(g *ReportGenerator) {
		g.now = now
	}
}

// NewReportGenerator creates a ReportGenerator. The report record service
// is optional; without it reports are written but not tracked.
func NewReportGenerator(root string, sources digest.SourceService, reports digest.ReportService, opts ...ReportOption) *ReportGenerator {
	g := &ReportGenerator{
		root:    root,
		sources: sources,
		reports: reports,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateReport writes one report per source represented in the batch and
// returns a source name to report path map. When sourceID is non-zero only
// that source's articles are included.
func (g *ReportGenerator) GenerateReport(ctx context.Context, articles []*digest.Article, sourceID int64) (map[string]string, error) {
	grouped := make(map[int64][]*digest.Article)
	for _, a := range articles {
		if sourceID != 0 && a.SourceID != sourceID {
			continue
		}
		grouped[a.SourceID] = append(grouped[a.SourceID], a)
	}

	ids := make([]int64, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		source, err := g.sources.FindSourceByID(ctx, id)
		if err != nil {
			return nil, err
		}

		path, err := g.writeReport(ctx, source, grouped[id])
		if err != nil {
			return nil, err
		}
		out[source.Name] = path

		if g.reports != nil {
			report := &digest.Report{SourceID: id, ReportFile: path}
			if err := g.reports.CreateReport(ctx, report); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

// writeReport renders and stores the Markdown report for one source.
func (g *ReportGenerator) writeReport(ctx context.Context, source *digest.Source, articles []*digest.Article) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := g.now().UTC()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s digest %s\n\n", source.Name, now.Format("2006-01-02"))
	fmt.Fprintf(&b, "%d articles in this report.\n", len(articles))

	for i, a := range articles {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, a.Title)
		fmt.Fprintf(&b, "%s\n\n", a.URL)
		b.WriteString(g.readAbstract(a))
		b.WriteString("\n")
	}

	dir := filepath.Join(g.root, now.Format("20060102"), SanitizeFilename(source.Name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", digest.Errorf(digest.EINTERNAL, "create report directory %s: %v", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("report_%d.md", now.Unix()))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", digest.Errorf(digest.EINTERNAL, "write report %s: %v", path, err)
	}

	return path, nil
}

// readAbstract loads an article's stored summary. A missing file degrades
// to a placeholder rather than failing the whole report.
func (g *ReportGenerator) readAbstract(a *digest.Article) string {
	data, err := os.ReadFile(a.AbstractFile)
	if err != nil {
		return "(summary unavailable)"
	}
	return strings.TrimSpace(string(data))
}
