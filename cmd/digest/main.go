package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/digest"
	"github.com/fwojciec/digest/exec"
	"github.com/fwojciec/digest/fs"
	"github.com/fwojciec/digest/gemini"
	"github.com/fwojciec/digest/hn"
	digesthttp "github.com/fwojciec/digest/http"
	"github.com/fwojciec/digest/htmltotext"
	"github.com/fwojciec/digest/pdf"
	"github.com/fwojciec/digest/pipeline"
	"github.com/fwojciec/digest/rss"
	digestslog "github.com/fwojciec/digest/slog"
	"github.com/fwojciec/digest/sqlite"
	"github.com/fwojciec/digest/trafilatura"
	"github.com/fwojciec/digest/wechat"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Root directory for abstracts, raw dumps and reports.
	DataDir string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	SourceService  digest.SourceService
	ArticleService digest.ArticleService
	ReportService  digest.ReportService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:  defaultDBPath(),
		DataDir: defaultDataDir(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("digest"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'digest --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DIGEST_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.SourceService = sqlite.NewSourceService(m.DB)
	m.ArticleService = sqlite.NewArticleService(m.DB)
	m.ReportService = sqlite.NewReportService(m.DB)
	deps.DB = m.DB
	deps.Sources = m.SourceService
	deps.Articles = m.ArticleService
	deps.Reports = m.ReportService

	if cmd == "run" || cmd == "run-all" {
		runner, err := m.buildRunner(ctx, stderr)
		if err != nil {
			return err
		}
		deps.Runner = runner
	}

	return kongCtx.Run(deps)
}

// buildRunner wires the full processing pipeline.
func (m *Main) buildRunner(ctx context.Context, stderr io.Writer) (*pipeline.Runner, error) {
	logger := slog.New(slog.NewTextHandler(stderr, nil))

	normalizerOpts := []digesthttp.Option{
		digesthttp.WithExtractor(trafilatura.NewExtractor()),
		digesthttp.WithPDFExtractor(pdf.NewExtractor()),
		digesthttp.WithHostLimiter(pipeline.NewHostRateLimiter(1.0, 1)),
		digesthttp.WithLogger(logger),
	}
	if proxy := os.Getenv("DIGEST_PROXY"); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid DIGEST_PROXY %q: %w", proxy, err)
		}
		normalizerOpts = append(normalizerOpts, digesthttp.WithProxy(proxyURL))
	}

	converter := htmltotext.NewConverter()
	normalizer := digestslog.NewNormalizer(
		digesthttp.NewNormalizer(converter, normalizerOpts...), logger)

	comments := hn.NewCommentService(converter, hn.WithFallback(normalizer))

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	summarizer := digestslog.NewSummarizer(gemini.NewSummarizer(client), logger)

	writer := fs.NewWriter(filepath.Join(m.DataDir, "abstraction"),
		fs.WithDebugRoot(filepath.Join(m.DataDir, "raw")))

	orchestrator := pipeline.NewOrchestrator(normalizer, summarizer, writer,
		pipeline.WithCommentService(comments),
		pipeline.WithRawWriter(writer),
		pipeline.WithArticleService(m.ArticleService),
		pipeline.WithLogger(logger),
	)

	reports := fs.NewReportGenerator(filepath.Join(m.DataDir, "reports"),
		m.SourceService, m.ReportService)

	runnerOpts := []pipeline.RunnerOption{
		pipeline.WithReportGenerator(reports),
		pipeline.WithRunnerLogger(logger),
	}
	if appID, appSecret := os.Getenv("WECHAT_APP_ID"), os.Getenv("WECHAT_APP_SECRET"); appID != "" && appSecret != "" {
		runnerOpts = append(runnerOpts, pipeline.WithPublisher(wechat.NewPublisher(appID, appSecret)))
	}

	return pipeline.NewRunner(orchestrator, m.SourceService, m.ArticleService,
		resolveAdapter, runnerOpts...), nil
}

// resolveAdapter picks the discovery mechanism for a source: feed poll,
// crawler subprocess, or the built-in Hacker News front page.
func resolveAdapter(source *digest.Source) (digest.SourceAdapter, error) {
	switch {
	case source.FeedURL != "":
		return rss.NewAdapter(source.FeedURL), nil
	case source.CrawlerCommand != "":
		return exec.NewAdapter(source.CrawlerCommand), nil
	case source.Name == "Hacker News":
		return hn.NewFrontPageAdapter(), nil
	default:
		return nil, digest.Errorf(digest.EINVALID,
			"source %q has no feed URL or crawler command", source.Name)
	}
}

func defaultDBPath() string {
	if path := os.Getenv("DIGEST_DB"); path != "" {
		return path
	}
	return filepath.Join(defaultDataDir(), "digest.db")
}

func defaultDataDir() string {
	if dir := os.Getenv("DIGEST_DATA"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".digest"
	}
	dir := filepath.Join(home, ".digest")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}
