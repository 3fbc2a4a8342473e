package pipeline_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/fwojciec/digest"
	"github.com/fwojciec/digest/mock"
	"github.com/fwojciec/digest/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture wires an orchestrator over counting mocks with happy-path
// defaults. Tests override individual functions as needed.
type fixture struct {
	normalizer *mock.Normalizer
	summarizer *mock.Summarizer
	abstracts  *mock.AbstractWriter

	normalizeCalls int
	summarizeCalls int
	writeCalls     int
}

func newFixture() *fixture {
	f := &fixture{}
	f.normalizer = &mock.Normalizer{
		NormalizeFn: func(ctx context.Context, url string) (string, error) {
			f.normalizeCalls++
			return "hello world", nil
		},
	}
	f.summarizer = &mock.Summarizer{
		SummarizeFn: func(ctx context.Context, content, comments string) (string, error) {
			f.summarizeCalls++
			return "S", nil
		},
	}
	f.abstracts = &mock.AbstractWriter{
		WriteAbstractFn: func(ctx context.Context, text, sourceName string, timestamp int64, title string) (string, error) {
			f.writeCalls++
			return "/abstracts/" + title + ".txt", nil
		},
	}
	return f
}

func (f *fixture) orchestrator(opts ...pipeline.Option) *pipeline.Orchestrator {
	opts = append([]pipeline.Option{pipeline.WithLogger(quietLogger())}, opts...)
	return pipeline.NewOrchestrator(f.normalizer, f.summarizer, f.abstracts, opts...)
}

func validItem(url string) digest.CandidateItem {
	return digest.CandidateItem{
		URL:           url,
		Title:         "Title",
		PublishedDate: "2024-01-01T00:00:00Z",
	}
}

func testSource() *digest.Source {
	return &digest.Source{ID: 7, Name: "Hacker News"}
}

func TestOrchestrator_ProcessBatch_EndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o := f.orchestrator()

	report := o.ProcessBatch(context.Background(),
		[]digest.CandidateItem{validItem("http://x/1")}, testSource(), pipeline.BatchOptions{})

	require.Len(t, report.Articles, 1)
	assert.Empty(t, report.Skipped)

	article := report.Articles[0]
	assert.Equal(t, "http://x/1", article.URL)
	assert.Equal(t, int64(7), article.SourceID)
	assert.Equal(t, int64(1704067200), article.PublishTimestamp)
	assert.Equal(t, "/abstracts/Title.txt", article.AbstractFile)
	assert.NotEmpty(t, article.ContentHash)
	assert.NotEmpty(t, report.RunID)
}

func TestOrchestrator_ProcessBatch_InvalidItemsHaveNoSideEffects(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o := f.orchestrator()

	items := []digest.CandidateItem{
		{Title: "no url", PublishedDate: "2024-01-01T00:00:00Z"},
		{URL: "http://x/1", PublishedDate: "2024-01-01T00:00:00Z"},
		{URL: "http://x/2", Title: "no date"},
	}

	report := o.ProcessBatch(context.Background(), items, testSource(), pipeline.BatchOptions{})

	assert.Empty(t, report.Articles)
	require.Len(t, report.Skipped, 3)
	assert.Equal(t, 3, report.SkipCount(pipeline.StageValidate))

	assert.Zero(t, f.normalizeCalls)
	assert.Zero(t, f.summarizeCalls)
	assert.Zero(t, f.writeCalls)
}

func TestOrchestrator_ProcessBatch_StoreDedupSkipsFetch(t *testing.T) {
	t.Parallel()

	f := newFixture()
	articles := &mock.ArticleService{
		FindArticleByURLFn: func(ctx context.Context, url string) (*digest.Article, error) {
			if url == "http://x/known" {
				return &digest.Article{ID: 1, URL: url}, nil
			}
			return nil, digest.Errorf(digest.ENOTFOUND, "article not found")
		},
	}
	o := f.orchestrator(pipeline.WithArticleService(articles))

	report := o.ProcessBatch(context.Background(), []digest.CandidateItem{
		validItem("http://x/known"),
		validItem("http://x/new"),
	}, testSource(), pipeline.BatchOptions{})

	require.Len(t, report.Articles, 1)
	assert.Equal(t, "http://x/new", report.Articles[0].URL)
	assert.Equal(t, 1, report.SkipCount(pipeline.StageDedup))
	assert.Equal(t, 1, f.normalizeCalls)
}

func TestOrchestrator_ProcessBatch_DuplicateURLWithinBatch(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o := f.orchestrator()

	report := o.ProcessBatch(context.Background(), []digest.CandidateItem{
		validItem("http://x/1"),
		validItem("http://x/1"),
	}, testSource(), pipeline.BatchOptions{})

	require.Len(t, report.Articles, 1)
	assert.Equal(t, 1, report.SkipCount(pipeline.StageDedup))
	assert.Equal(t, 1, f.normalizeCalls)
}

func TestOrchestrator_ProcessBatch_StageFailuresAreIsolated(t *testing.T) {
	t.Parallel()

	t.Run("fetch failure", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.normalizer.NormalizeFn = func(ctx context.Context, url string) (string, error) {
			if url == "http://x/bad" {
				return "", digest.Errorf(digest.EUNAVAILABLE, "HTTP 500")
			}
			return "content", nil
		}
		o := f.orchestrator()

		report := o.ProcessBatch(context.Background(), []digest.CandidateItem{
			validItem("http://x/bad"),
			validItem("http://x/good"),
		}, testSource(), pipeline.BatchOptions{})

		require.Len(t, report.Articles, 1)
		assert.Equal(t, "http://x/good", report.Articles[0].URL)
		assert.Equal(t, 1, report.SkipCount(pipeline.StageFetch))
		// Failed fetch never reaches summarization.
		assert.Equal(t, 1, f.summarizeCalls)
	})

	t.Run("summarize failure", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.summarizer.SummarizeFn = func(ctx context.Context, content, comments string) (string, error) {
			return "", digest.Errorf(digest.EUNAVAILABLE, "model overloaded")
		}
		o := f.orchestrator()

		report := o.ProcessBatch(context.Background(),
			[]digest.CandidateItem{validItem("http://x/1")}, testSource(), pipeline.BatchOptions{})

		assert.Empty(t, report.Articles)
		assert.Equal(t, 1, report.SkipCount(pipeline.StageSummarize))
		assert.Zero(t, f.writeCalls)
	})

	t.Run("write failure", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		f.abstracts.WriteAbstractFn = func(ctx context.Context, text, sourceName string, timestamp int64, title string) (string, error) {
			return "", digest.Errorf(digest.EINTERNAL, "disk full")
		}
		o := f.orchestrator()

		report := o.ProcessBatch(context.Background(),
			[]digest.CandidateItem{validItem("http://x/1")}, testSource(), pipeline.BatchOptions{})

		assert.Empty(t, report.Articles)
		assert.Equal(t, 1, report.SkipCount(pipeline.StageWrite))
	})
}

func TestOrchestrator_ProcessBatch_Comments(t *testing.T) {
	t.Parallel()

	t.Run("passed to the summarizer", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var gotComments string
		f.summarizer.SummarizeFn = func(ctx context.Context, content, comments string) (string, error) {
			gotComments = comments
			return "S", nil
		}
		comments := &mock.CommentService{
			FetchCommentsFn: func(ctx context.Context, commentsURL string) (string, error) {
				return "[alice]: great post", nil
			},
		}
		o := f.orchestrator(pipeline.WithCommentService(comments))

		item := validItem("http://x/1")
		item.CommentsURL = "https://news.ycombinator.com/item?id=1"

		report := o.ProcessBatch(context.Background(),
			[]digest.CandidateItem{item}, testSource(), pipeline.BatchOptions{})

		require.Len(t, report.Articles, 1)
		assert.Equal(t, "[alice]: great post", gotComments)
	})

	t.Run("failure degrades to empty text", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var gotComments string
		f.summarizer.SummarizeFn = func(ctx context.Context, content, comments string) (string, error) {
			gotComments = comments
			return "S", nil
		}
		comments := &mock.CommentService{
			FetchCommentsFn: func(ctx context.Context, commentsURL string) (string, error) {
				return "", digest.Errorf(digest.EUNAVAILABLE, "api down")
			},
		}
		o := f.orchestrator(pipeline.WithCommentService(comments))

		item := validItem("http://x/1")
		item.CommentsURL = "https://news.ycombinator.com/item?id=1"

		report := o.ProcessBatch(context.Background(),
			[]digest.CandidateItem{item}, testSource(), pipeline.BatchOptions{})

		require.Len(t, report.Articles, 1)
		assert.Empty(t, gotComments)
	})
}

func TestOrchestrator_ProcessBatch_Limit(t *testing.T) {
	t.Parallel()

	f := newFixture()
	o := f.orchestrator()

	items := []digest.CandidateItem{
		validItem("http://x/1"),
		validItem("http://x/2"),
		validItem("http://x/3"),
	}

	report := o.ProcessBatch(context.Background(), items, testSource(), pipeline.BatchOptions{Limit: 2})

	require.Len(t, report.Articles, 2)
	assert.Equal(t, "http://x/1", report.Articles[0].URL)
	assert.Equal(t, "http://x/2", report.Articles[1].URL)
	assert.Equal(t, 2, f.normalizeCalls)
}

func TestOrchestrator_ProcessBatch_BadPublishedDateFallsBackToNow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	o := f.orchestrator(pipeline.WithNow(func() time.Time { return now }))

	item := validItem("http://x/1")
	item.PublishedDate = "yesterday-ish"

	report := o.ProcessBatch(context.Background(),
		[]digest.CandidateItem{item}, testSource(), pipeline.BatchOptions{})

	require.Len(t, report.Articles, 1)
	assert.Equal(t, now.Unix(), report.Articles[0].PublishTimestamp)
}

func TestOrchestrator_ProcessBatch_DebugDumps(t *testing.T) {
	t.Parallel()

	t.Run("writes raw text keyed by run", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		var gotRunID, gotText string
		raw := &mock.RawWriter{
			WriteRawFn: func(ctx context.Context, runID, title, text string) (string, error) {
				gotRunID, gotText = runID, text
				return "/raw/" + runID + "/" + title + ".txt", nil
			},
		}
		o := f.orchestrator(
			pipeline.WithRawWriter(raw),
			pipeline.WithRunID(func() string { return "run-1" }),
		)

		report := o.ProcessBatch(context.Background(),
			[]digest.CandidateItem{validItem("http://x/1")}, testSource(),
			pipeline.BatchOptions{Debug: true})

		require.Len(t, report.Articles, 1)
		assert.Equal(t, "run-1", report.RunID)
		assert.Equal(t, "run-1", gotRunID)
		assert.Equal(t, "hello world", gotText)
	})

	t.Run("dump failure is non-fatal", func(t *testing.T) {
		t.Parallel()

		f := newFixture()
		raw := &mock.RawWriter{
			WriteRawFn: func(ctx context.Context, runID, title, text string) (string, error) {
				return "", digest.Errorf(digest.EINTERNAL, "disk full")
			},
		}
		o := f.orchestrator(pipeline.WithRawWriter(raw))

		report := o.ProcessBatch(context.Background(),
			[]digest.CandidateItem{validItem("http://x/1")}, testSource(),
			pipeline.BatchOptions{Debug: true})

		require.Len(t, report.Articles, 1)
	})
}

func TestOrchestrator_ProcessBatch_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.normalizer.NormalizeFn = func(ctx context.Context, url string) (string, error) {
		if url == "http://x/2" {
			return "", digest.Errorf(digest.EUNAVAILABLE, "down")
		}
		return "content", nil
	}
	o := f.orchestrator()

	report := o.ProcessBatch(context.Background(), []digest.CandidateItem{
		validItem("http://x/1"),
		validItem("http://x/2"),
		validItem("http://x/3"),
	}, testSource(), pipeline.BatchOptions{})

	require.Len(t, report.Articles, 2)
	assert.Equal(t, "http://x/1", report.Articles[0].URL)
	assert.Equal(t, "http://x/3", report.Articles[1].URL)
}
