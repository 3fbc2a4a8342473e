package pipeline_test

import (
	"context"
	"testing"

	"github.com/fwojciec/digest"
	"github.com/fwojciec/digest/mock"
	"github.com/fwojciec/digest/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runnerFixture wires a Runner whose orchestrator collaborators succeed by
// default and whose article store accepts everything.
type runnerFixture struct {
	*fixture
	articles *mock.ArticleService
	sources  *mock.SourceService
	adapter  *mock.SourceAdapter

	created []*digest.Article
}

func newRunnerFixture() *runnerFixture {
	rf := &runnerFixture{fixture: newFixture()}
	rf.articles = &mock.ArticleService{
		CreateArticleFn: func(ctx context.Context, article *digest.Article) error {
			rf.created = append(rf.created, article)
			return nil
		},
	}
	rf.adapter = &mock.SourceAdapter{
		ProduceFn: func(ctx context.Context) ([]digest.CandidateItem, error) {
			return []digest.CandidateItem{validItem("http://x/1")}, nil
		},
	}
	rf.sources = &mock.SourceService{}
	return rf
}

func (rf *runnerFixture) runner(opts ...pipeline.RunnerOption) *pipeline.Runner {
	resolve := func(source *digest.Source) (digest.SourceAdapter, error) {
		return rf.adapter, nil
	}
	opts = append([]pipeline.RunnerOption{pipeline.WithRunnerLogger(quietLogger())}, opts...)
	return pipeline.NewRunner(rf.orchestrator(), rf.sources, rf.articles, resolve, opts...)
}

func TestRunner_RunSource(t *testing.T) {
	t.Parallel()

	t.Run("persists and reports", func(t *testing.T) {
		t.Parallel()

		rf := newRunnerFixture()

		var reportedArticles []*digest.Article
		generator := &mock.ReportGenerator{
			GenerateReportFn: func(ctx context.Context, articles []*digest.Article, sourceID int64) (map[string]string, error) {
				reportedArticles = articles
				return map[string]string{"Hacker News": "/reports/hn.md"}, nil
			},
		}
		var publishedPath, publishedMedia string
		publisher := &mock.Publisher{
			PublishReportFn: func(ctx context.Context, reportPath, sourceName, mediaPath string) error {
				publishedPath, publishedMedia = reportPath, mediaPath
				return nil
			},
		}

		r := rf.runner(pipeline.WithReportGenerator(generator), pipeline.WithPublisher(publisher))

		source := &digest.Source{ID: 7, Name: "Hacker News", MediaPath: "/media/cover.png"}
		err := r.RunSource(context.Background(), source, pipeline.RunOptions{})

		require.NoError(t, err)
		require.Len(t, rf.created, 1)
		assert.Equal(t, "http://x/1", rf.created[0].URL)
		require.Len(t, reportedArticles, 1)
		assert.Equal(t, "/reports/hn.md", publishedPath)
		assert.Equal(t, "/media/cover.png", publishedMedia)
	})

	t.Run("adapter failure is source-fatal", func(t *testing.T) {
		t.Parallel()

		rf := newRunnerFixture()
		rf.adapter.ProduceFn = func(ctx context.Context) ([]digest.CandidateItem, error) {
			return nil, digest.Errorf(digest.EUNAVAILABLE, "crawler command failed")
		}

		r := rf.runner()

		err := r.RunSource(context.Background(), &digest.Source{ID: 1, Name: "Src"}, pipeline.RunOptions{})

		require.Error(t, err)
		assert.Equal(t, digest.EUNAVAILABLE, digest.ErrorCode(err))
		assert.Empty(t, rf.created)
	})

	t.Run("duplicate insert counts as skip, run succeeds", func(t *testing.T) {
		t.Parallel()

		rf := newRunnerFixture()
		rf.articles.CreateArticleFn = func(ctx context.Context, article *digest.Article) error {
			return digest.Errorf(digest.ECONFLICT, "article already exists")
		}

		generatorCalled := false
		generator := &mock.ReportGenerator{
			GenerateReportFn: func(ctx context.Context, articles []*digest.Article, sourceID int64) (map[string]string, error) {
				generatorCalled = true
				return nil, nil
			},
		}

		r := rf.runner(pipeline.WithReportGenerator(generator))

		err := r.RunSource(context.Background(), &digest.Source{ID: 1, Name: "Src"}, pipeline.RunOptions{})

		require.NoError(t, err)
		// Zero new articles: nothing to report.
		assert.False(t, generatorCalled)
	})

	t.Run("report failure does not fail the run", func(t *testing.T) {
		t.Parallel()

		rf := newRunnerFixture()
		generator := &mock.ReportGenerator{
			GenerateReportFn: func(ctx context.Context, articles []*digest.Article, sourceID int64) (map[string]string, error) {
				return nil, digest.Errorf(digest.EINTERNAL, "template broken")
			},
		}

		r := rf.runner(pipeline.WithReportGenerator(generator))

		err := r.RunSource(context.Background(), &digest.Source{ID: 1, Name: "Src"}, pipeline.RunOptions{})

		require.NoError(t, err)
	})
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("numeric ref resolves by ID", func(t *testing.T) {
		t.Parallel()

		rf := newRunnerFixture()
		var lookedUpID int64
		rf.sources.FindSourceByIDFn = func(ctx context.Context, id int64) (*digest.Source, error) {
			lookedUpID = id
			return &digest.Source{ID: id, Name: "By ID"}, nil
		}

		r := rf.runner()

		require.NoError(t, r.Run(context.Background(), "42", pipeline.RunOptions{}))
		assert.Equal(t, int64(42), lookedUpID)
	})

	t.Run("non-numeric ref resolves by name", func(t *testing.T) {
		t.Parallel()

		rf := newRunnerFixture()
		var lookedUpName string
		rf.sources.FindSourceByNameFn = func(ctx context.Context, name string) (*digest.Source, error) {
			lookedUpName = name
			return &digest.Source{ID: 1, Name: name}, nil
		}

		r := rf.runner()

		require.NoError(t, r.Run(context.Background(), "Hacker News", pipeline.RunOptions{}))
		assert.Equal(t, "Hacker News", lookedUpName)
	})

	t.Run("unknown source propagates not found", func(t *testing.T) {
		t.Parallel()

		rf := newRunnerFixture()
		rf.sources.FindSourceByNameFn = func(ctx context.Context, name string) (*digest.Source, error) {
			return nil, digest.Errorf(digest.ENOTFOUND, "source not found")
		}

		r := rf.runner()

		err := r.Run(context.Background(), "Nope", pipeline.RunOptions{})

		require.Error(t, err)
		assert.Equal(t, digest.ENOTFOUND, digest.ErrorCode(err))
	})
}

func TestRunner_RunAll(t *testing.T) {
	t.Parallel()

	rf := newRunnerFixture()
	rf.sources.FindSourcesFn = func(ctx context.Context, filter digest.SourceFilter) ([]*digest.Source, error) {
		require.NotNil(t, filter.Active)
		assert.True(t, *filter.Active)
		return []*digest.Source{
			{ID: 1, Name: "Works"},
			{ID: 2, Name: "Broken"},
		}, nil
	}
	rf.adapter.ProduceFn = func(ctx context.Context) ([]digest.CandidateItem, error) {
		return []digest.CandidateItem{validItem("http://x/1")}, nil
	}

	// The resolver fails for the second source; the first still runs.
	resolve := func(source *digest.Source) (digest.SourceAdapter, error) {
		if source.Name == "Broken" {
			return nil, digest.Errorf(digest.EINVALID, "no adapter for source")
		}
		return rf.adapter, nil
	}
	r := pipeline.NewRunner(rf.orchestrator(), rf.sources, rf.articles, resolve,
		pipeline.WithRunnerLogger(quietLogger()))

	ok, failed := r.RunAll(context.Background(), pipeline.RunOptions{})

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	assert.Len(t, rf.created, 1)
}
