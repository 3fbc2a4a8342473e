package trafilatura_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/digest"
	"github.com/fwojciec/digest/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Why Batch Pipelines Win</title></head>
<body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<main>
<article>
<h1>Why Batch Pipelines Win</h1>
<p>Batch pipelines trade latency for simplicity. When freshness requirements
are measured in hours, a periodic run with idempotent writes beats a
streaming topology on every operational axis that matters.</p>
<p>The second advantage is failure isolation. A batch either completes an
item or skips it; there is no half-processed state to reconcile after a
crash, because re-running the batch is always safe.</p>
</article>
</main>
<footer>Copyright 2024</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts main content", func(t *testing.T) {
		t.Parallel()

		e := trafilatura.NewExtractor()

		got, err := e.Extract(articleHTML)

		require.NoError(t, err)
		assert.Equal(t, "Why Batch Pipelines Win", got.Title)
		assert.Contains(t, got.ContentHTML, "failure isolation")
		assert.NotContains(t, got.ContentHTML, "Copyright 2024")
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		e := trafilatura.NewExtractor()

		_, err := e.Extract("")

		require.Error(t, err)
		assert.Equal(t, digest.EINVALID, digest.ErrorCode(err))
	})

	t.Run("no extractable content", func(t *testing.T) {
		t.Parallel()

		e := trafilatura.NewExtractor()

		_, err := e.Extract("<html><body></body></html>")

		require.Error(t, err)
		assert.Equal(t, digest.EINVALID, digest.ErrorCode(err))
	})
}

func TestExtractor_ExtractFromURL(t *testing.T) {
	t.Parallel()

	e := trafilatura.NewExtractor()

	got, err := e.ExtractFromURL(articleHTML, "https://example.com/posts/batch")

	require.NoError(t, err)
	assert.True(t, strings.Contains(got.ContentHTML, "idempotent writes"))
}
