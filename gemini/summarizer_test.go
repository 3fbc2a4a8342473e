package gemini_test

import (
	"testing"

	"github.com/fwojciec/digest/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUserPrompt(t *testing.T) {
	t.Parallel()

	t.Run("article only", func(t *testing.T) {
		t.Parallel()

		got := gemini.BuildUserPrompt("the article text", "")

		assert.Contains(t, got, "<article>\nthe article text\n</article>")
		assert.NotContains(t, got, "<discussion>")
		assert.NotContains(t, got, "Then summarize the discussion.")
	})

	t.Run("article with discussion", func(t *testing.T) {
		t.Parallel()

		got := gemini.BuildUserPrompt("the article text", "[alice]: hot take")

		assert.Contains(t, got, "<article>\nthe article text\n</article>")
		assert.Contains(t, got, "<discussion>\n[alice]: hot take\n</discussion>")
		assert.Contains(t, got, "Then summarize the discussion.")
	})
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("deterministic temperature", func(t *testing.T) {
		t.Parallel()

		config := gemini.BuildConfig(false)

		require.NotNil(t, config.Temperature)
		assert.Equal(t, float32(0), *config.Temperature)
	})

	t.Run("discussion roundup only when comments present", func(t *testing.T) {
		t.Parallel()

		without := gemini.BuildConfig(false)
		with := gemini.BuildConfig(true)

		require.NotNil(t, without.SystemInstruction)
		require.NotNil(t, with.SystemInstruction)
		assert.NotContains(t, without.SystemInstruction.Parts[0].Text, "roundup")
		assert.Contains(t, with.SystemInstruction.Parts[0].Text, "roundup")
	})
}
