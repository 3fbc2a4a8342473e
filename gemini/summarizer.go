// Package gemini implements summarization using Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/digest"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Ensure Summarizer implements digest.Summarizer at compile time.
var _ digest.Summarizer = (*Summarizer)(nil)

// Summarizer implements digest.Summarizer using Google Gemini.
type Summarizer struct {
	client *genai.Client
	model  string
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(s *Summarizer) {
		s.model = model
	}
}

// NewSummarizer creates a new Summarizer.
func NewSummarizer(client *genai.Client, opts ...Option) *Summarizer {
	s := &Summarizer{client: client, model: defaultModel}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize produces an abstract of the article content, followed by a
// discussion roundup when comments are present.
func (s *Summarizer) Summarize(ctx context.Context, content, comments string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", digest.Errorf(digest.EINVALID, "content required")
	}

	prompt := BuildUserPrompt(content, comments)
	config := BuildConfig(comments != "")

	result, err := s.client.Models.GenerateContent(ctx, s.model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", digest.Errorf(digest.EINTERNAL, "gemini returned nil result")
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", digest.Errorf(digest.EINTERNAL, "gemini returned empty summary")
	}

	return text, nil
}

// BuildConfig returns the GenerateContentConfig for summarization calls.
// Temperature zero keeps repeated runs over the same content stable.
func BuildConfig(withComments bool) *genai.GenerateContentConfig {
	temp := float32(0)

	instruction := "You are an editor producing concise article abstracts for a daily digest. Summarize the key points, findings, and conclusions of the article in a few short paragraphs. Write in plain prose, without headings or bullet lists."
	if withComments {
		instruction += " After the abstract, add a short roundup of the discussion, covering the main viewpoints and notable disagreements."
	}

	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt builds the user prompt containing the article and any
// discussion thread.
func BuildUserPrompt(content, comments string) string {
	var sb strings.Builder
	sb.WriteString("<article>\n")
	sb.WriteString(content)
	sb.WriteString("\n</article>\n")
	if comments != "" {
		sb.WriteString("\n<discussion>\n")
		sb.WriteString(comments)
		sb.WriteString("\n</discussion>\n")
	}
	fmt.Fprintf(&sb, "\nSummarize the article above.")
	if comments != "" {
		sb.WriteString(" Then summarize the discussion.")
	}
	return sb.String()
}
