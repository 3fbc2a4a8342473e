package hn_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fwojciec/digest"
	"github.com/fwojciec/digest/hn"
	"github.com/fwojciec/digest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityConverter passes comment text through unchanged.
func identityConverter() *mock.Converter {
	return &mock.Converter{
		ConvertFn: func(html string) (string, error) {
			return html, nil
		},
	}
}

// serveItem returns a test server that answers every request with the given
// JSON document.
func serveItem(t *testing.T, doc any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(doc))
	}))
}

func TestCommentService_FetchComments(t *testing.T) {
	t.Parallel()

	t.Run("flattens thread in display order", func(t *testing.T) {
		t.Parallel()

		doc := map[string]any{
			"author": "op",
			"title":  "Ask HN: a question",
			"text":   "the question",
			"children": []any{
				map[string]any{
					"author": "alice",
					"text":   "first comment",
					"children": []any{
						map[string]any{
							"author":   "bob",
							"text":     "a reply",
							"children": []any{},
						},
					},
				},
				map[string]any{
					"author":   "carol",
					"text":     "second comment",
					"children": []any{},
				},
			},
		}
		srv := serveItem(t, doc)
		defer srv.Close()

		s := hn.NewCommentService(identityConverter(), hn.WithBaseURL(srv.URL))

		got, err := s.FetchComments(context.Background(), "https://news.ycombinator.com/item?id=12345")

		require.NoError(t, err)
		want := "[op]: the question\n\n" +
			"  [alice]: first comment\n\n" +
			"    [bob]: a reply\n\n" +
			"  [carol]: second comment"
		assert.Equal(t, want, got)
	})

	t.Run("skips deleted comments and names anonymous authors", func(t *testing.T) {
		t.Parallel()

		doc := map[string]any{
			"author": "op",
			"children": []any{
				map[string]any{"author": "ghost", "text": "", "children": []any{}},
				map[string]any{"author": "", "text": "unattributed", "children": []any{}},
			},
		}
		srv := serveItem(t, doc)
		defer srv.Close()

		s := hn.NewCommentService(identityConverter(), hn.WithBaseURL(srv.URL))

		got, err := s.FetchComments(context.Background(), "https://news.ycombinator.com/item?id=1")

		require.NoError(t, err)
		assert.Equal(t, "  [anonymous]: unattributed", got)
	})

	t.Run("no comments yields empty string", func(t *testing.T) {
		t.Parallel()

		srv := serveItem(t, map[string]any{"author": "op", "children": []any{}})
		defer srv.Close()

		s := hn.NewCommentService(identityConverter(), hn.WithBaseURL(srv.URL))

		got, err := s.FetchComments(context.Background(), "https://news.ycombinator.com/item?id=1")

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("caps traversal depth", func(t *testing.T) {
		t.Parallel()

		// A single chain nested past the depth cap.
		leaf := map[string]any{"author": "u", "text": "deepest", "children": []any{}}
		node := leaf
		for i := 0; i < hn.MaxCommentDepth+10; i++ {
			node = map[string]any{"author": "u", "text": "c", "children": []any{node}}
		}
		srv := serveItem(t, map[string]any{"author": "op", "children": []any{node}})
		defer srv.Close()

		s := hn.NewCommentService(identityConverter(), hn.WithBaseURL(srv.URL))

		got, err := s.FetchComments(context.Background(), "https://news.ycombinator.com/item?id=1")

		require.NoError(t, err)
		assert.NotContains(t, got, "deepest")
		assert.Len(t, strings.Split(got, "\n\n"), hn.MaxCommentDepth)
	})

	t.Run("delegates non-HN URLs to the fallback", func(t *testing.T) {
		t.Parallel()

		fallback := &mock.Normalizer{
			NormalizeFn: func(ctx context.Context, url string) (string, error) {
				return "fallback text for " + url, nil
			},
		}

		s := hn.NewCommentService(identityConverter(), hn.WithFallback(fallback))

		got, err := s.FetchComments(context.Background(), "https://lobste.rs/s/abc123")

		require.NoError(t, err)
		assert.Equal(t, "fallback text for https://lobste.rs/s/abc123", got)
	})

	t.Run("non-HN URL without fallback is invalid", func(t *testing.T) {
		t.Parallel()

		s := hn.NewCommentService(identityConverter())

		_, err := s.FetchComments(context.Background(), "https://example.com/discussion")

		require.Error(t, err)
		assert.Equal(t, digest.EINVALID, digest.ErrorCode(err))
	})

	t.Run("server error is unavailable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		s := hn.NewCommentService(identityConverter(), hn.WithBaseURL(srv.URL))

		_, err := s.FetchComments(context.Background(), "https://news.ycombinator.com/item?id=1")

		require.Error(t, err)
		assert.Equal(t, digest.EUNAVAILABLE, digest.ErrorCode(err))
	})
}

func TestFrontPageAdapter_Produce(t *testing.T) {
	t.Parallel()

	t.Run("maps hits to candidate items", func(t *testing.T) {
		t.Parallel()

		doc := map[string]any{
			"hits": []any{
				map[string]any{
					"objectID":   "100",
					"title":      "External story",
					"url":        "https://example.com/post",
					"created_at": "2024-01-01T00:00:00Z",
				},
				map[string]any{
					"objectID":   "200",
					"title":      "Ask HN: something",
					"url":        "",
					"created_at": "2024-01-02T00:00:00Z",
				},
			},
		}
		srv := serveItem(t, doc)
		defer srv.Close()

		a := hn.NewFrontPageAdapter(hn.WithAdapterBaseURL(srv.URL))

		items, err := a.Produce(context.Background())

		require.NoError(t, err)
		require.Len(t, items, 2)

		assert.Equal(t, "https://example.com/post", items[0].URL)
		assert.Equal(t, "External story", items[0].Title)
		assert.Equal(t, "https://news.ycombinator.com/item?id=100", items[0].CommentsURL)

		// Text posts point at their own discussion page.
		assert.Equal(t, "https://news.ycombinator.com/item?id=200", items[1].URL)
		assert.Equal(t, items[1].URL, items[1].CommentsURL)
	})

	t.Run("server error is unavailable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		a := hn.NewFrontPageAdapter(hn.WithAdapterBaseURL(srv.URL))

		_, err := a.Produce(context.Background())

		require.Error(t, err)
		assert.Equal(t, digest.EUNAVAILABLE, digest.ErrorCode(err))
	})
}
