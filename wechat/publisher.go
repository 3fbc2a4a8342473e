// Package wechat publishes digest reports to a WeChat Official Account
// using the draft and freepublish APIs.
package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/digest"
)

// DefaultBaseURL is the WeChat API endpoint.
const DefaultBaseURL = "https://api.weixin.qq.com"

// Ensure Publisher implements digest.Publisher at compile time.
var _ digest.Publisher = (*Publisher)(nil)

// Publisher pushes a report through the three-step WeChat flow: upload the
// cover image, create a draft, submit the draft for publication.
type Publisher struct {
	client    *http.Client
	baseURL   string
	appID     string
	appSecret string
	now       func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithBaseURL overrides the API endpoint. Useful for testing.
func WithBaseURL(baseURL string) Option {
	return func(p *Publisher) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Publisher) {
		p.client = client
	}
}

// WithNow overrides the clock. Useful for testing.
func WithNow(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// NewPublisher creates a Publisher for the given Official Account
// credentials.
func NewPublisher(appID, appSecret string, opts ...Option) *Publisher {
	p := &Publisher{
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   DefaultBaseURL,
		appID:     appID,
		appSecret: appSecret,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// apiError is the error envelope WeChat includes in most responses.
type apiError struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (e apiError) ok() bool {
	return e.ErrCode == 0
}

// PublishReport uploads the cover from mediaPath, drafts the report, and
// submits the draft.
func (p *Publisher) PublishReport(ctx context.Context, reportPath, sourceName, mediaPath string) error {
	if p.appID == "" || p.appSecret == "" {
		return digest.Errorf(digest.EINVALID, "wechat credentials required")
	}

	content, err := os.ReadFile(reportPath)
	if err != nil {
		return digest.Errorf(digest.ENOTFOUND, "read report %s: %v", reportPath, err)
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		return err
	}

	thumbMediaID, err := p.uploadCover(ctx, token, mediaPath)
	if err != nil {
		return err
	}

	mediaID, err := p.addDraft(ctx, token, sourceName, string(content), thumbMediaID)
	if err != nil {
		return err
	}

	return p.submit(ctx, token, mediaID)
}

// accessToken exchanges the app credentials for a short-lived API token.
func (p *Publisher) accessToken(ctx context.Context) (string, error) {
	u := fmt.Sprintf("%s/cgi-bin/token?grant_type=client_credential&appid=%s&secret=%s",
		p.baseURL, url.QueryEscape(p.appID), url.QueryEscape(p.appSecret))

	var result struct {
		apiError
		AccessToken string `json:"access_token"`
	}
	if err := p.getJSON(ctx, u, &result); err != nil {
		return "", err
	}
	if !result.ok() || result.AccessToken == "" {
		return "", digest.Errorf(digest.EUNAVAILABLE, "wechat token request failed: %d %s",
			result.ErrCode, result.ErrMsg)
	}

	return result.AccessToken, nil
}

// uploadCover uploads the source's cover image as permanent material and
// returns its media ID. Drafts cannot be created without a cover.
func (p *Publisher) uploadCover(ctx context.Context, token, mediaPath string) (string, error) {
	if mediaPath == "" {
		return "", digest.Errorf(digest.EINVALID, "cover image required to publish")
	}

	file, err := os.Open(mediaPath)
	if err != nil {
		return "", digest.Errorf(digest.ENOTFOUND, "open cover image %s: %v", mediaPath, err)
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("media", filepath.Base(mediaPath))
	if err != nil {
		return "", digest.Errorf(digest.EINTERNAL, "build upload: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", digest.Errorf(digest.EINTERNAL, "build upload: %v", err)
	}
	if err := mw.Close(); err != nil {
		return "", digest.Errorf(digest.EINTERNAL, "build upload: %v", err)
	}

	u := fmt.Sprintf("%s/cgi-bin/material/add_material?access_token=%s&type=image",
		p.baseURL, url.QueryEscape(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &body)
	if err != nil {
		return "", digest.Errorf(digest.EINTERNAL, "build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result struct {
		apiError
		MediaID string `json:"media_id"`
	}
	if err := p.doJSON(req, &result); err != nil {
		return "", err
	}
	if !result.ok() || result.MediaID == "" {
		return "", digest.Errorf(digest.EUNAVAILABLE, "wechat cover upload failed: %d %s",
			result.ErrCode, result.ErrMsg)
	}

	return result.MediaID, nil
}

// addDraft creates a draft article from the report and returns its media ID.
func (p *Publisher) addDraft(ctx context.Context, token, sourceName, content, thumbMediaID string) (string, error) {
	title := fmt.Sprintf("%s digest %s", sourceName, p.now().UTC().Format("2006-01-02"))

	payload := map[string]any{
		"articles": []map[string]any{{
			"title":          title,
			"content":        renderHTML(content),
			"thumb_media_id": thumbMediaID,
		}},
	}

	u := fmt.Sprintf("%s/cgi-bin/draft/add?access_token=%s", p.baseURL, url.QueryEscape(token))

	var result struct {
		apiError
		MediaID string `json:"media_id"`
	}
	if err := p.postJSON(ctx, u, payload, &result); err != nil {
		return "", err
	}
	if !result.ok() || result.MediaID == "" {
		return "", digest.Errorf(digest.EUNAVAILABLE, "wechat draft creation failed: %d %s",
			result.ErrCode, result.ErrMsg)
	}

	return result.MediaID, nil
}

// submit queues the draft for publication. Publication itself is
// asynchronous on WeChat's side.
func (p *Publisher) submit(ctx context.Context, token, mediaID string) error {
	u := fmt.Sprintf("%s/cgi-bin/freepublish/submit?access_token=%s", p.baseURL, url.QueryEscape(token))

	var result apiError
	if err := p.postJSON(ctx, u, map[string]any{"media_id": mediaID}, &result); err != nil {
		return err
	}
	if !result.ok() {
		return digest.Errorf(digest.EUNAVAILABLE, "wechat publish failed: %d %s",
			result.ErrCode, result.ErrMsg)
	}

	return nil
}

func (p *Publisher) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return digest.Errorf(digest.EINTERNAL, "build request: %v", err)
	}
	return p.doJSON(req, out)
}

func (p *Publisher) postJSON(ctx context.Context, u string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return digest.Errorf(digest.EINTERNAL, "encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return digest.Errorf(digest.EINTERNAL, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return p.doJSON(req, out)
}

func (p *Publisher) doJSON(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return digest.Errorf(digest.EUNAVAILABLE, "wechat request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return digest.Errorf(digest.EUNAVAILABLE, "wechat HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return digest.Errorf(digest.EUNAVAILABLE, "decode wechat response: %v", err)
	}

	return nil
}

// renderHTML converts the Markdown report to the minimal HTML the draft
// editor accepts: headings and paragraphs only.
func renderHTML(markdown string) string {
	var b strings.Builder
	for _, block := range strings.Split(markdown, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		switch {
		case strings.HasPrefix(block, "## "):
			fmt.Fprintf(&b, "<h2>%s</h2>", strings.TrimPrefix(block, "## "))
		case strings.HasPrefix(block, "# "):
			fmt.Fprintf(&b, "<h1>%s</h1>", strings.TrimPrefix(block, "# "))
		default:
			fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(block, "\n", "<br/>"))
		}
	}
	return b.String()
}
