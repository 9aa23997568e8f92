package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-knowledge-bot/pkg/apperror"
	"ai-knowledge-bot/pkg/utils"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxBytes  = 5 << 20
	defaultUserAgent = "ai-knowledge-bot/1.0 (+https://core.telegram.org/bots)"
)

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrNoContent  = errors.New("no text content")

	ErrUnsupportedContent = errors.New("unsupported content type")
)

// DocumentLoader turns a resource location into text documents.
type DocumentLoader interface {
	Load(ctx context.Context, rawURL string) ([]utils.Document, error)
}

type WebLoader struct {
	Client    *http.Client
	UserAgent string
	MaxBytes  int64
}

var _ DocumentLoader = &WebLoader{}

func NewWebLoader(timeout time.Duration, maxBytes int64) *WebLoader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &WebLoader{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: defaultUserAgent,
		MaxBytes:  maxBytes,
	}
}

func (l *WebLoader) Load(ctx context.Context, rawURL string) ([]utils.Document, error) {
	const op = "loader.Load"

	target, err := parseURL(rawURL)
	if err != nil {
		return nil, apperror.Transport(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, apperror.Transport(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", l.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9")

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, apperror.Transport(op, fmt.Errorf("fetch %s: %w", target, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperror.Transport(op, fmt.Errorf("fetch %s: status %d", target, resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, l.MaxBytes))
	if err != nil {
		return nil, apperror.Transport(op, fmt.Errorf("read body: %w", err))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(raw)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, apperror.Transport(op, fmt.Errorf("%s: %w %q", target, ErrUnsupportedContent, contentType))
	}

	var title, text string
	switch mediaType {
	case "text/plain":
		text = normalizeLines(string(raw))
	case "text/html", "application/xhtml+xml":
		title, text, err = extractHTML(bytes.NewReader(raw))
		if err != nil {
			return nil, apperror.Transport(op, fmt.Errorf("parse html: %w", err))
		}
	default:
		return nil, apperror.Transport(op, fmt.Errorf("%s: %w %q", target, ErrUnsupportedContent, mediaType))
	}

	if text == "" {
		return nil, apperror.Transport(op, fmt.Errorf("%s: %w", target, ErrNoContent))
	}

	return []utils.Document{{
		Content: text,
		Metadata: map[string]string{
			"source":       target.String(),
			"title":        title,
			"content_type": contentType,
		},
	}}, nil
}

func parseURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return u, nil
}

func extractHTML(r io.Reader) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, template, svg, iframe, head").Remove()
	// block elements end a line
	doc.Find("p, div, br, li, tr, pre, section, article, header, footer, h1, h2, h3, h4, h5, h6").
		Each(func(_ int, s *goquery.Selection) {
			s.AppendHtml("\n")
		})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	return title, normalizeLines(root.Text()), nil
}

func normalizeLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
