package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const maxFetchBytes = 20 * 1024 * 1024

// StaticPage implements Page over plain HTTP and a parsed document.
// It cannot execute scripts or dispatch clicks; interactive operations
// return ErrNotInteractive and callers degrade to partial results.
// It doubles as the test substrate via NewStaticPageFromHTML.
type StaticPage struct {
	client    *http.Client
	userAgent string
	url       string
	html      string
	doc       *goquery.Document
}

// NewStaticPage returns an HTTP-backed page with no document loaded.
func NewStaticPage(userAgent string) *StaticPage {
	return &StaticPage{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: userAgent,
	}
}

// NewStaticPageFromHTML returns a page pre-loaded with markup. Navigate
// and Reload on such a page keep the given document.
func NewStaticPageFromHTML(html string) (*StaticPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return &StaticPage{html: html, doc: doc}, nil
}

func (p *StaticPage) Navigate(ctx context.Context, url string) error {
	p.url = url
	if p.client == nil {
		return nil
	}
	return p.fetch(ctx, url)
}

func (p *StaticPage) fetch(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &NavigationError{URL: url, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return &NavigationError{URL: url, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	p.html = string(body)
	p.doc = doc
	return nil
}

func (p *StaticPage) AwaitStable(ctx context.Context, timeout time.Duration) error {
	return nil
}

func (p *StaticPage) Reload(ctx context.Context) error {
	if p.client == nil || p.url == "" {
		return nil
	}
	return p.fetch(ctx, p.url)
}

func (p *StaticPage) Query(ctx context.Context, selector string) ([]Element, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	var els []Element
	p.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		els = append(els, &staticElement{sel: sel})
	})
	return els, nil
}

func (p *StaticPage) QueryOne(ctx context.Context, selector string) (Element, error) {
	els, err := p.Query(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

func (p *StaticPage) Content(ctx context.Context) (string, error) {
	if p.doc == nil {
		return "", fmt.Errorf("no document loaded")
	}
	return p.html, nil
}

func (p *StaticPage) CurrentURL() string { return p.url }

func (p *StaticPage) Close() error { return nil }

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Text(ctx context.Context) (string, error) {
	return e.sel.Text(), nil
}

func (e *staticElement) Attribute(ctx context.Context, name string) (string, error) {
	v, _ := e.sel.Attr(name)
	return v, nil
}

func (e *staticElement) TagName(ctx context.Context) (string, error) {
	return goquery.NodeName(e.sel), nil
}

func (e *staticElement) Click(ctx context.Context) error {
	return ErrNotInteractive
}

func (e *staticElement) Query(ctx context.Context, selector string) ([]Element, error) {
	var els []Element
	e.sel.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		els = append(els, &staticElement{sel: sel})
	})
	return els, nil
}

func (e *staticElement) QueryOne(ctx context.Context, selector string) (Element, error) {
	els, err := e.Query(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}
