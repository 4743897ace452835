package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// BrowserConfig controls the headless Chrome session.
type BrowserConfig struct {
	Headless    bool          `json:"headless"`
	ChromePath  string        `json:"chrome_path,omitempty"`
	UserAgent   string        `json:"user_agent"`
	WindowW     int           `json:"window_width"`
	WindowH     int           `json:"window_height"`
	NavTimeout  time.Duration `json:"nav_timeout"`
	UserDataDir string        `json:"user_data_dir,omitempty"`
}

// DefaultBrowserConfig returns settings suitable for unattended crawls.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   true,
		UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		WindowW:    1920,
		WindowH:    1080,
		NavTimeout: 60 * time.Second,
	}
}

// ChromePage drives a single headless-Chrome tab. The whole crawl
// shares one ChromePage; it is never used from two goroutines at once.
type ChromePage struct {
	cfg         BrowserConfig
	allocCancel context.CancelFunc
	tabCancel   context.CancelFunc
	tabCtx      context.Context
	url         string
}

// NewChromePage launches Chrome and opens one tab.
func NewChromePage(ctx context.Context, cfg BrowserConfig) (*ChromePage, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(cfg.WindowW, cfg.WindowH),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so launch failures surface here, not
	// on the first navigation.
	if err := chromedp.Run(tabCtx, network.Enable()); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	log.Debug().
		Bool("headless", cfg.Headless).
		Str("component", "browser").
		Msg("Chrome session started")

	return &ChromePage{
		cfg:         cfg,
		allocCancel: allocCancel,
		tabCancel:   tabCancel,
		tabCtx:      tabCtx,
	}, nil
}

// run executes actions on the tab while honoring the caller's context.
func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tabCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(runCtx, deadline)
		defer cancel()
	}
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stop:
		}
	}()
	return chromedp.Run(runCtx, actions...)
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, p.cfg.NavTimeout)
	defer cancel()
	if err := p.run(navCtx, chromedp.Navigate(url)); err != nil {
		return &NavigationError{URL: url, Err: err}
	}
	p.url = url
	return nil
}

// AwaitStable waits for the body to be ready, then falls back to a
// readyState probe when the wait times out. A page stuck loading a
// slow third-party asset is still usable for extraction.
func (p *ChromePage) AwaitStable(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.run(waitCtx, chromedp.WaitReady("body", chromedp.ByQuery)); err == nil {
		return nil
	}
	var state string
	if err := p.run(ctx, chromedp.Evaluate("document.readyState", &state)); err != nil {
		return fmt.Errorf("probing readiness: %w", err)
	}
	if state != "interactive" && state != "complete" {
		log.Debug().
			Str("state", state).
			Str("url", p.url).
			Msg("page not fully loaded, continuing anyway")
	}
	return nil
}

func (p *ChromePage) Reload(ctx context.Context) error {
	navCtx, cancel := context.WithTimeout(ctx, p.cfg.NavTimeout)
	defer cancel()
	if err := p.run(navCtx, chromedp.Reload()); err != nil {
		return &NavigationError{URL: p.url, Err: err}
	}
	return nil
}

func (p *ChromePage) Query(ctx context.Context, selector string) ([]Element, error) {
	expr := fmt.Sprintf("document.querySelectorAll(%s).length", jsString(selector))
	var n int
	if err := p.run(ctx, chromedp.Evaluate(expr, &n)); err != nil {
		return nil, fmt.Errorf("querying %q: %w", selector, err)
	}
	els := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		els = append(els, &chromeElement{
			page: p,
			expr: fmt.Sprintf("document.querySelectorAll(%s)[%d]", jsString(selector), i),
		})
	}
	return els, nil
}

func (p *ChromePage) QueryOne(ctx context.Context, selector string) (Element, error) {
	els, err := p.Query(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

func (p *ChromePage) Content(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading page content: %w", err)
	}
	return html, nil
}

func (p *ChromePage) CurrentURL() string { return p.url }

func (p *ChromePage) Close() error {
	p.tabCancel()
	p.allocCancel()
	return nil
}

// chromeElement addresses one element by a JavaScript expression that
// re-resolves it on every operation. After a reload the expression
// points at the equivalent element of the fresh DOM, which is exactly
// what the assessment loop needs when it re-reads inputs post-submit.
type chromeElement struct {
	page *ChromePage
	expr string
}

// eval runs a guarded IIFE over the element expression so a vanished
// element yields the zero value instead of a JS exception.
func (e *chromeElement) eval(ctx context.Context, body string, res interface{}) error {
	script := fmt.Sprintf("(function(){var el=%s; %s})()", e.expr, body)
	return e.page.run(ctx, chromedp.Evaluate(script, res))
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var s string
	if err := e.eval(ctx, "return el ? el.textContent : '';", &s); err != nil {
		return "", fmt.Errorf("reading text: %w", err)
	}
	return s, nil
}

func (e *chromeElement) Attribute(ctx context.Context, name string) (string, error) {
	var s string
	body := fmt.Sprintf("if(!el) return ''; var v=el.getAttribute(%s); return v===null ? '' : v;", jsString(name))
	if err := e.eval(ctx, body, &s); err != nil {
		return "", fmt.Errorf("reading attribute %q: %w", name, err)
	}
	return s, nil
}

func (e *chromeElement) TagName(ctx context.Context) (string, error) {
	var s string
	if err := e.eval(ctx, "return el ? el.tagName.toLowerCase() : '';", &s); err != nil {
		return "", fmt.Errorf("reading tag name: %w", err)
	}
	return s, nil
}

func (e *chromeElement) Click(ctx context.Context) error {
	var ok bool
	if err := e.eval(ctx, "if(!el) return false; el.click(); return true;", &ok); err != nil {
		return fmt.Errorf("clicking element: %w", err)
	}
	if !ok {
		return fmt.Errorf("element %s no longer present", e.expr)
	}
	return nil
}

func (e *chromeElement) Query(ctx context.Context, selector string) ([]Element, error) {
	var n int
	body := fmt.Sprintf("return el ? el.querySelectorAll(%s).length : 0;", jsString(selector))
	if err := e.eval(ctx, body, &n); err != nil {
		return nil, fmt.Errorf("querying %q: %w", selector, err)
	}
	els := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		els = append(els, &chromeElement{
			page: e.page,
			expr: fmt.Sprintf("%s.querySelectorAll(%s)[%d]", e.expr, jsString(selector), i),
		})
	}
	return els, nil
}

func (e *chromeElement) QueryOne(ctx context.Context, selector string) (Element, error) {
	els, err := e.Query(ctx, selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, nil
	}
	return els[0], nil
}

// jsString quotes s as a JavaScript string literal. Go's quoting rules
// are a safe subset of JS string syntax for the selectors we pass.
func jsString(s string) string {
	q := strconv.Quote(s)
	// Guard against "</script>"-style breakage inside inline scripts.
	return strings.ReplaceAll(q, "</", "<\\/")
}
