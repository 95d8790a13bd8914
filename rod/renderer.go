package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/artdir"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// DefaultHydrationWait bounds how long Render waits for the app root to
// receive content after the load event.
const DefaultHydrationWait = 5 * time.Second

// Ensure Renderer implements artdir.Renderer at compile time.
var _ artdir.Renderer = (*Renderer)(nil)

// Renderer retrieves hydrated HTML using headless Chrome. Chrome keeps
// growing its memory footprint under load, so the browser is replaced
// after maxPages renders.
//
// Renderer is safe for concurrent use.
type Renderer struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount int64
	maxPages  int64
	selector  string
	wait      time.Duration
	mu        sync.Mutex
	closed    atomic.Bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithMaxPages sets the number of pages rendered before the browser is recycled.
func WithMaxPages(n int64) Option {
	return func(r *Renderer) {
		r.maxPages = n
	}
}

// WithHydration sets the selector that marks a hydrated page and how long
// to wait for it. An empty selector disables the wait.
func WithHydration(selector string, wait time.Duration) Option {
	return func(r *Renderer) {
		r.selector = selector
		r.wait = wait
	}
}

// NewRenderer launches a headless Chrome browser.
// Close must be called when the Renderer is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		maxPages: DefaultMaxPages,
		selector: "#root > *",
		wait:     DefaultHydrationWait,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.launchBrowser(); err != nil {
		return nil, err
	}
	return r, nil
}

// Render navigates to the URL and returns the HTML once the app root has
// content or the hydration wait expires.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.closed.Load() {
		return "", artdir.Errorf(artdir.EINVALID, "renderer closed")
	}

	page, err := r.currentBrowser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()
	defer atomic.AddInt64(&r.pageCount, 1)

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	if r.selector != "" {
		// A page that never hydrates is still returned; the caller audits it.
		if _, err := page.Timeout(r.wait).Element(r.selector); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				return "", err
			}
		}
	}

	return page.HTML()
}

// Close releases browser resources. Close is safe to call multiple times.
func (r *Renderer) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closeBrowser()
}

// currentBrowser returns the browser, recycling it first once the page
// count has reached maxPages.
func (r *Renderer) currentBrowser() *rod.Browser {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxPages > 0 && atomic.LoadInt64(&r.pageCount) >= r.maxPages {
		r.recycleBrowser()
	}
	return r.browser
}

// launchBrowser starts a new browser instance with stability flags.
func (r *Renderer) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	r.browser = browser
	r.launcher = lnchr
	return nil
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (r *Renderer) closeBrowser() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

// recycleBrowser starts a fresh browser and closes the old one.
// If the launch fails the old browser is kept.
// Must be called with mu held.
func (r *Renderer) recycleBrowser() {
	oldBrowser, oldLauncher := r.browser, r.launcher
	r.browser, r.launcher = nil, nil

	if err := r.launchBrowser(); err != nil {
		r.browser, r.launcher = oldBrowser, oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	atomic.StoreInt64(&r.pageCount, 0)
}

// LauncherPID returns the process ID of the browser launcher.
func (r *Renderer) LauncherPID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.launcher == nil {
		return 0
	}
	return r.launcher.PID()
}
