package fetch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	renderUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 13_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0 Safari/537.36 PracticeScoutBot/1.0"
	navTimeout      = 20 * time.Second
	settleDelay     = 1200 * time.Millisecond
)

// browserPool shares one playwright driver and caps concurrent rendered
// sessions. Each Rendered call gets an isolated browser that is torn down
// unconditionally, so a failed navigation never leaks a session.
type browserPool struct {
	mu  sync.Mutex
	pw  *playwright.Playwright
	sem chan struct{}
}

func newBrowserPool(maxSessions int) *browserPool {
	if maxSessions < 1 {
		maxSessions = 1
	}
	return &browserPool{sem: make(chan struct{}, maxSessions)}
}

func (p *browserPool) driver() (*playwright.Playwright, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pw != nil {
		return p.pw, nil
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	p.pw = pw
	return pw, nil
}

func (p *browserPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pw != nil {
		p.pw.Stop()
		p.pw = nil
	}
}

// Rendered fetches a page with JavaScript executed. The wait selector is a
// best-effort hint: a timeout waiting for it is swallowed and whatever HTML
// is present gets captured.
func (c *Client) Rendered(ctx context.Context, pageURL, waitSelector string) (string, error) {
	select {
	case c.browser.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-c.browser.sem }()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	pw, err := c.browser.driver()
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("launch browser: %w", err)}
	}
	defer browser.Close()

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String(renderUserAgent),
		Viewport:  &playwright.Size{Width: 1280, Height: 1200},
	})
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("create page: %w", err)}
	}

	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(navTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("navigate: %w", err)}
	}

	if waitSelector != "" {
		err := page.Locator(waitSelector).First().WaitFor(playwright.LocatorWaitForOptions{
			Timeout: playwright.Float(float64(navTimeout.Milliseconds())),
		})
		if err != nil {
			// Content may still be usable without the hint element.
			log.Printf("Render wait for %q on %s: %v", waitSelector, pageURL, err)
		}
	}

	page.WaitForTimeout(float64(settleDelay.Milliseconds()))

	html, err := page.Content()
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("capture content: %w", err)}
	}
	return html, nil
}
