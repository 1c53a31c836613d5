package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

const userAgent = "PracticeScoutBot/1.0 (+https://practicescout.ca) contact: dev@practicescout.ca"

// maxBodyBytes caps how much of a response we read; broker pages are well
// under this and anything larger is not a listing.
const maxBodyBytes = 8 << 20

// Client retrieves broker pages. Static HTTP is the cheap path; Rendered
// falls back to a browser session when a site builds its content client-side.
type Client struct {
	httpClient *http.Client
	limiter    *hostLimiter
	browser    *browserPool
}

// NewClient builds a fetch client. renderWorkers caps the number of
// concurrent browser sessions; hostRPS caps the request rate per target host.
func NewClient(httpClient *http.Client, renderWorkers int, hostRPS float64) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		limiter:    newHostLimiter(hostRPS),
		browser:    newBrowserPool(renderWorkers),
	}
}

// Close tears down the shared browser driver.
func (c *Client) Close() {
	c.browser.close()
}

// Static performs a header-injected GET, following redirects. Non-2xx
// responses are errors.
func (c *Client) Static(ctx context.Context, pageURL string) (string, error) {
	if host := hostOf(pageURL); host != "" {
		if err := c.limiter.wait(ctx, host); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-CA,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: pageURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	return string(body), nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
