package httputil

import (
	"net/http"
	"net/url"
	"time"

	"practicescout/config"
)

type Clients struct {
	Scraping *http.Client // for target broker sites, optionally proxied
	API      *http.Client // direct, for internal endpoints
}

func NewClients(proxyCfg *config.ProxyConfig) *Clients {
	transport := &http.Transport{}
	if proxyCfg != nil && proxyCfg.URL != "" {
		if proxyURL, err := url.Parse(proxyCfg.URL); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	scraping := &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}

	return &Clients{
		Scraping: scraping,
		API:      &http.Client{Timeout: 30 * time.Second},
	}
}
