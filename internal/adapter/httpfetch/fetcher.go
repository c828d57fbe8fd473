package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxImageBytes caps a single download.
const maxImageBytes = 32 << 20

// Fetcher implements repository.ImageFetcher with a plain HTTP GET.
type Fetcher struct {
	httpClient *http.Client
	proxies    *ProxyManager
}

// NewFetcher builds a fetcher whose requests go through the rotating proxies.
func NewFetcher(timeout time.Duration, proxies *ProxyManager) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxies.Proxy
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		proxies:    proxies,
	}
}

// Fetch downloads the image at url.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.proxies.UserAgent())
	req.Header.Set("Accept", "image/*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("fetch %s: image larger than %d bytes", url, maxImageBytes)
	}
	return data, nil
}
