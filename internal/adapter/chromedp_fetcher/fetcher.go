package chromedp_fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// ChromedpFetcher downloads images through headless Chrome, for hosts that
// reject plain HTTP clients.
type ChromedpFetcher struct {
	allocatorPool *sync.Pool
	timeout       time.Duration
}

// NewChromedpFetcher creates a fetcher with a pre-warmed allocator pool.
func NewChromedpFetcher(poolSize int, timeout time.Duration, userAgent string) *ChromedpFetcher {
	pool := &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(userAgent),
			)
			allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
			return allocCtx
		},
	}

	for i := 0; i < poolSize; i++ {
		allocCtx := pool.Get().(context.Context)
		pool.Put(allocCtx)
	}

	return &ChromedpFetcher{allocatorPool: pool, timeout: timeout}
}

// Fetch navigates to the image URL and returns the body of the document response.
func (f *ChromedpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	allocCtx := f.allocatorPool.Get().(context.Context)
	defer f.allocatorPool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		slog.Debug(fmt.Sprintf(format, args...))
	}))
	defer cancel()

	taskCtx, cancel = withOptionalTimeout(taskCtx, f.timeout)
	defer cancel()

	// Tie the browser task to the caller's lifetime as well.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		mu        sync.Mutex
		requestID network.RequestID
		status    int64
	)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if requestID == "" {
			requestID = e.RequestID
			status = e.Response.Status
		}
	})

	var body []byte
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			mu.Lock()
			id, code := requestID, status
			mu.Unlock()
			if id == "" {
				return fmt.Errorf("no document response for %s", url)
			}
			if code != 200 {
				return fmt.Errorf("fetch %s: status %d", url, code)
			}
			var err error
			body, err = network.GetResponseBody(id).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser fetch %s: %w", url, err)
	}

	slog.Debug("Fetched image through browser", "url", url, "bytes", len(body))
	return body, nil
}

// withOptionalTimeout bounds ctx by timeout; zero or negative means no limit.
func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
