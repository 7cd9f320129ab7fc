package webclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/employeesapp/internal/logging"
)

// ChromedpClient renders pages in a headless Chrome. Only GET is supported:
// form submission in a browser goes through the uitest page objects.
type ChromedpClient struct {
	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	idleAfter     time.Duration
	timeout       time.Duration
	logger        logging.Logger
}

// NewChromedpClient starts a browser. It fails when no Chrome binary can be
// launched, which callers in tests treat as a reason to skip.
func NewChromedpClient(cfg Config, logger logging.Logger) (*ChromedpClient, error) {
	componentLogger := logger.With(logging.Field{Key: "backend", Value: "chromedp"})

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if cfg.ShowBrowser {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	idleAfter := cfg.IdleAfter
	if idleAfter <= 0 {
		idleAfter = 500 * time.Millisecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	componentLogger.Debug("created chromedp webclient", logging.Field{Key: "idle_after", Value: idleAfter.String()})

	return &ChromedpClient{
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		idleAfter:     idleAfter,
		timeout:       timeout,
		logger:        componentLogger,
	}, nil
}

// BrowserContext returns the context of the running browser. New tabs are
// created from it with chromedp.NewContext.
func (cdc *ChromedpClient) BrowserContext() context.Context {
	return cdc.browserCtx
}

// waitNetworkIdle signals once no request has been in flight for idleAfter.
func waitNetworkIdle(ctx context.Context, idleAfter time.Duration) <-chan struct{} {
	idleChan := make(chan struct{}, 1)
	var activeReqs int32
	var timer *time.Timer
	var timerMutex sync.Mutex
	var once sync.Once

	startTimer := func() {
		timerMutex.Lock()
		defer timerMutex.Unlock()

		if timer != nil {
			timer.Stop()
		}

		timer = time.AfterFunc(idleAfter, func() {
			if atomic.LoadInt32(&activeReqs) == 0 {
				once.Do(func() {
					idleChan <- struct{}{}
				})
			}
		})
	}

	chromedp.ListenTarget(ctx, func(ev any) {
		switch ev.(type) {
		case *network.EventRequestWillBeSent:
			atomic.AddInt32(&activeReqs, 1)
		case *network.EventLoadingFinished, *network.EventLoadingFailed:
			if atomic.AddInt32(&activeReqs, -1) <= 0 {
				startTimer()
			}
		}
	})

	return idleChan
}

type documentResponse struct {
	mu      sync.Mutex
	status  int
	headers http.Header
	url     string
}

func (d *documentResponse) listen(ctx context.Context) {
	chromedp.ListenTarget(ctx, func(ev any) {
		e, ok := ev.(*network.EventResponseReceived)
		if !ok || e.Type != network.ResourceTypeDocument || e.Response == nil {
			return
		}
		hdrs := http.Header{}
		for k, v := range e.Response.Headers {
			// Chrome folds repeated headers into one newline-separated value.
			for _, line := range strings.Split(fmt.Sprint(v), "\n") {
				hdrs.Add(k, line)
			}
		}
		d.mu.Lock()
		d.status = int(e.Response.Status)
		d.headers = hdrs
		d.url = e.Response.URL
		d.mu.Unlock()
	})
}

func (cdc *ChromedpClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	method := strings.ToUpper(req.Method)
	if method != "" && method != http.MethodGet {
		return nil, fmt.Errorf("method %s not supported by chromedp backend", method)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(cdc.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, cdc.timeout)
	defer cancelTimeout()

	// Tie the tab to the caller's context.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var doc documentResponse
	doc.listen(tabCtx)
	idle := waitNetworkIdle(tabCtx, cdc.idleAfter)

	cdc.logger.Debug("navigating", logging.Field{Key: "url", Value: req.URL})

	if err := chromedp.Run(tabCtx, network.Enable(), chromedp.Navigate(req.URL)); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", req.URL, err)
	}

	select {
	case <-idle:
	case <-tabCtx.Done():
		return nil, fmt.Errorf("wait for network idle: %w", tabCtx.Err())
	}

	if sel := req.Options[OptionWaitVisible]; sel != "" {
		if err := chromedp.Run(tabCtx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
			return nil, fmt.Errorf("wait for %s: %w", sel, err)
		}
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read rendered html: %w", err)
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()
	status := doc.status
	if status == 0 {
		status = http.StatusOK
	}
	finalURL := doc.url
	if finalURL == "" {
		finalURL = req.URL
	}

	return &Response{
		Request:    req,
		Headers:    doc.headers,
		Body:       []byte(html),
		StatusCode: status,
		FinalURL:   finalURL,
		FetchedAt:  time.Now(),
	}, nil
}

func (cdc *ChromedpClient) Get(ctx context.Context, url string) (*Response, error) {
	return cdc.Do(ctx, &Request{Method: http.MethodGet, URL: url})
}

func (cdc *ChromedpClient) Close() error {
	cdc.cancelBrowser()
	cdc.cancelAlloc()
	cdc.logger.Debug("closed chromedp webclient")
	return nil
}
