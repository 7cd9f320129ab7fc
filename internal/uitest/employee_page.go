// Package uitest drives the employees app through a real browser. Pages
// are thin wrappers over a chromedp tab; the browser itself comes from a
// webclient.ChromedpClient.
package uitest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/employeesapp/internal/webclient"
)

var ErrCookieNotFound = errors.New("cookie not found")

// staleMarker is set on window before a submit; the page that loads
// afterwards no longer has it.
const staleMarker = "__employeesPageStale"

// EmployeePage is a page object for /Employees and /Employees/Create.
type EmployeePage struct {
	ctx     context.Context
	baseURL string
	timeout time.Duration
}

// NewEmployeePage opens a new tab in browser. The returned cancel func
// closes the tab. Per-action timeouts derive from the tab context, so the
// tab is opened here on a context without a deadline.
func NewEmployeePage(browser *webclient.ChromedpClient, baseURL string, timeout time.Duration) (*EmployeePage, context.CancelFunc, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tabCtx, cancel := chromedp.NewContext(browser.BrowserContext())
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("open tab: %w", err)
	}
	return &EmployeePage{
		ctx:     tabCtx,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}, cancel, nil
}

func (p *EmployeePage) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// Navigate loads path relative to the app's base URL.
func (p *EmployeePage) Navigate(path string) error {
	if err := p.run(chromedp.Navigate(p.baseURL+path), chromedp.WaitReady("body")); err != nil {
		return fmt.Errorf("navigate %s: %w", path, err)
	}
	return nil
}

func (p *EmployeePage) Title() (string, error) {
	var title string
	err := p.run(chromedp.Title(&title))
	return title, err
}

// Source returns the current DOM serialized as HTML.
func (p *EmployeePage) Source() (string, error) {
	var html string
	err := p.run(chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (p *EmployeePage) PopulateName(name string) error {
	return p.typeInto("#Name", name)
}

func (p *EmployeePage) PopulateAge(age string) error {
	return p.typeInto("#Age", age)
}

func (p *EmployeePage) PopulateAccountNumber(accountNumber string) error {
	return p.typeInto("#AccountNumber", accountNumber)
}

func (p *EmployeePage) typeInto(selector, text string) error {
	err := p.run(
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("type into %s: %w", selector, err)
	}
	return nil
}

// ClickCreate submits the form and waits for the resulting page to load.
func (p *EmployeePage) ClickCreate() error {
	err := p.run(
		chromedp.Evaluate(`window.`+staleMarker+` = true`, nil),
		chromedp.WaitVisible("#Create", chromedp.ByQuery),
		chromedp.Click("#Create", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("click create: %w", err)
	}
	return p.waitForNewDocument()
}

// waitForNewDocument polls until the stale marker is gone and the new
// document has finished loading. Evaluate errors while the old document is
// torn down are expected and retried.
func (p *EmployeePage) waitForNewDocument() error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	expr := `!window.` + staleMarker + ` && document.readyState === "complete"`
	for {
		var loaded bool
		if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &loaded)); err == nil && loaded {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for page load: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// AccountNumberErrorMessage returns the validation message rendered under
// the account number input, or "" when there is none.
func (p *EmployeePage) AccountNumberErrorMessage() (string, error) {
	var count int
	if err := p.run(chromedp.Evaluate(`document.querySelectorAll("#AccountNumber-error").length`, &count)); err != nil {
		return "", err
	}
	if count == 0 {
		return "", nil
	}
	var text string
	if err := p.run(chromedp.Text("#AccountNumber-error", &text, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Cookie returns the named cookie the browser holds for the app.
func (p *EmployeePage) Cookie(name string) (*network.Cookie, error) {
	var found *network.Cookie
	err := p.run(chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().WithURLs([]string{p.baseURL}).Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			if c.Name == name {
				found = c
				return nil
			}
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("get cookies: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrCookieNotFound, name)
	}
	return found, nil
}
