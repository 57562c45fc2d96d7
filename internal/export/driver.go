// Package export drives the Testmo web GUI to export a project's case
// repository as CSV. The repository export is only available through the GUI,
// so a real browser is involved: Driver abstracts it, ChromeDriver implements
// it with headless Chrome.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

// defaultStepTimeout bounds a single element wait or click.
const defaultStepTimeout = 10 * time.Second

// Driver is the browser surface the export flow needs. Selectors are XPath
// expressions. Implementations must be safe to Close after a failed step.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	SendKeys(ctx context.Context, selector, text string) error
	OuterHTML(ctx context.Context, selector string) (string, error)
	Close() error
}

// ChromeOptions configure the Chrome browser behind ChromeDriver.
type ChromeOptions struct {
	// DownloadDir receives the exported CSV files.
	DownloadDir string
	// Headless hides the browser window.
	Headless bool
	// StepTimeout bounds each element wait. Zero means the default.
	StepTimeout time.Duration
}

// ChromeDriver drives a Chrome instance through the DevTools protocol.
type ChromeDriver struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	stepTimeout time.Duration
}

// Interface guard for ChromeDriver
var _ Driver = &ChromeDriver{}

// NewChromeDriver starts a Chrome instance with downloads routed to the
// options' download directory. The context bounds the browser's lifetime.
func NewChromeDriver(ctx context.Context, opts ChromeOptions) (*ChromeDriver, error) {
	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("lang", "en-EN"),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, flags...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	driver := &ChromeDriver{
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		stepTimeout: opts.StepTimeout,
	}
	if driver.stepTimeout == 0 {
		driver.stepTimeout = defaultStepTimeout
	}

	// starts the browser and routes downloads away from the user's default
	// download directory
	if err := chromedp.Run(tabCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(opts.DownloadDir),
	); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return driver, nil
}

// run executes a browser action against the tab with the step timeout. The
// caller context only contributes cancellation, the browser connection lives
// in the tab context.
func (d *ChromeDriver) run(ctx context.Context, action chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(d.tabCtx, d.stepTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, action)
}

func (d *ChromeDriver) Navigate(ctx context.Context, url string) error {
	if err := d.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (d *ChromeDriver) WaitVisible(ctx context.Context, selector string) error {
	if err := d.run(ctx, chromedp.WaitVisible(selector, chromedp.BySearch)); err != nil {
		return fmt.Errorf("element '%s' did not appear: %w", selector, err)
	}
	return nil
}

func (d *ChromeDriver) Click(ctx context.Context, selector string) error {
	if err := d.run(ctx, chromedp.Click(selector, chromedp.BySearch)); err != nil {
		return fmt.Errorf("failed to click '%s': %w", selector, err)
	}
	return nil
}

func (d *ChromeDriver) SendKeys(ctx context.Context, selector, text string) error {
	if err := d.run(ctx, chromedp.SendKeys(selector, text, chromedp.BySearch)); err != nil {
		return fmt.Errorf("failed to type into '%s': %w", selector, err)
	}
	return nil
}

func (d *ChromeDriver) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := d.run(ctx, chromedp.OuterHTML(selector, &html, chromedp.BySearch)); err != nil {
		return "", fmt.Errorf("failed to read '%s': %w", selector, err)
	}
	return html, nil
}

// Close shuts the browser down.
func (d *ChromeDriver) Close() error {
	d.cancelTab()
	d.cancelAlloc()
	return nil
}
