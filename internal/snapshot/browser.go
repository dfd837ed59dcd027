// Package snapshot captures a rendered page with a headless browser.
package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Format is the capture output type
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// DefaultWaitSelector is present once a calculation has been rendered
const DefaultWaitSelector = "#resultsContent"

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %q (available: png, pdf)", s)
	}
}

// FormatFromPath picks the format from an output file's extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot tell format of %s: no extension", path)
	}
	return ParseFormat(ext)
}

// Options configures a capture
type Options struct {
	URL     string
	Format  Format
	WaitFor string // CSS selector to wait for, empty waits for body only
	Timeout time.Duration
	Visible bool
	Quality int // PNG quality, 0-100
}

func (o *Options) normalize() error {
	u, err := url.Parse(o.URL)
	if err != nil {
		return fmt.Errorf("parsing url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url must be an absolute http(s) url: %q", o.URL)
	}
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = 90
	}
	return nil
}

// Capture loads the page and returns it as PNG or PDF bytes
func Capture(ctx context.Context, o Options) ([]byte, error) {
	if err := o.normalize(); err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !o.Visible),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 1024),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, o.Timeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(browserCtx, tasks(o, &buf)); err != nil {
		return nil, fmt.Errorf("capturing %s: %w", o.URL, err)
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("capturing %s: browser returned no data", o.URL)
	}
	return buf, nil
}

func tasks(o Options, buf *[]byte) chromedp.Tasks {
	wait := o.WaitFor
	if wait == "" {
		wait = "body"
	}

	t := chromedp.Tasks{
		chromedp.Navigate(o.URL),
		chromedp.WaitVisible(wait, chromedp.ByQuery),
	}

	switch o.Format {
	case FormatPDF:
		t = append(t, chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return fmt.Errorf("printing to pdf: %w", err)
			}
			*buf = data
			return nil
		}))
	default:
		// give chart animations a moment to settle
		t = append(t, chromedp.Sleep(500*time.Millisecond), chromedp.FullScreenshot(buf, o.Quality))
	}
	return t
}
