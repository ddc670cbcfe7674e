// Package capture loads live pages in a headless browser so clone requests
// can include what the page actually looks like.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

const (
	DefaultTimeout = 30 * time.Second
	viewportWidth  = 1280
	viewportHeight = 800
)

// Page is what a capture returns.
type Page struct {
	URL        string
	Title      string
	HTML       string
	Outline    string
	Screenshot mockup.Image
}

type Config struct {
	// RemoteURL is a DevTools websocket URL. Empty launches a local Chrome.
	RemoteURL string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Browser captures pages with one lazily started browser.
type Browser struct {
	cfg Config

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

func New(cfg Config) *Browser {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Browser{cfg: cfg}
}

func (b *Browser) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser != nil {
		return b.browser, nil
	}

	wsURL := b.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(true).Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("capture: launch browser: %w", err)
		}
		wsURL = u
		b.lnch = l
		b.cfg.Logger.Debug("capture: launched local chrome", "url", wsURL)
	}

	rb := rod.New().ControlURL(wsURL)
	if err := rb.Connect(); err != nil {
		return nil, fmt.Errorf("capture: connect: %w", err)
	}
	b.browser = rb
	return rb, nil
}

// Capture navigates to url and returns its title, markup, outline and a
// viewport screenshot.
func (b *Browser) Capture(ctx context.Context, url string) (Page, error) {
	rb, err := b.connect()
	if err != nil {
		return Page{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	page, err := stealth.Page(rb)
	if err != nil {
		return Page{}, fmt.Errorf("capture: open tab: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		b.cfg.Logger.Warn("capture: set viewport failed", "error", err)
	}
	if err := page.Navigate(url); err != nil {
		return Page{}, fmt.Errorf("capture: navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		b.cfg.Logger.Warn("capture: wait load", "url", url, "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return Page{}, fmt.Errorf("capture: read DOM: %w", err)
	}
	shot, err := page.Screenshot(false, &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng})
	if err != nil {
		return Page{}, fmt.Errorf("capture: screenshot: %w", err)
	}

	return Page{
		URL:        url,
		Title:      Title(html),
		HTML:       html,
		Outline:    Outline(html, url),
		Screenshot: mockup.Image{MIMEType: "image/png", Data: shot},
	}, nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.lnch != nil {
		b.lnch.Kill()
		b.lnch = nil
	}
	return err
}
