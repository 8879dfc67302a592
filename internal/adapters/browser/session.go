// Package browser runs the ui.Driver port on playwright-go.
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"hotel_acceptance/internal/shared"
)

type Options struct {
	Browser       string // chromium, firefox or webkit
	BaseURL       string
	Headless      bool
	SlowMo        time.Duration
	ExpectTimeout time.Duration
	ActionTimeout time.Duration
	Screenshots   bool
	ArtifactsDir  string
	Preinstalled  bool
	RecordVideo   bool
}

func OptionsFrom(c shared.Config) Options {
	return Options{
		Browser:       c.Browser,
		BaseURL:       c.BaseURL,
		Headless:      c.Headless,
		SlowMo:        c.SlowMo,
		ExpectTimeout: c.ExpectTimeout,
		ActionTimeout: c.ActionTimeout,
		Screenshots:   c.Screenshots,
		ArtifactsDir:  c.ArtifactsDir,
		Preinstalled:  c.PlaywrightPreinstalled,
		RecordVideo:   c.RecordVideo,
	}
}

// Session owns the playwright driver process and one browser. Pages opened
// from it get their own browser context, so scenarios share no cookies or
// storage.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	log     zerolog.Logger
}

func Start(opts Options, log zerolog.Logger) (*Session, error) {
	if opts.Browser == "" {
		opts.Browser = "chromium"
	}
	if !opts.Preinstalled {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{opts.Browser}}); err != nil {
			return nil, fmt.Errorf("install playwright %s: %w", opts.Browser, err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	var bt playwright.BrowserType
	switch opts.Browser {
	case "chromium":
		bt = pw.Chromium
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		_ = pw.Stop()
		return nil, fmt.Errorf("unknown browser %q", opts.Browser)
	}
	b, err := bt.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		SlowMo:   playwright.Float(float64(opts.SlowMo.Milliseconds())),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch %s: %w", opts.Browser, err)
	}
	log.Info().Str("browser", opts.Browser).Str("version", b.Version()).Bool("headless", opts.Headless).Msg("browser started")
	return &Session{pw: pw, browser: b, opts: opts, log: log}, nil
}

// NewPage opens a fresh context and page for one scenario.
func (s *Session) NewPage(name string) (*Page, error) {
	co := playwright.BrowserNewContextOptions{
		BaseURL:  playwright.String(s.opts.BaseURL),
		Viewport: &playwright.Size{Width: 1280, Height: 720},
	}
	if s.opts.RecordVideo {
		co.RecordVideo = &playwright.RecordVideo{Dir: filepath.Join(s.opts.ArtifactsDir, "videos")}
	}
	bctx, err := s.browser.NewContext(co)
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}
	p, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	p.SetDefaultTimeout(float64(s.opts.ActionTimeout.Milliseconds()))

	return &Page{
		name:   name,
		page:   p,
		bctx:   bctx,
		expect: playwright.NewPlaywrightAssertions(float64(s.opts.ExpectTimeout.Milliseconds())),
		opts:   s.opts,
		log:    s.log.With().Str("page", name).Logger(),
	}, nil
}

func (s *Session) Close() error {
	var first error
	if s.browser != nil {
		first = s.browser.Close()
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Close ends the page's context. A failed scenario leaves a full-page
// screenshot in the artifacts directory when screenshots are enabled.
func (p *Page) Close(failed bool) error {
	if failed && p.opts.Screenshots {
		dir := filepath.Join(p.opts.ArtifactsDir, "screenshots")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			p.log.Warn().Err(err).Msg("screenshot dir")
		} else {
			path := filepath.Join(dir, fmt.Sprintf("%s_%d.png", unsafeName.ReplaceAllString(p.name, "_"), time.Now().Unix()))
			if _, err := p.page.Screenshot(playwright.PageScreenshotOptions{
				Path:     playwright.String(path),
				FullPage: playwright.Bool(true),
			}); err != nil {
				p.log.Warn().Err(err).Msg("screenshot failed")
			} else {
				p.log.Info().Str("path", path).Msg("screenshot saved")
			}
		}
	}
	return p.bctx.Close()
}
