package certificate

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// PDFRenderer turns a complete HTML page into PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// RodConfig configures the headless Chrome used for printing.
type RodConfig struct {
	Bin      string // empty = let rod find or download a browser
	Headless bool
	Timeout  time.Duration
}

// RodRenderer prints pages with a lazily launched headless Chrome. Safe for concurrent use.
type RodRenderer struct {
	cfg     RodConfig
	logger  *zap.Logger
	mu      sync.Mutex
	launch  *launcher.Launcher
	browser *rod.Browser
}

// NewRodRenderer creates a renderer; the browser starts on first use.
func NewRodRenderer(cfg RodConfig, logger *zap.Logger) *RodRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &RodRenderer{cfg: cfg, logger: logger}
}

func (r *RodRenderer) start() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		if _, err := r.browser.Version(); err == nil {
			return r.browser, nil
		}
		r.logger.Warn("stale browser connection, relaunching")
		r.closeLocked()
	}

	l := launcher.New().Headless(r.cfg.Headless)
	if r.cfg.Bin != "" {
		l = l.Bin(r.cfg.Bin)
	}
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	r.launch, r.browser = l, b
	r.logger.Info("browser launched", zap.String("control_url", url))
	return b, nil
}

// RenderPDF loads html into a fresh page and prints it.
func (r *RodRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	b, err := r.start()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("set content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}
	stream, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return data, nil
}

// Close shuts the browser down.
func (r *RodRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked()
}

func (r *RodRenderer) closeLocked() {
	if r.browser != nil {
		_ = r.browser.Close()
		r.browser = nil
	}
	if r.launch != nil {
		r.launch.Cleanup()
		r.launch = nil
	}
}
