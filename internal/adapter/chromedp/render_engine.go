package chromedp

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/pkg/errors"
)

type RenderEngineOptions struct {
	Timeout          time.Duration
	AllocatorOptions []chromedp.ExecAllocatorOption
}

type RenderEngineOptionFunc func(opts *RenderEngineOptions)

func WithRenderEngineTimeout(timeout time.Duration) RenderEngineOptionFunc {
	return func(opts *RenderEngineOptions) {
		opts.Timeout = timeout
	}
}

func WithRenderEngineAllocatorOptions(allocatorOptions ...chromedp.ExecAllocatorOption) RenderEngineOptionFunc {
	return func(opts *RenderEngineOptions) {
		opts.AllocatorOptions = allocatorOptions
	}
}

func NewRenderEngineOptions(funcs ...RenderEngineOptionFunc) *RenderEngineOptions {
	opts := &RenderEngineOptions{
		Timeout:          30 * time.Second,
		AllocatorOptions: chromedp.DefaultExecAllocatorOptions[:],
	}
	for _, fn := range funcs {
		fn(opts)
	}
	return opts
}

// RenderEngine prints HTML to PDF through a headless browser. Each render
// is bounded by the configured timeout; a print already handed to the
// browser cannot be cancelled midway.
type RenderEngine struct {
	timeout          time.Duration
	allocatorOptions []chromedp.ExecAllocatorOption
}

func NewRenderEngine(funcs ...RenderEngineOptionFunc) *RenderEngine {
	opts := NewRenderEngineOptions(funcs...)

	return &RenderEngine{
		timeout:          opts.Timeout,
		allocatorOptions: opts.AllocatorOptions,
	}
}

// Render implements [port.RenderEngine].
func (e *RenderEngine) Render(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	allocatorCtx, cancelAllocator := chromedp.NewExecAllocator(ctx, e.allocatorOptions...)
	defer cancelAllocator()

	browserCtx, cancelBrowser := chromedp.NewContext(allocatorCtx)
	defer cancelBrowser()

	var pdf []byte

	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			if err := page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx); err != nil {
				return errors.WithStack(err)
			}

			return nil
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			pdf = data

			return nil
		}),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return pdf, nil
}

var _ port.RenderEngine = &RenderEngine{}
