package dataflows

import "context"

// Renderer turns a page URL into the HTML of the fully rendered document.
// Implementations return *models.FetchError when the page cannot be
// loaded and *models.RenderError when the expected content never appears.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, url string) (string, error)

func (f RendererFunc) Render(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}
