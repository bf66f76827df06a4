package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
)

const (
	defaultPageTemplate     = "page.html"
	defaultNotFoundTemplate = "not_found.html"
	defaultErrorTemplate    = "error.html"
)

// FallbackErrorHTML is served when even the error template cannot render.
const FallbackErrorHTML = `<!DOCTYPE html><html><head><meta charset="utf-8"><title>Error</title></head>` +
	`<body><h1>Something went wrong</h1><p>This dashboard could not be displayed.</p></body></html>`

// PageComposer is the subset of Service the controller needs.
type PageComposer interface {
	Mount(ctx context.Context, viewer ViewerContext, path string) (*PageInstance, error)
	Instance(id string) (*PageInstance, error)
	Snapshot(ctx context.Context, id string) (PageSnapshot, error)
	Pages() *PageRegistry
}

// ControllerOptions wires the collaborators of a Controller.
type ControllerOptions struct {
	Service          PageComposer
	Renderer         Renderer
	Logger           *slog.Logger
	Template         string
	NotFoundTemplate string
	ErrorTemplate    string
	AssetsHost       string
	APIBase          string
}

// Controller renders pages to HTML behind an error boundary.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = defaultPageTemplate
	}
	if opts.NotFoundTemplate == "" {
		opts.NotFoundTemplate = defaultNotFoundTemplate
	}
	if opts.ErrorTemplate == "" {
		opts.ErrorTemplate = defaultErrorTemplate
	}
	if opts.AssetsHost == "" {
		opts.AssetsHost = DefaultEChartsAssetsHost()
	}
	if opts.APIBase == "" {
		opts.APIBase = "/api/pages"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{opts: opts}
}

// PageRender is the outcome of a page render.
type PageRender struct {
	Status     int
	InstanceID string
}

// RenderPage mounts (or reuses) a page instance for path and writes its HTML
// to out. Unknown paths render the not-found page with a 404. Any error or
// panic while composing or rendering is logged and replaced with the error
// page; the returned error is only non-nil when nothing could be written.
func (c *Controller) RenderPage(ctx context.Context, viewer ViewerContext, path, instanceID string, out io.Writer) (PageRender, error) {
	var (
		result PageRender
		buf    bytes.Buffer
	)
	err := c.guard(func() error {
		inst, err := c.instanceFor(ctx, viewer, path, instanceID)
		if errors.Is(err, ErrPageNotFound) {
			result.Status = http.StatusNotFound
			return c.renderNotFound(viewer, path, &buf)
		}
		if err != nil {
			return err
		}
		result.InstanceID = inst.ID
		snap, err := c.opts.Service.Snapshot(ctx, inst.ID)
		if err != nil {
			return err
		}
		if c.opts.Renderer == nil {
			return fmt.Errorf("dashboard: renderer not configured")
		}
		result.Status = http.StatusOK
		_, err = c.opts.Renderer.Render(c.opts.Template, c.pageData(viewer, snap), &buf)
		return err
	})
	if err != nil {
		c.opts.Logger.Error("page render failed", "path", path, "instance", instanceID, "error", err)
		result.Status = http.StatusInternalServerError
		buf.Reset()
		c.renderError(&buf)
	}
	if _, werr := out.Write(buf.Bytes()); werr != nil {
		return result, werr
	}
	return result, nil
}

func (c *Controller) instanceFor(ctx context.Context, viewer ViewerContext, path, instanceID string) (*PageInstance, error) {
	if instanceID != "" {
		if inst, err := c.opts.Service.Instance(instanceID); err == nil && inst.Path == normalizePath(path) {
			return inst, nil
		}
	}
	return c.opts.Service.Mount(ctx, viewer, path)
}

func (c *Controller) pageData(viewer ViewerContext, snap PageSnapshot) map[string]any {
	apiBase := c.opts.APIBase + "/" + snap.InstanceID
	return map[string]any{
		"page":            snap,
		"locale":          viewer.Locale,
		"assets_host":     c.opts.AssetsHost,
		"api_base":        apiBase,
		"events_endpoint": apiBase + "/events",
	}
}

func (c *Controller) renderNotFound(viewer ViewerContext, path string, buf *bytes.Buffer) error {
	var nav []NavItem
	if pages := c.opts.Service.Pages(); pages != nil {
		nav = pages.Navigation("", viewer.Locale)
	}
	if c.opts.Renderer == nil {
		return fmt.Errorf("dashboard: renderer not configured")
	}
	_, err := c.opts.Renderer.Render(c.opts.NotFoundTemplate, map[string]any{
		"path":       path,
		"navigation": nav,
	}, buf)
	return err
}

func (c *Controller) renderError(buf *bytes.Buffer) {
	err := c.guard(func() error {
		if c.opts.Renderer == nil {
			return fmt.Errorf("dashboard: renderer not configured")
		}
		_, err := c.opts.Renderer.Render(c.opts.ErrorTemplate, map[string]any{}, buf)
		return err
	})
	if err != nil {
		buf.Reset()
		buf.WriteString(FallbackErrorHTML)
	}
}

// guard runs fn and converts panics into ErrRenderPanic.
func (c *Controller) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.opts.Logger.Error("recovered render panic", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %v", ErrRenderPanic, r)
		}
	}()
	return fn()
}
