package exportrouter

import (
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-site-export/adapters/exportapi"
	"github.com/goliatone/go-site-export/export"
)

// Config configures the go-router adapter.
type Config = exportapi.Config

// Handler exposes the site export route for go-router.
type Handler struct {
	controller *exportapi.Controller
}

// NewHandler creates a go-router handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: exportapi.NewController(cfg)}
}

// RegisterRoutes registers the export route on a compatible go-router router.
// The route is read only; other methods fall through to the router.
func (h *Handler) RegisterRoutes(router any) {
	r, ok := router.(routeRegistrar)
	if !ok {
		return
	}
	path := h.ExportPath()
	r.Get(path, h.Handle)
	r.Get(path+"/", h.Handle)
}

// ExportPath returns the registered export route.
func (h *Handler) ExportPath() string {
	if h == nil || h.controller == nil {
		return exportapi.DefaultBasePath + exportapi.ExportRoute
	}
	return h.controller.ExportPath()
}

// Handle executes the shared export workflow.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	if h == nil || h.controller == nil {
		exportapi.WriteError(routerResponse{ctx: c}, export.NewError(export.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(routerRequest{ctx: c}, routerResponse{ctx: c})
	return nil
}

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
