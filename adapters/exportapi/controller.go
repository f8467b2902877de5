package exportapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	errorslib "github.com/goliatone/go-errors"
	"github.com/goliatone/go-site-export/export"
	"github.com/google/uuid"
)

const (
	// DefaultBasePath is the versioned route namespace.
	DefaultBasePath = "/__experimental/edit-site/v1"
	// ExportRoute is the export endpoint relative to the base path.
	ExportRoute = "/export"
	// DefaultMaxBufferBytes is the fallback buffer limit when streaming is unavailable.
	DefaultMaxBufferBytes int64 = 32 * 1024 * 1024
)

// Config configures the shared export API controller.
type Config struct {
	Exporter       *export.Exporter
	ActorProvider  export.ActorProvider
	BasePath       string
	Logger         export.Logger
	IDGenerator    func() string
	MaxBufferBytes int64
}

// Controller serves the site export endpoint for multiple transports.
type Controller struct {
	exporter       *export.Exporter
	actorProvider  export.ActorProvider
	basePath       string
	logger         export.Logger
	idGenerator    func() string
	maxBufferBytes int64
}

// NewController creates a shared export API controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = export.NopLogger{}
	}
	idGenerator := cfg.IDGenerator
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	maxBuffer := cfg.MaxBufferBytes
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBufferBytes
	}
	return &Controller{
		exporter:       cfg.Exporter,
		actorProvider:  cfg.ActorProvider,
		basePath:       basePath,
		logger:         logger,
		idGenerator:    idGenerator,
		maxBufferBytes: maxBuffer,
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// ExportPath returns the full export route.
func (c *Controller) ExportPath() string {
	if c == nil {
		return DefaultBasePath + ExportRoute
	}
	return c.basePath + ExportRoute
}

// Serve routes the export endpoint.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		WriteError(res, export.NewError(export.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, export.NewError(export.KindInternal, "request is nil", nil))
		return
	}

	path := strings.TrimRight(req.Path(), "/")
	if path != c.ExportPath() {
		writeNotFound(res)
		return
	}
	if req.Method() != http.MethodGet {
		res.SetHeader("Allow", http.MethodGet)
		res.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	c.handleExport(req, res)
}

func (c *Controller) handleExport(req Request, res Response) {
	if c.exporter == nil {
		WriteError(res, export.NewError(export.KindNotImpl, "exporter not configured", nil))
		return
	}
	actor, err := c.actorFromRequest(req)
	if err != nil {
		WriteError(res, err)
		return
	}

	archive, err := c.exporter.Export(req.Context(), actor)
	if err != nil {
		WriteError(res, err)
		return
	}
	defer func() {
		if err := archive.Close(); err != nil {
			c.logger.Errorf("release archive failed: %v", err)
		}
	}()

	reader, err := archive.Open()
	if err != nil {
		WriteError(res, err)
		return
	}
	defer reader.Close()

	exportID := c.idGenerator()
	writer, streaming := res.Writer()
	if !streaming && archive.Size > c.maxBufferBytes {
		WriteError(res, export.NewError(export.KindInternal, "archive exceeds buffer limit", nil))
		return
	}

	setDownloadHeaders(res, exportID, archive.Filename, archive.ContentType)
	res.SetHeader("Content-Length", strconv.FormatInt(archive.Size, 10))

	if streaming {
		res.WriteHeader(http.StatusOK)
		if _, err := io.Copy(writer, reader); err != nil {
			c.logger.Errorf("export %s copy failed: %v", exportID, err)
		}
		return
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		clearDownloadHeaders(res)
		WriteError(res, err)
		return
	}
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(data); err != nil {
		c.logger.Errorf("export %s buffer write failed: %v", exportID, err)
	}
}

func (c *Controller) actorFromRequest(req Request) (export.Actor, error) {
	if c.actorProvider == nil {
		return export.Actor{}, export.NewError(export.KindAuthz, "actor provider not configured", nil)
	}
	actor, err := c.actorProvider.FromContext(req.Context())
	if err != nil {
		return export.Actor{}, export.NewError(export.KindAuthz, "actor resolution failed", err)
	}
	return actor, nil
}

func writeNotFound(res Response) {
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	res.SetHeader("X-Content-Type-Options", "nosniff")
	res.WriteHeader(http.StatusNotFound)
	_, _ = res.Write([]byte("404 page not found\n"))
}

// WriteError writes err as a JSON error payload.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := export.AsGoError(err)
	payload := ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	}
	_ = res.WriteJSON(statusForError(ge), payload)
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryAuthz:
		return http.StatusForbidden
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func setDownloadHeaders(res Response, exportID, filename, contentType string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	res.SetHeader("Content-Type", contentType)
	res.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%s", sanitizeFilename(filename)))
	if exportID != "" {
		res.SetHeader("X-Export-Id", exportID)
	}
}

func clearDownloadHeaders(res Response) {
	res.DelHeader("Content-Disposition")
	res.DelHeader("Content-Type")
	res.DelHeader("Content-Length")
	res.DelHeader("X-Export-Id")
}

func sanitizeFilename(filename string) string {
	name := strings.TrimSpace(filename)
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, ";", "_")
	if name == "" {
		name = export.DefaultFilename
	}
	return name
}
