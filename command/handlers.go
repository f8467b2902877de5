package command

import (
	"context"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-site-export/export"
)

// ExportThemeHandler runs site exports.
type ExportThemeHandler struct {
	Exporter *export.Exporter
}

func NewExportThemeHandler(exporter *export.Exporter) *ExportThemeHandler {
	return &ExportThemeHandler{Exporter: exporter}
}

func (h *ExportThemeHandler) Execute(ctx context.Context, msg ExportTheme) error {
	if h == nil || h.Exporter == nil {
		return errors.New("exporter is required", errors.CategoryInternal).
			WithTextCode("EXPORTER_REQUIRED")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	result, err := h.Exporter.WriteArchive(ctx, msg.Actor, msg.Output)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = result
	}
	if res := gcmd.ResultFromContext[export.Result](ctx); res != nil {
		res.Store(result)
	}
	return nil
}
