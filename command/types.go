package command

import (
	"io"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-site-export/export"
)

// ExportTheme builds the site export archive and writes it to Output.
type ExportTheme struct {
	Actor  export.Actor
	Output io.Writer
	Result *export.Result
}

func (ExportTheme) Type() string { return "site-export:export" }

func (msg ExportTheme) Validate() error {
	if msg.Actor.ID == "" {
		return errors.New("actor ID is required", errors.CategoryValidation).
			WithTextCode("ACTOR_REQUIRED")
	}
	if msg.Output == nil {
		return errors.New("output writer is required", errors.CategoryValidation).
			WithTextCode("OUTPUT_REQUIRED")
	}
	return nil
}
