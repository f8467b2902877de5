package export

import (
	"context"
	"slices"
	"time"

	"github.com/goliatone/go-site-export/blocks"
)

// TemplateType discriminates templates from template parts.
type TemplateType string

const (
	TypeTemplate     TemplateType = "wp_template"
	TypeTemplatePart TemplateType = "wp_template_part"
)

const (
	// DefaultCapability is required to export a site.
	DefaultCapability = "edit_theme_options"
	// DefaultFilename is the attachment name of the archive.
	DefaultFilename = "edit-site-export.zip"
	// ContentTypeZip is the archive media type.
	ContentTypeZip = "application/zip"

	// TemplatePartBlock is the block whose theme attribute is removed.
	TemplatePartBlock = "core/template-part"
	// ThemeAttribute is the attribute removed from template part blocks.
	ThemeAttribute = "theme"

	ArchiveRoot      = "theme"
	TemplatesDir     = "theme/block-templates"
	TemplatePartsDir = "theme/block-template-parts"
)

// Template is a stored template or template part.
type Template struct {
	ID        string
	Slug      string
	Type      TemplateType
	Theme     string
	Title     string
	Content   string
	UpdatedAt time.Time
}

// TemplateQuery filters template lookups.
type TemplateQuery struct {
	Type  TemplateType
	Theme string
}

// Matches reports whether tpl satisfies the query.
func (q TemplateQuery) Matches(tpl Template) bool {
	if q.Type != "" && tpl.Type != q.Type {
		return false
	}
	if q.Theme != "" && tpl.Theme != q.Theme {
		return false
	}
	return true
}

// TemplateSource retrieves templates.
type TemplateSource interface {
	Templates(ctx context.Context, query TemplateQuery) ([]Template, error)
}

// TemplateSourceFunc adapts a function to a TemplateSource.
type TemplateSourceFunc func(ctx context.Context, query TemplateQuery) ([]Template, error)

func (f TemplateSourceFunc) Templates(ctx context.Context, query TemplateQuery) ([]Template, error) {
	if f == nil {
		return nil, nil
	}
	return f(ctx, query)
}

// BlockCodec parses and serializes block content.
type BlockCodec interface {
	Parse(content string) ([]blocks.Block, error)
	Serialize(list []blocks.Block) (string, error)
}

// Actor identifies the requesting principal.
type Actor struct {
	ID           string
	Roles        []string
	Capabilities []string
	Details      map[string]any
}

// Can reports whether the actor holds capability.
func (a Actor) Can(capability string) bool {
	return capability != "" && slices.Contains(a.Capabilities, capability)
}

// Guard enforces authorization.
type Guard interface {
	AuthorizeExport(ctx context.Context, actor Actor) error
}

// ActorProvider extracts the actor from context.
type ActorProvider interface {
	FromContext(ctx context.Context) (Actor, error)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// Result summarizes a built archive.
type Result struct {
	Filename      string
	ContentType   string
	Size          int64
	Templates     int
	TemplateParts int
	CreatedAt     time.Time
}
