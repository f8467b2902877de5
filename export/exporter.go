package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// Exporter bundles templates and template parts into a ZIP archive.
type Exporter struct {
	Source      TemplateSource
	Transformer *Transformer
	Guard       Guard
	Logger      Logger
	NewArchive  ArchiveFactory
	// TempDir holds archives while they are built. Empty uses os.TempDir.
	TempDir  string
	Filename string
	// Theme limits exports to one theme when set.
	Theme string
	Now   func() time.Time
}

// NewExporter creates an exporter with the default codec, capability guard
// and ZIP writer.
func NewExporter(source TemplateSource) *Exporter {
	return &Exporter{
		Source:      source,
		Transformer: NewTransformer(nil),
		Guard:       CapabilityGuard{Capability: DefaultCapability},
		Logger:      NopLogger{},
		NewArchive:  NewZipArchive,
		Filename:    DefaultFilename,
		Now:         time.Now,
	}
}

// Export authorizes the actor and builds the archive into a temporary file.
// The caller owns the returned archive and must Close it. On error no file
// is left behind.
func (e *Exporter) Export(ctx context.Context, actor Actor) (*Archive, error) {
	if e == nil {
		return nil, NewError(KindInternal, "exporter is nil", nil)
	}
	if e.Guard != nil {
		if err := e.Guard.AuthorizeExport(ctx, actor); err != nil {
			return nil, NewError(KindAuthz, "export not authorized", err)
		}
	}
	if e.NewArchive == nil {
		return nil, ErrZipUnsupported
	}
	if e.Source == nil {
		return nil, NewError(KindNotImpl, "template source not configured", nil)
	}

	file, err := os.CreateTemp(e.TempDir, "edit-site-export-*.zip")
	if err != nil {
		return nil, NewError(KindInternal, "create temporary archive", err)
	}
	keep := false
	defer func() {
		if keep {
			return
		}
		_ = file.Close()
		_ = os.Remove(file.Name())
	}()

	result, err := e.build(ctx, file)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		return nil, NewError(KindInternal, "stat temporary archive", err)
	}
	if err := file.Close(); err != nil {
		return nil, NewError(KindInternal, "close temporary archive", err)
	}
	keep = true

	result.Size = info.Size()
	e.logger().Infof("site export built: %d templates, %d template parts, %d bytes", result.Templates, result.TemplateParts, result.Size)
	return &Archive{Result: result, Path: file.Name()}, nil
}

// WriteArchive builds the archive and copies it to w.
func (e *Exporter) WriteArchive(ctx context.Context, actor Actor, w io.Writer) (Result, error) {
	if w == nil {
		return Result{}, NewError(KindValidation, "output writer is required", nil)
	}
	archive, err := e.Export(ctx, actor)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := archive.Close(); err != nil {
			e.logger().Errorf("release archive: %v", err)
		}
	}()
	if _, err := archive.WriteTo(w); err != nil {
		return Result{}, NewError(KindInternal, "write archive", err)
	}
	return archive.Result, nil
}

func (e *Exporter) build(ctx context.Context, w io.Writer) (Result, error) {
	result := Result{
		Filename:    e.filename(),
		ContentType: ContentTypeZip,
		CreatedAt:   e.now(),
	}

	zw := e.NewArchive(w)
	for _, dir := range []string{ArchiveRoot, TemplatesDir, TemplatePartsDir} {
		if err := zw.AddDir(dir); err != nil {
			return result, NewError(KindInternal, "write archive directory", err)
		}
	}

	templates, err := e.Source.Templates(ctx, TemplateQuery{Type: TypeTemplate, Theme: e.Theme})
	if err != nil {
		return result, wrapKind(KindInternal, "load templates", err)
	}
	result.Templates, err = e.addAll(ctx, zw, TemplatesDir, templates, e.transformer().RemoveThemeAttribute)
	if err != nil {
		return result, err
	}

	parts, err := e.Source.Templates(ctx, TemplateQuery{Type: TypeTemplatePart, Theme: e.Theme})
	if err != nil {
		return result, wrapKind(KindInternal, "load template parts", err)
	}
	result.TemplateParts, err = e.addAll(ctx, zw, TemplatePartsDir, parts, nil)
	if err != nil {
		return result, err
	}

	if err := zw.Close(); err != nil {
		return result, NewError(KindInternal, "finalize archive", err)
	}
	return result, nil
}

func (e *Exporter) addAll(ctx context.Context, zw ArchiveWriter, dir string, items []Template, transform func(string) (string, error)) (int, error) {
	seen := make(map[string]struct{}, len(items))
	count := 0
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return count, wrapKind(KindCanceled, "export interrupted", err)
		}
		name, err := EntryPath(dir, item.Slug)
		if err != nil {
			return count, err
		}
		if _, ok := seen[name]; ok {
			e.logger().Warnf("duplicate slug %q skipped in %s", item.Slug, dir)
			continue
		}
		seen[name] = struct{}{}

		content := item.Content
		if transform != nil {
			content, err = transform(content)
			if err != nil {
				return count, wrapKind(KindValidation, fmt.Sprintf("transform %q", item.Slug), err)
			}
		}

		modified := item.UpdatedAt
		if modified.IsZero() {
			modified = e.now()
		}
		if err := zw.AddFile(name, []byte(content), modified); err != nil {
			return count, NewError(KindInternal, fmt.Sprintf("write %s", name), err)
		}
		count++
	}
	return count, nil
}

func (e *Exporter) filename() string {
	if e.Filename == "" {
		return DefaultFilename
	}
	return e.Filename
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Exporter) transformer() *Transformer {
	if e.Transformer == nil {
		tr := NewTransformer(nil)
		tr.Logger = e.logger()
		return tr
	}
	return e.Transformer
}

func (e *Exporter) logger() Logger {
	if e.Logger == nil {
		return NopLogger{}
	}
	return e.Logger
}
