package sourcefs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goliatone/go-site-export/export"
)

// Directory names searched for each template type, in priority order.
var (
	TemplateDirs     = []string{"block-templates", "templates"}
	TemplatePartDirs = []string{"block-template-parts", "parts"}
)

// Source reads templates from a block theme directory.
type Source struct {
	FS    fs.FS
	Theme string
}

// NewSource reads the theme rooted at dir. The theme name defaults to the
// directory base name.
func NewSource(dir, theme string) *Source {
	if theme == "" {
		theme = filepath.Base(filepath.Clean(dir))
	}
	return &Source{FS: os.DirFS(dir), Theme: theme}
}

// Templates returns templates matching query ordered by slug.
func (s *Source) Templates(ctx context.Context, query export.TemplateQuery) ([]export.Template, error) {
	if s == nil || s.FS == nil {
		return nil, export.NewError(export.KindNotImpl, "theme directory not configured", nil)
	}
	if query.Theme != "" && query.Theme != s.Theme {
		return []export.Template{}, nil
	}

	var out []export.Template
	for _, kind := range []export.TemplateType{export.TypeTemplate, export.TypeTemplatePart} {
		if query.Type != "" && query.Type != kind {
			continue
		}
		items, err := s.load(ctx, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

func (s *Source) load(ctx context.Context, kind export.TemplateType) ([]export.Template, error) {
	dirs := TemplateDirs
	if kind == export.TypeTemplatePart {
		dirs = TemplatePartDirs
	}

	bySlug := map[string]export.Template{}
	for i := len(dirs) - 1; i >= 0; i-- {
		matches, err := doublestar.Glob(s.FS, dirs[i]+"/*.html")
		if err != nil {
			return nil, export.NewError(export.KindInternal, fmt.Sprintf("scan %s", dirs[i]), err)
		}
		for _, name := range matches {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			tpl, err := s.read(name, kind)
			if err != nil {
				return nil, err
			}
			bySlug[tpl.Slug] = tpl
		}
	}

	out := make([]export.Template, 0, len(bySlug))
	for _, tpl := range bySlug {
		out = append(out, tpl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *Source) read(name string, kind export.TemplateType) (export.Template, error) {
	info, err := fs.Stat(s.FS, name)
	if err != nil {
		return export.Template{}, export.NewError(export.KindInternal, fmt.Sprintf("stat %s", name), err)
	}
	data, err := fs.ReadFile(s.FS, name)
	if err != nil {
		return export.Template{}, export.NewError(export.KindInternal, fmt.Sprintf("read %s", name), err)
	}
	slug := strings.TrimSuffix(path.Base(name), ".html")
	return export.Template{
		ID:        s.Theme + "//" + slug,
		Slug:      slug,
		Type:      kind,
		Theme:     s.Theme,
		Title:     slug,
		Content:   string(data),
		UpdatedAt: info.ModTime(),
	}, nil
}
