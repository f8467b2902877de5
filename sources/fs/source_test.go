package sourcefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-site-export/export"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSource_ReadsThemeDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "twentytwentyfour")
	writeFile(t, root, "templates/single.html", "<p>single</p>")
	writeFile(t, root, "templates/index.html", "<p>index</p>")
	writeFile(t, root, "templates/nested/ignored.html", "<p>nested</p>")
	writeFile(t, root, "templates/readme.txt", "not a template")
	writeFile(t, root, "parts/header.html", "<p>header</p>")

	src := NewSource(root, "")
	if src.Theme != "twentytwentyfour" {
		t.Fatalf("expected theme from directory, got %q", src.Theme)
	}

	templates, err := src.Templates(context.Background(), export.TemplateQuery{Type: export.TypeTemplate})
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	if templates[0].Slug != "index" || templates[1].Slug != "single" {
		t.Fatalf("unexpected order %q, %q", templates[0].Slug, templates[1].Slug)
	}
	if templates[0].Content != "<p>index</p>" || templates[0].Theme != "twentytwentyfour" {
		t.Fatalf("unexpected template %+v", templates[0])
	}
	if templates[0].UpdatedAt.IsZero() {
		t.Fatalf("expected modification time")
	}

	parts, err := src.Templates(context.Background(), export.TemplateQuery{Type: export.TypeTemplatePart})
	if err != nil {
		t.Fatalf("parts: %v", err)
	}
	if len(parts) != 1 || parts[0].Slug != "header" || parts[0].Type != export.TypeTemplatePart {
		t.Fatalf("unexpected parts %+v", parts)
	}
}

func TestSource_ArchiveLayoutWins(t *testing.T) {
	src := &Source{
		Theme: "tt",
		FS: fstest.MapFS{
			"block-templates/index.html": {Data: []byte("new")},
			"templates/index.html":       {Data: []byte("old")},
			"templates/home.html":        {Data: []byte("home")},
		},
	}

	templates, err := src.Templates(context.Background(), export.TemplateQuery{Type: export.TypeTemplate})
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	if templates[1].Slug != "index" || templates[1].Content != "new" {
		t.Fatalf("expected block-templates to win, got %+v", templates[1])
	}
}

func TestSource_ThemeFilter(t *testing.T) {
	src := &Source{
		Theme: "tt",
		FS: fstest.MapFS{
			"templates/index.html": {Data: []byte("index")},
		},
	}

	other, err := src.Templates(context.Background(), export.TemplateQuery{Theme: "other"})
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no templates for other theme, got %d", len(other))
	}

	all, err := src.Templates(context.Background(), export.TemplateQuery{Theme: "tt"})
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 template, got %d", len(all))
	}
}

func TestSource_EmptyTheme(t *testing.T) {
	src := &Source{Theme: "tt", FS: fstest.MapFS{}}
	templates, err := src.Templates(context.Background(), export.TemplateQuery{Type: export.TypeTemplate})
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	if len(templates) != 0 {
		t.Fatalf("expected no templates, got %d", len(templates))
	}
}

func TestSource_CanceledContext(t *testing.T) {
	src := &Source{Theme: "tt", FS: fstest.MapFS{"templates/index.html": {Data: []byte("x")}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Templates(ctx, export.TemplateQuery{}); export.KindFromError(err) != export.KindCanceled {
		t.Fatalf("expected canceled, got %v", err)
	}
}
