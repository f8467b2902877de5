package sourcebun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-site-export/export"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Source stores templates and template parts in a Bun-backed database.
type Source struct {
	DB          *bun.DB
	Now         func() time.Time
	IDGenerator func() string
}

// NewSource creates a Bun-backed template source.
func NewSource(db *bun.DB) *Source {
	return &Source{DB: db, Now: time.Now, IDGenerator: uuid.NewString}
}

// CreateSchema creates the templates table and its lookup index.
func (s *Source) CreateSchema(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return export.NewError(export.KindNotImpl, "template database not configured", nil)
	}
	if _, err := s.DB.NewCreateTable().Model((*templateModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create templates table: %w", err)
	}
	_, err := s.DB.NewCreateIndex().
		Model((*templateModel)(nil)).
		Index("wp_templates_type_theme_slug_idx").
		Unique().
		IfNotExists().
		Column("type", "theme", "slug").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create templates index: %w", err)
	}
	return nil
}

// Save inserts tpl or replaces the stored template with the same type,
// theme and slug. It returns the stored ID.
func (s *Source) Save(ctx context.Context, tpl export.Template) (string, error) {
	if s == nil || s.DB == nil {
		return "", export.NewError(export.KindNotImpl, "template database not configured", nil)
	}
	if strings.TrimSpace(tpl.Slug) == "" {
		return "", export.NewError(export.KindValidation, "template slug is required", nil)
	}
	if tpl.Type != export.TypeTemplate && tpl.Type != export.TypeTemplatePart {
		return "", export.NewError(export.KindValidation, fmt.Sprintf("unknown template type %q", tpl.Type), nil)
	}
	if tpl.UpdatedAt.IsZero() {
		tpl.UpdatedAt = s.now()
	}

	existing := new(templateModel)
	err := s.DB.NewSelect().Model(existing).
		Column("id").
		Where("type = ?", string(tpl.Type)).
		Where("theme = ?", tpl.Theme).
		Where("slug = ?", tpl.Slug).
		Limit(1).
		Scan(ctx)
	switch {
	case err == nil:
		tpl.ID = existing.ID
		model := modelFromTemplate(tpl)
		if _, err := s.DB.NewUpdate().Model(&model).WherePK().Exec(ctx); err != nil {
			return "", err
		}
		return tpl.ID, nil
	case errors.Is(err, sql.ErrNoRows):
		if tpl.ID == "" {
			tpl.ID = s.nextID()
		}
		model := modelFromTemplate(tpl)
		if _, err := s.DB.NewInsert().Model(&model).Exec(ctx); err != nil {
			return "", err
		}
		return tpl.ID, nil
	default:
		return "", err
	}
}

// Templates returns templates matching query ordered by slug.
func (s *Source) Templates(ctx context.Context, query export.TemplateQuery) ([]export.Template, error) {
	if s == nil || s.DB == nil {
		return nil, export.NewError(export.KindNotImpl, "template database not configured", nil)
	}

	models := make([]templateModel, 0)
	q := s.DB.NewSelect().Model(&models)
	if query.Type != "" {
		q = q.Where("type = ?", string(query.Type))
	}
	if query.Theme != "" {
		q = q.Where("theme = ?", query.Theme)
	}
	q = q.Order("slug ASC", "theme ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]export.Template, 0, len(models))
	for _, model := range models {
		out = append(out, model.toTemplate())
	}
	return out, nil
}

// Delete removes a stored template by ID.
func (s *Source) Delete(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return export.NewError(export.KindNotImpl, "template database not configured", nil)
	}
	if id == "" {
		return export.NewError(export.KindValidation, "template ID is required", nil)
	}

	res, err := s.DB.NewDelete().Model((*templateModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return export.NewError(export.KindNotFound, fmt.Sprintf("template %q not found", id), nil)
	}
	return nil
}

func (s *Source) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Source) nextID() string {
	if s.IDGenerator == nil {
		return uuid.NewString()
	}
	return s.IDGenerator()
}

type templateModel struct {
	bun.BaseModel `bun:"table:wp_templates,alias:wp_templates"`

	ID        string    `bun:",pk"`
	Type      string    `bun:"type,notnull"`
	Theme     string    `bun:"theme,notnull"`
	Slug      string    `bun:"slug,notnull"`
	Title     string    `bun:"title"`
	Content   string    `bun:"content"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

func modelFromTemplate(tpl export.Template) templateModel {
	return templateModel{
		ID:        tpl.ID,
		Type:      string(tpl.Type),
		Theme:     tpl.Theme,
		Slug:      tpl.Slug,
		Title:     tpl.Title,
		Content:   tpl.Content,
		UpdatedAt: tpl.UpdatedAt,
	}
}

func (m templateModel) toTemplate() export.Template {
	return export.Template{
		ID:        m.ID,
		Type:      export.TemplateType(m.Type),
		Theme:     m.Theme,
		Slug:      m.Slug,
		Title:     m.Title,
		Content:   m.Content,
		UpdatedAt: m.UpdatedAt,
	}
}
