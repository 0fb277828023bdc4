package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/codr1/Sitecraft/internal/db"
	dbgen "github.com/codr1/Sitecraft/internal/db/generated"
	"github.com/codr1/Sitecraft/internal/models"
)

// Store is the project-scoped category store.
type Store interface {
	GetProject(ctx context.Context, projectID int64) (models.Project, error)
	CreateProject(ctx context.Context, name string, tmpl *Template) (models.Project, []models.ProjectCategory, error)
	ListCategories(ctx context.Context, projectID int64) ([]models.ProjectCategory, error)
	GetCategory(ctx context.Context, id int64) (models.ProjectCategory, error)
	CreateCategory(ctx context.Context, category models.ProjectCategory) (models.ProjectCategory, error)
	UpdateCategory(ctx context.Context, category models.ProjectCategory) (models.ProjectCategory, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type SQLStore struct {
	db *db.DB
}

func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

func (s *SQLStore) GetProject(ctx context.Context, projectID int64) (models.Project, error) {
	row, err := s.db.Queries.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Project{}, fmt.Errorf("%w: %d", ErrProjectNotFound, projectID)
		}
		return models.Project{}, fmt.Errorf("load project %d: %w", projectID, err)
	}
	return projectFromDB(row), nil
}

// CreateProject inserts the project and, when tmpl is set, its template
// categories in one transaction.
func (s *SQLStore) CreateProject(ctx context.Context, name string, tmpl *Template) (models.Project, []models.ProjectCategory, error) {
	var (
		project    models.Project
		categories []models.ProjectCategory
	)
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		row, err := tx.Queries.CreateProject(ctx, name)
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		project = projectFromDB(row)
		if tmpl == nil {
			return nil
		}

		for i, tier1 := range tmpl.Tier1 {
			parent, err := tx.Queries.CreateProjectCategory(ctx, dbgen.CreateProjectCategoryParams{
				ProjectID: project.ID,
				Name:      tier1.Name,
				Type:      string(models.CategoryTier1),
				SortOrder: int64(i),
			})
			if err != nil {
				return fmt.Errorf("create tier1 category %q: %w", tier1.Name, err)
			}
			categories = append(categories, categoryFromDB(parent))

			for j, child := range tier1.Tier2 {
				row, err := tx.Queries.CreateProjectCategory(ctx, dbgen.CreateProjectCategoryParams{
					ProjectID: project.ID,
					Name:      child,
					Type:      string(models.CategoryTier2),
					ParentID:  sql.NullInt64{Int64: parent.ID, Valid: true},
					SortOrder: int64(j),
				})
				if err != nil {
					return fmt.Errorf("create tier2 category %q: %w", child, err)
				}
				categories = append(categories, categoryFromDB(row))
			}
		}
		return nil
	})
	if err != nil {
		return models.Project{}, nil, err
	}
	return project, categories, nil
}

func (s *SQLStore) ListCategories(ctx context.Context, projectID int64) ([]models.ProjectCategory, error) {
	rows, err := s.db.Queries.ListProjectCategories(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list categories for project %d: %w", projectID, err)
	}
	out := make([]models.ProjectCategory, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryFromDB(row))
	}
	return out, nil
}

func (s *SQLStore) GetCategory(ctx context.Context, id int64) (models.ProjectCategory, error) {
	row, err := s.db.Queries.GetProjectCategory(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ProjectCategory{}, fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
		}
		return models.ProjectCategory{}, fmt.Errorf("load category %d: %w", id, err)
	}
	return categoryFromDB(row), nil
}

func (s *SQLStore) CreateCategory(ctx context.Context, category models.ProjectCategory) (models.ProjectCategory, error) {
	row, err := s.db.Queries.CreateProjectCategory(ctx, dbgen.CreateProjectCategoryParams{
		ProjectID: category.ProjectID,
		Name:      category.Name,
		Type:      string(category.Type),
		ParentID:  toNullInt64(category.ParentID),
		Color:     toNullString(category.Color),
		SortOrder: category.SortOrder,
	})
	if err != nil {
		return models.ProjectCategory{}, mapWriteError(err, "create category")
	}
	return categoryFromDB(row), nil
}

func (s *SQLStore) UpdateCategory(ctx context.Context, category models.ProjectCategory) (models.ProjectCategory, error) {
	row, err := s.db.Queries.UpdateProjectCategory(ctx, dbgen.UpdateProjectCategoryParams{
		Name:      category.Name,
		ParentID:  toNullInt64(category.ParentID),
		Color:     toNullString(category.Color),
		SortOrder: category.SortOrder,
		ID:        category.ID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ProjectCategory{}, fmt.Errorf("%w: %d", ErrCategoryNotFound, category.ID)
		}
		return models.ProjectCategory{}, mapWriteError(err, "update category")
	}
	return categoryFromDB(row), nil
}

// DeleteCategory refuses to delete a tier1 category that still has tier2
// children.
func (s *SQLStore) DeleteCategory(ctx context.Context, id int64) error {
	return s.db.RunInTx(ctx, func(tx *db.DB) error {
		children, err := tx.Queries.CountCategoryChildren(ctx, sql.NullInt64{Int64: id, Valid: true})
		if err != nil {
			return fmt.Errorf("count children of category %d: %w", id, err)
		}
		if children > 0 {
			return fmt.Errorf("%w: category %d has %d tier2 categories", ErrCategoryHasChildren, id, children)
		}

		rows, err := tx.Queries.DeleteProjectCategory(ctx, id)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: category %d", ErrCategoryHasChildren, id)
			}
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
		}
		return nil
	})
}

func mapWriteError(err error, action string) error {
	switch {
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrCategoryExists, err)
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: parent or project does not exist", ErrInvalidCategory)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}

func projectFromDB(row dbgen.Project) models.Project {
	project := models.Project{
		ID:             row.ID,
		Name:           row.Name,
		UseGlobalTheme: row.UseGlobalTheme,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.ColorTheme.Valid {
		key := row.ColorTheme.String
		project.ColorTheme = &key
	}
	return project
}

func categoryFromDB(row dbgen.ProjectCategory) models.ProjectCategory {
	category := models.ProjectCategory{
		ID:        row.ID,
		ProjectID: row.ProjectID,
		Name:      row.Name,
		Type:      models.CategoryType(row.Type),
		SortOrder: row.SortOrder,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.ParentID.Valid {
		parentID := row.ParentID.Int64
		category.ParentID = &parentID
	}
	if row.Color.Valid {
		color := row.Color.String
		category.Color = &color
	}
	return category
}

func toNullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func toNullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
