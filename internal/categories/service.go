// Package categories stores project categories and resolves tasks,
// materials and labor rows to their tier1/tier2 categories and colours.
package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/events"
	"github.com/codr1/Sitecraft/internal/models"
)

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryHasChildren = errors.New("category has tier2 children")
	ErrCategoryExists      = errors.New("category already exists")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrProjectNotFound     = errors.New("project not found")
	ErrUnknownTemplate     = errors.New("unknown category template")
)

// Service validates category writes and announces them on the hub.
type Service struct {
	store     Store
	templates *Templates
	hub       *events.Hub
}

func NewService(store Store, templates *Templates, hub *events.Hub) *Service {
	return &Service{store: store, templates: templates, hub: hub}
}

func (s *Service) Templates() *Templates {
	return s.templates
}

// ProvisionProject creates a project. A non-empty templateKey seeds its
// categories from that template; "default" picks the default template.
func (s *Service) ProvisionProject(ctx context.Context, name, templateKey string) (models.Project, []models.ProjectCategory, error) {
	name = strings.TrimSpace(name)
	if err := models.ValidateProjectName(name); err != nil {
		return models.Project{}, nil, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}

	var tmpl *Template
	switch templateKey = strings.TrimSpace(templateKey); templateKey {
	case "":
	case "default":
		t := s.templates.Default()
		tmpl = &t
	default:
		t, ok := s.templates.Get(templateKey)
		if !ok {
			return models.Project{}, nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, templateKey)
		}
		tmpl = &t
	}

	project, created, err := s.store.CreateProject(ctx, name, tmpl)
	if err != nil {
		return models.Project{}, nil, err
	}

	logEvent := log.Ctx(ctx).Info().Int64("project_id", project.ID).Int("categories", len(created))
	if tmpl != nil {
		logEvent = logEvent.Str("template", tmpl.Key)
	}
	logEvent.Msg("Project provisioned")

	if len(created) > 0 {
		s.publish(project.ID)
	}
	return project, created, nil
}

func (s *Service) GetProject(ctx context.Context, projectID int64) (models.Project, error) {
	return s.store.GetProject(ctx, projectID)
}

// List returns the project's categories ordered tier1 first, then by sort
// order and name.
func (s *Service) List(ctx context.Context, projectID int64) ([]models.ProjectCategory, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, projectID)
}

func (s *Service) Create(ctx context.Context, category models.ProjectCategory) (models.ProjectCategory, error) {
	category.ID = 0
	category.Name = strings.TrimSpace(category.Name)
	if err := category.Validate(); err != nil {
		return models.ProjectCategory{}, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}
	if _, err := s.store.GetProject(ctx, category.ProjectID); err != nil {
		return models.ProjectCategory{}, err
	}
	if err := s.checkParent(ctx, category); err != nil {
		return models.ProjectCategory{}, err
	}

	created, err := s.store.CreateCategory(ctx, category)
	if err != nil {
		return models.ProjectCategory{}, err
	}
	s.publish(created.ProjectID)
	return created, nil
}

// Update replaces the mutable fields of a category. The type cannot change.
func (s *Service) Update(ctx context.Context, category models.ProjectCategory) (models.ProjectCategory, error) {
	existing, err := s.getScoped(ctx, category.ProjectID, category.ID)
	if err != nil {
		return models.ProjectCategory{}, err
	}

	category.Name = strings.TrimSpace(category.Name)
	category.Type = existing.Type
	if err := category.Validate(); err != nil {
		return models.ProjectCategory{}, fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}
	if category.ParentID != nil && *category.ParentID == category.ID {
		return models.ProjectCategory{}, fmt.Errorf("%w: a category cannot be its own parent", ErrInvalidCategory)
	}
	if err := s.checkParent(ctx, category); err != nil {
		return models.ProjectCategory{}, err
	}

	updated, err := s.store.UpdateCategory(ctx, category)
	if err != nil {
		return models.ProjectCategory{}, err
	}
	s.publish(updated.ProjectID)
	return updated, nil
}

// Delete removes a category. Tier1 categories with tier2 children are
// rejected with ErrCategoryHasChildren.
func (s *Service) Delete(ctx context.Context, projectID, id int64) error {
	if _, err := s.getScoped(ctx, projectID, id); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.publish(projectID)
	return nil
}

func (s *Service) getScoped(ctx context.Context, projectID, id int64) (models.ProjectCategory, error) {
	existing, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return models.ProjectCategory{}, err
	}
	if existing.ProjectID != projectID {
		return models.ProjectCategory{}, fmt.Errorf("%w: %d", ErrCategoryNotFound, id)
	}
	return existing, nil
}

func (s *Service) checkParent(ctx context.Context, category models.ProjectCategory) error {
	if category.ParentID == nil {
		return nil
	}
	parent, err := s.store.GetCategory(ctx, *category.ParentID)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return fmt.Errorf("%w: parent category %d does not exist", ErrInvalidCategory, *category.ParentID)
		}
		return err
	}
	if parent.ProjectID != category.ProjectID || parent.Type != models.CategoryTier1 {
		return fmt.Errorf("%w: parentId must reference a tier1 category in the same project", ErrInvalidCategory)
	}
	return nil
}

func (s *Service) publish(projectID int64) {
	s.hub.Publish(events.Event{Type: events.CategoriesChanged, ProjectID: &projectID})
}
