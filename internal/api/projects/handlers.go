// internal/api/projects/handlers.go
package projects

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/api/apiutil"
	"github.com/codr1/Sitecraft/internal/api/htmx"
	"github.com/codr1/Sitecraft/internal/categories"
	"github.com/codr1/Sitecraft/internal/models"
	themesvc "github.com/codr1/Sitecraft/internal/themes"
)

const (
	projectQueryTimeout = 5 * time.Second
	projectIDParam      = "id"
	categoryIDParam     = "categoryID"
	maxResolveEntities  = 5000
)

var (
	categoryService *categories.Service
	adapter         *categories.Adapter
	themeService    *themesvc.Service
	handlersOnce    sync.Once
)

type createProjectRequest struct {
	Name     string `json:"name"`
	Template string `json:"template"`
}

type projectThemeRequest struct {
	ColorTheme     *string `json:"colorTheme"`
	UseGlobalTheme bool    `json:"useGlobalTheme"`
}

type categoryRequest struct {
	Name      string              `json:"name"`
	Type      models.CategoryType `json:"type"`
	ParentID  *int64              `json:"parentId"`
	Color     *string             `json:"color"`
	SortOrder int64               `json:"sortOrder"`
}

type resolveRequest struct {
	Entities []models.Entity `json:"entities"`
}

type projectThemeResponse struct {
	themesvc.ProjectTheme
	Effective themesvc.Effective `json:"effective"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(categorySvc *categories.Service, categoryAdapter *categories.Adapter, themeSvc *themesvc.Service) {
	if categorySvc == nil || categoryAdapter == nil || themeSvc == nil {
		return
	}
	handlersOnce.Do(func() {
		categoryService = categorySvc
		adapter = categoryAdapter
		themeService = themeSvc
	})
}

func ready(w http.ResponseWriter, r *http.Request) bool {
	if categoryService == nil || adapter == nil || themeService == nil {
		log.Ctx(r.Context()).Error().Msg("Project services not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	return true
}

// POST /api/v1/projects
func HandleProjectCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, r) || !apiutil.RequireUser(w, r) {
		return
	}

	var req createProjectRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), projectQueryTimeout)
	defer cancel()

	project, created, err := categoryService.ProvisionProject(ctx, req.Name, req.Template)
	if err != nil {
		writeCategoryError(w, r, err, "Failed to create project")
		return
	}
	if created == nil {
		created = []models.ProjectCategory{}
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"project":    project,
		"categories": created,
	}); err != nil {
		logger.Error().Err(err).Int64("project_id", project.ID).Msg("Failed to write project response")
	}
}

// GET /api/v1/projects/{id}/theme
func HandleProjectThemeGet(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, r) {
		return
	}

	projectID, err := apiutil.PathInt64(r, projectIDParam)
	if err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), projectQueryTimeout)
	defer cancel()

	pt, err := themeService.GetProjectTheme(ctx, projectID)
	if err != nil {
		writeThemeError(w, r, err, "Failed to load project theme")
		return
	}

	resp := projectThemeResponse{
		ProjectTheme: pt,
		Effective:    themeService.ResolveEffective(ctx, &projectID),
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("project_id", projectID).Msg("Failed to write project theme response")
	}
}

// PUT /api/v1/projects/{id}/theme
func HandleProjectThemeUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, r) || !apiutil.RequireUser(w, r) {
		return
	}

	projectID, err := apiutil.PathInt64(r, projectIDParam)
	if err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	var req projectThemeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), projectQueryTimeout)
	defer cancel()

	pt, err := themeService.SetProjectTheme(ctx, projectID, req.ColorTheme, req.UseGlobalTheme)
	if err != nil {
		writeThemeError(w, r, err, "Failed to update project theme")
		return
	}

	resp := projectThemeResponse{
		ProjectTheme: pt,
		Effective:    themeService.ResolveEffective(ctx, &projectID),
	}
	if htmx.IsRequest(r) {
		htmx.Trigger(w, htmx.ThemeChangedEvent, resp.Effective)
		apiutil.WriteHTMLFeedback(w, http.StatusOK, "Project theme updated")
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("project_id", projectID).Msg("Failed to write project theme response")
	}
}

// GET /api/v1/projects/{id}/categories
func HandleCategoriesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, r) {
		return
	}

	projectID, err := apiutil.PathInt64(r, projectIDParam)
	if err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), projectQueryTimeout)
	defer cancel()

	list, err := categoryService.List(ctx, projectID)
	if err != nil {
		writeCategoryError(w, r, err, "Failed to list categories")
		return
	}
	if list == nil {
		list = []models.ProjectCategory{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"categories": list}); err != nil {
		logger.Error().Err(err).Int64("project_id", projectID).Msg("Failed to write categories response")
	}
}

// POST /api/v1/projects/{id}/categories
func HandleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, r) || !apiutil.RequireUser(w, r) {
		return
	}

	projectID, err := apiutil.PathInt64(r, projectIDParam)
	if err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	var req categoryRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), projectQueryTimeout)
	defer cancel()

	created, err := categoryService.Create(ctx, req.toCategory(projectID, 0))
	if err != nil {
		writeCategoryError(w, r, err, "Failed to create category")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Int64("category_id", created.ID).Msg("Failed to write category response")
	}
}

// PUT /api/v1/projects/{id}/categories/{categoryID}
func HandleCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, r) || !apiutil.RequireUser(w, r) {
		return
	}

	projectID, categoryID, ok := categoryPath(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), projectQueryTimeout)
	defer cancel()

	updated, err := categoryService.Update(ctx, req.toCategory(projectID, categoryID))
	if err != nil {
		writeCategoryError(w, r, err, "Failed to update category")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Int64("category_id", categoryID).Msg("Failed to write category response")
	}
}

// DELETE /api/v1/projects/{id}/categories/{categoryID}
func HandleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) || !apiutil.RequireUser(w, r) {
		return
	}

	projectID, categoryID, ok := categoryPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), projectQueryTimeout)
	defer cancel()

	if err := categoryService.Delete(ctx, projectID, categoryID); err != nil {
		writeCategoryError(w, r, err, "Failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/projects/{id}/categories/resolve
//
// Resolves a batch of tasks, materials or labor rows against the project's
// categories and its effective palette, and groups them for overview
// screens.
func HandleCategoriesResolve(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if !ready(w, r) {
		return
	}

	projectID, err := apiutil.PathInt64(r, projectIDParam)
	if err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return
	}

	var req resolveRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Entities) > maxResolveEntities {
		http.Error(w, "Too many entities", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), projectQueryTimeout)
	defer cancel()

	if _, err := categoryService.GetProject(ctx, projectID); err != nil {
		writeCategoryError(w, r, err, "Failed to load project")
		return
	}

	palette := themeService.ResolveEffectiveTheme(ctx, &projectID)
	resolved := adapter.ResolveAll(ctx, palette, projectID, req.Entities)
	if resolved == nil {
		resolved = []categories.Resolved{}
	}
	groups := categories.GroupResolved(resolved)
	if groups == nil {
		groups = []categories.Group{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"themeKey": palette.Key,
		"resolved": resolved,
		"groups":   groups,
	}); err != nil {
		logger.Error().Err(err).Int64("project_id", projectID).Msg("Failed to write resolve response")
	}
}

func (req categoryRequest) toCategory(projectID, categoryID int64) models.ProjectCategory {
	return models.ProjectCategory{
		ID:        categoryID,
		ProjectID: projectID,
		Name:      req.Name,
		Type:      models.CategoryType(strings.ToLower(strings.TrimSpace(string(req.Type)))),
		ParentID:  req.ParentID,
		Color:     req.Color,
		SortOrder: req.SortOrder,
	}
}

func categoryPath(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	projectID, err := apiutil.PathInt64(r, projectIDParam)
	if err != nil {
		http.Error(w, "Invalid project ID", http.StatusBadRequest)
		return 0, 0, false
	}
	categoryID, err := apiutil.PathInt64(r, categoryIDParam)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return 0, 0, false
	}
	return projectID, categoryID, true
}

func writeCategoryError(w http.ResponseWriter, r *http.Request, err error, logMessage string) {
	switch {
	case errors.Is(err, categories.ErrProjectNotFound):
		http.Error(w, "Project not found", http.StatusNotFound)
	case errors.Is(err, categories.ErrCategoryNotFound):
		http.Error(w, "Category not found", http.StatusNotFound)
	case errors.Is(err, categories.ErrInvalidCategory), errors.Is(err, categories.ErrUnknownTemplate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, categories.ErrCategoryExists), errors.Is(err, categories.ErrCategoryHasChildren):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg(logMessage)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeThemeError(w http.ResponseWriter, r *http.Request, err error, logMessage string) {
	var validation *themesvc.ValidationError
	switch {
	case errors.Is(err, themesvc.ErrProjectNotFound):
		http.Error(w, "Project not found", http.StatusNotFound)
	case errors.Is(err, themesvc.ErrInvalidThemeKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &validation):
		http.Error(w, validation.Reason, http.StatusConflict)
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg(logMessage)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
