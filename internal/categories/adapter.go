package categories

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/categorycolor"
	"github.com/codr1/Sitecraft/internal/models"
)

// UncategorizedName labels entities with no usable category data.
const UncategorizedName = "Uncategorized"

type Source string

const (
	SourceRelational    Source = "relational"
	SourceLegacy        Source = "legacy"
	SourceUncategorized Source = "uncategorized"
)

// Resolved is an entity's normalized category with colours from one palette.
type Resolved struct {
	Kind           models.EntityKind `json:"kind"`
	EntityID       int64             `json:"entityId"`
	CategoryID     *int64            `json:"categoryId,omitempty"`
	Tier1Name      string            `json:"tier1Name"`
	Tier2Name      string            `json:"tier2Name,omitempty"`
	Tier1Slot      models.Tier1Slot  `json:"tier1Slot"`
	Tier1Color     string            `json:"tier1Color"`
	Tier1TextColor string            `json:"tier1TextColor"`
	Tier2Color     string            `json:"tier2Color,omitempty"`
	Tier2TextColor string            `json:"tier2TextColor,omitempty"`
	Source         Source            `json:"source"`
}

// Reader is the part of Store the adapter needs.
type Reader interface {
	GetCategory(ctx context.Context, id int64) (models.ProjectCategory, error)
	ListCategories(ctx context.Context, projectID int64) ([]models.ProjectCategory, error)
}

type lookupFunc func(id int64) (models.ProjectCategory, bool)

// Adapter reconciles relational category ids with the legacy flat fields.
type Adapter struct {
	store     Reader
	templates *Templates
}

func NewAdapter(store Reader, templates *Templates) *Adapter {
	return &Adapter{store: store, templates: templates}
}

// Resolve classifies one entity of projectID. The relational id wins when it
// resolves within the project; otherwise the legacy fields are used; an
// entity with neither is uncategorized. It never fails.
func (a *Adapter) Resolve(ctx context.Context, palette models.Palette, projectID int64, entity models.Entity) Resolved {
	lookup := func(id int64) (models.ProjectCategory, bool) {
		category, err := a.store.GetCategory(ctx, id)
		if err != nil {
			if !errors.Is(err, ErrCategoryNotFound) {
				log.Ctx(ctx).Error().Err(err).Int64("category_id", id).Msg("Failed to load category")
			}
			return models.ProjectCategory{}, false
		}
		if category.ProjectID != projectID {
			log.Ctx(ctx).Warn().
				Int64("category_id", id).
				Int64("project_id", projectID).
				Int64("category_project_id", category.ProjectID).
				Msg("Category belongs to another project")
			return models.ProjectCategory{}, false
		}
		return category, true
	}
	return a.resolve(ctx, palette, entity, lookup)
}

// ResolveAll classifies entities of one project, loading its categories once.
// Category ids from other projects are treated as dangling.
func (a *Adapter) ResolveAll(ctx context.Context, palette models.Palette, projectID int64, entities []models.Entity) []Resolved {
	categories, err := a.store.ListCategories(ctx, projectID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("project_id", projectID).Msg("Failed to load project categories")
	}
	byID := make(map[int64]models.ProjectCategory, len(categories))
	for _, category := range categories {
		byID[category.ID] = category
	}
	lookup := func(id int64) (models.ProjectCategory, bool) {
		category, ok := byID[id]
		return category, ok
	}

	out := make([]Resolved, 0, len(entities))
	for _, entity := range entities {
		out = append(out, a.resolve(ctx, palette, entity, lookup))
	}
	return out
}

func (a *Adapter) resolve(ctx context.Context, palette models.Palette, entity models.Entity, lookup lookupFunc) Resolved {
	logger := log.Ctx(ctx)
	out := Resolved{Kind: entity.Kind, EntityID: entity.ID, CategoryID: entity.CategoryID}

	switch ref := entity.Ref().(type) {
	case models.RelationalCategory:
		if category, ok := lookup(ref.ID); ok {
			return a.fromRelational(ctx, palette, out, category, lookup)
		}
		if legacy, ok := entity.Legacy(); ok {
			logger.Warn().
				Str("entity_kind", string(entity.Kind)).
				Int64("entity_id", entity.ID).
				Int64("category_id", ref.ID).
				Msg("Category id does not resolve, using legacy category fields")
			return a.fromLegacy(palette, out, legacy)
		}
		logger.Warn().
			Str("entity_kind", string(entity.Kind)).
			Int64("entity_id", entity.ID).
			Int64("category_id", ref.ID).
			Msg("Category id does not resolve and entity has no legacy fields")
		return uncategorized(palette, out)
	case models.LegacyCategory:
		return a.fromLegacy(palette, out, ref)
	default:
		logger.Debug().
			Str("entity_kind", string(entity.Kind)).
			Int64("entity_id", entity.ID).
			Msg("Entity has no category data, treating as uncategorized")
		return uncategorized(palette, out)
	}
}

func (a *Adapter) fromRelational(ctx context.Context, palette models.Palette, out Resolved, category models.ProjectCategory, lookup lookupFunc) Resolved {
	out.Source = SourceRelational
	if category.Type == models.CategoryTier1 {
		return colorize(palette, out, category.Name, category.Color, "")
	}

	if category.ParentID != nil {
		if parent, ok := lookup(*category.ParentID); ok && parent.Type == models.CategoryTier1 {
			return colorize(palette, out, parent.Name, parent.Color, category.Name)
		}
		log.Ctx(ctx).Warn().
			Int64("category_id", category.ID).
			Int64("parent_id", *category.ParentID).
			Msg("Tier2 parent does not resolve, guessing parent from name")
	}
	parentName, _ := a.templates.ParentFor(category.Name)
	return colorize(palette, out, parentName, nil, category.Name)
}

func (a *Adapter) fromLegacy(palette models.Palette, out Resolved, legacy models.LegacyCategory) Resolved {
	out.Source = SourceLegacy
	tier1 := legacy.Tier1Name
	if tier1 == "" && legacy.Tier2Name != "" {
		tier1, _ = a.templates.ParentFor(legacy.Tier2Name)
	}
	return colorize(palette, out, tier1, nil, legacy.Tier2Name)
}

// colorize fills in names and colours. An explicit tier1 colour is honored;
// tier2 colours always come from the palette so they follow theme changes.
func colorize(palette models.Palette, out Resolved, tier1Name string, tier1Override *string, tier2Name string) Resolved {
	slot, color := categorycolor.Tier1Color(palette, tier1Name)
	if tier1Override != nil && models.IsHexColor(*tier1Override) {
		color = *tier1Override
	}
	out.Tier1Name = tier1Name
	if out.Tier1Name == "" {
		out.Tier1Name = UncategorizedName
	}
	out.Tier1Slot = slot
	out.Tier1Color = color
	out.Tier1TextColor = models.TextColorFor(color)

	if tier2Name != "" {
		out.Tier2Name = tier2Name
		out.Tier2Color = categorycolor.Tier2Color(palette, tier2Name, tier1Name)
		out.Tier2TextColor = models.TextColorFor(out.Tier2Color)
	}
	return out
}

func uncategorized(palette models.Palette, out Resolved) Resolved {
	out.Source = SourceUncategorized
	return colorize(palette, out, "", nil, "")
}

type EntityKey struct {
	Kind models.EntityKind `json:"kind"`
	ID   int64             `json:"id"`
}

type Subgroup struct {
	Tier2Name string      `json:"tier2Name,omitempty"`
	Color     string      `json:"color,omitempty"`
	TextColor string      `json:"textColor,omitempty"`
	Entities  []EntityKey `json:"entities"`
}

type Group struct {
	Tier1Name  string           `json:"tier1Name"`
	Tier1Slot  models.Tier1Slot `json:"tier1Slot"`
	Tier1Color string           `json:"tier1Color"`
	TextColor  string           `json:"textColor"`
	Count      int              `json:"count"`
	Subgroups  []Subgroup       `json:"subgroups"`
}

// GroupResolved buckets resolved entities by tier1 then tier2 in order of
// first appearance, with the uncategorized group last.
func GroupResolved(resolved []Resolved) []Group {
	var groups []Group
	index := make(map[string]int)
	subIndex := make(map[string]map[string]int)

	for _, r := range resolved {
		gi, ok := index[r.Tier1Name]
		if !ok {
			gi = len(groups)
			index[r.Tier1Name] = gi
			subIndex[r.Tier1Name] = make(map[string]int)
			groups = append(groups, Group{
				Tier1Name:  r.Tier1Name,
				Tier1Slot:  r.Tier1Slot,
				Tier1Color: r.Tier1Color,
				TextColor:  r.Tier1TextColor,
			})
		}
		group := &groups[gi]

		si, ok := subIndex[r.Tier1Name][r.Tier2Name]
		if !ok {
			si = len(group.Subgroups)
			subIndex[r.Tier1Name][r.Tier2Name] = si
			group.Subgroups = append(group.Subgroups, Subgroup{
				Tier2Name: r.Tier2Name,
				Color:     r.Tier2Color,
				TextColor: r.Tier2TextColor,
			})
		}
		group.Subgroups[si].Entities = append(group.Subgroups[si].Entities, EntityKey{Kind: r.Kind, ID: r.EntityID})
		group.Count++
	}

	if gi, ok := index[UncategorizedName]; ok && gi != len(groups)-1 {
		other := groups[gi]
		groups = append(groups[:gi], groups[gi+1:]...)
		groups = append(groups, other)
	}
	return groups
}
