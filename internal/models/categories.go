package models

import (
	"fmt"
	"strings"
	"time"
)

const maxCategoryNameLength = 120

type CategoryType string

const (
	CategoryTier1 CategoryType = "tier1"
	CategoryTier2 CategoryType = "tier2"
)

func (t CategoryType) Valid() bool {
	return t == CategoryTier1 || t == CategoryTier2
}

// ProjectCategory is the relational form of a category.
type ProjectCategory struct {
	ID        int64        `json:"id"`
	ProjectID int64        `json:"projectId"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	ParentID  *int64       `json:"parentId,omitempty"`
	Color     *string      `json:"color,omitempty"`
	SortOrder int64        `json:"sortOrder"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func (c ProjectCategory) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if name != c.Name {
		return fmt.Errorf("name must not have leading or trailing whitespace")
	}
	if len(name) > maxCategoryNameLength {
		return fmt.Errorf("name must be %d characters or fewer", maxCategoryNameLength)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("type must be tier1 or tier2")
	}
	if c.Type == CategoryTier1 && c.ParentID != nil {
		return fmt.Errorf("tier1 categories cannot have a parent")
	}
	if c.ParentID != nil && *c.ParentID <= 0 {
		return fmt.Errorf("parentId must be a positive integer")
	}
	if c.Color != nil && !IsHexColor(*c.Color) {
		return fmt.Errorf("color must be a 6-digit hex color like #AABBCC")
	}
	if c.SortOrder < 0 {
		return fmt.Errorf("sortOrder must be 0 or greater")
	}
	return nil
}

type EntityKind string

const (
	EntityTask     EntityKind = "task"
	EntityMaterial EntityKind = "material"
	EntityLabor    EntityKind = "labor"
)

// Entity is a task, material or labor row as far as categorization is
// concerned. Rows carry a relational CategoryID, the legacy flat fields, or
// both.
type Entity struct {
	Kind          EntityKind `json:"kind"`
	ID            int64      `json:"id"`
	CategoryID    *int64     `json:"categoryId,omitempty"`
	Tier1Category string     `json:"tier1Category,omitempty"`
	Tier2Category string     `json:"tier2Category,omitempty"`
}

// CategoryRef is either a LegacyCategory or a RelationalCategory.
type CategoryRef interface {
	isCategoryRef()
}

type LegacyCategory struct {
	Tier1Name string
	Tier2Name string
}

type RelationalCategory struct {
	ID int64
}

func (LegacyCategory) isCategoryRef()     {}
func (RelationalCategory) isCategoryRef() {}

// Ref returns the entity's primary category reference: the relational id
// when present, otherwise the legacy fields, otherwise nil.
func (e Entity) Ref() CategoryRef {
	if e.CategoryID != nil && *e.CategoryID > 0 {
		return RelationalCategory{ID: *e.CategoryID}
	}
	if legacy, ok := e.Legacy(); ok {
		return legacy
	}
	return nil
}

// Legacy returns the flat string fields when at least one is set.
func (e Entity) Legacy() (LegacyCategory, bool) {
	tier1 := strings.TrimSpace(e.Tier1Category)
	tier2 := strings.TrimSpace(e.Tier2Category)
	if tier1 == "" && tier2 == "" {
		return LegacyCategory{}, false
	}
	return LegacyCategory{Tier1Name: tier1, Tier2Name: tier2}, true
}
