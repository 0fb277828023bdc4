// Package categorycolor maps category names onto palette colours. The
// mapping is shared with the web and mobile clients and must stay
// bit-for-bit identical to theirs: existing categories depend on it.
package categorycolor

import (
	"strings"
	"unicode/utf16"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sitecraft/internal/models"
)

// Bucket is a contiguous, 1-based range of tier2 palette indices owned by
// one tier1 parent group.
type Bucket struct {
	Name  string
	Slot  models.Tier1Slot
	First int
	Last  int
}

func (b Bucket) Len() int {
	return b.Last - b.First + 1
}

// Contains reports whether the tier2 index falls inside the bucket.
func (b Bucket) Contains(index int) bool {
	return index >= b.First && index <= b.Last
}

var (
	bucketA = Bucket{Name: "A", Slot: models.SlotSubcategory1, First: 1, Last: 5}
	bucketB = Bucket{Name: "B", Slot: models.SlotSubcategory2, First: 6, Last: 8}
	bucketC = Bucket{Name: "C", Slot: models.SlotSubcategory3, First: 9, Last: 13}
	bucketD = Bucket{Name: "D", Slot: models.SlotSubcategory4, First: 14, Last: 20}
)

var buckets = []Bucket{bucketA, bucketB, bucketC, bucketD}

var slotBuckets = map[models.Tier1Slot]Bucket{
	models.SlotSubcategory1: bucketA,
	models.SlotSubcategory2: bucketB,
	models.SlotSubcategory3: bucketC,
	models.SlotSubcategory4: bucketD,
	models.SlotSubcategory5: bucketD,
}

// tier1Aliases is keyed by normalized tier1 name.
var tier1Aliases = map[string]models.Tier1Slot{
	"structural":        models.SlotSubcategory1,
	"push":              models.SlotSubcategory1,
	"subcategory1":      models.SlotSubcategory1,
	"productmanagement": models.SlotSubcategory1,

	"systems":      models.SlotSubcategory2,
	"pull":         models.SlotSubcategory2,
	"subcategory2": models.SlotSubcategory2,
	"design":       models.SlotSubcategory2,

	"sheathing":    models.SlotSubcategory3,
	"legs":         models.SlotSubcategory3,
	"subcategory3": models.SlotSubcategory3,
	"development":  models.SlotSubcategory3,

	"finishings":   models.SlotSubcategory4,
	"cardio":       models.SlotSubcategory4,
	"subcategory4": models.SlotSubcategory4,
	"testing":      models.SlotSubcategory4,

	"subcategory5": models.SlotSubcategory5,
}

var parentNameReplacer = strings.NewReplacer("_", "", " ", "", "-", "")

// NormalizeParent lowercases a tier1 name and strips underscores, spaces and
// hyphens.
func NormalizeParent(name string) string {
	return parentNameReplacer.Replace(strings.ToLower(name))
}

// SlotFor returns the tier1 palette slot for a tier1 name.
func SlotFor(tier1Name string) (models.Tier1Slot, bool) {
	slot, ok := tier1Aliases[NormalizeParent(tier1Name)]
	return slot, ok
}

// BucketFor returns the bucket for a parent name. Unmapped parents land in
// the first bucket.
func BucketFor(parentName string) Bucket {
	slot, ok := SlotFor(parentName)
	if !ok {
		return bucketA
	}
	bucket, ok := slotBuckets[slot]
	if !ok {
		return bucketA
	}
	return bucket
}

// Buckets returns the bucket table in index order.
func Buckets() []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets)
	return out
}

// Aliases returns the normalized tier1 names the alias table knows.
func Aliases() map[string]models.Tier1Slot {
	out := make(map[string]models.Tier1Slot, len(tier1Aliases))
	for name, slot := range tier1Aliases {
		out[name] = slot
	}
	return out
}

// MaxTier2Index is the highest tier2 index any bucket can select. Every
// palette must define at least this many tier2 colours.
func MaxTier2Index() int {
	highest := 0
	for _, bucket := range buckets {
		if bucket.Last > highest {
			highest = bucket.Last
		}
	}
	return highest
}

// HashName is the clients' rolling string hash: for each UTF-16 code unit,
// hash = unit + ((hash << 5) - hash), where the shift operates on the low
// 32 bits as a signed integer and the subtraction does not wrap.
func HashName(name string) int64 {
	var hash int64
	for _, unit := range utf16.Encode([]rune(name)) {
		hash = int64(unit) + (int64(int32(hash)<<5) - hash)
	}
	return hash
}

// Tier2Index returns the 1-based tier2 palette index for a category.
func Tier2Index(categoryName, parentName string) int {
	if categoryName == "" {
		return bucketA.First
	}
	bucket := BucketFor(parentName)
	hash := HashName(categoryName)
	if hash < 0 {
		hash = -hash
	}
	return bucket.First + int(hash%int64(bucket.Len()))
}

// Tier2Color resolves a tier2 category colour from the palette. A missing
// palette entry falls back to the palette's secondary colour.
func Tier2Color(palette models.Palette, categoryName, parentName string) string {
	index := Tier2Index(categoryName, parentName)
	if color, ok := palette.Tier2At(index); ok {
		return color
	}
	log.Warn().
		Str("palette", palette.Key).
		Int("tier2_index", index).
		Int("tier2_len", len(palette.Tier2)).
		Str("category", categoryName).
		Str("parent", parentName).
		Msg("Palette lookup miss, using fallback color")
	return palette.FallbackColor()
}

// Tier1Color resolves a tier1 name to its slot and colour. Unrecognized
// names use the default slot.
func Tier1Color(palette models.Palette, tier1Name string) (models.Tier1Slot, string) {
	slot, ok := SlotFor(tier1Name)
	if !ok {
		slot = models.SlotDefault
	}
	return slot, palette.Tier1Color(slot)
}
