package render

import (
	"strings"
	"unicode/utf16"
)

// Category groups node labels that share a color.
type Category string

const (
	CategoryFrontend Category = "frontend"
	CategoryBackend  Category = "backend"
	CategoryData     Category = "data"
	CategoryAuth     Category = "auth"
	CategoryUtility  Category = "utility"
	CategoryNetwork  Category = "network"
	CategoryService  Category = "service"
	CategoryCore     Category = "core"
	CategoryNone     Category = "none"
)

var categoryColors = map[Category]string{
	CategoryFrontend: "#2563eb",
	CategoryBackend:  "#7c3aed",
	CategoryData:     "#059669",
	CategoryAuth:     "#e11d48",
	CategoryUtility:  "#d97706",
	CategoryNetwork:  "#0891b2",
	CategoryService:  "#c026d3",
	CategoryCore:     "#1e293b",
	CategoryNone:     "#0f172a",
}

// Keyword groups are checked in order; the first substring hit wins.
var keywordGroups = []struct {
	category Category
	keywords []string
}{
	{CategoryFrontend, []string{"front", "ui", "client", "page"}},
	{CategoryBackend, []string{"back", "api", "server", "route"}},
	{CategoryData, []string{"data", "store", "db", "sql", "prisma"}},
	{CategoryAuth, []string{"auth", "login", "user", "guard"}},
	{CategoryUtility, []string{"util", "lib", "common", "shared"}},
	{CategoryNetwork, []string{"net", "http", "fetch"}},
	{CategoryService, []string{"service", "worker", "job"}},
	{CategoryCore, []string{"github", "docker", "config"}},
}

// hashPalette is indexed by the label hash when no keyword matches.
var hashPalette = []Category{
	CategoryFrontend, CategoryBackend, CategoryData, CategoryAuth,
	CategoryUtility, CategoryNetwork, CategoryService, CategoryCore,
}

// CategoryOf classifies a node label by keyword, falling back to a stable
// hash so unrelated labels still get distinct but repeatable colors.
func CategoryOf(label string) Category {
	if label == "" {
		return CategoryNone
	}
	lower := strings.ToLower(label)
	if lower == "src" {
		return CategoryCore
	}
	for _, g := range keywordGroups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return g.category
			}
		}
	}
	return hashPalette[labelHash(label)%len(hashPalette)]
}

// Color returns the fill color for c.
func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return categoryColors[CategoryNone]
}

// ColorOf is shorthand for CategoryOf(label).Color().
func ColorOf(label string) string {
	return CategoryOf(label).Color()
}

// labelHash is the classic 31-multiplier string hash over UTF-16 code units
// with 32-bit wraparound, returned as a non-negative int.
func labelHash(s string) int {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = int32(c) + (h << 5) - h
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v)
}
