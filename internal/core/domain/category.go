package domain

import "sort"

// Category is one of a small closed set of business-defined product groupings.
type Category string

const (
	CategoryAutomation Category = "Automation"
	CategoryDogExtra   Category = "DogExtra"
	CategoryDefault    Category = "Default"
)

// CategoryConfig maps each category to its tag vocabulary. Membership is an
// exact, case-sensitive tag match. The value is built once at startup and
// treated as immutable by everything that receives it.
type CategoryConfig map[Category][]string

// DefaultCategoryConfig is the compiled-in vocabulary, used when no category
// file is configured.
func DefaultCategoryConfig() CategoryConfig {
	return CategoryConfig{
		CategoryAutomation: {"automation", "subscription", "auto-ship"},
		CategoryDogExtra:   {"dog", "dog-extra", "treats"},
		CategoryDefault:    {"default", "staple"},
	}
}

// Categories returns the configured category names in stable order.
func (c CategoryConfig) Categories() []Category {
	known := []Category{CategoryAutomation, CategoryDogExtra, CategoryDefault}
	out := make([]Category, 0, len(c))
	for _, cat := range known {
		if _, ok := c[cat]; ok {
			out = append(out, cat)
		}
	}
	var extra []Category
	for cat := range c {
		if !containsCategory(out, cat) {
			extra = append(extra, cat)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func containsCategory(list []Category, c Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

// TagLookup maps a product identifier to the tags that made it a category
// member. Merged lookups hold the de-duplicated union across categories.
type TagLookup map[int64][]string
