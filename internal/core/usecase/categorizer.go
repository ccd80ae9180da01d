package usecase

import (
	"sort"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

// Categorizer classifies products and orders against an immutable category
// tag vocabulary. All methods are pure transforms; absence of tags or unknown
// product references degrade coverage, they never fail.
type Categorizer struct {
	config domain.CategoryConfig
}

func NewCategorizer(config domain.CategoryConfig) *Categorizer {
	return &Categorizer{config: config}
}

// CategoryIndex is the per-run product classification: category membership
// per product id plus the category-specific tag lookups the membership was
// derived from.
type CategoryIndex struct {
	memberships map[int64][]domain.Category
	tagLookups  map[domain.Category]domain.TagLookup
}

func (idx *CategoryIndex) CategoriesFor(productID int64) []domain.Category {
	return idx.memberships[productID]
}

// TagLookupFor returns the product->matched-tags mapping for one category.
func (idx *CategoryIndex) TagLookupFor(category domain.Category) domain.TagLookup {
	return idx.tagLookups[category]
}

// CategorizeProduct returns every category whose vocabulary intersects the
// product's tag set. Exact, case-sensitive matching; a product with no
// matching tags belongs to no category.
func (c *Categorizer) CategorizeProduct(product domain.Product) []domain.Category {
	var out []domain.Category
	for _, category := range c.config.Categories() {
		if len(matchingTags(product.Tags, c.config[category])) > 0 {
			out = append(out, category)
		}
	}
	return out
}

// BuildIndex classifies the whole catalog once per run.
func (c *Categorizer) BuildIndex(products []domain.Product) *CategoryIndex {
	idx := &CategoryIndex{
		memberships: make(map[int64][]domain.Category, len(products)),
		tagLookups:  make(map[domain.Category]domain.TagLookup, len(c.config)),
	}
	for _, category := range c.config.Categories() {
		idx.tagLookups[category] = domain.TagLookup{}
	}

	for _, product := range products {
		for _, category := range c.config.Categories() {
			matched := matchingTags(product.Tags, c.config[category])
			if len(matched) == 0 {
				continue
			}
			idx.memberships[product.ID] = append(idx.memberships[product.ID], category)
			idx.tagLookups[category][product.ID] = matched
		}
	}
	return idx
}

// BuildBuckets groups orders per customer per category. An order is
// attributed to every category touched by at least one line item; orders
// spanning categories land in each of them. Line items referencing products
// absent from the index contribute no membership.
func (c *Categorizer) BuildBuckets(orders []domain.Order, idx *CategoryIndex) map[int64]map[domain.Category][]domain.Order {
	buckets := make(map[int64]map[domain.Category][]domain.Order)
	for _, order := range orders {
		categories := orderCategories(order, idx)
		if len(categories) == 0 {
			continue
		}
		customer, ok := buckets[order.CustomerID]
		if !ok {
			customer = make(map[domain.Category][]domain.Order)
			buckets[order.CustomerID] = customer
		}
		for _, category := range categories {
			customer[category] = append(customer[category], order)
		}
	}
	return buckets
}

// SortBucket orders a bucket ascending by creation timestamp. Every statistic
// downstream assumes this ordering.
func SortBucket(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}

func orderCategories(order domain.Order, idx *CategoryIndex) []domain.Category {
	var out []domain.Category
	seen := make(map[domain.Category]struct{})
	for _, item := range order.LineItems {
		for _, category := range idx.CategoriesFor(item.ProductID) {
			if _, ok := seen[category]; ok {
				continue
			}
			seen[category] = struct{}{}
			out = append(out, category)
		}
	}
	return out
}

func matchingTags(productTags, vocabulary []string) []string {
	var matched []string
	for _, tag := range productTags {
		for _, known := range vocabulary {
			if tag == known {
				matched = append(matched, tag)
				break
			}
		}
	}
	return matched
}
