package usecase

import "github.com/kirillkom/order-insights/internal/core/domain"

// MergeTagLookups unions two product->tags lookups. For identifiers present
// in both, the tag list is the de-duplicated union with first-seen order
// preserved; one-sided identifiers pass through. Inputs are never mutated.
func MergeTagLookups(a, b domain.TagLookup) domain.TagLookup {
	merged := make(domain.TagLookup, len(a)+len(b))
	for id, tags := range a {
		merged[id] = appendUniqueTags(nil, tags)
	}
	for id, tags := range b {
		merged[id] = appendUniqueTags(merged[id], tags)
	}
	return merged
}

func appendUniqueTags(dst, src []string) []string {
	for _, tag := range src {
		if !containsTag(dst, tag) {
			dst = append(dst, tag)
		}
	}
	return dst
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
