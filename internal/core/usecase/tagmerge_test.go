package usecase

import (
	"reflect"
	"testing"

	"github.com/kirillkom/order-insights/internal/core/domain"
)

func TestMergeTagLookupsUnionsWithFirstSeenOrder(t *testing.T) {
	a := domain.TagLookup{1: {"a", "b"}}
	b := domain.TagLookup{1: {"b", "c"}}

	merged := MergeTagLookups(a, b)
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(merged[1], want) {
		t.Fatalf("expected %v, got %v", want, merged[1])
	}
}

func TestMergeTagLookupsPassesThroughOneSidedKeys(t *testing.T) {
	a := domain.TagLookup{1: {"a"}}
	b := domain.TagLookup{2: {"z"}}

	merged := MergeTagLookups(a, b)
	if !reflect.DeepEqual(merged[1], []string{"a"}) {
		t.Fatalf("expected pass-through for key 1, got %v", merged[1])
	}
	if !reflect.DeepEqual(merged[2], []string{"z"}) {
		t.Fatalf("expected pass-through for key 2, got %v", merged[2])
	}
}

func TestMergeTagLookupsDoesNotMutateInputs(t *testing.T) {
	a := domain.TagLookup{1: {"a"}}
	b := domain.TagLookup{1: {"b"}}

	_ = MergeTagLookups(a, b)
	if !reflect.DeepEqual(a[1], []string{"a"}) || !reflect.DeepEqual(b[1], []string{"b"}) {
		t.Fatalf("inputs mutated: a=%v b=%v", a[1], b[1])
	}
}
