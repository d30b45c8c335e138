package allocator_test

import (
	"testing"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

func TestAvailableProducts(t *testing.T) {
	f := newFixture(t)
	f.addStore(t, "near", 0, 0, map[int64]int32{101: 5, 102: 2})
	f.addStore(t, "far", 3, 0, map[int64]int32{101: 9, 103: 1})
	f.addStore(t, "unreachable", 50, 50, map[int64]int32{103: 100})

	got := f.service.AvailableProducts(domain.Location{})

	want := []int64{101, 102, 103}
	if len(got) != len(want) {
		t.Fatalf("products = %v", got)
	}
	for i, sku := range want {
		if got[i].SKU != sku {
			t.Errorf("product %d = sku %d, want %d", i, got[i].SKU, sku)
		}
	}
}

func TestAvailableProducts_NoCoverage(t *testing.T) {
	f := newFixture(t)
	f.addStore(t, "far", 50, 50, map[int64]int32{101: 5})

	if got := f.service.AvailableProducts(domain.Location{}); len(got) != 0 {
		t.Errorf("expected no products, got %v", got)
	}
}
