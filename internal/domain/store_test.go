package domain_test

import (
	"math"
	"testing"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// inventoryStub фиксирует вызовы, не реализуя реальное хранение.
type inventoryStub struct {
	added   map[int64]int32
	removed map[int64]int32
	stock   map[int64]int32
}

func newInventoryStub() *inventoryStub {
	return &inventoryStub{
		added:   make(map[int64]int32),
		removed: make(map[int64]int32),
		stock:   make(map[int64]int32),
	}
}

func (s *inventoryStub) Add(prod domain.Product, qty int32) error {
	if qty <= 0 {
		return domain.ErrQtyInvalid
	}
	s.added[prod.SKU] += qty
	s.stock[prod.SKU] += qty
	return nil
}

func (s *inventoryStub) Remove(sku int64, qty int32) {
	s.removed[sku] += qty
}

func (s *inventoryStub) Check(sku int64) int32 {
	return s.stock[sku]
}

func (s *inventoryStub) ListAvailable() []domain.Product {
	return nil
}

func TestLocationDistanceTo(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.Location
		want float64
	}{
		{name: "same point", a: domain.Location{}, b: domain.Location{}, want: 0},
		{name: "axis aligned", a: domain.Location{X: 0, Y: 0}, b: domain.Location{X: 3, Y: 0}, want: 3},
		{name: "pythagorean", a: domain.Location{X: 0, Y: 0}, b: domain.Location{X: 3, Y: 4}, want: 5},
		{name: "negative coordinates", a: domain.Location{X: -1, Y: -1}, b: domain.Location{X: 2, Y: 3}, want: 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.DistanceTo(tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("DistanceTo = %f, want %f", got, tc.want)
			}
			// Расстояние симметрично.
			if back := tc.b.DistanceTo(tc.a); math.Abs(back-got) > 1e-9 {
				t.Errorf("distance is not symmetric: %f vs %f", got, back)
			}
		})
	}
}

func TestDarkStore_Delegation(t *testing.T) {
	inv := newInventoryStub()
	store := domain.NewDarkStore("DarkStoreA", domain.Location{X: 1, Y: 2}, inv)

	if store.Name() != "DarkStoreA" {
		t.Errorf("Name = %q", store.Name())
	}
	if loc := store.Location(); loc.X != 1 || loc.Y != 2 {
		t.Errorf("Location = %+v", loc)
	}

	if err := store.AddStock(domain.Product{SKU: 101, PriceMinor: 2000}, 5); err != nil {
		t.Fatalf("AddStock: %v", err)
	}
	if got := store.CheckStock(101); got != 5 {
		t.Errorf("CheckStock = %d, want 5", got)
	}

	store.RemoveStock(101, 2)
	if inv.removed[101] != 2 {
		t.Errorf("Remove not delegated, removed=%v", inv.removed)
	}

	if d := store.DistanceTo(domain.Location{X: 4, Y: 6}); math.Abs(d-5) > 1e-9 {
		t.Errorf("DistanceTo = %f, want 5", d)
	}
}

// strategyStub считает вызовы Replenish.
type strategyStub struct {
	calls int
	plan  map[int64]int32
}

func (s *strategyStub) Replenish(store *domain.DarkStore, plan map[int64]int32) error {
	s.calls++
	s.plan = plan
	return nil
}

func TestDarkStore_RunReplenishment(t *testing.T) {
	store := domain.NewDarkStore("DarkStoreA", domain.Location{}, newInventoryStub())

	// Без стратегии пополнение — no-op.
	if err := store.RunReplenishment(map[int64]int32{101: 5}); err != nil {
		t.Fatalf("RunReplenishment without strategy: %v", err)
	}

	strategy := &strategyStub{}
	store.SetReplenishStrategy(strategy)
	plan := map[int64]int32{101: 5, 102: 3}
	if err := store.RunReplenishment(plan); err != nil {
		t.Fatalf("RunReplenishment: %v", err)
	}
	if strategy.calls != 1 {
		t.Errorf("strategy called %d times, want 1", strategy.calls)
	}
	if len(strategy.plan) != 2 {
		t.Errorf("plan not passed through: %v", strategy.plan)
	}
}
