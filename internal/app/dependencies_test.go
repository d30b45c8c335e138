package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestNewDependencies(t *testing.T) {
	logger := log.WithField("test", "dependencies")
	deps, err := NewDependencies(logger, 3)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}

	if deps.Catalog == nil {
		t.Error("Catalog should not be nil")
	}
	if deps.Directory == nil {
		t.Error("Directory should not be nil")
	}
	if deps.Ledger == nil {
		t.Error("Ledger should not be nil")
	}
	if deps.OutboxRepo == nil {
		t.Error("OutboxRepo should not be nil")
	}
	if deps.Metrics == nil {
		t.Error("Metrics should not be nil")
	}
	if deps.Logger != logger {
		t.Error("Logger should be the same instance as passed")
	}
}

func TestNewDependencies_WithNilLogger(t *testing.T) {
	deps, err := NewDependencies(nil, 3)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	if deps.Logger == nil {
		t.Error("Logger should be initialized even when nil is passed")
	}
}

func TestNewDependencies_SeededStores(t *testing.T) {
	deps, err := NewDependencies(nil, 3)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}

	stores := deps.Directory.All()
	if len(stores) != 3 {
		t.Fatalf("expected 3 seeded stores, got %d", len(stores))
	}

	byName := make(map[string]int32)
	for _, store := range stores {
		byName[store.Name()] = store.CheckStock(101)
	}
	if byName["DarkStoreA"] != 5 {
		t.Errorf("DarkStoreA stock 101 = %d, want 5", byName["DarkStoreA"])
	}
	if byName["DarkStoreB"] != 3 {
		t.Errorf("DarkStoreB stock 101 = %d, want 3", byName["DarkStoreB"])
	}

	for _, prod := range seedProducts() {
		if _, err := deps.Catalog.Lookup(prod.SKU); err != nil {
			t.Errorf("seeded sku %d missing from catalog: %v", prod.SKU, err)
		}
	}
}

func TestNewDependencies_IndependentInstances(t *testing.T) {
	deps1, err := NewDependencies(nil, 3)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}
	deps2, err := NewDependencies(nil, 3)
	if err != nil {
		t.Fatalf("NewDependencies failed: %v", err)
	}

	if deps1.Ledger == deps2.Ledger {
		t.Error("Ledger instances should be independent")
	}
	if deps1.Directory == deps2.Directory {
		t.Error("Directory instances should be independent")
	}
}
