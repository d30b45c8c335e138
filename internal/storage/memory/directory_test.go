package memory_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/storage/memory"
)

func newStore(name string, x, y float64) *domain.DarkStore {
	return domain.NewDarkStore(name, domain.Location{X: x, Y: y}, memory.NewInventory())
}

func TestStoreDirectory_RegisterNil(t *testing.T) {
	dir := memory.NewStoreDirectory()

	if err := dir.Register(nil); !errors.Is(err, domain.ErrStoreRequired) {
		t.Fatalf("expected ErrStoreRequired, got %v", err)
	}
	if stores := dir.All(); len(stores) != 0 {
		t.Errorf("nil store must be discarded, got %d stores", len(stores))
	}
}

func TestStoreDirectory_FindWithin_RadiusInclusive(t *testing.T) {
	dir := memory.NewStoreDirectory()
	inside := newStore("inside", 3, 0)
	boundary := newStore("boundary", 5, 0)
	outside := newStore("outside", 5.001, 0)
	for _, s := range []*domain.DarkStore{inside, boundary, outside} {
		if err := dir.Register(s); err != nil {
			t.Fatalf("register failed: %v", err)
		}
	}

	found := dir.FindWithin(domain.Location{}, 5)
	if len(found) != 2 {
		t.Fatalf("expected 2 stores within radius, got %d", len(found))
	}
	if found[0].Name() != "inside" || found[1].Name() != "boundary" {
		t.Errorf("unexpected ranking: %s, %s", found[0].Name(), found[1].Name())
	}
}

func TestStoreDirectory_FindWithin_StableTies(t *testing.T) {
	// Дистанции [2, 2, 5] при радиусе 5: все три попадают, равные
	// расстояния сохраняют порядок регистрации.
	dir := memory.NewStoreDirectory()
	tieFirst := newStore("tie-first", 2, 0)
	tieSecond := newStore("tie-second", 0, 2)
	far := newStore("far", 5, 0)
	for _, s := range []*domain.DarkStore{tieFirst, tieSecond, far} {
		if err := dir.Register(s); err != nil {
			t.Fatalf("register failed: %v", err)
		}
	}

	found := dir.FindWithin(domain.Location{}, 5)
	if len(found) != 3 {
		t.Fatalf("expected 3 stores, got %d", len(found))
	}
	want := []string{"tie-first", "tie-second", "far"}
	for i, s := range found {
		if s.Name() != want[i] {
			t.Errorf("position %d: %s, want %s", i, s.Name(), want[i])
		}
	}
}

func TestStoreDirectory_FindWithin_NoCoverage(t *testing.T) {
	dir := memory.NewStoreDirectory()
	if err := dir.Register(newStore("far-away", 0, 0)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	found := dir.FindWithin(domain.Location{X: 100, Y: 100}, 5)
	if len(found) != 0 {
		t.Errorf("expected empty result, got %d stores", len(found))
	}
}

func TestStoreDirectory_AllReturnsCopy(t *testing.T) {
	dir := memory.NewStoreDirectory()
	if err := dir.Register(newStore("a", 0, 0)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	all := dir.All()
	all[0] = nil
	if again := dir.All(); again[0] == nil {
		t.Error("All must return a copy of the registry slice")
	}
}
