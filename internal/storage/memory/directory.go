package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// storeDirectoryInMemory — реестр дарксторов в порядке регистрации.
type storeDirectoryInMemory struct {
	mu     sync.RWMutex
	stores []*domain.DarkStore
}

// NewStoreDirectory возвращает in-memory справочник дарксторов.
func NewStoreDirectory() domain.StoreDirectory {
	return &storeDirectoryInMemory{}
}

// Register добавляет даркстор в реестр. nil отбрасывается: это ошибка
// вызывающего кода, а не состояние реестра.
func (d *storeDirectoryInMemory) Register(store *domain.DarkStore) error {
	if store == nil {
		return domain.ErrStoreRequired
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.stores = append(d.stores, store)
	return nil
}

// FindWithin возвращает дарксторы на расстоянии <= maxDistance (включительно),
// ближайшие первыми; при равных расстояниях — в порядке регистрации.
func (d *storeDirectoryInMemory) FindWithin(p domain.Location, maxDistance float64) []*domain.DarkStore {
	d.mu.RLock()
	defer d.mu.RUnlock()

	type ranked struct {
		store    *domain.DarkStore
		distance float64
	}

	candidates := make([]ranked, 0, len(d.stores))
	for _, store := range d.stores {
		dist := store.DistanceTo(p)
		if dist <= maxDistance {
			candidates = append(candidates, ranked{store: store, distance: dist})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	result := make([]*domain.DarkStore, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.store)
	}
	return result
}

// All возвращает копию списка всех дарксторов в порядке регистрации.
func (d *storeDirectoryInMemory) All() []*domain.DarkStore {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*domain.DarkStore, len(d.stores))
	copy(result, d.stores)
	return result
}

var _ domain.StoreDirectory = (*storeDirectoryInMemory)(nil)
