package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// inventoryInMemory — остатки одного даркстора, защищённые мьютексом.
// Порядок добавления SKU сохраняется для детерминированного ListAvailable.
type inventoryInMemory struct {
	mu       sync.RWMutex
	stock    map[int64]int32
	products map[int64]domain.Product
	order    []int64
}

// NewInventory возвращает in-memory инвентарь даркстора.
func NewInventory() domain.Inventory {
	return &inventoryInMemory{
		stock:    make(map[int64]int32),
		products: make(map[int64]domain.Product),
	}
}

// Add увеличивает остаток, регистрируя товар при первом появлении.
func (r *inventoryInMemory) Add(prod domain.Product, qty int32) error {
	if qty <= 0 {
		return domain.ErrQtyInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, known := r.products[prod.SKU]; !known {
		r.products[prod.SKU] = prod
		r.order = append(r.order, prod.SKU)
	}
	r.stock[prod.SKU] += qty
	return nil
}

// Remove списывает qty единиц с клампом до нуля.
// Отсутствующий SKU игнорируется; излишек списания за ноль не уводит.
func (r *inventoryInMemory) Remove(sku int64, qty int32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.stock[sku]
	if !ok {
		return
	}
	remaining := current - qty
	if remaining > 0 {
		r.stock[sku] = remaining
		return
	}
	// Нулевой остаток эквивалентен отсутствию записи.
	delete(r.stock, sku)
	delete(r.products, sku)
	r.dropFromOrder(sku)
}

// Check возвращает остаток по SKU или 0.
func (r *inventoryInMemory) Check(sku int64) int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stock[sku]
}

// ListAvailable возвращает товары с положительным остатком в порядке добавления.
func (r *inventoryInMemory) ListAvailable() []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.order))
	for _, sku := range r.order {
		if r.stock[sku] <= 0 {
			continue
		}
		if prod, ok := r.products[sku]; ok {
			result = append(result, prod)
		}
	}
	return result
}

// dropFromOrder удаляет SKU из порядка добавления; вызывается под мьютексом.
func (r *inventoryInMemory) dropFromOrder(sku int64) {
	for i, known := range r.order {
		if known == sku {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

var _ domain.Inventory = (*inventoryInMemory)(nil)
