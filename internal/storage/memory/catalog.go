package memory

import (
	"fmt"
	"sync"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// catalogInMemory — статический справочник товаров.
type catalogInMemory struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

// NewCatalog возвращает пустой in-memory каталог.
func NewCatalog() *catalogInMemory {
	return &catalogInMemory{products: make(map[int64]domain.Product)}
}

// Register добавляет или перезаписывает товар в каталоге.
func (c *catalogInMemory) Register(prod domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[prod.SKU] = prod
}

// Lookup возвращает товар или ErrUnknownSKU: товара без записи в каталоге
// не существует, fallback-значений нет.
func (c *catalogInMemory) Lookup(sku int64) (domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	prod, ok := c.products[sku]
	if !ok {
		return domain.Product{}, fmt.Errorf("sku %d: %w", sku, domain.ErrUnknownSKU)
	}
	return prod, nil
}

var _ domain.Catalog = (*catalogInMemory)(nil)
