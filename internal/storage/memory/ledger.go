package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// orderLedgerInMemory — append-only журнал заказов с монотонной нумерацией.
type orderLedgerInMemory struct {
	mu     sync.RWMutex
	orders []domain.Order
	nextID int64
}

// NewOrderLedger возвращает in-memory журнал заказов.
func NewOrderLedger() domain.OrderLedger {
	return &orderLedgerInMemory{nextID: 1}
}

// Append записывает копию заказа, назначая следующий номер.
// Время создания проставляется здесь, если вызывающий его не заполнил.
func (l *orderLedgerInMemory) Append(order domain.Order) (domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	order = order.Clone()
	order.ID = l.nextID
	l.nextID++
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	l.orders = append(l.orders, order)
	return order.Clone(), nil
}

// Get возвращает заказ по номеру или ErrOrderNotFound.
func (l *orderLedgerInMemory) Get(id int64) (domain.Order, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, order := range l.orders {
		if order.ID == id {
			return order.Clone(), nil
		}
	}
	return domain.Order{}, domain.ErrOrderNotFound
}

// List возвращает копии всех заказов в порядке записи.
func (l *orderLedgerInMemory) List() []domain.Order {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.Order, 0, len(l.orders))
	for _, order := range l.orders {
		result = append(result, order.Clone())
	}
	return result
}

var _ domain.OrderLedger = (*orderLedgerInMemory)(nil)
