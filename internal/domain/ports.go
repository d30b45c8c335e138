package domain

import "time"

// Catalog — чистый справочник товаров: sku -> (название, цена).
type Catalog interface {
	// Lookup возвращает товар или ErrUnknownSKU, если SKU не зарегистрирован.
	Lookup(sku int64) (Product, error)
}

// Inventory описывает остатки товаров одного даркстора.
type Inventory interface {
	// Add увеличивает остаток, создавая запись при необходимости.
	// Количество должно быть > 0, иначе возвращается ErrQtyInvalid.
	Add(prod Product, qty int32) error
	// Remove списывает qty единиц; для отсутствующего SKU — no-op.
	// Остаток никогда не уходит в минус: при достижении нуля запись удаляется.
	Remove(sku int64, qty int32)
	// Check возвращает остаток по SKU; 0 для отсутствующего.
	Check(sku int64) int32
	// ListAvailable возвращает товары с положительным остатком в порядке добавления.
	ListAvailable() []Product
}

// StoreDirectory владеет всеми зарегистрированными дарксторами.
type StoreDirectory interface {
	// Register добавляет даркстор в реестр; nil отбрасывается с ErrStoreRequired.
	Register(store *DarkStore) error
	// FindWithin возвращает дарксторы на расстоянии <= maxDistance от точки,
	// отсортированные по возрастанию расстояния; при равенстве сохраняется
	// порядок регистрации. Пустой результат — не ошибка.
	FindWithin(p Location, maxDistance float64) []*DarkStore
	// All возвращает все дарксторы в порядке регистрации.
	All() []*DarkStore
}

// OrderLedger — append-only журнал завершённых заказов.
type OrderLedger interface {
	// Append записывает заказ, назначая ему следующий монотонный номер.
	Append(order Order) (Order, error)
	// Get возвращает заказ по номеру или ErrOrderNotFound.
	Get(id int64) (Order, error)
	// List возвращает все заказы в порядке записи.
	List() []Order
}

// ReplenishStrategy описывает политику пополнения остатков даркстора.
type ReplenishStrategy interface {
	// Replenish применяет план пополнения (sku -> количество к добавлению).
	Replenish(store *DarkStore, plan map[int64]int32) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
