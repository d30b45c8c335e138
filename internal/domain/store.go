package domain

// DarkStore — склад-магазин без розничного зала: точка на карте,
// владеющая ровно одним инвентарём. Имя и координаты фиксируются при
// создании и дальше не меняются.
type DarkStore struct {
	name      string
	location  Location
	inventory Inventory

	replenish ReplenishStrategy
}

// NewDarkStore создаёт даркстор с заданным инвентарём.
func NewDarkStore(name string, location Location, inventory Inventory) *DarkStore {
	return &DarkStore{
		name:      name,
		location:  location,
		inventory: inventory,
	}
}

// Name возвращает уникальное имя даркстора.
func (s *DarkStore) Name() string { return s.name }

// Location возвращает координаты даркстора.
func (s *DarkStore) Location() Location { return s.location }

// DistanceTo возвращает расстояние от даркстора до произвольной точки.
func (s *DarkStore) DistanceTo(p Location) float64 {
	return s.location.DistanceTo(p)
}

// AddStock увеличивает остаток товара на складе.
func (s *DarkStore) AddStock(prod Product, qty int32) error {
	return s.inventory.Add(prod, qty)
}

// RemoveStock списывает товар со склада (с клампом до нуля, см. Inventory).
func (s *DarkStore) RemoveStock(sku int64, qty int32) {
	s.inventory.Remove(sku, qty)
}

// CheckStock возвращает доступный остаток по SKU (0 для отсутствующего).
func (s *DarkStore) CheckStock(sku int64) int32 {
	return s.inventory.Check(sku)
}

// AvailableProducts возвращает товары с положительным остатком.
func (s *DarkStore) AvailableProducts() []Product {
	return s.inventory.ListAvailable()
}

// SetReplenishStrategy задаёт стратегию пополнения для этого даркстора.
func (s *DarkStore) SetReplenishStrategy(strategy ReplenishStrategy) {
	s.replenish = strategy
}

// HasReplenishStrategy сообщает, назначена ли даркстору стратегия пополнения.
func (s *DarkStore) HasReplenishStrategy() bool {
	return s.replenish != nil
}

// RunReplenishment применяет стратегию пополнения, если она задана.
func (s *DarkStore) RunReplenishment(plan map[int64]int32) error {
	if s.replenish == nil {
		return nil
	}
	return s.replenish.Replenish(s, plan)
}
