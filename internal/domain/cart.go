package domain

// CartItem — одна позиция корзины: запрошенный SKU и количество.
type CartItem struct {
	SKU int64
	Qty int32
}

// Cart — упорядоченный список позиций одного пользователя/сессии.
// Итог не кэшируется и пересчитывается по запросу.
type Cart struct {
	Items []CartItem
}

// AddItem добавляет позицию в конец корзины.
// Корзина не валидирует вход: проверка количества и каталога выполняется
// алокатором до каких-либо изменений инвентаря.
func (c *Cart) AddItem(sku int64, qty int32) {
	c.Items = append(c.Items, CartItem{SKU: sku, Qty: qty})
}

// TotalMinor возвращает сумму корзины как Σ qty * price по каталогу.
func (c *Cart) TotalMinor(catalog Catalog) (int64, error) {
	var total int64
	for _, item := range c.Items {
		prod, err := catalog.Lookup(item.SKU)
		if err != nil {
			return 0, err
		}
		total += int64(item.Qty) * prod.PriceMinor
	}
	return total, nil
}

// Validate проверяет позиции корзины против каталога и возвращает список замечаний.
func (c *Cart) Validate(catalog Catalog) []error {
	var errs []error
	for _, item := range c.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrQtyInvalid)
		}
		if _, err := catalog.Lookup(item.SKU); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
