package domain

import "errors"

var (
	// Ошибка некорректного количества в позиции корзины или при пополнении (<= 0).
	ErrQtyInvalid = errors.New("qty must be greater than zero")
	// Ошибка запроса товара, отсутствующего в каталоге.
	ErrUnknownSKU = errors.New("sku is not present in catalog")
	// Ошибка регистрации пустого (nil) даркстора в справочнике.
	ErrStoreRequired = errors.New("dark store is required")
	// Ошибка отсутствующего имени даркстора.
	ErrStoreNameRequired = errors.New("dark store name is required")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// ErrOrderNotFound возвращается, если заказ не найден в журнале.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsInvalidRequest проверяет, относится ли ошибка к некорректному запросу клиента.
// Такие ошибки отклоняют вызов до любых изменений инвентаря, в отличие от
// дефицита стока, который ошибкой не считается и возвращается как данные.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrQtyInvalid) || errors.Is(err, ErrUnknownSKU)
}
