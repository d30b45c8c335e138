package domain

// Product описывает товарную позицию каталога.
// Значение неизменяемое: создаётся каталогом и дальше только копируется.
type Product struct {
	// SKU — внешний числовой идентификатор товара.
	SKU int64
	// Name — человекочитаемое название.
	Name string
	// PriceMinor — цена за единицу в минимальных денежных единицах (например, копейки).
	PriceMinor int64
}
