package domain

import "time"

// FulfillmentLine — исполненная часть заказа: сколько единиц SKU и с какого даркстора.
type FulfillmentLine struct {
	SKU       int64
	Qty       int32
	StoreName string
}

// DeliveryPartner — курьер, назначенный на доставку из конкретного даркстора.
type DeliveryPartner struct {
	ID        string
	StoreName string
}

// Demand — невыполненная часть спроса: SKU и недостающее количество.
type Demand struct {
	SKU int64
	Qty int32
}

// Order агрегирует результат одного прохода алокации.
// Заполняется один раз при создании и после записи в журнал не меняется.
type Order struct {
	// ID — монотонно растущий номер, назначается журналом при записи.
	ID int64
	// UserRef — ссылка на пользователя, оформившего заказ.
	UserRef string
	// Lines — исполненные позиции; невыполненный спрос сюда не попадает.
	Lines []FulfillmentLine
	// AmountMinor — сумма только по исполненным позициям.
	AmountMinor int64
	// Partners — курьеры, назначенные по даркстору-источнику.
	Partners  []DeliveryPartner
	CreatedAt time.Time
}

// FulfilledQty возвращает суммарно исполненное количество по SKU.
func (o *Order) FulfilledQty(sku int64) int32 {
	var total int32
	for _, line := range o.Lines {
		if line.SKU == sku {
			total += line.Qty
		}
	}
	return total
}

// SourceStores возвращает имена дарксторов, из которых собран заказ,
// в порядке первого появления в исполненных позициях.
func (o *Order) SourceStores() []string {
	seen := make(map[string]struct{}, len(o.Lines))
	var stores []string
	for _, line := range o.Lines {
		if _, ok := seen[line.StoreName]; ok {
			continue
		}
		seen[line.StoreName] = struct{}{}
		stores = append(stores, line.StoreName)
	}
	return stores
}

// Clone возвращает глубокую копию заказа, чтобы журнал не делил срезы с вызывающим.
func (o Order) Clone() Order {
	clone := o
	if o.Lines != nil {
		clone.Lines = make([]FulfillmentLine, len(o.Lines))
		copy(clone.Lines, o.Lines)
	}
	if o.Partners != nil {
		clone.Partners = make([]DeliveryPartner, len(o.Partners))
		copy(clone.Partners, o.Partners)
	}
	return clone
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	for _, line := range o.Lines {
		if line.Qty <= 0 {
			errs = append(errs, ErrQtyInvalid)
		}
		if line.StoreName == "" {
			errs = append(errs, ErrStoreNameRequired)
		}
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	return errs
}
