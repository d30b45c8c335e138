package kafka

// EventType классифицирует события фулфилмента в topic заказов.
type EventType string

const (
	// Исходы алокации заказа.
	EventTypeOrderPlaced     EventType = "order.placed"
	EventTypeOrderSplit      EventType = "order.split"
	EventTypeOrderShortfall  EventType = "order.shortfall"
	EventTypeOrderNoCoverage EventType = "order.no_coverage"

	// Пополнение остатков даркстора.
	EventTypeStockReplenished EventType = "stock.replenished"
)

// Kafka topics сервиса.
const (
	TopicOrderEvents     = "fulfillment.order.events"
	TopicDeadLetterQueue = "fulfillment.dlq"
)

// OrderEvent — payload события исхода алокации. Кладётся в outbox
// алокатором, наружу уходит внутри eventEnvelope.
type OrderEvent struct {
	OrderID     int64            `json:"order_id"`
	UserRef     string           `json:"user_ref"`
	AmountMinor int64            `json:"amount_minor"`
	Stores      []string         `json:"stores"`
	Partners    int              `json:"partners"`
	TS          string           `json:"ts"`
	Unmet       map[string]int32 `json:"unmet,omitempty"`
}

// StockEvent — payload события пополнения остатков даркстора.
type StockEvent struct {
	Store string `json:"store"`
	TS    string `json:"ts"`
}
