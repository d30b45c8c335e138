package allocator

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/fulfillment/internal/metrics"
)

// DefaultServiceRadius — радиус обслуживания в условных единицах расстояния.
const DefaultServiceRadius = 5.0

// Result — итог одного вызова PlaceOrder: записанный заказ и невыполненный
// спрос. Дефицит — не ошибка: решение о приемлемости частичного исполнения
// остаётся за вызывающим.
type Result struct {
	Order domain.Order
	Unmet []domain.Demand
}

// FullyFulfilled сообщает, был ли весь запрошенный спрос исполнен.
func (r Result) FullyFulfilled() bool {
	return len(r.Unmet) == 0
}

// Service реализует алокацию заказа по дарксторам: быстрый путь через
// ближайший даркстор и жадное разбиение по ранжированному списку.
// Зависимости передаются явно при создании, глобального состояния нет.
type Service struct {
	directory domain.StoreDirectory
	catalog   domain.Catalog
	ledger    domain.OrderLedger
	outbox    domain.OutboxRepository
	logger    *log.Entry
	metrics   *metrics.FulfillmentMetrics
	radius    float64
	partnerID func() string

	// mu сериализует весь проход allocate-and-commit: ни одна алокация не
	// наблюдает частично списанные остатки другой.
	mu sync.Mutex
}

// Option настраивает Service.
type Option func(*Service)

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics подключает метрики алокации.
func WithMetrics(m *metrics.FulfillmentMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithOutbox подключает transactional outbox для событий заказов.
func WithOutbox(repo domain.OutboxRepository) Option {
	return func(s *Service) {
		s.outbox = repo
	}
}

// WithServiceRadius задаёт радиус обслуживания.
func WithServiceRadius(radius float64) Option {
	return func(s *Service) {
		if radius > 0 {
			s.radius = radius
		}
	}
}

// WithPartnerIDFunc задаёт генератор идентификаторов курьеров (для тестов).
func WithPartnerIDFunc(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.partnerID = fn
		}
	}
}

// NewService создаёт рабочий экземпляр алокатора.
func NewService(
	directory domain.StoreDirectory,
	catalog domain.Catalog,
	ledger domain.OrderLedger,
	options ...Option,
) *Service {
	s := &Service{
		directory: directory,
		catalog:   catalog,
		ledger:    ledger,
		radius:    DefaultServiceRadius,
		partnerID: uuid.NewString,
	}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "allocator")
	}
	return s
}

// PlaceOrder выполняет один проход алокации для корзины пользователя.
//
// Некорректный запрос (qty <= 0 или SKU вне каталога) отклоняется до любых
// изменений инвентаря. Дефицит стока и отсутствие покрытия ошибками не
// являются: заказ записывается с тем, что удалось собрать, остальное
// возвращается как Unmet.
func (s *Service) PlaceOrder(userRef string, at domain.Location, cart domain.Cart) (Result, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.RecordAllocationStarted()
	}
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordAllocationFinished()
			s.metrics.RecordAllocationDuration(time.Since(start))
		}
	}()

	if errs := cart.Validate(s.catalog); len(errs) > 0 {
		if s.metrics != nil {
			s.metrics.RecordInvalidRequest()
		}
		err := errors.Join(errs...)
		s.logger.WithError(err).WithField("user_ref", userRef).Warn("place order rejected")
		return Result{}, err
	}

	// Спрос по SKU в порядке первого появления в корзине; дубликаты позиций
	// суммируются.
	skuOrder, need := demandOf(cart)

	s.mu.Lock()
	defer s.mu.Unlock()

	order := domain.Order{
		UserRef:   userRef,
		CreatedAt: time.Now().UTC(),
	}

	nearby := s.directory.FindWithin(at, s.radius)
	if len(nearby) == 0 && len(skuOrder) > 0 {
		return s.commitNoCoverage(order, skuOrder, need)
	}

	if len(skuOrder) == 0 {
		// Пустая корзина — тривиальный пустой заказ с нулевой суммой.
		return s.commit(order, nil, kafka.EventTypeOrderPlaced)
	}

	if nearest := nearby[0]; canFulfillAll(nearest, skuOrder, need) {
		return s.commitSingleStore(order, nearest, skuOrder, need)
	}

	return s.commitSplit(order, nearby, skuOrder, need)
}

// commitNoCoverage записывает пустой заказ: ни одного даркстора в радиусе.
func (s *Service) commitNoCoverage(order domain.Order, skuOrder []int64, need map[int64]int32) (Result, error) {
	if s.metrics != nil {
		s.metrics.RecordNoCoverage()
	}
	s.logger.WithField("user_ref", order.UserRef).Info("no dark stores within service radius")
	return s.commit(order, leftover(skuOrder, need), kafka.EventTypeOrderNoCoverage)
}

// commitSingleStore исполняет весь заказ с ближайшего даркстора.
// Проверяется только ближайший даркстор: более дальний, способный собрать
// заказ целиком, не рассматривается.
func (s *Service) commitSingleStore(order domain.Order, store *domain.DarkStore, skuOrder []int64, need map[int64]int32) (Result, error) {
	for _, sku := range skuOrder {
		qty := need[sku]
		store.RemoveStock(sku, qty)
		order.Lines = append(order.Lines, domain.FulfillmentLine{
			SKU:       sku,
			Qty:       qty,
			StoreName: store.Name(),
		})
	}
	order.Partners = append(order.Partners, domain.DeliveryPartner{
		ID:        s.partnerID(),
		StoreName: store.Name(),
	})

	if s.metrics != nil {
		s.metrics.RecordSingleStoreOrder()
	}
	s.logger.WithFields(log.Fields{
		"user_ref": order.UserRef,
		"store":    store.Name(),
	}).Info("order fulfilled by nearest store")

	return s.commit(order, nil, kafka.EventTypeOrderPlaced)
}

// commitSplit жадно разбивает спрос по дарксторам от ближнего к дальнему.
func (s *Service) commitSplit(order domain.Order, stores []*domain.DarkStore, skuOrder []int64, need map[int64]int32) (Result, error) {
	for _, store := range stores {
		if len(need) == 0 {
			break
		}

		// Каждому даркстору, отдавшему хотя бы одну единицу, назначается
		// свой курьер: чужие единицы без доставки не остаются.
		contributed := false
		for _, sku := range skuOrder {
			remaining, still := need[sku]
			if !still {
				continue
			}
			available := store.CheckStock(sku)
			if available <= 0 {
				continue
			}
			taken := remaining
			if available < taken {
				taken = available
			}
			store.RemoveStock(sku, taken)
			order.Lines = append(order.Lines, domain.FulfillmentLine{
				SKU:       sku,
				Qty:       taken,
				StoreName: store.Name(),
			})
			contributed = true
			if taken == remaining {
				delete(need, sku)
			} else {
				need[sku] = remaining - taken
			}
		}
		if contributed {
			order.Partners = append(order.Partners, domain.DeliveryPartner{
				ID:        s.partnerID(),
				StoreName: store.Name(),
			})
		}
	}

	unmet := leftover(skuOrder, need)
	if s.metrics != nil {
		s.metrics.RecordSplitOrder()
	}
	s.logger.WithFields(log.Fields{
		"user_ref":   order.UserRef,
		"stores":     len(order.SourceStores()),
		"unmet_skus": len(unmet),
	}).Info("order split across stores")

	eventType := kafka.EventTypeOrderSplit
	if len(unmet) > 0 {
		eventType = kafka.EventTypeOrderShortfall
	}
	return s.commit(order, unmet, eventType)
}

// commit считает сумму по исполненным позициям, записывает заказ в журнал
// и эмитит событие через outbox.
func (s *Service) commit(order domain.Order, unmet []domain.Demand, eventType kafka.EventType) (Result, error) {
	var total int64
	for _, line := range order.Lines {
		prod, err := s.catalog.Lookup(line.SKU)
		if err != nil {
			// Каталог уже проверен при валидации; сюда попадать не должны.
			s.logger.WithError(err).WithField("sku", line.SKU).Error("catalog lookup failed after validation")
			continue
		}
		total += int64(line.Qty) * prod.PriceMinor
	}
	order.AmountMinor = total

	stored, err := s.ledger.Append(order)
	if err != nil {
		s.logger.WithError(err).WithField("user_ref", order.UserRef).Error("failed to append order to ledger")
		return Result{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
		s.metrics.RecordStoresPerOrder(len(stored.SourceStores()))
		var units int64
		for _, d := range unmet {
			units += int64(d.Qty)
		}
		s.metrics.RecordUnmetUnits(units)
	}

	s.emitEvent(stored, unmet, eventType)

	return Result{Order: stored, Unmet: unmet}, nil
}

// emitEvent кладёт событие заказа в outbox; публикацией занимается воркер.
func (s *Service) emitEvent(order domain.Order, unmet []domain.Demand, eventType kafka.EventType) {
	if s.outbox == nil {
		return
	}

	payload := kafka.OrderEvent{
		OrderID:     order.ID,
		UserRef:     order.UserRef,
		AmountMinor: order.AmountMinor,
		Stores:      order.SourceStores(),
		Partners:    len(order.Partners),
		TS:          order.CreatedAt.Format(time.RFC3339Nano),
	}
	if len(unmet) > 0 {
		payload.Unmet = make(map[string]int32, len(unmet))
		for _, d := range unmet {
			payload.Unmet[strconv.FormatInt(d.SKU, 10)] = d.Qty
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("marshal event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   strconv.FormatInt(order.ID, 10),
		EventType:     string(eventType),
		Payload:       data,
	}
	if _, err := s.outbox.Enqueue(msg); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
		}).Error("enqueue event failed")
	}
}

// demandOf сводит корзину к спросу по SKU, сохраняя порядок первого появления.
func demandOf(cart domain.Cart) ([]int64, map[int64]int32) {
	need := make(map[int64]int32, len(cart.Items))
	skuOrder := make([]int64, 0, len(cart.Items))
	for _, item := range cart.Items {
		if _, seen := need[item.SKU]; !seen {
			skuOrder = append(skuOrder, item.SKU)
		}
		need[item.SKU] += item.Qty
	}
	return skuOrder, need
}

// canFulfillAll проверяет, закрывает ли один даркстор весь спрос целиком.
func canFulfillAll(store *domain.DarkStore, skuOrder []int64, need map[int64]int32) bool {
	for _, sku := range skuOrder {
		if store.CheckStock(sku) < need[sku] {
			return false
		}
	}
	return true
}

// leftover превращает остаток карты спроса в список Demand в порядке корзины.
func leftover(skuOrder []int64, need map[int64]int32) []domain.Demand {
	var unmet []domain.Demand
	for _, sku := range skuOrder {
		if qty, still := need[sku]; still && qty > 0 {
			unmet = append(unmet, domain.Demand{SKU: sku, Qty: qty})
		}
	}
	return unmet
}
