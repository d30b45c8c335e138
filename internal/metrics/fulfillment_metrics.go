package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics содержит метрики алокации заказов.
type FulfillmentMetrics struct {
	// Счётчики исходов алокации
	ordersPlaced      prometheus.Counter
	ordersSingleStore prometheus.Counter
	ordersSplit       prometheus.Counter
	ordersNoCoverage  prometheus.Counter
	invalidRequests   prometheus.Counter

	// Невыполненный спрос в единицах товара
	unmetUnits prometheus.Counter

	// Гистограмма времени алокации и количества задействованных дарксторов
	allocationDuration prometheus.Histogram
	storesPerOrder     prometheus.Histogram

	// Gauge для заказов в обработке
	activeAllocations prometheus.Gauge
}

// NewFulfillmentMetrics создаёт новый экземпляр метрик алокации.
func NewFulfillmentMetrics() *FulfillmentMetrics {
	return newFulfillmentMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newFulfillmentMetricsWithRegisterer(registerer prometheus.Registerer) *FulfillmentMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &FulfillmentMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_orders_placed_total",
			Help: "Total number of orders recorded in the ledger",
		}),
		ordersSingleStore: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_orders_single_store_total",
			Help: "Total number of orders fulfilled entirely by the nearest store",
		}),
		ordersSplit: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_orders_split_total",
			Help: "Total number of orders split across multiple stores",
		}),
		ordersNoCoverage: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_orders_no_coverage_total",
			Help: "Total number of orders with no store within service radius",
		}),
		invalidRequests: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_invalid_requests_total",
			Help: "Total number of place_order calls rejected before allocation",
		}),
		unmetUnits: registerCounter(registerer, prometheus.CounterOpts{
			Name: "fulfillment_unmet_units_total",
			Help: "Total number of requested units no reachable store could supply",
		}),
		allocationDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "fulfillment_allocation_duration_seconds",
			Help:    "Duration of a single allocate-and-commit pass in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		storesPerOrder: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "fulfillment_stores_per_order",
			Help:    "Number of stores contributing to one order",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 13},
		}),
		activeAllocations: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "fulfillment_active_allocations",
			Help: "Number of allocation passes currently in flight",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик записанных заказов.
func (m *FulfillmentMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordSingleStoreOrder отмечает заказ, собранный целиком с ближайшего даркстора.
func (m *FulfillmentMetrics) RecordSingleStoreOrder() {
	m.ordersSingleStore.Inc()
}

// RecordSplitOrder отмечает заказ, разделённый между несколькими дарксторами.
func (m *FulfillmentMetrics) RecordSplitOrder() {
	m.ordersSplit.Inc()
}

// RecordNoCoverage отмечает заказ без единого даркстора в радиусе обслуживания.
func (m *FulfillmentMetrics) RecordNoCoverage() {
	m.ordersNoCoverage.Inc()
}

// RecordInvalidRequest увеличивает счётчик отклонённых запросов.
func (m *FulfillmentMetrics) RecordInvalidRequest() {
	m.invalidRequests.Inc()
}

// RecordUnmetUnits добавляет невыполненные единицы спроса.
func (m *FulfillmentMetrics) RecordUnmetUnits(units int64) {
	if units <= 0 {
		return
	}
	m.unmetUnits.Add(float64(units))
}

// RecordAllocationDuration записывает длительность прохода алокации.
func (m *FulfillmentMetrics) RecordAllocationDuration(duration time.Duration) {
	m.allocationDuration.Observe(duration.Seconds())
}

// RecordStoresPerOrder записывает число дарксторов-источников заказа.
func (m *FulfillmentMetrics) RecordStoresPerOrder(stores int) {
	m.storesPerOrder.Observe(float64(stores))
}

// RecordAllocationStarted увеличивает количество активных алокаций.
func (m *FulfillmentMetrics) RecordAllocationStarted() {
	m.activeAllocations.Inc()
}

// RecordAllocationFinished уменьшает количество активных алокаций.
func (m *FulfillmentMetrics) RecordAllocationFinished() {
	m.activeAllocations.Dec()
}
