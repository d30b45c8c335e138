package replenish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/messaging/kafka"
)

const defaultInterval = 30 * time.Second

var replenishRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fulfillment_replenish_runs_total",
	Help: "Total number of per-store replenishment runs grouped by result.",
}, []string{"result"})

// WorkerOptions задаёт параметры replenish worker.
type WorkerOptions struct {
	Logger   *log.Entry
	Interval time.Duration
	Outbox   domain.OutboxRepository
}

// Option настраивает Worker.
type Option func(*WorkerOptions)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *WorkerOptions) {
		opts.Logger = logger
	}
}

// WithInterval задаёт период между циклами пополнения.
func WithInterval(interval time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.Interval = interval
	}
}

// WithOutbox включает события stock.replenished: после удачного цикла
// по даркстору в outbox кладётся запись о пополнении.
func WithOutbox(repo domain.OutboxRepository) Option {
	return func(opts *WorkerOptions) {
		opts.Outbox = repo
	}
}

// Worker периодически применяет стратегию пополнения каждого даркстора
// к общему плану поставок.
type Worker struct {
	directory domain.StoreDirectory
	plan      map[int64]int32
	outbox    domain.OutboxRepository
	logger    *log.Entry
	interval  time.Duration
}

// NewWorker создаёт replenish worker с фиксированным планом поставок.
func NewWorker(directory domain.StoreDirectory, plan map[int64]int32, options ...Option) *Worker {
	opts := WorkerOptions{
		Interval: defaultInterval,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "replenish-worker")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}

	return &Worker{
		directory: directory,
		plan:      plan,
		outbox:    opts.Outbox,
		logger:    logger,
		interval:  opts.Interval,
	}
}

// Run запускает периодическое пополнение до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.directory == nil || len(w.plan) == 0 {
		w.logger.Warn("replenish worker is disabled: directory or plan is empty")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ProcessOnce(ctx)
		}
	}
}

// ProcessOnce выполняет один цикл пополнения по всем дарксторам.
func (w *Worker) ProcessOnce(ctx context.Context) {
	for _, store := range w.directory.All() {
		if ctx.Err() != nil {
			return
		}

		if err := store.RunReplenishment(w.plan); err != nil {
			w.logger.WithError(err).WithField("store", store.Name()).Warn("replenishment failed")
			replenishRuns.WithLabelValues("error").Inc()
			continue
		}
		replenishRuns.WithLabelValues("ok").Inc()

		if store.HasReplenishStrategy() {
			w.recordReplenishment(store)
		}
	}
}

// recordReplenishment кладёт событие пополнения в outbox.
func (w *Worker) recordReplenishment(store *domain.DarkStore) {
	if w.outbox == nil {
		return
	}

	payload, err := json.Marshal(kafka.StockEvent{
		Store: store.Name(),
		TS:    time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		w.logger.WithError(err).WithField("store", store.Name()).Error("marshal stock event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "store",
		AggregateID:   store.Name(),
		EventType:     string(kafka.EventTypeStockReplenished),
		Payload:       payload,
	}
	if _, err := w.outbox.Enqueue(msg); err != nil {
		w.logger.WithError(err).WithField("store", store.Name()).Error("enqueue stock event failed")
	}
}
