package replenish

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// ThresholdStrategy пополняет только те SKU, чей остаток упал ниже порога.
type ThresholdStrategy struct {
	catalog   domain.Catalog
	threshold int32
	logger    *log.Entry
}

// NewThresholdStrategy создаёт стратегию пополнения по порогу.
func NewThresholdStrategy(catalog domain.Catalog, threshold int32) *ThresholdStrategy {
	return &ThresholdStrategy{
		catalog:   catalog,
		threshold: threshold,
		logger:    log.WithField("component", "replenish-threshold"),
	}
}

// Replenish добавляет qty из плана каждому SKU с остатком ниже порога.
// SKU, отсутствующие в каталоге, ломают весь план: пополнение неизвестного
// товара означает рассинхрон конфигурации.
func (t *ThresholdStrategy) Replenish(store *domain.DarkStore, plan map[int64]int32) error {
	for sku, qty := range plan {
		current := store.CheckStock(sku)
		if current >= t.threshold {
			continue
		}

		prod, err := t.catalog.Lookup(sku)
		if err != nil {
			return fmt.Errorf("replenish sku %d: %w", sku, err)
		}
		if err := store.AddStock(prod, qty); err != nil {
			return fmt.Errorf("replenish sku %d: %w", sku, err)
		}

		t.logger.WithFields(log.Fields{
			"store": store.Name(),
			"sku":   sku,
			"was":   current,
			"added": qty,
		}).Info("stock replenished")
	}
	return nil
}

// WeeklyStrategy — заглушка для планового еженедельного пополнения:
// пока только фиксирует срабатывание в логе.
type WeeklyStrategy struct {
	logger *log.Entry
}

// NewWeeklyStrategy создаёт еженедельную стратегию.
func NewWeeklyStrategy() *WeeklyStrategy {
	return &WeeklyStrategy{
		logger: log.WithField("component", "replenish-weekly"),
	}
}

// Replenish отмечает срабатывание, не меняя остатков.
func (w *WeeklyStrategy) Replenish(store *domain.DarkStore, _ map[int64]int32) error {
	w.logger.WithField("store", store.Name()).Info("weekly replenishment triggered")
	return nil
}

var _ domain.ReplenishStrategy = (*ThresholdStrategy)(nil)
var _ domain.ReplenishStrategy = (*WeeklyStrategy)(nil)
