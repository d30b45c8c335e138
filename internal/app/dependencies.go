package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/metrics"
	"github.com/vladislavdragonenkov/fulfillment/internal/service/replenish"
	"github.com/vladislavdragonenkov/fulfillment/internal/storage/memory"
)

// Dependencies содержит все зависимости сервиса фулфилмента.
type Dependencies struct {
	Catalog    domain.Catalog
	Directory  domain.StoreDirectory
	Ledger     domain.OrderLedger
	OutboxRepo domain.OutboxRepository
	Metrics    *metrics.FulfillmentMetrics
	Logger     *log.Entry
}

// NewDependencies создаёт зависимости с каталогом и сетью дарксторов,
// засеянными стартовыми данными.
func NewDependencies(logger *log.Entry, replenishThreshold int32) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	catalog := memory.NewCatalog()
	for _, prod := range seedProducts() {
		catalog.Register(prod)
	}

	directory := memory.NewStoreDirectory()
	strategy := replenish.NewThresholdStrategy(catalog, replenishThreshold)
	for _, seed := range seedStores() {
		store := domain.NewDarkStore(seed.name, seed.location, memory.NewInventory())
		store.SetReplenishStrategy(strategy)
		for sku, qty := range seed.stock {
			prod, err := catalog.Lookup(sku)
			if err != nil {
				return nil, err
			}
			if err := store.AddStock(prod, qty); err != nil {
				return nil, err
			}
		}
		if err := directory.Register(store); err != nil {
			return nil, err
		}
		logger.WithFields(log.Fields{
			"store": seed.name,
			"x":     seed.location.X,
			"y":     seed.location.Y,
		}).Info("dark store registered")
	}

	return &Dependencies{
		Catalog:    catalog,
		Directory:  directory,
		Ledger:     memory.NewOrderLedger(),
		OutboxRepo: memory.NewOutboxRepository(),
		Metrics:    metrics.NewFulfillmentMetrics(),
		Logger:     logger,
	}, nil
}

// seedProducts возвращает стартовый ассортимент (цены в минорных единицах).
func seedProducts() []domain.Product {
	return []domain.Product{
		{SKU: 101, Name: "Apple", PriceMinor: 2000},
		{SKU: 102, Name: "Banana", PriceMinor: 1000},
		{SKU: 103, Name: "Chocolate", PriceMinor: 5000},
		{SKU: 201, Name: "T-Shirt", PriceMinor: 50000},
		{SKU: 202, Name: "Jeans", PriceMinor: 100000},
	}
}

type storeSeed struct {
	name     string
	location domain.Location
	stock    map[int64]int32
}

// seedStores возвращает стартовую сеть дарксторов.
func seedStores() []storeSeed {
	return []storeSeed{
		{
			name:     "DarkStoreA",
			location: domain.Location{X: 0, Y: 0},
			stock:    map[int64]int32{101: 5, 102: 2},
		},
		{
			name:     "DarkStoreB",
			location: domain.Location{X: 4, Y: 1},
			stock:    map[int64]int32{101: 3, 103: 10},
		},
		{
			name:     "DarkStoreC",
			location: domain.Location{X: 2, Y: 3},
			stock:    map[int64]int32{102: 5, 201: 7},
		},
	}
}

// replenishPlan — общий план поставок для периодического пополнения.
func replenishPlan() map[int64]int32 {
	return map[int64]int32{
		101: 10,
		102: 10,
		103: 10,
		201: 5,
		202: 5,
	}
}
