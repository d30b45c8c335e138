package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/service/allocator"
)

// runDemo прогоняет стартовый сценарий: листинг доступных товаров вокруг
// пользователя и один заказ, собираемый с нескольких дарксторов.
func runDemo(svc *allocator.Service, logger *log.Entry) {
	demoLogger := logger.WithField("component", "demo")

	user := "Aditya"
	at := domain.Location{X: 1, Y: 1}

	products := svc.AvailableProducts(at)
	for _, prod := range products {
		demoLogger.WithFields(log.Fields{
			"sku":         prod.SKU,
			"name":        prod.Name,
			"price_minor": prod.PriceMinor,
		}).Info("available product")
	}

	cart := domain.Cart{}
	cart.AddItem(101, 4)
	cart.AddItem(102, 3)
	cart.AddItem(103, 2)

	result, err := svc.PlaceOrder(user, at, cart)
	if err != nil {
		demoLogger.WithError(err).Warn("demo order failed")
		return
	}

	fields := log.Fields{
		"order_id":     result.Order.ID,
		"user":         result.Order.UserRef,
		"amount_minor": result.Order.AmountMinor,
		"stores":       result.Order.SourceStores(),
		"partners":     len(result.Order.Partners),
	}
	if len(result.Unmet) > 0 {
		fields["unmet"] = result.Unmet
	}
	demoLogger.WithFields(fields).Info("demo order placed")
}
