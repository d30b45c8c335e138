package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/messaging/kafka"
)

// initKafkaProducer подключается к Kafka, если заданы брокеры.
// Пустой список брокеров и ошибка подключения не фатальны: сервис
// продолжает работу, события заказов уходят в лог-паблишер.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	brokerList := splitBrokers(brokers)
	if len(brokerList) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("kafka unavailable, order events go to log publisher")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer ready")
	return producer, nil
}

// splitBrokers разбирает список брокеров из env-переменной, отбрасывая
// пустые элементы и пробелы вокруг адресов.
func splitBrokers(raw string) []string {
	var brokers []string
	for _, chunk := range strings.Split(raw, ",") {
		if broker := strings.TrimSpace(chunk); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("kafka producer close failed")
		return
	}
	logger.Info("kafka producer closed")
}
