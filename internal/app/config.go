package app

import "time"

// Config описывает настройки запуска сервиса фулфилмента.
type Config struct {
	MetricsAddr string

	// ServiceRadius — радиус поиска дарксторов вокруг пользователя.
	ServiceRadius float64

	// KafkaBrokers — список брокеров через запятую; пустая строка
	// отключает Kafka, события уходят в лог.
	KafkaBrokers string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	ReplenishInterval  time.Duration
	ReplenishThreshold int32

	// RunDemo включает демо-сценарий при старте: листинг доступных
	// товаров и несколько заказов.
	RunDemo bool
}

// DefaultConfig возвращает базовую конфигурацию сервиса.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:        ":9090",
		ServiceRadius:      5.0,
		OutboxPollInterval: 1 * time.Second,
		OutboxBatchSize:    100,
		OutboxMaxAttempts:  3,
		OutboxRetryDelay:   50 * time.Millisecond,
		ReplenishInterval:  30 * time.Second,
		ReplenishThreshold: 3,
		RunDemo:            true,
	}
}
