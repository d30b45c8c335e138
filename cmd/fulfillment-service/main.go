package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/app"
	"github.com/vladislavdragonenkov/fulfillment/internal/version"
)

const (
	envMetricsAddr        = "FULFILLMENT_METRICS_ADDR"
	envServiceRadius      = "FULFILLMENT_SERVICE_RADIUS"
	envKafkaBrokers       = "KAFKA_BROKERS"
	envOutboxPollInterval = "FULFILLMENT_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize    = "FULFILLMENT_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts  = "FULFILLMENT_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay   = "FULFILLMENT_OUTBOX_RETRY_DELAY"
	envReplenishInterval  = "FULFILLMENT_REPLENISH_INTERVAL"
	envReplenishThreshold = "FULFILLMENT_REPLENISH_THRESHOLD"
	envRunDemo            = "FULFILLMENT_RUN_DEMO"
)

// envLookup абстрагирует os.LookupEnv для тестируемости.
type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfigFromEnv формирует конфигурацию приложения из переменных
// окружения. Невалидные значения не прерывают запуск: поле остаётся
// со значением по умолчанию, а замечание попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	if v, ok := lookup(envMetricsAddr); ok && strings.TrimSpace(v) != "" {
		cfg.MetricsAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = strings.TrimSpace(v)
	}

	if v, ok := lookup(envServiceRadius); ok {
		radius, err := parseFloat(v, func(f float64) bool { return f > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envServiceRadius, err))
		} else {
			cfg.ServiceRadius = radius
		}
	}
	if v, ok := lookup(envOutboxPollInterval); ok {
		interval, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envOutboxPollInterval, err))
		} else {
			cfg.OutboxPollInterval = interval
		}
	}
	if v, ok := lookup(envOutboxBatchSize); ok {
		size, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envOutboxBatchSize, err))
		} else {
			cfg.OutboxBatchSize = size
		}
	}
	if v, ok := lookup(envOutboxMaxAttempts); ok {
		attempts, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envOutboxMaxAttempts, err))
		} else {
			cfg.OutboxMaxAttempts = attempts
		}
	}
	if v, ok := lookup(envOutboxRetryDelay); ok {
		delay, err := parseDuration(v, func(d time.Duration) bool { return d >= 0 }, "must be >= 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envOutboxRetryDelay, err))
		} else {
			cfg.OutboxRetryDelay = delay
		}
	}
	if v, ok := lookup(envReplenishInterval); ok {
		interval, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envReplenishInterval, err))
		} else {
			cfg.ReplenishInterval = interval
		}
	}
	if v, ok := lookup(envReplenishThreshold); ok {
		threshold, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envReplenishThreshold, err))
		} else {
			cfg.ReplenishThreshold = int32(threshold)
		}
	}
	if v, ok := lookup(envRunDemo); ok {
		runDemo, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envRunDemo, err))
		} else {
			cfg.RunDemo = runDemo
		}
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, rule)
	}
	return value, nil
}

func parseFloat(raw string, valid func(float64) bool, rule string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %g %s", value, rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %s %s", value, rule)
	}
	return value, nil
}

func main() {
	setupLogger()

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"build":          version.Get().String(),
		"metrics_addr":   cfg.MetricsAddr,
		"service_radius": cfg.ServiceRadius,
		"kafka_brokers":  cfg.KafkaBrokers,
	}).Info("запускаем сервис фулфилмента")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("сервис фулфилмента остановлен")
}
