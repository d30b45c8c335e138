package main

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/app"
)

func TestReadConfigFromEnv_Defaults(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(nil))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %d", len(warnings))
	}

	if cfg != app.DefaultConfig() {
		t.Fatalf("expected default config, got %#v", cfg)
	}
}

func TestReadConfigFromEnv_ValidOverrides(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(map[string]string{
		envMetricsAddr:        "localhost:9090",
		envServiceRadius:      "7.5",
		envKafkaBrokers:       " localhost:9092 ",
		envOutboxPollInterval: "2s",
		envOutboxBatchSize:    "42",
		envOutboxMaxAttempts:  "7",
		envOutboxRetryDelay:   "0s",
		envReplenishInterval:  "1m",
		envReplenishThreshold: "10",
		envRunDemo:            "off",
	}))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %d", len(warnings))
	}

	if cfg.MetricsAddr != "localhost:9090" {
		t.Fatalf("unexpected metrics addr: %s", cfg.MetricsAddr)
	}
	if cfg.ServiceRadius != 7.5 {
		t.Fatalf("unexpected service radius: %g", cfg.ServiceRadius)
	}
	if cfg.KafkaBrokers != "localhost:9092" {
		t.Fatalf("unexpected kafka brokers: %s", cfg.KafkaBrokers)
	}
	if cfg.OutboxPollInterval != 2*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.OutboxPollInterval)
	}
	if cfg.OutboxBatchSize != 42 {
		t.Fatalf("unexpected batch size: %d", cfg.OutboxBatchSize)
	}
	if cfg.OutboxMaxAttempts != 7 {
		t.Fatalf("unexpected max attempts: %d", cfg.OutboxMaxAttempts)
	}
	if cfg.OutboxRetryDelay != 0 {
		t.Fatalf("unexpected retry delay: %s", cfg.OutboxRetryDelay)
	}
	if cfg.ReplenishInterval != time.Minute {
		t.Fatalf("unexpected replenish interval: %s", cfg.ReplenishInterval)
	}
	if cfg.ReplenishThreshold != 10 {
		t.Fatalf("unexpected replenish threshold: %d", cfg.ReplenishThreshold)
	}
	if cfg.RunDemo {
		t.Fatal("expected RunDemo=false")
	}
}

func TestReadConfigFromEnv_InvalidValuesFallbackToDefaults(t *testing.T) {
	defaultCfg := app.DefaultConfig()

	cfg, warnings := readConfigFromEnv(mapLookup(map[string]string{
		envServiceRadius:      "-1",
		envOutboxPollInterval: "-1s",
		envOutboxBatchSize:    "0",
		envOutboxMaxAttempts:  "bad",
		envOutboxRetryDelay:   "invalid",
		envReplenishInterval:  "never",
		envReplenishThreshold: "-5",
		envRunDemo:            "sometimes",
	}))

	if len(warnings) != 8 {
		t.Fatalf("expected 8 warnings, got %d", len(warnings))
	}

	if cfg.ServiceRadius != defaultCfg.ServiceRadius {
		t.Fatal("expected ServiceRadius to keep default on invalid value")
	}
	if cfg.OutboxPollInterval != defaultCfg.OutboxPollInterval {
		t.Fatal("expected OutboxPollInterval to keep default on invalid value")
	}
	if cfg.OutboxBatchSize != defaultCfg.OutboxBatchSize {
		t.Fatal("expected OutboxBatchSize to keep default on invalid value")
	}
	if cfg.OutboxMaxAttempts != defaultCfg.OutboxMaxAttempts {
		t.Fatal("expected OutboxMaxAttempts to keep default on invalid value")
	}
	if cfg.OutboxRetryDelay != defaultCfg.OutboxRetryDelay {
		t.Fatal("expected OutboxRetryDelay to keep default on invalid value")
	}
	if cfg.ReplenishInterval != defaultCfg.ReplenishInterval {
		t.Fatal("expected ReplenishInterval to keep default on invalid value")
	}
	if cfg.ReplenishThreshold != defaultCfg.ReplenishThreshold {
		t.Fatal("expected ReplenishThreshold to keep default on invalid value")
	}
	if cfg.RunDemo != defaultCfg.RunDemo {
		t.Fatal("expected RunDemo to keep default on invalid value")
	}
}

func TestParseBool(t *testing.T) {
	trueValue, err := parseBool(" YES ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !trueValue {
		t.Fatal("expected true result")
	}

	falseValue, err := parseBool("off")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if falseValue {
		t.Fatal("expected false result")
	}

	if _, err := parseBool("sometimes"); err == nil {
		t.Fatal("expected error for invalid bool value")
	}
}

func TestParseInt(t *testing.T) {
	value, err := parseInt(" 12 ", func(v int) bool { return v > 0 }, "must be > 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 12 {
		t.Fatalf("unexpected value: %d", value)
	}

	if _, err := parseInt("0", func(v int) bool { return v > 0 }, "must be > 0"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestParseFloat(t *testing.T) {
	value, err := parseFloat(" 2.5 ", func(v float64) bool { return v > 0 }, "must be > 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 2.5 {
		t.Fatalf("unexpected value: %g", value)
	}

	if _, err := parseFloat("-1", func(v float64) bool { return v > 0 }, "must be > 0"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestParseDuration(t *testing.T) {
	value, err := parseDuration(" 250ms ", func(v time.Duration) bool { return v >= 0 }, "must be >= 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 250*time.Millisecond {
		t.Fatalf("unexpected value: %s", value)
	}

	if _, err := parseDuration("-1ms", func(v time.Duration) bool { return v >= 0 }, "must be >= 0"); err == nil {
		t.Fatal("expected validation error")
	}
}

func mapLookup(values map[string]string) envLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
