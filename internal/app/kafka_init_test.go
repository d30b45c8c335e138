package app

import (
	"reflect"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSplitBrokers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "only separators", raw: " , ,", want: nil},
		{name: "single", raw: "broker-1:9092", want: []string{"broker-1:9092"}},
		{
			name: "trims spaces",
			raw:  " broker-1:9092, broker-2:9092 ,broker-3:9092",
			want: []string{"broker-1:9092", "broker-2:9092", "broker-3:9092"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitBrokers(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitBrokers(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestInitKafkaProducer_NoBrokersIsNotAnError(t *testing.T) {
	logger := log.WithField("test", "kafka-init")

	producer, err := initKafkaProducer("", logger)
	if err != nil {
		t.Fatalf("empty brokers must not fail: %v", err)
	}
	if producer != nil {
		t.Fatal("expected nil producer without brokers")
	}
}

func TestInitKafkaProducer_UnreachableBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka-init")

	// Подключение к несуществующему брокеру: ошибка возвращается,
	// но producer остаётся nil и сервис может продолжать без Kafka.
	producer, err := initKafkaProducer("unreachable-broker:19092", logger)
	if err == nil {
		t.Fatal("expected connection error")
	}
	if producer != nil {
		t.Fatal("expected nil producer on connection error")
	}
}

func TestCloseKafka_NilProducerIsNoop(_ *testing.T) {
	closeKafka(nil, log.WithField("test", "kafka-init"))
}
