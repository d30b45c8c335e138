// Команда dlq-reprocess перечитывает DLQ-topic и возвращает застрявшие
// события заказов в основной topic. По умолчанию работает в режиме dry-run:
// только перечисляет кандидатов, ничего не публикуя.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fulfillment/internal/messaging/kafka"
)

const (
	replayLimitDefault = 100
	idleTimeoutDefault = 2 * time.Second
)

type config struct {
	brokers     []string
	sourceTopic string
	targetTopic string
	idleTimeout time.Duration
	limit       int
	execute     bool
	fromNewest  bool
}

func (c config) validate() error {
	switch {
	case len(c.brokers) == 0:
		return fmt.Errorf("kafka brokers are required (-brokers or KAFKA_BROKERS)")
	case strings.TrimSpace(c.sourceTopic) == "":
		return fmt.Errorf("source-topic is required")
	case strings.TrimSpace(c.targetTopic) == "":
		return fmt.Errorf("target-topic is required")
	case c.limit <= 0:
		return fmt.Errorf("limit must be > 0")
	case c.idleTimeout <= 0:
		return fmt.Errorf("idle-timeout must be > 0")
	}
	return nil
}

// dlqEnvelope описывает оба уровня DLQ-сообщения: внешний конверт
// паблишера и вложенный конверт outbox-воркера используют одни поля,
// различаясь только именем идентификатора.
type dlqEnvelope struct {
	ID            string          `json:"id"`
	OutboxID      string          `json:"outbox_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
}

func (e dlqEnvelope) ref() string {
	return firstNonEmpty(e.OutboxID, e.ID)
}

// replayMessage — событие, готовое к повторной публикации.
type replayMessage struct {
	topic string
	key   string
	value []byte
}

// replayEnvelope повторяет wire-формат паблишера основного topic.
type replayEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// Узкие интерфейсы над sarama, чтобы стабы в тестах не тянули брокер.
type offsetClient interface {
	GetOffset(topic string, partition int32, at int64) (int64, error)
	Partitions(topic string) ([]int32, error)
	io.Closer
}

type partitionConsumer interface {
	Messages() <-chan *sarama.ConsumerMessage
	Errors() <-chan *sarama.ConsumerError
	io.Closer
}

type partitionConsumerSource interface {
	ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error)
	io.Closer
}

type replayProducer interface {
	SendMessage(msg *sarama.ProducerMessage) (int32, int64, error)
	io.Closer
}

// consumerAdapter сужает sarama.Consumer до partitionConsumerSource.
type consumerAdapter struct {
	inner sarama.Consumer
}

func (a consumerAdapter) ConsumePartition(topic string, partition int32, offset int64) (partitionConsumer, error) {
	return a.inner.ConsumePartition(topic, partition, offset)
}

func (a consumerAdapter) Close() error {
	if a.inner == nil {
		return nil
	}
	return a.inner.Close()
}

// newReplayDependencies — переменная ради подмены в тестах.
var newReplayDependencies = func(cfg config) (offsetClient, partitionConsumerSource, replayProducer, error) {
	clientCfg := sarama.NewConfig()
	clientCfg.Consumer.Return.Errors = true

	client, err := sarama.NewClient(cfg.brokers, clientCfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create kafka client: %w", err)
	}

	base, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	source := consumerAdapter{inner: base}

	// Producer нужен только в режиме execute.
	if !cfg.execute {
		return client, source, nil, nil
	}

	prodCfg := sarama.NewConfig()
	prodCfg.Producer.RequiredAcks = sarama.WaitForAll
	prodCfg.Producer.Retry.Max = 5
	prodCfg.Producer.Return.Successes = true
	prodCfg.Producer.Compression = sarama.CompressionSnappy
	prodCfg.Producer.Idempotent = true
	prodCfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.brokers, prodCfg)
	if err != nil {
		_ = source.Close()
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return client, source, producer, nil
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	cfg, err := readConfig()
	if err != nil {
		fail("%v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		fail("dlq replay failed: %v", err)
	}
}

func readConfig() (config, error) {
	var cfg config
	rawBrokers := flag.String("brokers", "", "comma-separated kafka bootstrap servers (fallback: KAFKA_BROKERS)")
	flag.StringVar(&cfg.sourceTopic, "source-topic", kafka.TopicDeadLetterQueue, "DLQ topic to read from")
	flag.StringVar(&cfg.targetTopic, "target-topic", kafka.TopicOrderEvents, "topic to replay events into")
	flag.IntVar(&cfg.limit, "limit", replayLimitDefault, "total number of DLQ messages to scan")
	flag.BoolVar(&cfg.execute, "execute", false, "actually publish; without this flag only list candidates")
	flag.BoolVar(&cfg.fromNewest, "from-newest", false, "start from the tail of each partition instead of the head")
	flag.DurationVar(&cfg.idleTimeout, "idle-timeout", idleTimeoutDefault, "how long to wait on a quiet partition")
	flag.Parse()

	servers := *rawBrokers
	if strings.TrimSpace(servers) == "" {
		servers = os.Getenv("KAFKA_BROKERS")
	}
	cfg.brokers = parseBrokers(servers)

	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			brokers = append(brokers, addr)
		}
	}
	return brokers
}

func run(ctx context.Context, cfg config) error {
	log.WithFields(log.Fields{
		"source_topic": cfg.sourceTopic,
		"target_topic": cfg.targetTopic,
		"limit":        cfg.limit,
		"execute":      cfg.execute,
		"from_newest":  cfg.fromNewest,
	}).Info("starting dlq replay")

	client, consumer, producer, err := newReplayDependencies(cfg)
	if err != nil {
		return err
	}
	defer closeQuietly(producer, consumer, client)

	return runReplay(ctx, cfg, client, consumer, producer)
}

// closeQuietly закрывает зависимости в переданном порядке, пропуская nil.
func closeQuietly(closers ...io.Closer) {
	for _, c := range closers {
		if c != nil {
			_ = c.Close()
		}
	}
}

func runReplay(ctx context.Context, cfg config, client offsetClient, consumer partitionConsumerSource, producer replayProducer) error {
	if client == nil || consumer == nil {
		return fmt.Errorf("kafka client and consumer are required")
	}
	if cfg.execute && producer == nil {
		return fmt.Errorf("producer is required in execute mode")
	}

	partitions, err := client.Partitions(cfg.sourceTopic)
	if err != nil {
		return fmt.Errorf("get partitions for topic %s: %w", cfg.sourceTopic, err)
	}
	if len(partitions) == 0 {
		log.WithField("topic", cfg.sourceTopic).Warn("source topic has no partitions")
		return nil
	}
	sort.Slice(partitions, func(i, j int) bool { return partitions[i] < partitions[j] })

	var total partitionStats
	for _, p := range partitions {
		remaining := cfg.limit - total.processed
		if remaining <= 0 {
			break
		}

		stats, err := processPartition(ctx, consumer, client, producer, cfg, p, remaining)
		if err != nil {
			return err
		}
		total.add(stats)
	}

	mode := "dry-run"
	if cfg.execute {
		mode = "execute"
	}
	log.WithFields(log.Fields{
		"mode":      mode,
		"processed": total.processed,
		"replayed":  total.replayed,
		"skipped":   total.skipped,
	}).Info("dlq replay finished")

	return nil
}

type partitionStats struct {
	processed int
	replayed  int
	skipped   int
}

func (s *partitionStats) add(other partitionStats) {
	s.processed += other.processed
	s.replayed += other.replayed
	s.skipped += other.skipped
}

func processPartition(
	ctx context.Context,
	source partitionConsumerSource,
	client offsetClient,
	producer replayProducer,
	cfg config,
	partition int32,
	limit int,
) (partitionStats, error) {
	var stats partitionStats
	if limit <= 0 {
		return stats, nil
	}

	start, end, err := offsetWindow(client, cfg, partition, limit)
	if err != nil || start >= end {
		return stats, err
	}

	pc, err := source.ConsumePartition(cfg.sourceTopic, partition, start)
	if err != nil {
		return stats, fmt.Errorf("consume partition %d: %w", partition, err)
	}
	defer func() { _ = pc.Close() }()

	idle := time.NewTimer(cfg.idleTimeout)
	defer idle.Stop()

	for stats.processed < limit {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case consumeErr := <-pc.Errors():
			if consumeErr != nil {
				return stats, fmt.Errorf("partition %d consumer error: %w", partition, consumeErr)
			}
		case m, open := <-pc.Messages():
			if !open || m == nil {
				return stats, nil
			}

			resetTimer(idle, cfg.idleTimeout)

			if m.Offset >= end {
				return stats, nil
			}

			if err := handleMessage(m, cfg, producer, &stats); err != nil {
				return stats, err
			}

			if m.Offset+1 >= end {
				return stats, nil
			}
		case <-idle.C:
			return stats, nil
		}
	}

	return stats, nil
}

// offsetWindow определяет границы чтения партиции с учётом лимита и
// режима from-newest.
func offsetWindow(client offsetClient, cfg config, partition int32, limit int) (start, end int64, err error) {
	low, err := client.GetOffset(cfg.sourceTopic, partition, sarama.OffsetOldest)
	if err != nil {
		return 0, 0, fmt.Errorf("get oldest offset for partition %d: %w", partition, err)
	}
	high, err := client.GetOffset(cfg.sourceTopic, partition, sarama.OffsetNewest)
	if err != nil {
		return 0, 0, fmt.Errorf("get newest offset for partition %d: %w", partition, err)
	}

	start = low
	if cfg.fromNewest {
		if start = high - int64(limit); start < low {
			start = low
		}
	}
	return start, high, nil
}

func resetTimer(timer *time.Timer, d time.Duration) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(d)
}

// handleMessage классифицирует одно DLQ-сообщение: replay, skip или ошибка
// публикации (фатальная в режиме execute).
func handleMessage(m *sarama.ConsumerMessage, cfg config, producer replayProducer, stats *partitionStats) error {
	stats.processed++

	candidate, ok, err := extractReplayMessage(m, cfg.targetTopic)
	switch {
	case err != nil:
		stats.skipped++
		log.WithError(err).WithFields(log.Fields{
			"partition": m.Partition,
			"offset":    m.Offset,
		}).Warn("skip unsupported dlq message")
		return nil
	case !ok:
		stats.skipped++
		return nil
	}

	if !cfg.execute {
		log.WithFields(log.Fields{
			"partition":    m.Partition,
			"offset":       m.Offset,
			"target_topic": candidate.topic,
			"key":          candidate.key,
		}).Info("dlq replay candidate")
		stats.replayed++
		return nil
	}

	if err := publishReplay(producer, candidate); err != nil {
		stats.processed--
		return fmt.Errorf("publish replay message: %w", err)
	}
	stats.replayed++
	return nil
}

func publishReplay(producer replayProducer, msg replayMessage) error {
	if producer == nil {
		return fmt.Errorf("producer is nil")
	}

	out := &sarama.ProducerMessage{
		Topic:     msg.topic,
		Key:       sarama.StringEncoder(msg.key),
		Value:     sarama.ByteEncoder(msg.value),
		Timestamp: time.Now().UTC(),
	}
	_, _, err := producer.SendMessage(out)
	return err
}

// extractReplayMessage достаёт из DLQ-сообщения исходное событие заказа.
// Сообщения неизвестного формата пропускаются без ошибки; конверт без
// вложенного payload считается повреждённым.
func extractReplayMessage(m *sarama.ConsumerMessage, targetTopic string) (replayMessage, bool, error) {
	var outer dlqEnvelope
	if json.Unmarshal(m.Value, &outer) != nil || len(outer.Payload) == 0 {
		return replayMessage{}, false, nil
	}

	var inner dlqEnvelope
	if err := json.Unmarshal(outer.Payload, &inner); err != nil {
		return replayMessage{}, false, fmt.Errorf("decode outbox dlq payload: %w", err)
	}
	if len(inner.Payload) == 0 {
		return replayMessage{}, false, fmt.Errorf("outbox dlq payload does not contain original event payload")
	}

	replay := replayEnvelope{
		ID:            firstNonEmpty(inner.ref(), outer.ref()),
		AggregateType: firstNonEmpty(inner.AggregateType, outer.AggregateType),
		AggregateID:   firstNonEmpty(inner.AggregateID, outer.AggregateID),
		EventType:     firstNonEmpty(inner.EventType, outer.EventType),
		Payload:       inner.Payload,
		PublishedAt:   time.Now().UTC(),
	}
	encoded, err := json.Marshal(replay)
	if err != nil {
		return replayMessage{}, false, fmt.Errorf("encode replay envelope: %w", err)
	}

	return replayMessage{
		topic: targetTopic,
		key:   firstNonEmpty(replay.AggregateID, replay.ID),
		value: encoded,
	}, true, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
