package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/service/allocator"
	"github.com/vladislavdragonenkov/fulfillment/internal/storage/memory"
)

// Нагрузочный генератор гоняет алокатор in-process: мир из дарксторов на
// сетке, случайные корзины из случайных точек, отчёт с латентностями и
// распределением исходов.

type outcome string

const (
	outcomeFulfilled  outcome = "fulfilled"
	outcomePartial    outcome = "partial"
	outcomeNoCoverage outcome = "no_coverage"
	outcomeInvalid    outcome = "invalid"
	outcomeError      outcome = "error"
)

type config struct {
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	stores      int
	gridSize    float64
	radius      float64
	skus        int
	stockPerSKU int32
	maxQty      int32
	seed        int64
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type report struct {
	StartedAt       time.Time        `json:"started_at"`
	DurationSeconds float64          `json:"duration_seconds"`
	TotalOrders     int64            `json:"total_orders"`
	FailedOrders    int64            `json:"failed_orders"`
	ErrorRate       float64          `json:"error_rate"`
	OrdersPerSecond float64          `json:"orders_per_second"`
	Outcomes        map[string]int64 `json:"outcomes"`
	LatencyMs       latencySummary   `json:"latency_ms"`
}

type collector struct {
	mu        sync.Mutex
	outcomes  map[outcome]int64
	latencies []float64
}

func newCollector() *collector {
	return &collector{
		outcomes: make(map[outcome]int64),
	}
}

func (c *collector) record(result outcome, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.outcomes[result]++
	c.latencies = append(c.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Outcomes:        make(map[string]int64, len(c.outcomes)),
		LatencyMs:       buildLatencySummary(c.latencies),
	}

	for name, count := range c.outcomes {
		result.Outcomes[string(name)] = count
		result.TotalOrders += count
		if name == outcomeError {
			result.FailedOrders += count
		}
	}
	result.ErrorRate = ratio(result.FailedOrders, result.TotalOrders)
	if duration > 0 {
		result.OrdersPerSecond = float64(result.TotalOrders) / duration.Seconds()
	}

	return result
}

func parseConfig() (config, error) {
	var cfg config
	var durationValue string

	flag.IntVar(&cfg.total, "total", 10000, "total orders to place in count mode; in duration mode only used when explicitly set")
	flag.StringVar(&durationValue, "duration", "0s", "optional time-based run duration (e.g. 30s, 5m)")
	flag.IntVar(&cfg.concurrency, "concurrency", 16, "number of concurrent workers")
	flag.IntVar(&cfg.stores, "stores", 25, "number of dark stores on the grid")
	flag.Float64Var(&cfg.gridSize, "grid", 20.0, "side of the square grid stores and users are placed on")
	flag.Float64Var(&cfg.radius, "radius", allocator.DefaultServiceRadius, "service radius")
	flag.IntVar(&cfg.skus, "skus", 50, "number of distinct SKUs in the catalog")
	var stockValue, qtyValue int
	flag.IntVar(&stockValue, "stock", 1000, "initial stock per SKU per store")
	flag.IntVar(&qtyValue, "max-qty", 5, "max quantity per cart line")
	flag.Int64Var(&cfg.seed, "seed", time.Now().UnixNano(), "rng seed")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	flag.Parse()

	duration, err := time.ParseDuration(strings.TrimSpace(durationValue))
	if err != nil {
		return cfg, fmt.Errorf("parse duration: %w", err)
	}
	cfg.duration = duration

	flag.CommandLine.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	cfg.stockPerSKU = int32(stockValue)
	cfg.maxQty = int32(qtyValue)

	if cfg.duration < 0 {
		return cfg, errors.New("duration must be >= 0")
	}
	if cfg.duration == 0 && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when duration is not set")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.stores <= 0 {
		return cfg, errors.New("stores must be > 0")
	}
	if cfg.gridSize <= 0 {
		return cfg, errors.New("grid must be > 0")
	}
	if cfg.radius <= 0 {
		return cfg, errors.New("radius must be > 0")
	}
	if cfg.skus <= 0 {
		return cfg, errors.New("skus must be > 0")
	}
	if cfg.stockPerSKU <= 0 {
		return cfg, errors.New("stock must be > 0")
	}
	if cfg.maxQty <= 0 {
		return cfg, errors.New("max-qty must be > 0")
	}

	return cfg, nil
}

// buildWorld собирает каталог, сетку дарксторов и алокатор.
func buildWorld(cfg config) (*allocator.Service, error) {
	catalog := memory.NewCatalog()
	for i := 0; i < cfg.skus; i++ {
		catalog.Register(domain.Product{
			SKU:        int64(1000 + i),
			Name:       fmt.Sprintf("Item-%d", 1000+i),
			PriceMinor: int64(100 * (i + 1)),
		})
	}

	directory := memory.NewStoreDirectory()
	rng := rand.New(rand.NewSource(cfg.seed))
	for i := 0; i < cfg.stores; i++ {
		store := domain.NewDarkStore(
			fmt.Sprintf("store-%d", i),
			domain.Location{X: rng.Float64() * cfg.gridSize, Y: rng.Float64() * cfg.gridSize},
			memory.NewInventory(),
		)
		for sku := int64(1000); sku < int64(1000+cfg.skus); sku++ {
			prod, err := catalog.Lookup(sku)
			if err != nil {
				return nil, err
			}
			if err := store.AddStock(prod, cfg.stockPerSKU); err != nil {
				return nil, err
			}
		}
		if err := directory.Register(store); err != nil {
			return nil, err
		}
	}

	return allocator.NewService(directory, catalog, memory.NewOrderLedger(),
		allocator.WithServiceRadius(cfg.radius),
	), nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	svc, err := buildWorld(cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to build world: %v\n", err)
		os.Exit(1)
	}

	startedAt := time.Now()
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var failures int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		rng := rand.New(rand.NewSource(cfg.seed + int64(workerID) + 1))
		go func(rng *rand.Rand) {
			defer wg.Done()
			for id := range jobs {
				if runErr := placeRandomOrder(svc, cfg, id, rng, col); runErr != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}(rng)
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	duration := time.Since(startedAt)
	result := col.buildReport(startedAt, duration)
	if result.FailedOrders == 0 && failures > 0 {
		result.FailedOrders = failures
		result.ErrorRate = ratio(result.FailedOrders, result.TotalOrders)
	}

	printReport(result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedOrders > 0 {
		os.Exit(1)
	}
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

func placeRandomOrder(svc *allocator.Service, cfg config, index int, rng *rand.Rand, col *collector) error {
	at := domain.Location{X: rng.Float64() * cfg.gridSize, Y: rng.Float64() * cfg.gridSize}

	cart := domain.Cart{}
	lines := 1 + rng.Intn(3)
	for i := 0; i < lines; i++ {
		sku := int64(1000 + rng.Intn(cfg.skus))
		qty := 1 + rng.Int31n(cfg.maxQty)
		cart.AddItem(sku, qty)
	}

	start := time.Now()
	result, err := svc.PlaceOrder(fmt.Sprintf("load-%d", index), at, cart)
	latency := time.Since(start)

	switch {
	case err != nil && domain.IsInvalidRequest(err):
		col.record(outcomeInvalid, latency)
		return nil
	case err != nil:
		col.record(outcomeError, latency)
		return err
	case len(result.Order.Lines) == 0 && len(result.Unmet) > 0:
		col.record(outcomeNoCoverage, latency)
	case result.FullyFulfilled():
		col.record(outcomeFulfilled, latency)
	default:
		col.record(outcomePartial, latency)
	}
	return nil
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(result report, cfg config) {
	fmt.Println("Load test summary")
	fmt.Printf("target=%s total=%d failed=%d error_rate=%.4f\n",
		runTarget(cfg),
		result.TotalOrders,
		result.FailedOrders,
		result.ErrorRate,
	)
	fmt.Printf("duration=%.2fs orders/s=%.2f\n", result.DurationSeconds, result.OrdersPerSecond)
	fmt.Printf("latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.LatencyMs.Min,
		result.LatencyMs.Avg,
		result.LatencyMs.P50,
		result.LatencyMs.P95,
		result.LatencyMs.P99,
		result.LatencyMs.Max,
	)

	names := make([]string, 0, len(result.Outcomes))
	for name := range result.Outcomes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %d\n", name, result.Outcomes[name])
	}
}

func runTarget(cfg config) string {
	if cfg.duration <= 0 {
		return fmt.Sprintf("count:%d", cfg.total)
	}
	if cfg.totalSet {
		return fmt.Sprintf("duration:%s,max-total:%d", cfg.duration, cfg.total)
	}
	return fmt.Sprintf("duration:%s", cfg.duration)
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
