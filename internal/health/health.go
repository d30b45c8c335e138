package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
)

// Status — состояние компонента сервиса.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// severity задаёт порядок агрегации: итоговый статус — худший из частных.
var severity = map[Status]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

func worse(a, b Status) Status {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

// Check — результат одной проверки.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// newCheck собирает результат проверки, замеряя её длительность от start.
func newCheck(name string, start time.Time, status Status, message string) Check {
	return Check{
		Name:       name,
		Status:     status,
		Message:    message,
		DurationMs: time.Since(start).Milliseconds(),
	}
}

// Response — JSON-ответ /healthz.
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker — одна проверка здоровья компонента.
type Checker interface {
	Check() Check
}

// Handler агрегирует зарегистрированные проверки и отдаёт их по HTTP.
type Handler struct {
	mu        sync.RWMutex
	checkers  map[string]Checker
	version   string
	startTime time.Time
}

func NewHandler(version string) *Handler {
	return &Handler{
		checkers:  make(map[string]Checker),
		version:   version,
		startTime: time.Now(),
	}
}

// RegisterChecker добавляет проверку под заданным именем.
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// snapshot копирует набор проверок, чтобы не держать мьютекс на время их выполнения.
func (h *Handler) snapshot() map[string]Checker {
	h.mu.RLock()
	defer h.mu.RUnlock()

	checkers := make(map[string]Checker, len(h.checkers))
	for name, checker := range h.checkers {
		checkers[name] = checker
	}
	return checkers
}

// ServeHTTP выполняет все проверки и отвечает агрегированным статусом:
// 200 для healthy/degraded, 503 для unhealthy.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	checks := make(map[string]Check)
	overall := StatusHealthy

	for name, checker := range h.snapshot() {
		check := checker.Check()
		checks[name] = check
		overall = worse(overall, check.Status)
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Response{
		Status:        overall,
		Timestamp:     time.Now(),
		Checks:        checks,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// LivenessHandler — liveness probe, всегда 200.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessHandler отвечает 503, если хотя бы одна проверка unhealthy.
// Degraded не блокирует готовность.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	for _, checker := range h.snapshot() {
		if checker.Check().Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// SimpleChecker заворачивает произвольную функцию в проверку.
type SimpleChecker struct {
	name    string
	checkFn func() error
}

func NewSimpleChecker(name string, checkFn func() error) *SimpleChecker {
	return &SimpleChecker{name: name, checkFn: checkFn}
}

func (c *SimpleChecker) Check() Check {
	start := time.Now()
	if err := c.checkFn(); err != nil {
		return newCheck(c.name, start, StatusUnhealthy, err.Error())
	}
	return newCheck(c.name, start, StatusHealthy, "")
}

// DirectoryChecker следит за покрытием: сервис без единого даркстора
// не может исполнять заказы.
type DirectoryChecker struct {
	directory domain.StoreDirectory
}

// NewDirectoryChecker создаёт проверку справочника дарксторов.
func NewDirectoryChecker(directory domain.StoreDirectory) *DirectoryChecker {
	return &DirectoryChecker{directory: directory}
}

// Check возвращает unhealthy при пустом справочнике.
func (c *DirectoryChecker) Check() Check {
	start := time.Now()
	stores := c.directory.All()

	if len(stores) == 0 {
		return newCheck("store-directory", start, StatusUnhealthy, "no dark stores registered")
	}
	return newCheck("store-directory", start, StatusHealthy, fmt.Sprintf("%d dark stores", len(stores)))
}

// OutboxChecker следит за бэклогом outbox: растущая очередь означает,
// что события заказов не доходят до брокера.
type OutboxChecker struct {
	repo          domain.OutboxRepository
	maxPending    int
	maxPendingAge time.Duration
}

// NewOutboxChecker создаёт проверку бэклога outbox.
func NewOutboxChecker(repo domain.OutboxRepository, maxPending int, maxPendingAge time.Duration) *OutboxChecker {
	return &OutboxChecker{
		repo:          repo,
		maxPending:    maxPending,
		maxPendingAge: maxPendingAge,
	}
}

// Check возвращает degraded при превышении порога по количеству или возрасту.
func (c *OutboxChecker) Check() Check {
	start := time.Now()
	stats, err := c.repo.Stats()
	if err != nil {
		return newCheck("outbox", start, StatusUnhealthy, err.Error())
	}

	if c.maxPending > 0 && stats.PendingCount > c.maxPending {
		return newCheck("outbox", start, StatusDegraded, fmt.Sprintf("%d pending messages", stats.PendingCount))
	}
	if c.maxPendingAge > 0 && !stats.OldestPendingAt.IsZero() && time.Since(stats.OldestPendingAt) > c.maxPendingAge {
		age := time.Since(stats.OldestPendingAt).Truncate(time.Second)
		return newCheck("outbox", start, StatusDegraded, fmt.Sprintf("oldest pending message is %s old", age))
	}

	return newCheck("outbox", start, StatusHealthy, "")
}
