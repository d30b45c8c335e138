package memory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/fulfillment/internal/domain"
	"github.com/vladislavdragonenkov/fulfillment/internal/storage/memory"
)

func sampleOrder() domain.Order {
	return domain.Order{
		UserRef:     "user-1",
		Lines:       []domain.FulfillmentLine{{SKU: 101, Qty: 2, StoreName: "DarkStoreA"}},
		AmountMinor: 4000,
		Partners:    []domain.DeliveryPartner{{ID: "p-1", StoreName: "DarkStoreA"}},
	}
}

func TestOrderLedger_AppendAssignsMonotonicIDs(t *testing.T) {
	ledger := memory.NewOrderLedger()

	first, err := ledger.Append(sampleOrder())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	second, err := ledger.Append(sampleOrder())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Errorf("expected ids 1,2 got %d,%d", first.ID, second.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Error("CreatedAt must be populated on append")
	}
}

func TestOrderLedger_Get(t *testing.T) {
	ledger := memory.NewOrderLedger()
	stored, err := ledger.Append(sampleOrder())
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	got, err := ledger.Get(stored.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.UserRef != "user-1" || len(got.Lines) != 1 {
		t.Errorf("unexpected order: %+v", got)
	}

	if _, err := ledger.Get(42); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderLedger_ListIsolation(t *testing.T) {
	ledger := memory.NewOrderLedger()
	if _, err := ledger.Append(sampleOrder()); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	list := ledger.List()
	list[0].Lines[0].Qty = 99

	again := ledger.List()
	if again[0].Lines[0].Qty != 2 {
		t.Error("mutating returned orders must not affect the ledger")
	}
}

func TestOrderLedger_ConcurrentAppends(t *testing.T) {
	ledger := memory.NewOrderLedger()

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if _, err := ledger.Append(sampleOrder()); err != nil {
					t.Errorf("append failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	orders := ledger.List()
	if len(orders) != writers*perWriter {
		t.Fatalf("expected %d orders, got %d", writers*perWriter, len(orders))
	}

	// Номера уникальны и монотонны в порядке записи.
	seen := make(map[int64]struct{}, len(orders))
	var prev int64
	for _, order := range orders {
		if _, dup := seen[order.ID]; dup {
			t.Fatalf("duplicate order id %d", order.ID)
		}
		seen[order.ID] = struct{}{}
		if order.ID <= prev {
			t.Fatalf("ids not increasing: %d after %d", order.ID, prev)
		}
		prev = order.ID
	}
}
