package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/notecraft/notecraft/internal/workflow"
)

func TestSetGetDelete(t *testing.T) {
	store := New(time.Hour)
	flow := workflow.New("alice", nil)
	store.Set(flow)

	got, ok := store.Get(flow.ID)
	if !ok {
		t.Fatal("Expected flow to be found")
	}
	if got != flow {
		t.Error("Expected the stored flow pointer")
	}

	store.Delete(flow.ID)
	if _, ok := store.Get(flow.ID); ok {
		t.Error("Expected flow to be gone after Delete")
	}
}

func TestGetDoesNotRestoreDeletedFlow(t *testing.T) {
	store := New(time.Hour)
	for i := 0; i < 200; i++ {
		flow := workflow.New("alice", nil)
		store.Set(flow)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Get(flow.ID)
		}()
		go func() {
			defer wg.Done()
			store.Delete(flow.ID)
		}()
		wg.Wait()

		if _, ok := store.Get(flow.ID); ok {
			t.Fatalf("Expected flow %s to stay deleted", flow.ID)
		}
	}
}

func TestGetAllFiltersByOwner(t *testing.T) {
	store := New(time.Hour)
	older := workflow.New("alice", nil)
	older.CreatedAt = time.Now().Add(-time.Minute)
	newer := workflow.New("alice", nil)
	other := workflow.New("bob", nil)
	store.Set(older)
	store.Set(newer)
	store.Set(other)

	flows := store.GetAll("alice")
	if len(flows) != 2 {
		t.Fatalf("Expected 2 flows, got %d", len(flows))
	}
	if flows[0].ID != newer.ID || flows[1].ID != older.ID {
		t.Error("Expected flows newest first")
	}
	if len(store.GetAll("carol")) != 0 {
		t.Error("Expected no flows for an unknown owner")
	}
	if store.Count() != 3 {
		t.Errorf("Expected count 3, got %d", store.Count())
	}
}

func TestFlowsExpire(t *testing.T) {
	store := New(20 * time.Millisecond)
	flow := workflow.New("alice", nil)
	store.Set(flow)

	time.Sleep(40 * time.Millisecond)
	if _, ok := store.Get(flow.ID); ok {
		t.Error("Expected flow to expire")
	}
}
