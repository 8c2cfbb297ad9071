package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/notecraft/notecraft/internal/workflow"
	"github.com/patrickmn/go-cache"
)

// FlowStore keeps flows in memory. A flow expires after ttl without access.
type FlowStore struct {
	// mu orders the refresh in Get against Delete so a removed flow stays removed
	mu    sync.Mutex
	flows *cache.Cache
	ttl   time.Duration
}

func New(ttl time.Duration) *FlowStore {
	cleanup := ttl
	if cleanup <= 0 || cleanup > 10*time.Minute {
		cleanup = 10 * time.Minute
	}
	return &FlowStore{
		flows: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Get returns the flow and pushes back its expiry
func (s *FlowStore) Get(flowID string) (*workflow.Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, found := s.flows.Get(flowID)
	if !found {
		return nil, false
	}
	flow, ok := v.(*workflow.Flow)
	if !ok {
		return nil, false
	}
	s.flows.Set(flowID, flow, cache.DefaultExpiration)
	return flow, true
}

func (s *FlowStore) Set(flow *workflow.Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows.Set(flow.ID, flow, cache.DefaultExpiration)
}

// GetAll lists the owner's live flows, newest first
func (s *FlowStore) GetAll(owner string) []*workflow.Flow {
	var result []*workflow.Flow
	for _, item := range s.flows.Items() {
		flow, ok := item.Object.(*workflow.Flow)
		if !ok || flow.Owner != owner {
			continue
		}
		result = append(result, flow)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *FlowStore) Delete(flowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows.Delete(flowID)
}

// Count reports the number of live flows
func (s *FlowStore) Count() int {
	return s.flows.ItemCount()
}
