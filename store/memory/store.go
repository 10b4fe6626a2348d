// Package memory provides an in-memory Store for tests and experimentation.
// Data does not survive the process.
package memory

import (
	"context"
	"sort"
	"sync"

	vesting "github.com/SoftHorizonSolutions/ttn-token-sub000"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/event"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

type Store struct {
	mu sync.RWMutex

	// Allocation storage. Ids are assigned sequentially from 1.
	allocations    map[id.AllocationID]*allocation.Allocation
	nextAllocation uint64

	// Airdrop storage
	airdrops    map[id.AirdropID]*allocation.Airdrop
	nextAirdrop uint64

	// Schedule storage
	schedules    map[id.ScheduleID]*schedule.Schedule
	nextSchedule uint64

	// Manager registry
	managers map[types.Address]struct{}

	// Running totals
	totals schedule.Totals

	// Event stream, append-only
	events []*event.Event

	closed bool
}

func New() *Store {
	return &Store{
		allocations: make(map[id.AllocationID]*allocation.Allocation),
		airdrops:    make(map[id.AirdropID]*allocation.Airdrop),
		schedules:   make(map[id.ScheduleID]*schedule.Schedule),
		managers:    make(map[types.Address]struct{}),
		events:      make([]*event.Event, 0),
	}
}

// Allocation Store implementation

func (s *Store) CreateAllocation(_ context.Context, a *allocation.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return vesting.ErrStoreClosed
	}
	s.nextAllocation++
	a.ID = id.AllocationID(s.nextAllocation)
	s.allocations[a.ID] = a
	return nil
}

func (s *Store) GetAllocation(_ context.Context, aid id.AllocationID) (*allocation.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.allocations[aid]; ok {
		return a, nil
	}
	return nil, vesting.ErrAllocationNotFound
}

func (s *Store) ListAllocationsByBeneficiary(_ context.Context, beneficiary types.Address) ([]*allocation.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*allocation.Allocation, 0)
	for _, a := range s.allocations {
		if a.Beneficiary == beneficiary {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) UpdateAllocation(_ context.Context, a *allocation.Allocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.allocations[a.ID]; !exists {
		return vesting.ErrAllocationNotFound
	}
	s.allocations[a.ID] = a
	return nil
}

func (s *Store) CountAllocations(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.allocations)), nil
}

// Airdrop Store implementation

func (s *Store) CreateAirdrop(_ context.Context, a *allocation.Airdrop) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return vesting.ErrStoreClosed
	}
	s.nextAirdrop++
	a.ID = id.AirdropID(s.nextAirdrop)
	s.airdrops[a.ID] = a
	return nil
}

func (s *Store) GetAirdrop(_ context.Context, aid id.AirdropID) (*allocation.Airdrop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, ok := s.airdrops[aid]; ok {
		return a, nil
	}
	return nil, vesting.ErrAirdropNotFound
}

// Schedule Store implementation

func (s *Store) CreateSchedule(_ context.Context, sc *schedule.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return vesting.ErrStoreClosed
	}
	s.nextSchedule++
	sc.ID = id.ScheduleID(s.nextSchedule)
	s.schedules[sc.ID] = sc
	return nil
}

func (s *Store) GetSchedule(_ context.Context, sid id.ScheduleID) (*schedule.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sc, ok := s.schedules[sid]; ok {
		return sc, nil
	}
	return nil, vesting.ErrScheduleNotFound
}

func (s *Store) ListSchedulesByBeneficiary(_ context.Context, beneficiary types.Address) ([]*schedule.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*schedule.Schedule, 0)
	for _, sc := range s.schedules {
		if sc.Beneficiary == beneficiary {
			result = append(result, sc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) UpdateSchedule(_ context.Context, sc *schedule.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[sc.ID]; !exists {
		return vesting.ErrScheduleNotFound
	}
	s.schedules[sc.ID] = sc
	return nil
}

func (s *Store) CountSchedules(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.schedules)), nil
}

// Manager registry implementation

func (s *Store) AddManager(_ context.Context, addr types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.managers[addr] = struct{}{}
	return nil
}

func (s *Store) RemoveManager(_ context.Context, addr types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.managers, addr)
	return nil
}

func (s *Store) IsManager(_ context.Context, addr types.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.managers[addr]
	return ok, nil
}

func (s *Store) ListManagers(_ context.Context) ([]types.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]types.Address, 0, len(s.managers))
	for addr := range s.managers {
		result = append(result, addr)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}

// Running totals

func (s *Store) Totals(_ context.Context) (schedule.Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals, nil
}

func (s *Store) SetTotals(_ context.Context, t schedule.Totals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals = t
	return nil
}

// Event stream

func (s *Store) AppendEvent(_ context.Context, e *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return vesting.ErrStoreClosed
	}
	s.events = append(s.events, e)
	return nil
}

func (s *Store) ListEvents(_ context.Context, opts event.ListOpts) ([]*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*event.Event, 0)
	for _, e := range s.events {
		if opts.Kind == "" || e.Kind == opts.Kind {
			result = append(result, e)
		}
	}

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}
	return result[start:end], nil
}

// Core methods

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return vesting.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
