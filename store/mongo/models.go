package mongo

import (
	"time"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/event"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Amounts are stored as decimal strings so they survive any magnitude
// without BSON integer truncation.

// ==================== Allocation models ====================

type allocationModel struct {
	ID          int64     `bson:"_id"`
	Beneficiary string    `bson:"beneficiary"`
	Amount      string    `bson:"amount"`
	Revoked     bool      `bson:"revoked"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

func toAllocationModel(a *allocation.Allocation) *allocationModel {
	return &allocationModel{
		ID:          int64(a.ID),
		Beneficiary: a.Beneficiary.String(),
		Amount:      a.Amount.String(),
		Revoked:     a.Revoked,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func fromAllocationModel(m *allocationModel) (*allocation.Allocation, error) {
	amount, err := types.ParseAmount(m.Amount)
	if err != nil {
		return nil, err
	}
	a := &allocation.Allocation{
		ID:          id.AllocationID(m.ID),
		Beneficiary: types.Address(m.Beneficiary),
		Amount:      amount,
		Revoked:     m.Revoked,
	}
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return a, nil
}

// ==================== Airdrop models ====================

type airdropModel struct {
	ID        int64               `bson:"_id"`
	Caller    string              `bson:"caller"`
	Entries   []airdropEntryModel `bson:"entries"`
	CreatedAt time.Time           `bson:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at"`
}

type airdropEntryModel struct {
	AllocationID int64  `bson:"allocation_id"`
	Beneficiary  string `bson:"beneficiary"`
	Amount       string `bson:"amount"`
}

func toAirdropModel(a *allocation.Airdrop) *airdropModel {
	entries := make([]airdropEntryModel, 0, len(a.Entries))
	for _, e := range a.Entries {
		entries = append(entries, airdropEntryModel{
			AllocationID: int64(e.AllocationID),
			Beneficiary:  e.Beneficiary.String(),
			Amount:       e.Amount.String(),
		})
	}
	return &airdropModel{
		ID:        int64(a.ID),
		Caller:    a.Caller.String(),
		Entries:   entries,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func fromAirdropModel(m *airdropModel) (*allocation.Airdrop, error) {
	a := &allocation.Airdrop{
		ID:      id.AirdropID(m.ID),
		Caller:  types.Address(m.Caller),
		Entries: make([]allocation.AirdropEntry, 0, len(m.Entries)),
	}
	for _, e := range m.Entries {
		amount, err := types.ParseAmount(e.Amount)
		if err != nil {
			return nil, err
		}
		a.Entries = append(a.Entries, allocation.AirdropEntry{
			AllocationID: id.AllocationID(e.AllocationID),
			Beneficiary:  types.Address(e.Beneficiary),
			Amount:       amount,
		})
	}
	a.CreatedAt = m.CreatedAt
	a.UpdatedAt = m.UpdatedAt
	return a, nil
}

// ==================== Schedule models ====================

type scheduleModel struct {
	ID           int64     `bson:"_id"`
	Beneficiary  string    `bson:"beneficiary"`
	TotalAmount  string    `bson:"total_amount"`
	Released     string    `bson:"released"`
	Start        time.Time `bson:"start"`
	CliffSecs    int64     `bson:"cliff_secs"`
	DurationSecs int64     `bson:"duration_secs"`
	AllocationID int64     `bson:"allocation_id"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toScheduleModel(s *schedule.Schedule) *scheduleModel {
	return &scheduleModel{
		ID:           int64(s.ID),
		Beneficiary:  s.Beneficiary.String(),
		TotalAmount:  s.TotalAmount.String(),
		Released:     s.Released.String(),
		Start:        s.Start,
		CliffSecs:    int64(s.Cliff / time.Second),
		DurationSecs: int64(s.Duration / time.Second),
		AllocationID: int64(s.AllocationID),
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func fromScheduleModel(m *scheduleModel) (*schedule.Schedule, error) {
	total, err := types.ParseAmount(m.TotalAmount)
	if err != nil {
		return nil, err
	}
	released, err := types.ParseAmount(m.Released)
	if err != nil {
		return nil, err
	}
	s := &schedule.Schedule{
		ID:           id.ScheduleID(m.ID),
		Beneficiary:  types.Address(m.Beneficiary),
		TotalAmount:  total,
		Released:     released,
		Start:        m.Start,
		Cliff:        time.Duration(m.CliffSecs) * time.Second,
		Duration:     time.Duration(m.DurationSecs) * time.Second,
		AllocationID: id.AllocationID(m.AllocationID),
		Status:       schedule.Status(m.Status),
	}
	s.CreatedAt = m.CreatedAt
	s.UpdatedAt = m.UpdatedAt
	return s, nil
}

// ==================== Manager / totals / event models ====================

type managerModel struct {
	Address string    `bson:"_id"`
	AddedAt time.Time `bson:"added_at"`
}

type totalsModel struct {
	ID           string `bson:"_id"`
	TotalVested  string `bson:"total_vested"`
	TotalClaimed string `bson:"total_claimed"`
}

func fromTotalsModel(m *totalsModel) (schedule.Totals, error) {
	vested, err := types.ParseAmount(m.TotalVested)
	if err != nil {
		return schedule.Totals{}, err
	}
	claimed, err := types.ParseAmount(m.TotalClaimed)
	if err != nil {
		return schedule.Totals{}, err
	}
	return schedule.Totals{TotalVested: vested, TotalClaimed: claimed}, nil
}

type eventModel struct {
	ID           string    `bson:"_id"`
	Kind         string    `bson:"kind"`
	At           time.Time `bson:"at"`
	Caller       string    `bson:"caller,omitempty"`
	Beneficiary  string    `bson:"beneficiary,omitempty"`
	AllocationID int64     `bson:"allocation_id,omitempty"`
	ScheduleID   int64     `bson:"schedule_id,omitempty"`
	AirdropID    int64     `bson:"airdrop_id,omitempty"`
	Amount       string    `bson:"amount,omitempty"`
	Remaining    string    `bson:"remaining,omitempty"`
	Reason       string    `bson:"reason,omitempty"`
	Seq          int64     `bson:"seq"`
}

func toEventModel(e *event.Event, seq int64) *eventModel {
	return &eventModel{
		ID:           e.ID.String(),
		Kind:         string(e.Kind),
		At:           e.At,
		Caller:       e.Caller.String(),
		Beneficiary:  e.Beneficiary.String(),
		AllocationID: int64(e.AllocationID),
		ScheduleID:   int64(e.ScheduleID),
		AirdropID:    int64(e.AirdropID),
		Amount:       e.Amount.String(),
		Remaining:    e.Remaining.String(),
		Reason:       e.Reason,
		Seq:          seq,
	}
}

func fromEventModel(m *eventModel) (*event.Event, error) {
	eid, err := id.ParseEventID(m.ID)
	if err != nil {
		return nil, err
	}
	amount, err := types.ParseAmount(orZero(m.Amount))
	if err != nil {
		return nil, err
	}
	remaining, err := types.ParseAmount(orZero(m.Remaining))
	if err != nil {
		return nil, err
	}
	return &event.Event{
		ID:           eid,
		Kind:         event.Kind(m.Kind),
		At:           m.At,
		Caller:       types.Address(m.Caller),
		Beneficiary:  types.Address(m.Beneficiary),
		AllocationID: id.AllocationID(m.AllocationID),
		ScheduleID:   id.ScheduleID(m.ScheduleID),
		AirdropID:    id.AirdropID(m.AirdropID),
		Amount:       amount,
		Remaining:    remaining,
		Reason:       m.Reason,
	}, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
