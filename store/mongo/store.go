// Package mongo provides a Store backed by MongoDB. Sequential ids come
// from an atomic counters collection so they match the semantics of the
// SQL drivers.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	vesting "github.com/SoftHorizonSolutions/ttn-token-sub000"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/event"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	storeiface "github.com/SoftHorizonSolutions/ttn-token-sub000/store"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Collection name constants.
const (
	colAllocations = "vesting_allocations"
	colAirdrops    = "vesting_airdrops"
	colSchedules   = "vesting_schedules"
	colManagers    = "vesting_managers"
	colTotals      = "vesting_totals"
	colEvents      = "vesting_events"
	colCounters    = "vesting_counters"
)

// compile-time interface check
var _ storeiface.Store = (*Store)(nil)

// Store implements store.Store on a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New wraps a connected client and the database to use.
func New(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		db:     client.Database(database),
	}
}

// DB returns the underlying database handle for direct access.
func (s *Store) DB() *mongo.Database { return s.db }

// Migrate creates indexes for all vesting collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colAllocations: {
			{Keys: bson.D{{Key: "beneficiary", Value: 1}}},
		},
		colSchedules: {
			{Keys: bson.D{{Key: "beneficiary", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colEvents: {
			{Keys: bson.D{{Key: "kind", Value: 1}}},
			{Keys: bson.D{{Key: "seq", Value: 1}}},
		},
	}
	for col, models := range indexes {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("vesting/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// nextSeq atomically increments and returns the named counter. Counters
// start at 1 on first use.
func (s *Store) nextSeq(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	err := s.db.Collection(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("vesting/mongo: next %s seq: %w", name, err)
	}
	return doc.Value, nil
}

// ==================== Allocation Store ====================

func (s *Store) CreateAllocation(ctx context.Context, a *allocation.Allocation) error {
	seq, err := s.nextSeq(ctx, colAllocations)
	if err != nil {
		return err
	}
	a.ID = id.AllocationID(seq)
	if _, err := s.db.Collection(colAllocations).InsertOne(ctx, toAllocationModel(a)); err != nil {
		return fmt.Errorf("vesting/mongo: create allocation: %w", err)
	}
	return nil
}

func (s *Store) GetAllocation(ctx context.Context, aid id.AllocationID) (*allocation.Allocation, error) {
	var m allocationModel
	err := s.db.Collection(colAllocations).
		FindOne(ctx, bson.M{"_id": int64(aid)}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, vesting.ErrAllocationNotFound
		}
		return nil, fmt.Errorf("vesting/mongo: get allocation: %w", err)
	}
	return fromAllocationModel(&m)
}

func (s *Store) ListAllocationsByBeneficiary(ctx context.Context, beneficiary types.Address) ([]*allocation.Allocation, error) {
	cur, err := s.db.Collection(colAllocations).Find(ctx,
		bson.M{"beneficiary": beneficiary.String()},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("vesting/mongo: list allocations: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*allocation.Allocation, 0)
	for cur.Next(ctx) {
		var m allocationModel
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		a, err := fromAllocationModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, cur.Err()
}

func (s *Store) UpdateAllocation(ctx context.Context, a *allocation.Allocation) error {
	res, err := s.db.Collection(colAllocations).UpdateOne(ctx,
		bson.M{"_id": int64(a.ID)},
		bson.M{"$set": bson.M{
			"amount":     a.Amount.String(),
			"revoked":    a.Revoked,
			"updated_at": a.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("vesting/mongo: update allocation: %w", err)
	}
	if res.MatchedCount == 0 {
		return vesting.ErrAllocationNotFound
	}
	return nil
}

func (s *Store) CountAllocations(ctx context.Context) (uint64, error) {
	n, err := s.db.Collection(colAllocations).CountDocuments(ctx, bson.M{})
	return uint64(n), err
}

// ==================== Airdrop Store ====================

func (s *Store) CreateAirdrop(ctx context.Context, a *allocation.Airdrop) error {
	seq, err := s.nextSeq(ctx, colAirdrops)
	if err != nil {
		return err
	}
	a.ID = id.AirdropID(seq)
	if _, err := s.db.Collection(colAirdrops).InsertOne(ctx, toAirdropModel(a)); err != nil {
		return fmt.Errorf("vesting/mongo: create airdrop: %w", err)
	}
	return nil
}

func (s *Store) GetAirdrop(ctx context.Context, aid id.AirdropID) (*allocation.Airdrop, error) {
	var m airdropModel
	err := s.db.Collection(colAirdrops).
		FindOne(ctx, bson.M{"_id": int64(aid)}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, vesting.ErrAirdropNotFound
		}
		return nil, fmt.Errorf("vesting/mongo: get airdrop: %w", err)
	}
	return fromAirdropModel(&m)
}

// ==================== Schedule Store ====================

func (s *Store) CreateSchedule(ctx context.Context, sc *schedule.Schedule) error {
	seq, err := s.nextSeq(ctx, colSchedules)
	if err != nil {
		return err
	}
	sc.ID = id.ScheduleID(seq)
	if _, err := s.db.Collection(colSchedules).InsertOne(ctx, toScheduleModel(sc)); err != nil {
		return fmt.Errorf("vesting/mongo: create schedule: %w", err)
	}
	return nil
}

func (s *Store) GetSchedule(ctx context.Context, sid id.ScheduleID) (*schedule.Schedule, error) {
	var m scheduleModel
	err := s.db.Collection(colSchedules).
		FindOne(ctx, bson.M{"_id": int64(sid)}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return nil, vesting.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("vesting/mongo: get schedule: %w", err)
	}
	return fromScheduleModel(&m)
}

func (s *Store) ListSchedulesByBeneficiary(ctx context.Context, beneficiary types.Address) ([]*schedule.Schedule, error) {
	cur, err := s.db.Collection(colSchedules).Find(ctx,
		bson.M{"beneficiary": beneficiary.String()},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("vesting/mongo: list schedules: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*schedule.Schedule, 0)
	for cur.Next(ctx) {
		var m scheduleModel
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		sc, err := fromScheduleModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, cur.Err()
}

func (s *Store) UpdateSchedule(ctx context.Context, sc *schedule.Schedule) error {
	res, err := s.db.Collection(colSchedules).UpdateOne(ctx,
		bson.M{"_id": int64(sc.ID)},
		bson.M{"$set": bson.M{
			"released":   sc.Released.String(),
			"status":     string(sc.Status),
			"updated_at": sc.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("vesting/mongo: update schedule: %w", err)
	}
	if res.MatchedCount == 0 {
		return vesting.ErrScheduleNotFound
	}
	return nil
}

func (s *Store) CountSchedules(ctx context.Context) (uint64, error) {
	n, err := s.db.Collection(colSchedules).CountDocuments(ctx, bson.M{})
	return uint64(n), err
}

// ==================== Manager registry ====================

func (s *Store) AddManager(ctx context.Context, addr types.Address) error {
	_, err := s.db.Collection(colManagers).UpdateOne(ctx,
		bson.M{"_id": addr.String()},
		bson.M{"$setOnInsert": bson.M{"added_at": time.Now().UTC()}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("vesting/mongo: add manager: %w", err)
	}
	return nil
}

func (s *Store) RemoveManager(ctx context.Context, addr types.Address) error {
	_, err := s.db.Collection(colManagers).DeleteOne(ctx, bson.M{"_id": addr.String()})
	if err != nil {
		return fmt.Errorf("vesting/mongo: remove manager: %w", err)
	}
	return nil
}

func (s *Store) IsManager(ctx context.Context, addr types.Address) (bool, error) {
	n, err := s.db.Collection(colManagers).CountDocuments(ctx, bson.M{"_id": addr.String()})
	if err != nil {
		return false, fmt.Errorf("vesting/mongo: is manager: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ListManagers(ctx context.Context) ([]types.Address, error) {
	cur, err := s.db.Collection(colManagers).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("vesting/mongo: list managers: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]types.Address, 0)
	for cur.Next(ctx) {
		var m managerModel
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		result = append(result, types.Address(m.Address))
	}
	return result, cur.Err()
}

// ==================== Running totals ====================

func (s *Store) Totals(ctx context.Context) (schedule.Totals, error) {
	var m totalsModel
	err := s.db.Collection(colTotals).FindOne(ctx, bson.M{"_id": "totals"}).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return schedule.Totals{}, nil
		}
		return schedule.Totals{}, fmt.Errorf("vesting/mongo: get totals: %w", err)
	}
	return fromTotalsModel(&m)
}

func (s *Store) SetTotals(ctx context.Context, t schedule.Totals) error {
	_, err := s.db.Collection(colTotals).UpdateOne(ctx,
		bson.M{"_id": "totals"},
		bson.M{"$set": bson.M{
			"total_vested":  t.TotalVested.String(),
			"total_claimed": t.TotalClaimed.String(),
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("vesting/mongo: set totals: %w", err)
	}
	return nil
}

// ==================== Event stream ====================

func (s *Store) AppendEvent(ctx context.Context, e *event.Event) error {
	seq, err := s.nextSeq(ctx, colEvents)
	if err != nil {
		return err
	}
	if _, err := s.db.Collection(colEvents).InsertOne(ctx, toEventModel(e, seq)); err != nil {
		return fmt.Errorf("vesting/mongo: append event: %w", err)
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	filter := bson.M{}
	if opts.Kind != "" {
		filter["kind"] = string(opts.Kind)
	}

	q := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	if opts.Limit > 0 {
		q = q.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.SetSkip(int64(opts.Offset))
	}

	cur, err := s.db.Collection(colEvents).Find(ctx, filter, q)
	if err != nil {
		return nil, fmt.Errorf("vesting/mongo: list events: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*event.Event, 0)
	for cur.Next(ctx) {
		var m eventModel
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		e, err := fromEventModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, cur.Err()
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
