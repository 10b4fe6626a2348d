// Package sqlite provides a Store backed by SQLite through database/sql
// and the modernc.org/sqlite driver. Suitable for single-process
// deployments and durable test fixtures.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	vesting "github.com/SoftHorizonSolutions/ttn-token-sub000"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/event"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	storeiface "github.com/SoftHorizonSolutions/ttn-token-sub000/store"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// compile-time interface check
var _ storeiface.Store = (*Store)(nil)

// Store implements store.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// New wraps an open database handle. The caller owns opening; Close here
// closes the handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens a SQLite database at path and returns a store over it.
// Foreign keys and a busy timeout are enabled on the connection string.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("vesting/sqlite: open %s: %w", path, err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)
	return New(db), nil
}

// DB returns the underlying handle for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate creates the required tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const timeLayout = time.RFC3339Nano

// ==================== Allocation Store ====================

func (s *Store) CreateAllocation(ctx context.Context, a *allocation.Allocation) error {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO vesting_allocations (beneficiary, amount, revoked, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		a.Beneficiary, a.Amount, boolInt(a.Revoked),
		a.CreatedAt.UTC().Format(timeLayout), a.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id.AllocationID(seq)
	return nil
}

func (s *Store) GetAllocation(ctx context.Context, aid id.AllocationID) (*allocation.Allocation, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, beneficiary, amount, revoked, created_at, updated_at
FROM vesting_allocations WHERE id = ?`, uint64(aid))
	a, err := scanAllocation(row)
	if err != nil {
		if isNoRows(err) {
			return nil, vesting.ErrAllocationNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *Store) ListAllocationsByBeneficiary(ctx context.Context, beneficiary types.Address) ([]*allocation.Allocation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, beneficiary, amount, revoked, created_at, updated_at
FROM vesting_allocations WHERE beneficiary = ? ORDER BY id ASC`, beneficiary)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*allocation.Allocation, 0)
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) UpdateAllocation(ctx context.Context, a *allocation.Allocation) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE vesting_allocations SET amount = ?, revoked = ?, updated_at = ? WHERE id = ?`,
		a.Amount, boolInt(a.Revoked), a.UpdatedAt.UTC().Format(timeLayout), uint64(a.ID),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return vesting.ErrAllocationNotFound
	}
	return nil
}

func (s *Store) CountAllocations(ctx context.Context) (uint64, error) {
	var n uint64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM vesting_allocations`).Scan(&n)
	return n, err
}

// ==================== Airdrop Store ====================

func (s *Store) CreateAirdrop(ctx context.Context, a *allocation.Airdrop) error {
	entries, err := json.Marshal(a.Entries)
	if err != nil {
		return fmt.Errorf("vesting/sqlite: encode airdrop entries: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO vesting_airdrops (caller, entries, created_at, updated_at)
VALUES (?, ?, ?, ?)`,
		a.Caller, string(entries),
		a.CreatedAt.UTC().Format(timeLayout), a.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id.AirdropID(seq)
	return nil
}

func (s *Store) GetAirdrop(ctx context.Context, aid id.AirdropID) (*allocation.Airdrop, error) {
	var (
		a       allocation.Airdrop
		entries string
		created string
		updated string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, caller, entries, created_at, updated_at
FROM vesting_airdrops WHERE id = ?`, uint64(aid)).
		Scan(&a.ID, &a.Caller, &entries, &created, &updated)
	if err != nil {
		if isNoRows(err) {
			return nil, vesting.ErrAirdropNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(entries), &a.Entries); err != nil {
		return nil, fmt.Errorf("vesting/sqlite: decode airdrop entries: %w", err)
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &a, nil
}

// ==================== Schedule Store ====================

func (s *Store) CreateSchedule(ctx context.Context, sc *schedule.Schedule) error {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO vesting_schedules
    (beneficiary, total_amount, released, start_at, cliff_secs, duration_secs, allocation_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.Beneficiary, sc.TotalAmount, sc.Released,
		sc.Start.UTC().Format(timeLayout),
		int64(sc.Cliff/time.Second), int64(sc.Duration/time.Second),
		uint64(sc.AllocationID), string(sc.Status),
		sc.CreatedAt.UTC().Format(timeLayout), sc.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	sc.ID = id.ScheduleID(seq)
	return nil
}

func (s *Store) GetSchedule(ctx context.Context, sid id.ScheduleID) (*schedule.Schedule, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, beneficiary, total_amount, released, start_at, cliff_secs, duration_secs, allocation_id, status, created_at, updated_at
FROM vesting_schedules WHERE id = ?`, uint64(sid))
	sc, err := scanSchedule(row)
	if err != nil {
		if isNoRows(err) {
			return nil, vesting.ErrScheduleNotFound
		}
		return nil, err
	}
	return sc, nil
}

func (s *Store) ListSchedulesByBeneficiary(ctx context.Context, beneficiary types.Address) ([]*schedule.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, beneficiary, total_amount, released, start_at, cliff_secs, duration_secs, allocation_id, status, created_at, updated_at
FROM vesting_schedules WHERE beneficiary = ? ORDER BY id ASC`, beneficiary)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*schedule.Schedule, 0)
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func (s *Store) UpdateSchedule(ctx context.Context, sc *schedule.Schedule) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE vesting_schedules SET released = ?, status = ?, updated_at = ? WHERE id = ?`,
		sc.Released, string(sc.Status), sc.UpdatedAt.UTC().Format(timeLayout), uint64(sc.ID),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return vesting.ErrScheduleNotFound
	}
	return nil
}

func (s *Store) CountSchedules(ctx context.Context) (uint64, error) {
	var n uint64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM vesting_schedules`).Scan(&n)
	return n, err
}

// ==================== Manager registry ====================

func (s *Store) AddManager(ctx context.Context, addr types.Address) error {
	_, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO vesting_managers (address, added_at) VALUES (?, ?)`,
		addr, time.Now().UTC().Format(timeLayout))
	return err
}

func (s *Store) RemoveManager(ctx context.Context, addr types.Address) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM vesting_managers WHERE address = ?`, addr)
	return err
}

func (s *Store) IsManager(ctx context.Context, addr types.Address) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM vesting_managers WHERE address = ?`, addr).Scan(&n)
	return n > 0, err
}

func (s *Store) ListManagers(ctx context.Context) ([]types.Address, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT address FROM vesting_managers ORDER BY address ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]types.Address, 0)
	for rows.Next() {
		var addr types.Address
		if err := rows.Scan(&addr); err != nil {
			return nil, err
		}
		result = append(result, addr)
	}
	return result, rows.Err()
}

// ==================== Running totals ====================

func (s *Store) Totals(ctx context.Context) (schedule.Totals, error) {
	var t schedule.Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT total_vested, total_claimed FROM vesting_totals WHERE id = 1`).
		Scan(&t.TotalVested, &t.TotalClaimed)
	if err != nil {
		if isNoRows(err) {
			return schedule.Totals{}, nil
		}
		return schedule.Totals{}, err
	}
	return t, nil
}

func (s *Store) SetTotals(ctx context.Context, t schedule.Totals) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO vesting_totals (id, total_vested, total_claimed) VALUES (1, ?, ?)
ON CONFLICT (id) DO UPDATE SET total_vested = excluded.total_vested, total_claimed = excluded.total_claimed`,
		t.TotalVested, t.TotalClaimed)
	return err
}

// ==================== Event stream ====================

func (s *Store) AppendEvent(ctx context.Context, e *event.Event) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO vesting_events
    (id, kind, at, caller, beneficiary, allocation_id, schedule_id, airdrop_id, amount, remaining, reason)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Kind), e.At.UTC().Format(timeLayout),
		e.Caller, e.Beneficiary,
		uint64(e.AllocationID), uint64(e.ScheduleID), uint64(e.AirdropID),
		e.Amount, e.Remaining, e.Reason,
	)
	return err
}

func (s *Store) ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error) {
	q := `
SELECT id, kind, at, caller, beneficiary, allocation_id, schedule_id, airdrop_id, amount, remaining, reason
FROM vesting_events`
	args := make([]any, 0, 3)
	if opts.Kind != "" {
		q += ` WHERE kind = ?`
		args = append(args, string(opts.Kind))
	}
	q += ` ORDER BY rowid ASC`
	if opts.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			q += ` OFFSET ?`
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*event.Event, 0)
	for rows.Next() {
		var (
			e  event.Event
			at string
		)
		if err := rows.Scan(
			&e.ID, &e.Kind, &at, &e.Caller, &e.Beneficiary,
			&e.AllocationID, &e.ScheduleID, &e.AirdropID,
			&e.Amount, &e.Remaining, &e.Reason,
		); err != nil {
			return nil, err
		}
		if e.At, err = parseTime(at); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}

// ==================== scan helpers ====================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAllocation(row rowScanner) (*allocation.Allocation, error) {
	var (
		a       allocation.Allocation
		revoked int
		created string
		updated string
	)
	if err := row.Scan(&a.ID, &a.Beneficiary, &a.Amount, &revoked, &created, &updated); err != nil {
		return nil, err
	}
	a.Revoked = revoked != 0

	var err error
	if a.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanSchedule(row rowScanner) (*schedule.Schedule, error) {
	var (
		sc      schedule.Schedule
		start   string
		cliff   int64
		dur     int64
		status  string
		created string
		updated string
	)
	if err := row.Scan(
		&sc.ID, &sc.Beneficiary, &sc.TotalAmount, &sc.Released,
		&start, &cliff, &dur, &sc.AllocationID, &status, &created, &updated,
	); err != nil {
		return nil, err
	}
	sc.Cliff = time.Duration(cliff) * time.Second
	sc.Duration = time.Duration(dur) * time.Second
	sc.Status = schedule.Status(status)

	var err error
	if sc.Start, err = parseTime(start); err != nil {
		return nil, err
	}
	if sc.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if sc.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &sc, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("vesting/sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
