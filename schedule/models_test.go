package schedule

import (
	"testing"
	"time"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

func testSchedule(total uint64, cliff, duration time.Duration) *Schedule {
	return &Schedule{
		Beneficiary: "0xabcdef0123456789abcdef0123456789abcdef01",
		TotalAmount: types.NewAmount(total),
		Released:    types.ZeroAmount,
		Start:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Cliff:       cliff,
		Duration:    duration,
		Status:      StatusActive,
	}
}

func TestVestedAt(t *testing.T) {
	s := testSchedule(1000, 100*time.Second, 1000*time.Second)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    uint64
	}{
		{"Before start", -10 * time.Second, 0},
		{"At start", 0, 0},
		{"Just before cliff", 99 * time.Second, 0},
		{"At cliff", 100 * time.Second, 100},
		{"Quarter", 250 * time.Second, 250},
		{"Floors partial second", 333 * time.Second, 333},
		{"Just before end", 999 * time.Second, 999},
		{"At end", 1000 * time.Second, 1000},
		{"After end", 5000 * time.Second, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.VestedAt(s.Start.Add(tt.elapsed))
			if !got.Equal(types.NewAmount(tt.want)) {
				t.Errorf("VestedAt(+%v): got %v, want %d", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestVestedAtSubSecondDuration(t *testing.T) {
	// Below the one-second grain there is no linear window to prorate
	// over: the record must not divide by zero, and everything past the
	// cliff counts as vested.
	s := testSchedule(1000, 0, 500*time.Millisecond)

	got := s.VestedAt(s.Start.Add(100 * time.Millisecond))
	if !got.Equal(types.NewAmount(1000)) {
		t.Errorf("VestedAt: got %v, want 1000", got)
	}
	due := s.ReleasableAt(s.Start.Add(100 * time.Millisecond))
	if !due.Equal(types.NewAmount(1000)) {
		t.Errorf("ReleasableAt: got %v, want 1000", due)
	}
}

func TestVestedAtFloorsIndivisibleTotal(t *testing.T) {
	// 7 tokens over 3 seconds: the curve must round down at every step and
	// still reach the full total at the end.
	s := testSchedule(7, 0, 3*time.Second)

	want := []uint64{0, 2, 4, 7}
	for i, w := range want {
		got := s.VestedAt(s.Start.Add(time.Duration(i) * time.Second))
		if !got.Equal(types.NewAmount(w)) {
			t.Errorf("second %d: got %v, want %d", i, got, w)
		}
	}
}

func TestVestedAtNoCliff(t *testing.T) {
	s := testSchedule(1000, 0, 1000*time.Second)
	if got := s.VestedAt(s.Start.Add(time.Second)); !got.Equal(types.NewAmount(1)) {
		t.Errorf("got %v, want 1", got)
	}
}

func TestReleasableAt(t *testing.T) {
	s := testSchedule(1000, 100*time.Second, 1000*time.Second)
	s.Released = types.NewAmount(200)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    uint64
	}{
		{"Before cliff nothing due", 50 * time.Second, 0},
		{"Vested below released clamps to zero", 150 * time.Second, 0},
		{"Exactly caught up", 200 * time.Second, 0},
		{"Past released", 500 * time.Second, 300},
		{"Fully vested", 2000 * time.Second, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ReleasableAt(s.Start.Add(tt.elapsed))
			if !got.Equal(types.NewAmount(tt.want)) {
				t.Errorf("ReleasableAt(+%v): got %v, want %d", tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestReleasableAtTerminal(t *testing.T) {
	for _, status := range []Status{StatusCompleted, StatusRevoked} {
		s := testSchedule(1000, 0, 1000*time.Second)
		s.Status = status
		got := s.ReleasableAt(s.Start.Add(2000 * time.Second))
		if !got.IsZero() {
			t.Errorf("status %s: got %v, want 0", status, got)
		}
	}
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusActive, false},
		{StatusCompleted, true},
		{StatusRevoked, true},
	}

	for _, tt := range tests {
		s := &Schedule{Status: tt.status}
		if got := s.Terminal(); got != tt.want {
			t.Errorf("Terminal(%s): got %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestUnreleased(t *testing.T) {
	s := testSchedule(1000, 0, time.Second)
	s.Released = types.NewAmount(400)
	if got := s.Unreleased(); !got.Equal(types.NewAmount(600)) {
		t.Errorf("got %v, want 600", got)
	}
}

func TestPhaseAt(t *testing.T) {
	s := testSchedule(1000, 100*time.Second, 1000*time.Second)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    Phase
	}{
		{"Before cliff", 10 * time.Second, PhasePending},
		{"At cliff", 100 * time.Second, PhaseVesting},
		{"Mid curve", 500 * time.Second, PhaseVesting},
		{"At end", 1000 * time.Second, PhaseFullyVested},
		{"Past end", 9999 * time.Second, PhaseFullyVested},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.PhaseAt(s.Start.Add(tt.elapsed)); got != tt.want {
				t.Errorf("PhaseAt(+%v): got %s, want %s", tt.elapsed, got, tt.want)
			}
		})
	}
}
