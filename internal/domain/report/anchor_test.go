package report

import (
	"testing"
	"time"
)

func TestComputeNextSend_BeforeFirstAnchor(t *testing.T) {
	start := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	got, err := ComputeNextSend(start, start.Add(12*time.Hour), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := start.Add(24 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestComputeNextSend_NowBeforeStart(t *testing.T) {
	start := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	got, err := ComputeNextSend(start, start.Add(-3*time.Hour), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := start.Add(24 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestComputeNextSend_MidInterval(t *testing.T) {
	start := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	got, err := ComputeNextSend(start, start.Add(29*time.Hour+30*time.Minute), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := start.Add(30 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestComputeNextSend_ExactlyOnAnchorSkipsForward(t *testing.T) {
	start := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

	// An anchor equal to now is treated as consumed.
	got, err := ComputeNextSend(start, start.Add(30*time.Hour), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := start.Add(36 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("want %s, got %s", want, got)
	}

	// Same at the first anchor itself.
	got, err = ComputeNextSend(start, start.Add(24*time.Hour), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = start.Add(30 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestComputeNextSend_CustomInterval(t *testing.T) {
	start := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	got, err := ComputeNextSend(start, start.Add(26*time.Hour), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := start.Add(36 * time.Hour)
	if !got.Equal(want) {
		t.Fatalf("want %s, got %s", want, got)
	}
}

func TestComputeNextSend_InvalidInputs(t *testing.T) {
	start := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)

	if _, err := ComputeNextSend(time.Time{}, start, 6); err != ErrInvalidStartTime {
		t.Fatalf("want ErrInvalidStartTime, got %v", err)
	}
	if _, err := ComputeNextSend(start, start, 0); err != ErrInvalidInterval {
		t.Fatalf("want ErrInvalidInterval, got %v", err)
	}
	if _, err := ComputeNextSend(start, start, -4); err != ErrInvalidInterval {
		t.Fatalf("want ErrInvalidInterval, got %v", err)
	}
}

// The result must always be strictly after now and on the
// start+24h + k*interval lattice.
func TestComputeNextSend_LatticeProperty(t *testing.T) {
	start := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	const intervalHours = 6
	interval := time.Duration(intervalHours) * time.Hour
	firstAnchor := start.Add(24 * time.Hour)

	for offset := -6 * time.Hour; offset <= 96*time.Hour; offset += 17 * time.Minute {
		now := start.Add(offset)
		got, err := ComputeNextSend(start, now, intervalHours)
		if err != nil {
			t.Fatalf("unexpected error at offset %s: %v", offset, err)
		}
		if !got.After(now) {
			t.Fatalf("result %s not strictly after now %s", got, now)
		}
		sinceFirst := got.Sub(firstAnchor)
		if sinceFirst < 0 || sinceFirst%interval != 0 {
			t.Fatalf("result %s not on anchor lattice (offset from first anchor %s)", got, sinceFirst)
		}
	}
}
