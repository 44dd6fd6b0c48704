package sla

import (
	"testing"
	"time"

	"github.com/facilitas/chamado-service/internal/domain"
)

func TestParseDurationToMinutes(t *testing.T) {
	cases := []struct {
		encoded string
		want    int
	}{
		{"PT3600S", 60},
		{"PT90M", 90},
		{"PT2H", 120},
		{"P1D", 1440},
		{"P3D", 4320},
		{"pt60m", 60},
		{" PT15M ", 15},
		{"garbage", DefaultDurationMinutes},
		{"", DefaultDurationMinutes},
		{"PT", DefaultDurationMinutes},
		{"PTXM", DefaultDurationMinutes},
		{"P-1D", DefaultDurationMinutes},
		{"PT5W", DefaultDurationMinutes},
	}
	for _, tt := range cases {
		if got := ParseDurationToMinutes(tt.encoded); got != tt.want {
			t.Fatalf("ParseDurationToMinutes(%q)=%d, want %d", tt.encoded, got, tt.want)
		}
	}
}

func TestParseDurationToMinutesWithDefault(t *testing.T) {
	cases := []struct {
		encoded  string
		fallback int
		want     int
	}{
		{"PT90M", 15, 90},
		{"garbage", 15, 15},
		{"", 480, 480},
		{"PTXM", 15, 15},
		{"garbage", 0, DefaultDurationMinutes},
		{"garbage", -5, DefaultDurationMinutes},
	}
	for _, tt := range cases {
		if got := ParseDurationToMinutesWithDefault(tt.encoded, tt.fallback); got != tt.want {
			t.Fatalf("ParseDurationToMinutesWithDefault(%q,%d)=%d, want %d",
				tt.encoded, tt.fallback, got, tt.want)
		}
	}
}

func TestEncodeMinutesRoundTrip(t *testing.T) {
	for _, minutes := range []int{0, 1, 30, 60, 90, 1440, 100000} {
		if got := ParseDurationToMinutes(EncodeMinutes(minutes)); got != minutes {
			t.Fatalf("round trip for %d minutes returned %d", minutes, got)
		}
	}
}

func TestParseLegacyClock(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"01:00", 60, true},
		{"00:30", 30, true},
		{"12:45", 765, true},
		{"1:5", 65, true},
		{"25:00", 1500, true},
		{"01:75", 0, false},
		{"PT60M", 0, false},
		{"garbage", 0, false},
	}
	for _, tt := range cases {
		got, ok := ParseLegacyClock(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseLegacyClock(%q)=(%d,%v), want (%d,%v)", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"01:30", "PT90M"},
		{"PT2H", "PT120M"},
		{"P1D", "PT1440M"},
		{"nonsense", "PT60M"},
	}
	for _, tt := range cases {
		if got := NormalizeDuration(tt.raw); got != tt.want {
			t.Fatalf("NormalizeDuration(%q)=%q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPercentageRemaining(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	deadline := createdAt.Add(60 * time.Minute)

	if got := PercentageRemaining(createdAt, deadline, createdAt, domain.TicketStatusOpen); got != 100 {
		t.Fatalf("at creation time got %d, want 100", got)
	}
	got := PercentageRemaining(createdAt, deadline, createdAt.Add(30*time.Minute), domain.TicketStatusOpen)
	if got < 49 || got > 51 {
		t.Fatalf("at half time got %d, want ~50", got)
	}
	if got := PercentageRemaining(createdAt, deadline, createdAt.Add(61*time.Minute), domain.TicketStatusOpen); got != 0 {
		t.Fatalf("past deadline got %d, want 0", got)
	}
	if got := PercentageRemaining(createdAt, deadline, createdAt.Add(2*time.Hour), domain.TicketStatusCompleted); got != 100 {
		t.Fatalf("completed ticket got %d, want 100", got)
	}
	// non-positive window must not divide by zero
	if got := PercentageRemaining(createdAt, createdAt, createdAt, domain.TicketStatusOpen); got != 0 {
		t.Fatalf("zero-length window got %d, want 0", got)
	}
}

func TestPercentageRemainingMonotonic(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	deadline := createdAt.Add(4 * time.Hour)

	prev := 101
	for now := createdAt; !now.After(deadline); now = now.Add(7 * time.Minute) {
		got := PercentageRemaining(createdAt, deadline, now, domain.TicketStatusInProgress)
		if got < 0 || got > 100 {
			t.Fatalf("percentage %d out of bounds at %v", got, now)
		}
		if got > prev {
			t.Fatalf("percentage increased from %d to %d at %v", prev, got, now)
		}
		prev = got
	}
}

func TestFormatRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		deadline time.Time
		want     string
	}{
		{now.Add(90*time.Minute + 5*time.Second), "0d01:30:05"},
		{now.Add(26*time.Hour + 2*time.Minute), "1d02:02:00"},
		{now, ExpiredLabel},
		{now.Add(-time.Second), ExpiredLabel},
	}
	for _, tt := range cases {
		if got := FormatRemaining(tt.deadline, now); got != tt.want {
			t.Fatalf("FormatRemaining(%v)=%q, want %q", tt.deadline, got, tt.want)
		}
	}
}

func TestDeadlineFrom(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if got := DeadlineFrom(now, 90); !got.Equal(now.Add(90 * time.Minute)) {
		t.Fatalf("DeadlineFrom returned %v", got)
	}
}
