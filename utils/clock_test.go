package utils

import (
	"testing"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

func TestClockRealTime(t *testing.T) {
	clock := NewClock(time.UTC)
	if diff := time.Since(clock.Now()); diff < 0 || diff > time.Second {
		t.Fatalf("real clock drifted by %s", diff)
	}
}

func TestClockSimulated(t *testing.T) {
	clock := NewClock(time.UTC)
	start := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	clock.Simulate(start)

	now := clock.Now()
	if diff := now.Sub(start); diff < 0 || diff > time.Second {
		t.Fatalf("simulated clock reads %s, want about %s", now, start)
	}
}

func TestParseStartTime(t *testing.T) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	got, err := ParseStartTime(w, time.UTC, "2026-08-25T09:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}

	// no seconds
	got, err = ParseStartTime(w, time.UTC, "2026-08-25T09:30")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}

	// natural language
	got, err = ParseStartTime(w, time.UTC, "tomorrow at 10am")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got.IsZero() {
		t.Fatal("natural language input produced a zero time")
	}

	if _, err := ParseStartTime(w, time.UTC, "gibberish"); err == nil {
		t.Fatal("expected an error")
	}
}
