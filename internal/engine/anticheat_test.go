package engine

import (
	"testing"
	"time"
)

func TestAntiCheatWarnsOnceOnRapidInput(t *testing.T) {
	a := NewAntiCheat(AntiCheatConfig{})
	t0 := time.Now()
	warns := 0
	for i := 0; i < 20; i++ {
		if a.RecordKeystroke(t0.Add(time.Duration(i) * 5 * time.Millisecond)) {
			warns++
		}
	}
	if warns != 1 {
		t.Fatalf("expected exactly one warning, got %d", warns)
	}
	if a.SuspiciousCount() < 10 {
		t.Fatalf("expected suspicious counter to reach threshold, got %d", a.SuspiciousCount())
	}
}

func TestAntiCheatIgnoresHumanPace(t *testing.T) {
	a := NewAntiCheat(AntiCheatConfig{})
	t0 := time.Now()
	for i := 0; i < 50; i++ {
		if a.RecordKeystroke(t0.Add(time.Duration(i) * 150 * time.Millisecond)) {
			t.Fatalf("warning fired for human-paced input")
		}
	}
	if a.SuspiciousCount() != 0 {
		t.Fatalf("expected no suspicious events, got %d", a.SuspiciousCount())
	}
	flagged, _ := a.Evaluate(50, 50*150*time.Millisecond)
	if flagged {
		t.Fatalf("human-paced session must not be flagged")
	}
}

func TestAntiCheatIntervalWindowBounded(t *testing.T) {
	a := NewAntiCheat(AntiCheatConfig{IntervalWindow: 20})
	t0 := time.Now()
	for i := 0; i < 100; i++ {
		a.RecordKeystroke(t0.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	if got := len(a.Intervals()); got != 20 {
		t.Fatalf("expected 20 retained intervals, got %d", got)
	}
}

func TestAntiCheatFlagsThroughput(t *testing.T) {
	a := NewAntiCheat(AntiCheatConfig{})
	// 200 chars in 5 seconds is 40 chars/s: beyond any human.
	flagged, reason := a.Evaluate(200, 5*time.Second)
	if !flagged {
		t.Fatalf("expected throughput flag")
	}
	if reason == "" {
		t.Fatalf("expected a contributing reason")
	}
}

func TestAntiCheatFlagsShortSession(t *testing.T) {
	a := NewAntiCheat(AntiCheatConfig{})
	flagged, _ := a.Evaluate(10, 2*time.Second)
	if !flagged {
		t.Fatalf("sessions under the minimum duration must be flagged")
	}
}

func TestAntiCheatReset(t *testing.T) {
	a := NewAntiCheat(AntiCheatConfig{})
	t0 := time.Now()
	for i := 0; i < 30; i++ {
		a.RecordKeystroke(t0.Add(time.Duration(i) * 5 * time.Millisecond))
	}
	a.Reset()
	if a.SuspiciousCount() != 0 || len(a.Intervals()) != 0 {
		t.Fatalf("expected counters cleared by reset")
	}
	// The one-time warning re-arms after reset.
	warns := 0
	for i := 0; i < 20; i++ {
		if a.RecordKeystroke(t0.Add(time.Hour + time.Duration(i)*5*time.Millisecond)) {
			warns++
		}
	}
	if warns != 1 {
		t.Fatalf("expected warning to re-arm after reset, got %d", warns)
	}
}
