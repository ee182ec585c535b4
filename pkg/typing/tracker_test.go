package typing

import (
	"testing"
	"time"
)

func TestAggregateEdges(t *testing.T) {
	tr := NewTracker(newFakeClock(), 15*time.Second)
	defer tr.Close()

	if !tr.OnStart(1) {
		t.Fatalf("first typer did not raise the aggregate")
	}
	if tr.OnStart(2) {
		t.Fatalf("second typer raised the aggregate again")
	}
	if tr.OnStart(1) {
		t.Fatalf("refresh raised the aggregate")
	}
	if tr.TypingCount() != 2 {
		t.Fatalf("count = %d, want 2", tr.TypingCount())
	}

	if tr.OnStop(1) {
		t.Fatalf("non-last stop lowered the aggregate")
	}
	if !tr.OnStop(2) {
		t.Fatalf("last stop did not lower the aggregate")
	}
	if tr.OnStop(9) {
		t.Fatalf("unknown user stop lowered the aggregate")
	}
}

func TestExpiryFiresAfterWindow(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock, 15*time.Second)
	defer tr.Close()

	tr.OnStart(1)
	clock.advance(14 * time.Second)
	select {
	case id := <-tr.Expired():
		t.Fatalf("premature expiry of %d", id)
	default:
	}

	clock.advance(2 * time.Second)
	select {
	case id := <-tr.Expired():
		if id != 1 {
			t.Fatalf("expired id = %d", id)
		}
	default:
		t.Fatalf("no expiry after window")
	}
	if !tr.Expire(1) {
		t.Fatalf("expire did not lower the aggregate")
	}
	if tr.TypingCount() != 0 {
		t.Fatalf("typer still tracked after expiry")
	}
}

func TestRefreshExtendsWindow(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock, 15*time.Second)
	defer tr.Close()

	tr.OnStart(1)
	clock.advance(10 * time.Second)
	tr.OnStart(1) // refresh
	clock.advance(10 * time.Second)
	select {
	case <-tr.Expired():
		t.Fatalf("expired despite refresh")
	default:
	}
	clock.advance(6 * time.Second)
	select {
	case <-tr.Expired():
	default:
		t.Fatalf("no expiry after refreshed window lapsed")
	}
}

func TestExplicitStopBeatsTimer(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock, 15*time.Second)
	defer tr.Close()

	tr.OnStart(1)
	tr.OnStop(1)
	clock.advance(20 * time.Second)
	select {
	case <-tr.Expired():
		t.Fatalf("stopped typer still expired")
	default:
	}
	// a raced expiry for a gone user must be a no-op
	if tr.Expire(1) {
		t.Fatalf("expire of absent user lowered the aggregate")
	}
}

func TestZeroExpiryUsesDefault(t *testing.T) {
	tr := NewTracker(newFakeClock(), 0)
	defer tr.Close()
	if tr.expiry != DefaultRemoteExpiry {
		t.Fatalf("expiry = %v", tr.expiry)
	}
}

func TestStaleExpiryIgnoredAfterRefresh(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock, 15*time.Second)
	defer tr.Close()

	tr.OnStart(1)
	clock.advance(16 * time.Second) // timer fires, posts user 1

	// the refresh lands before the loop drains the expiry channel
	if tr.OnStart(1) {
		t.Fatalf("refresh of a tracked user raised the aggregate")
	}
	select {
	case id := <-tr.Expired():
		if tr.Expire(id) {
			t.Fatalf("stale expiry stopped a refreshed user")
		}
	default:
		t.Fatalf("no pending expiry to drain")
	}
	if tr.TypingCount() != 1 {
		t.Fatalf("refreshed user evicted, count = %d", tr.TypingCount())
	}

	// the re-armed timer still expires once the user goes quiet
	clock.advance(16 * time.Second)
	select {
	case id := <-tr.Expired():
		if !tr.Expire(id) {
			t.Fatalf("quiet user not expired")
		}
	default:
		t.Fatalf("re-armed timer never fired")
	}
}

func TestCloseCancelsPendingTimers(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock, 15*time.Second)

	tr.OnStart(1)
	tr.OnStart(2)
	tr.Close()
	if tr.TypingCount() != 0 {
		t.Fatalf("count = %d after close", tr.TypingCount())
	}

	clock.advance(time.Minute)
	select {
	case id := <-tr.Expired():
		t.Fatalf("timer for %d fired after close", id)
	default:
	}
}
