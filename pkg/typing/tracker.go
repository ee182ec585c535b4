// Package typing derives ephemeral typing state from independent expiring
// signals: a per-remote-user state machine plus a local-side notifier that
// decides when start/stop signals go out.
package typing

import (
	"time"
)

// DefaultRemoteExpiry is how long a remote user stays in typing state
// without a refreshed start signal before being expired.
const DefaultRemoteExpiry = 15 * time.Second

// typer is one remote user currently typing.
type typer struct {
	lastSeen time.Time
	timer    Timer
}

// Tracker owns the set of currently-typing remote users. It is not safe
// for concurrent use: the session loop is its only caller. Timer
// callbacks never touch tracker state; they post the user id on the
// expiry channel and the session loop applies the expiry.
type Tracker struct {
	clock   Clock
	expiry  time.Duration
	typers  map[int64]*typer
	expired chan int64
}

// NewTracker creates a tracker with the given clock and expiry window.
// A zero expiry selects DefaultRemoteExpiry.
func NewTracker(clock Clock, expiry time.Duration) *Tracker {
	if expiry <= 0 {
		expiry = DefaultRemoteExpiry
	}
	return &Tracker{
		clock:   clock,
		expiry:  expiry,
		typers:  make(map[int64]*typer),
		expired: make(chan int64, 64),
	}
}

// Expired delivers user ids whose typing window lapsed. The session loop
// must consume it and call Expire for each id.
func (t *Tracker) Expired() <-chan int64 { return t.expired }

// OnStart records a typing-start signal from a remote user. The user's
// expiry timer is (re)armed either way. Returns true when this is the
// first currently-typing user, i.e. the aggregate transitioned idle to
// typing.
func (t *Tracker) OnStart(userID int64) bool {
	if ty, ok := t.typers[userID]; ok {
		ty.lastSeen = t.clock.Now()
		ty.timer.Reset(t.expiry)
		return false
	}
	first := len(t.typers) == 0
	ty := &typer{lastSeen: t.clock.Now()}
	ty.timer = t.clock.AfterFunc(t.expiry, func() {
		// runs on the timer goroutine: never mutate state here
		select {
		case t.expired <- userID:
		default:
		}
	})
	t.typers[userID] = ty
	return first
}

// OnStop records an explicit typing-stop signal. Returns true when this
// removed the last typing user, i.e. the aggregate transitioned typing to
// idle. Unknown users are a no-op.
func (t *Tracker) OnStop(userID int64) bool {
	ty, ok := t.typers[userID]
	if !ok {
		return false
	}
	ty.timer.Stop()
	delete(t.typers, userID)
	return len(t.typers) == 0
}

// Expire handles a lapsed timer for a user. The id may already be gone
// when an explicit stop raced the timer, and the post may be stale: a
// start signal processed after the timer fired refreshed lastSeen and
// re-armed the timer, so a still-fresh user is left alone.
func (t *Tracker) Expire(userID int64) bool {
	ty, ok := t.typers[userID]
	if !ok {
		return false
	}
	if t.clock.Now().Sub(ty.lastSeen) < t.expiry {
		return false
	}
	return t.OnStop(userID)
}

// TypingCount returns the number of currently-typing remote users.
func (t *Tracker) TypingCount() int { return len(t.typers) }

// Close cancels every pending timer. No expiry fires into the channel
// once the owning session stops consuming it; late callbacks fall through
// the non-blocking send.
func (t *Tracker) Close() {
	for id, ty := range t.typers {
		ty.timer.Stop()
		delete(t.typers, id)
	}
}
