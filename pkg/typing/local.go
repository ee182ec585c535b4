package typing

import "time"

// DefaultLocalStop is how long after the last local keystroke a stop
// signal is sent when the UI never clears the typing flag.
const DefaultLocalStop = 10 * time.Second

// LocalAction tells the caller which signal, if any, to publish after a
// local typing-state change.
type LocalAction int

const (
	ActionNone LocalAction = iota
	ActionSignalStart
	ActionSignalStop
)

// LocalNotifier tracks the local user's typing flag. It guarantees at
// most one start signal per continuous typing session and an eventual
// stop signal even if the UI never sets the flag back to false. Like
// Tracker it is single-caller; the auto-stop timer only posts on the
// timeout channel.
type LocalNotifier struct {
	clock    Clock
	window   time.Duration
	active   bool
	timer    Timer
	deadline time.Time
	timeout  chan struct{}
}

// NewLocalNotifier creates a notifier with the given inactivity window.
// A zero window selects DefaultLocalStop.
func NewLocalNotifier(clock Clock, window time.Duration) *LocalNotifier {
	if window <= 0 {
		window = DefaultLocalStop
	}
	return &LocalNotifier{
		clock:   clock,
		window:  window,
		timeout: make(chan struct{}, 1),
	}
}

// AutoStop signals that the inactivity window lapsed. The session loop
// must consume it and call Timeout.
func (n *LocalNotifier) AutoStop() <-chan struct{} { return n.timeout }

// Set updates the local typing flag. Setting true re-arms the inactivity
// timer every time but yields a start signal only on the false-to-true
// edge; setting false yields a stop signal only if a start went out.
func (n *LocalNotifier) Set(isTyping bool) LocalAction {
	if isTyping {
		n.deadline = n.clock.Now().Add(n.window)
		if n.timer == nil {
			n.timer = n.clock.AfterFunc(n.window, func() {
				select {
				case n.timeout <- struct{}{}:
				default:
				}
			})
		} else {
			n.timer.Reset(n.window)
		}
		if n.active {
			return ActionNone
		}
		n.active = true
		return ActionSignalStart
	}
	if !n.active {
		return ActionNone
	}
	n.active = false
	if n.timer != nil {
		n.timer.Stop()
	}
	return ActionSignalStop
}

// Timeout handles a lapsed inactivity timer: the typing flag is cleared
// and a stop signal is due if one is still outstanding. A post from a
// timer that was re-armed after firing is stale and ignored, so a user
// who kept typing never gets a premature stop.
func (n *LocalNotifier) Timeout() LocalAction {
	if !n.active {
		return ActionNone
	}
	if n.clock.Now().Before(n.deadline) {
		return ActionNone
	}
	n.active = false
	return ActionSignalStop
}

// Active reports whether a start signal is outstanding.
func (n *LocalNotifier) Active() bool { return n.active }

// Close cancels the pending auto-stop timer.
func (n *LocalNotifier) Close() {
	if n.timer != nil {
		n.timer.Stop()
	}
}
