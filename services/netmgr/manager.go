package netmgr

import (
	"time"

	"weatherunit-go/errcode"
	"weatherunit-go/types"
)

// -----------------------------------------------------------------------------
// Connectivity manager
//
// State machine over types.LinkState. One profile in flight at any instant;
// profiles are tried in strictly ascending priority order with a bounded
// retry count each, then a full-cycle backoff before the list is retried
// from the top. Step never blocks: each call either completes one
// transition or returns with the attempt still pending.
// -----------------------------------------------------------------------------

// Event tells the tick loop what just happened, so dependents (time sync)
// can react on the same tick.
type Event uint8

const (
	EventNone Event = iota
	EventConnected
	EventLost
)

type Manager struct {
	tr       Transport
	profiles []types.NetworkProfile // ascending priority, immutable

	maxAttempts    int
	attemptTimeout time.Duration
	backoff        time.Duration
	keepAlive      time.Duration

	state         types.LinkState
	idx           int       // profile being attempted
	deadline      time.Time // current attempt expiry
	retryAt       time.Time // gate for starting a new cycle
	nextKeepAlive time.Time
}

// New builds a manager. Profiles must already be sorted by ascending
// priority (config.Load guarantees this).
func New(tr Transport, cfg types.WifiConfig) *Manager {
	return &Manager{
		tr:             tr,
		profiles:       cfg.Networks,
		maxAttempts:    cfg.MaxAttempts,
		attemptTimeout: time.Duration(cfg.AttemptTimeoutS) * time.Second,
		backoff:        time.Duration(cfg.BackoffS) * time.Second,
		keepAlive:      time.Duration(cfg.KeepAliveS) * time.Second,
	}
}

// Status is a non-blocking read with no side effects.
func (m *Manager) Status() types.LinkState { return m.state }

// ForceReconnect cancels any in-flight attempt and restarts the cycle on
// the next Step.
func (m *Manager) ForceReconnect(now time.Time) {
	m.tr.Disconnect()
	m.state = types.LinkState{Phase: types.LinkDisconnected}
	m.retryAt = time.Time{}
}

// Step advances the state machine by at most one transition.
func (m *Manager) Step(now time.Time) Event {
	switch m.state.Phase {
	case types.LinkDisconnected:
		if len(m.profiles) == 0 {
			return EventNone
		}
		if !m.retryAt.IsZero() && now.Before(m.retryAt) {
			return EventNone
		}
		m.startCycle(now)

	case types.LinkConnecting:
		a := m.tr.Poll(now)
		switch a.State {
		case PollSuccess:
			m.state = types.LinkState{
				Phase:     types.LinkConnected,
				Profile:   m.profiles[m.idx],
				SignalDBm: a.SignalDBm,
				IP:        a.IP,
			}
			m.nextKeepAlive = now.Add(m.keepAlive)
			println("Info: wifi connected to", m.state.Profile.SSID)
			return EventConnected
		case PollFailure:
			m.failAttempt(now, a.Reason)
		default:
			if now.After(m.deadline) {
				m.tr.Disconnect()
				m.failAttempt(now, errcode.Timeout)
			}
		}

	case types.LinkConnected:
		if now.Before(m.nextKeepAlive) {
			return EventNone
		}
		if m.tr.LinkUp(now) {
			m.nextKeepAlive = now.Add(m.keepAlive)
			return EventNone
		}
		println("Info: wifi link lost, reconnecting")
		m.tr.Disconnect()
		m.state = types.LinkState{Phase: types.LinkDisconnected}
		m.retryAt = time.Time{} // fresh cycle immediately
		return EventLost

	case types.LinkFailed:
		// Failed is observable for one tick, then the backoff gate holds
		// the machine in Disconnected until the list is retried.
		m.state = types.LinkState{Phase: types.LinkDisconnected}
	}
	return EventNone
}

func (m *Manager) startCycle(now time.Time) {
	m.idx = 0
	m.beginAttempt(now, 1)
}

func (m *Manager) beginAttempt(now time.Time, attempt int) {
	p := m.profiles[m.idx]
	m.state = types.LinkState{
		Phase:   types.LinkConnecting,
		Profile: p,
		Attempt: attempt,
	}
	m.deadline = now.Add(m.attemptTimeout)
	m.tr.BeginConnect(p)
}

// failAttempt applies the retry policy: bounded attempts per profile, then
// the next profile, then a full-cycle backoff.
func (m *Manager) failAttempt(now time.Time, reason errcode.Code) {
	if m.state.Attempt < m.maxAttempts {
		m.beginAttempt(now, m.state.Attempt+1)
		return
	}
	if m.idx+1 < len(m.profiles) {
		m.idx++
		m.beginAttempt(now, 1)
		return
	}
	println("Info: all networks exhausted:", string(reason))
	m.state = types.LinkState{
		Phase:   types.LinkFailed,
		Profile: m.profiles[m.idx],
		Reason:  reason,
	}
	m.retryAt = now.Add(m.backoff)
}
