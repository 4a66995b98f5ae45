package netmgr

import (
	"time"

	"weatherunit-go/errcode"
	"weatherunit-go/types"
)

// -----------------------------------------------------------------------------
// Transport contract
//
// A Transport owns the single in-flight connection attempt. The manager
// guarantees it never begins a second attempt before the first resolves, so
// no attempt handle is needed: Poll always refers to the latest BeginConnect.
// Every method must return promptly; anything slow happens inside the
// transport on its own goroutine or in per-call bounded steps.
// -----------------------------------------------------------------------------

type PollState uint8

const (
	PollPending PollState = iota
	PollSuccess
	PollFailure
)

// Attempt is the observable state of the in-flight connection attempt.
type Attempt struct {
	State     PollState
	SignalDBm int          // valid on Success, 0 if unknown
	IP        string       // valid on Success, may be empty
	Reason    errcode.Code // valid on Failure
}

func Pending() Attempt { return Attempt{State: PollPending} }

func Failure(reason errcode.Code) Attempt { return Attempt{State: PollFailure, Reason: reason} }

type Transport interface {
	// BeginConnect starts a fresh attempt, discarding any previous one.
	BeginConnect(profile types.NetworkProfile)
	// Poll advances the attempt if needed and reports its state.
	Poll(now time.Time) Attempt
	// LinkUp reports whether an established link still looks alive.
	// Called at the keep-alive cadence while Connected.
	LinkUp(now time.Time) bool
	// Disconnect tears down the link or cancels the in-flight attempt.
	Disconnect()
}

// -----------------------------------------------------------------------------
// Null transport
// -----------------------------------------------------------------------------

// NullTransport is used when no wireless hardware was detected. Every
// attempt fails immediately; the unit runs offline indefinitely.
type NullTransport struct{}

func (NullTransport) BeginConnect(types.NetworkProfile) {}
func (NullTransport) Poll(time.Time) Attempt            { return Failure(errcode.NoTransport) }
func (NullTransport) LinkUp(time.Time) bool             { return false }
func (NullTransport) Disconnect()                       {}
