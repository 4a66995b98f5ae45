package netmgr

import (
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers/netlink"

	"weatherunit-go/errcode"
	"weatherunit-go/types"
)

// -----------------------------------------------------------------------------
// Native radio transport
//
// Wraps a netlink driver (cyw43439 on the Pico W). NetConnect blocks, so it
// runs on its own goroutine; Poll inspects the outcome channel. Stale
// outcomes from a cancelled attempt are ignored via a generation counter.
// -----------------------------------------------------------------------------

// Connector is the slice of netlink.Netlinker this transport needs.
type Connector interface {
	NetConnect(params *netlink.ConnectParams) error
	NetDisconnect()
	NetNotify(cb func(netlink.Event))
}

type connectOutcome struct {
	gen int
	err error
}

type NetlinkTransport struct {
	link Connector
	resc chan connectOutcome

	gen      int
	inFlight bool
	up       atomic.Bool
}

func NewNetlinkTransport(link Connector) *NetlinkTransport {
	t := &NetlinkTransport{
		link: link,
		resc: make(chan connectOutcome, 4),
	}
	link.NetNotify(func(ev netlink.Event) {
		switch ev {
		case netlink.EventNetUp:
			t.up.Store(true)
		case netlink.EventNetDown:
			t.up.Store(false)
		}
	})
	return t
}

func (t *NetlinkTransport) BeginConnect(p types.NetworkProfile) {
	t.gen++
	t.inFlight = true
	gen := t.gen
	params := &netlink.ConnectParams{
		Ssid:       p.SSID,
		Passphrase: p.Password,
	}
	go func() {
		err := t.link.NetConnect(params)
		t.resc <- connectOutcome{gen: gen, err: err}
	}()
}

func (t *NetlinkTransport) Poll(now time.Time) Attempt {
	for {
		select {
		case out := <-t.resc:
			if out.gen != t.gen {
				continue // cancelled attempt resolving late
			}
			t.inFlight = false
			if out.err != nil {
				return Failure(errcode.TransientBus)
			}
			t.up.Store(true)
			return Attempt{State: PollSuccess}
		default:
			if t.inFlight {
				return Pending()
			}
			return Failure(errcode.NoTransport)
		}
	}
}

func (t *NetlinkTransport) LinkUp(now time.Time) bool { return t.up.Load() }

func (t *NetlinkTransport) Disconnect() {
	t.gen++ // orphan any in-flight attempt
	t.inFlight = false
	t.up.Store(false)
	t.link.NetDisconnect()
}
