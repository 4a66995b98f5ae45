// bus_test.go
package bus

import (
	"testing"
	"time"
)

func expectPayload(t *testing.T, s *Subscription, want any) {
	t.Helper()
	select {
	case got := <-s.Channel():
		if got.Payload != want {
			t.Errorf("expected payload %v, got %v", want, got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for %v", want)
	}
}

func expectNoMessage(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case got := <-s.Channel():
		t.Fatalf("unexpected message: %v", got.Payload)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("link", "state"))
	conn.Publish(conn.NewMessage(T("link", "state"), "connected", false))

	expectPayload(t, sub, "connected")
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("time", "state"), "network", true))

	// Late subscriber still sees the retained value.
	sub := conn.Subscribe(T("time", "state"))
	expectPayload(t, sub, "network")
}

func TestRetainedClear(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("time", "state"), "manual", true))
	conn.Publish(conn.NewMessage(T("time", "state"), nil, true))

	sub := conn.Subscribe(T("time", "state"))
	expectNoMessage(t, sub)
}

func TestWildcardSingleLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	s1 := c.Subscribe(T("sensor", WildOne, "value"))
	s2 := c.Subscribe(T("sensor", "temperature", "value"))
	sNo := c.Subscribe(T("sensor", WildOne, "state"))

	c.Publish(b.NewMessage(T("sensor", "temperature", "value"), 215, false))

	expectPayload(t, s1, 215)
	expectPayload(t, s2, 215)
	expectNoMessage(t, sNo)

	c.Publish(b.NewMessage(T("sensor", "humidity", "value"), 480, false))
	expectPayload(t, s1, 480)
	expectNoMessage(t, s2)
}

func TestWildcardMultiLevel(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	sAll := c.Subscribe(T(WildRest))
	sLink := c.Subscribe(T("link", WildRest))
	sExact := c.Subscribe(T("link"))

	c.Publish(b.NewMessage(T("link"), "p1", false))
	expectPayload(t, sAll, "p1")
	expectPayload(t, sExact, "p1")
	expectNoMessage(t, sLink)

	c.Publish(b.NewMessage(T("link", "state", "phase"), "p2", false))
	expectPayload(t, sAll, "p2")
	expectPayload(t, sLink, "p2")
	expectNoMessage(t, sExact)
}

func TestWildcardRetainedDelivery(t *testing.T) {
	b := NewBus(16)
	c := b.NewConnection("test")

	c.Publish(b.NewMessage(T("sensor", "temperature", "value"), 210, true))
	c.Publish(b.NewMessage(T("sensor", "humidity", "value"), 500, true))

	sub := c.Subscribe(T("sensor", WildOne, "value"))

	got := map[any]bool{}
	for i := 0; i < 2; i++ {
		select {
		case m := <-sub.Channel():
			got[m.Payload] = true
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for retained messages")
		}
	}
	if !got[210] || !got[500] {
		t.Errorf("missing retained payloads: %v", got)
	}
}

func TestIntTokens(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")

	sub := c.Subscribe(T("button", 2, "event"))
	c.Publish(b.NewMessage(T("button", 2, "event"), "pressed", false))
	expectPayload(t, sub, "pressed")
}

func TestReply(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")

	rsub := c.Subscribe(T("reply", "console", 1))
	req := &Message{Topic: T("cmd", "status"), ReplyTo: T("reply", "console", 1)}
	c.Reply(req, "ok", false)
	expectPayload(t, rsub, "ok")
}

func TestQueueDropsOldest(t *testing.T) {
	b := NewBus(1)
	c := b.NewConnection("test")

	sub := c.Subscribe(T("x"))
	c.Publish(b.NewMessage(T("x"), 1, false))
	c.Publish(b.NewMessage(T("x"), 2, false))

	expectPayload(t, sub, 2)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus(4)
	c := b.NewConnection("test")

	sub := c.Subscribe(T("y"))
	sub.Unsubscribe()
	c.Publish(b.NewMessage(T("y"), "gone", false))

	select {
	case m, ok := <-sub.Channel():
		if ok {
			t.Fatalf("unexpected delivery after unsubscribe: %v", m.Payload)
		}
	case <-time.After(20 * time.Millisecond):
	}
}
