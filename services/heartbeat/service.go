package heartbeat

import (
	"context"
	"time"

	"weatherunit-go/bus"
	"weatherunit-go/x/timex"
)

var (
	topicConfig = bus.Topic{"config", "heartbeat"}
	topicStatus = bus.Topic{"status", "heartbeat"}
)

// Service emits a periodic liveness beat on the bus and to the log. The
// retained status message carries the beat count, so late subscribers can
// tell roughly how long the unit has been up.
type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	beats := 0
	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case t := <-tick.C:
			beats++
			println("Info:", t.Format("15:04:05"), "heartbeat", beats)
			conn.Publish(conn.NewMessage(topicStatus, map[string]any{"beats": beats, "ts_ms": timex.NowMs()}, true))
		case msg := <-cfgSub.Channel():
			// Change tick interval if needed
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval_s"]; ok {
					if interval, ok := iv.(float64); ok && interval >= 1 {
						tick.Reset(time.Duration(interval) * time.Second)
						println("Info: heartbeat interval set to", int(interval), "seconds")
					}
				}
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
