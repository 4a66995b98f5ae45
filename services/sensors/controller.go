package sensors

import (
	"time"

	"weatherunit-go/types"
)

// Controller reads the FM transmitter collaborator's state. The unit only
// observes it; tuning is owned elsewhere.
type Controller interface {
	Name() string
	Snapshot() (types.ControllerSnapshot, error)
}

// ControllerPoller polls the controller at the sensor cadence, retaining
// the last good snapshot across failures. A nil controller means the
// module is not fitted.
type ControllerPoller struct {
	ctrl     Controller
	interval time.Duration
	next     time.Time

	snapshot types.ControllerSnapshot
	have     bool
}

func NewControllerPoller(ctrl Controller, cfg types.SensorConfig) *ControllerPoller {
	interval := time.Duration(cfg.PollIntervalS) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ControllerPoller{ctrl: ctrl, interval: interval}
}

func (cp *ControllerPoller) Step(now time.Time) bool {
	if cp.ctrl == nil || now.Before(cp.next) {
		return false
	}
	cp.next = now.Add(cp.interval)
	snap, err := cp.ctrl.Snapshot()
	if err != nil {
		println("Info: controller read failed:", cp.ctrl.Name(), err.Error())
		return false
	}
	cp.snapshot = snap
	cp.have = true
	return true
}

func (cp *ControllerPoller) Snapshot() (types.ControllerSnapshot, bool) {
	return cp.snapshot, cp.have
}
