package sensors

import (
	"errors"
	"time"

	"weatherunit-go/types"
)

// -----------------------------------------------------------------------------
// Environmental sensor polling
//
// Polls every fitted sensor at a fixed cadence without blocking the main
// loop: trigger on one tick, collect on a later one once the conversion
// hint has elapsed. The last good snapshot is retained across failures so
// the display can show it with a staleness marker instead of going blank.
// -----------------------------------------------------------------------------

// ErrNotReady means a conversion is still in progress; try Collect again
// next tick.
var ErrNotReady = errors.New("sensors: not ready")

// Reading is one source's contribution to the merged snapshot. A source
// sets only the fields it owns.
type Reading struct {
	DeciCelsius int32
	HasTemp     bool
	DeciRH      int32
	HasRH       bool
	PressureDPa int32
	HasPressure bool
}

// Source is one measurement device. Trigger starts a conversion and must
// not block; Collect returns ErrNotReady until the conversion completes.
type Source interface {
	Name() string
	Trigger() error
	Hint() time.Duration
	Collect() (Reading, error)
}

type pollPhase uint8

const (
	pollIdle pollPhase = iota
	pollConverting
)

// Poller drives all sources through trigger/collect rounds and merges
// their readings.
type Poller struct {
	sources  []Source
	interval time.Duration

	phase     pollPhase
	collectAt time.Time
	nextRound time.Time
	waiting   []bool // per source, still owed a Collect this round

	snapshot types.SensorSnapshot
	have     bool
	lastGood time.Time
}

func NewPoller(sources []Source, cfg types.SensorConfig) *Poller {
	interval := time.Duration(cfg.PollIntervalS) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		sources:  sources,
		interval: interval,
		waiting:  make([]bool, len(sources)),
	}
}

// Step advances the poll cycle by one tick. Returns whether the snapshot
// was refreshed. A failing source is logged and skipped for the round;
// its previous values stay in the snapshot.
func (p *Poller) Step(now time.Time) bool {
	if len(p.sources) == 0 {
		return false
	}
	switch p.phase {
	case pollIdle:
		if now.Before(p.nextRound) {
			return false
		}
		p.beginRound(now)
		return false
	case pollConverting:
		if now.Before(p.collectAt) {
			return false
		}
		return p.collectRound(now)
	}
	return false
}

func (p *Poller) beginRound(now time.Time) {
	hint := time.Duration(0)
	for i, src := range p.sources {
		if err := src.Trigger(); err != nil {
			println("Info: sensor trigger failed:", src.Name(), err.Error())
			p.waiting[i] = false
			continue
		}
		p.waiting[i] = true
		if h := src.Hint(); h > hint {
			hint = h
		}
	}
	p.phase = pollConverting
	p.collectAt = now.Add(hint)
	p.nextRound = now.Add(p.interval)
}

func (p *Poller) collectRound(now time.Time) bool {
	stillWaiting := false
	updated := false
	for i, src := range p.sources {
		if !p.waiting[i] {
			continue
		}
		r, err := src.Collect()
		if err == ErrNotReady {
			stillWaiting = true
			continue
		}
		p.waiting[i] = false
		if err != nil {
			println("Info: sensor read failed:", src.Name(), err.Error())
			continue
		}
		p.merge(r)
		updated = true
	}
	if updated {
		p.have = true
		p.lastGood = now
	}
	if !stillWaiting {
		p.phase = pollIdle
	}
	return updated
}

func (p *Poller) merge(r Reading) {
	if r.HasTemp {
		p.snapshot.DeciCelsius = r.DeciCelsius
	}
	if r.HasRH {
		p.snapshot.DeciRH = r.DeciRH
	}
	if r.HasPressure {
		p.snapshot.PressureDPa = r.PressureDPa
	}
}

// Snapshot returns the last merged readings and whether any exist yet.
func (p *Poller) Snapshot() (types.SensorSnapshot, bool) {
	return p.snapshot, p.have
}

// Age reports how old the last good reading is. Meaningless before the
// first one; check the bool from Snapshot.
func (p *Poller) Age(now time.Time) time.Duration {
	if !p.have {
		return 0
	}
	return now.Sub(p.lastGood)
}
