package timesync

import (
	"time"

	"weatherunit-go/types"
)

// -----------------------------------------------------------------------------
// Time synchronizer
//
// Owns the TimeSnapshot. Syncs from the network source when the link is up
// and a sync is due; between syncs the wall clock advances from the local
// monotonic clock, so displayed time keeps moving while disconnected. A
// failed sync leaves the previous snapshot untouched.
// -----------------------------------------------------------------------------

// TimeSource fetches authoritative UTC epoch seconds. Implementations own
// their timeout; Fetch must return within it.
type TimeSource interface {
	Fetch() (int64, error)
}

// failedSyncRetry is how soon a failed attempt is retried, instead of
// waiting out the whole sync interval.
const failedSyncRetry = time.Minute

type Synchronizer struct {
	src       TimeSource
	utcOffset int64
	interval  time.Duration

	source    types.TimeSource
	baseEpoch int64     // wall clock at baseAt
	baseAt    time.Time // local anchor for advancing between syncs
	syncedAt  time.Time // local time of last successful sync or manual set
	nextSync  time.Time // zero means due now
}

func New(src TimeSource, cfg types.TimeConfig) *Synchronizer {
	return &Synchronizer{
		src:       src,
		utcOffset: int64(cfg.UTCOffsetS),
		interval:  time.Duration(cfg.SyncIntervalS) * time.Second,
	}
}

// MarkDue forces the next MaybeSync to attempt immediately. Called on every
// transition into Connected.
func (s *Synchronizer) MarkDue() { s.nextSync = time.Time{} }

// MaybeSync attempts a sync when the link is up and one is due. Returns
// whether the snapshot was updated. Failures are silent: the previous
// snapshot stays and the attempt is rescheduled.
func (s *Synchronizer) MaybeSync(link types.LinkState, now time.Time) bool {
	if s.src == nil || link.Phase != types.LinkConnected {
		return false
	}
	if !s.nextSync.IsZero() && now.Before(s.nextSync) {
		return false
	}
	epoch, err := s.src.Fetch()
	if err != nil {
		println("Info: time sync failed:", err.Error())
		s.nextSync = now.Add(failedSyncRetry)
		return false
	}
	s.baseEpoch = epoch + s.utcOffset
	s.baseAt = now
	s.syncedAt = now
	s.source = types.TimeNetworkSynced
	s.nextSync = now.Add(s.interval)
	println("Info: time synced")
	return true
}

// SetManual unconditionally overwrites the clock. Always available, link or
// no link; this is the fallback when the unit has no wireless transport.
func (s *Synchronizer) SetManual(epochSeconds int64, now time.Time) types.TimeSnapshot {
	s.baseEpoch = epochSeconds
	s.baseAt = now
	s.syncedAt = now
	s.source = types.TimeManuallySet
	return s.Current(now)
}

// Current returns the snapshot, advanced from the local clock since the
// last sync. Read-only; callers get a copy.
func (s *Synchronizer) Current(now time.Time) types.TimeSnapshot {
	if s.source == types.TimeUnset {
		return types.TimeSnapshot{Source: types.TimeUnset}
	}
	return types.TimeSnapshot{
		EpochSeconds:  s.baseEpoch + int64(now.Sub(s.baseAt)/time.Second),
		Source:        s.source,
		SinceLastSync: int64(now.Sub(s.syncedAt) / time.Second),
	}
}
