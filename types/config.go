package types

// ---- Boot configuration ----
//
// Read once at boot from the embedded per-board JSON, validated, then
// immutable. The core never writes configuration back.

type WifiConfig struct {
	Enabled         bool             `json:"enabled"`
	Networks        []NetworkProfile `json:"-"`
	MaxAttempts     int              `json:"max_attempts"`
	AttemptTimeoutS int              `json:"attempt_timeout_s"`
	BackoffS        int              `json:"backoff_s"`
	KeepAliveS      int              `json:"keepalive_s"`
}

type TimeConfig struct {
	UTCOffsetS    int    `json:"utc_offset_s"`
	SyncIntervalS int    `json:"sync_interval_s"`
	NTPServer     string `json:"ntp_server"`
}

type ButtonConfig struct {
	DebounceTicks int `json:"debounce_ticks"`
	// Pin numbers indexed by ButtonUp..ButtonBack.
	Pins [ButtonCount]int `json:"-"`
}

type DisplayConfig struct {
	StaleAfterS int      `json:"stale_after_s"`
	Cycle       []Screen `json:"-"`
}

type SensorConfig struct {
	PollIntervalS int            `json:"poll_interval_s"`
	I2CAddrs      map[string]int `json:"-"` // device name -> 7-bit address
}

type HeartbeatConfig struct {
	IntervalS int `json:"interval_s"`
}

type Config struct {
	Board     string
	Wifi      WifiConfig
	Time      TimeConfig
	Buttons   ButtonConfig
	Display   DisplayConfig
	Sensors   SensorConfig
	Heartbeat HeartbeatConfig
}
