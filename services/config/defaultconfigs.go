package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// One JSON document per board. Populate at build time (e.g. via code
// generation) or manually during development.
// Key: board ID (same value placed in ctx under CtxBoardKey)
// Val: raw JSON bytes for that board
// -----------------------------------------------------------------------------

const cfgPicoW = `{
  "board": "pico_w",
  "wifi": {
    "enabled": true,
    "networks": [
      {"ssid": "Home", "password": "changeme", "priority": 1},
      {"ssid": "Backup", "password": "changeme", "priority": 2}
    ],
    "max_attempts": 3,
    "attempt_timeout_s": 10,
    "backoff_s": 30,
    "keepalive_s": 5
  },
  "time": {
    "utc_offset_s": 0,
    "sync_interval_s": 3600,
    "ntp_server": "pool.ntp.org"
  },
  "buttons": {
    "debounce_ticks": 3,
    "pins": {"up": 2, "down": 3, "select": 4, "back": 5}
  },
  "display": {
    "stale_after_s": 30,
    "cycle": ["overview", "temperature", "humidity", "pressure",
              "clock", "wifi", "radio", "diagnostics"]
  },
  "sensors": {
    "poll_interval_s": 5,
    "i2c_addrs": {"aht20": 56, "bmp280": 118}
  },
  "heartbeat": {
    "interval_s": 2
  }
}`

// Plain Pico: no native radio, wifi goes through the serial module when one
// answers the boot handshake.
const cfgPico = `{
  "board": "pico",
  "wifi": {
    "enabled": true,
    "networks": [
      {"ssid": "Home", "password": "changeme", "priority": 1}
    ],
    "max_attempts": 3,
    "attempt_timeout_s": 15,
    "backoff_s": 30,
    "keepalive_s": 10
  },
  "time": {
    "utc_offset_s": 0,
    "sync_interval_s": 3600,
    "ntp_server": "pool.ntp.org"
  },
  "buttons": {
    "debounce_ticks": 3,
    "pins": {"up": 2, "down": 3, "select": 4, "back": 5}
  },
  "display": {
    "stale_after_s": 30,
    "cycle": ["overview", "temperature", "humidity", "pressure",
              "clock", "wifi", "radio", "diagnostics"]
  },
  "sensors": {
    "poll_interval_s": 5,
    "i2c_addrs": {"aht20": 56, "bmp280": 118}
  },
  "heartbeat": {
    "interval_s": 2
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico_w": []byte(cfgPicoW),
	"pico":   []byte(cfgPico),
}
