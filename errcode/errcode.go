package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Timeout       Code = "timeout"
	Unsupported   Code = "unsupported"
	InvalidParams Code = "invalid_params"
	Config        Code = "config"

	TransientBus Code = "transient_bus"
	NoTransport  Code = "no_transport"
	AuthFailed   Code = "auth_failed"
	NoAddress    Code = "no_address"
	Exhausted    Code = "exhausted"
	LinkLost     Code = "link_lost"
	TimeSync     Code = "time_sync"
	BadResponse  Code = "bad_response"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
