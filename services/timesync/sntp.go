package timesync

import (
	"encoding/binary"
	"time"

	"weatherunit-go/errcode"
)

// -----------------------------------------------------------------------------
// SNTP client
//
// Minimal RFC 4330 client for the native-radio path: one request datagram,
// one reply, transmit timestamp only. Used as the TimeSource when the
// board's own wireless stack provides UDP sockets.
// -----------------------------------------------------------------------------

const (
	sntpPacketLen = 48
	// Seconds between the NTP epoch (1900) and the Unix epoch (1970).
	ntpUnixOffset = 2208988800
)

// Conn is the socket surface the SNTP client needs. net.Conn satisfies it.
type Conn interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	SetDeadline(t time.Time) error
	Close() error
}

// SNTPSource queries an NTP server over a freshly dialed connection per
// fetch. The dial func hides the platform's network stack.
type SNTPSource struct {
	Dial    func() (Conn, error)
	Timeout time.Duration
}

func (s *SNTPSource) Fetch() (int64, error) {
	const op = "sntp.Fetch"
	timeout := s.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	conn, err := s.Dial()
	if err != nil {
		return 0, &errcode.E{C: errcode.NoAddress, Op: op, Msg: "dial", Err: err}
	}
	defer conn.Close()

	var pkt [sntpPacketLen]byte
	writeRequest(&pkt)
	if _, err := conn.Write(pkt[:]); err != nil {
		return 0, &errcode.E{C: errcode.TimeSync, Op: op, Msg: "send", Err: err}
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return 0, &errcode.E{C: errcode.TimeSync, Op: op, Msg: "deadline", Err: err}
	}
	n, err := conn.Read(pkt[:])
	if err != nil {
		return 0, &errcode.E{C: errcode.Timeout, Op: op, Msg: "recv", Err: err}
	}
	epoch, err := parseReply(pkt[:n])
	if err != nil {
		return 0, err
	}
	return epoch, nil
}

// writeRequest fills buf with a client request: LI=0, VN=4, Mode=3.
func writeRequest(buf *[sntpPacketLen]byte) {
	for i := range buf {
		buf[i] = 0
	}
	buf[0] = 0x23
}

// parseReply extracts the transmit timestamp as Unix epoch seconds.
func parseReply(buf []byte) (int64, error) {
	const op = "sntp.parseReply"
	if len(buf) < sntpPacketLen {
		return 0, &errcode.E{C: errcode.BadResponse, Op: op, Msg: "short packet"}
	}
	if mode := buf[0] & 0x07; mode != 4 {
		return 0, &errcode.E{C: errcode.BadResponse, Op: op, Msg: "not a server reply"}
	}
	// Stratum 0 is a kiss-of-death packet.
	if buf[1] == 0 {
		return 0, &errcode.E{C: errcode.BadResponse, Op: op, Msg: "stratum 0"}
	}
	secs := binary.BigEndian.Uint32(buf[40:44])
	if secs == 0 {
		return 0, &errcode.E{C: errcode.BadResponse, Op: op, Msg: "zero timestamp"}
	}
	return int64(secs) - ntpUnixOffset, nil
}
