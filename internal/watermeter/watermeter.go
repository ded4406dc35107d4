// Package watermeter queries the hot water tank monitor over UDP. The
// monitor answers a level request with a line like "UWL=80%"; everything
// after the separator is the level string read out in announcements.
package watermeter

import (
	"context"
	"log"
	"net"
	"strings"
	"time"
)

const (
	levelRequest    = "UWL"
	levelRespPrefix = "UWL="
	maxResponse     = 256
)

// Client is a UDP request/response client for the tank monitor. All
// failures degrade to an empty level so a dead monitor never blocks an
// announcement.
type Client struct {
	addr    string
	timeout time.Duration
}

// NewClient builds a client for the monitor at addr (host:port).
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{addr: addr, timeout: timeout}
}

// Level asks the monitor for the current hot water level. It returns ""
// when the monitor is unreachable, times out or answers garbage.
func (c *Client) Level(ctx context.Context) string {
	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.DialContext(ctx, "udp", c.addr)
	if err != nil {
		log.Printf("WATER: dialling %s: %v", c.addr, err)
		return ""
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		log.Printf("WATER: setting deadline: %v", err)
		return ""
	}

	if _, err := conn.Write([]byte(levelRequest)); err != nil {
		log.Printf("WATER: sending level request: %v", err)
		return ""
	}

	buf := make([]byte, maxResponse)
	n, err := conn.Read(buf)
	if err != nil {
		log.Printf("WATER: reading level response: %v", err)
		return ""
	}

	resp := strings.TrimSpace(string(buf[:n]))
	if !strings.HasPrefix(resp, levelRespPrefix) {
		log.Printf("WATER: unexpected response %q", resp)
		return ""
	}
	return strings.TrimPrefix(resp, levelRespPrefix)
}
