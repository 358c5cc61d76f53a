package scanner

import (
	"context"
	"net"
	"strings"
	"time"
)

const bannerBufferSize = 1024

// Grab connects to address:port and returns whatever the service sends
// first, decoded and trimmed. Any failure results in an empty banner.
func (s *TCPScanner) Grab(ctx context.Context, address string, port int, timeout time.Duration) string {
	conn, err := s.dial(ctx, address, port, timeout)

	if err != nil {
		s.log.Debug().Err(err).Int("port", port).Msg("banner connection failed")
		return ""
	}

	defer conn.Close()

	return s.readBanner(conn, port, timeout)
}

func (s *TCPScanner) readBanner(conn net.Conn, port int, timeout time.Duration) string {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		s.log.Debug().Err(err).Int("port", port).Msg("failed to set banner deadline")
		return ""
	}

	buf := make([]byte, bannerBufferSize)

	n, err := conn.Read(buf)

	// data followed by EOF still counts
	if n == 0 {
		if err != nil {
			s.log.Debug().Err(err).Int("port", port).Msg("no banner")
		}

		return ""
	}

	return decodeBanner(buf[:n])
}

// invalid utf-8 sequences are dropped
func decodeBanner(raw []byte) string {
	return strings.TrimSpace(strings.ToValidUTF8(string(raw), ""))
}
