package scanner_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	mock_scanner "github.com/robgonnella/portsweep/internal/mock/scanner"
	"github.com/robgonnella/portsweep/internal/scanner"
	"github.com/robgonnella/portsweep/internal/test_util"
	"github.com/stretchr/testify/assert"
)

func TestProbe(t *testing.T) {
	ctx := context.Background()
	timeout := time.Second
	s := scanner.NewTCPScanner()

	t.Run("reports closed on refusal", func(st *testing.T) {
		port := test_util.ClosedPort(st)

		result := s.Probe(ctx, "127.0.0.1", port, timeout)

		assert.Equal(st, scanner.PortResult{Port: port, Status: scanner.StatusClosed}, result)
	})

	t.Run("reports open without banner", func(st *testing.T) {
		port := test_util.ListenTCP(st, "HELLO\n")

		result := s.Probe(ctx, "127.0.0.1", port, timeout)

		assert.Equal(st, scanner.PortResult{Port: port, Status: scanner.StatusOpen}, result)
	})

	t.Run("returns within timeout for unresponsive hosts", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		dialer := mock_scanner.NewMockDialer(ctrl)

		dialer.EXPECT().
			DialContext(gomock.Any(), "tcp", "10.255.255.1:81").
			DoAndReturn(func(dialCtx context.Context, network, address string) (net.Conn, error) {
				<-dialCtx.Done()
				return nil, dialCtx.Err()
			})

		filtered := scanner.NewTCPScanner(scanner.WithDialer(dialer))

		start := time.Now()

		result := filtered.Probe(ctx, "10.255.255.1", 81, 50*time.Millisecond)

		assert.Equal(st, scanner.StatusClosed, result.Status)
		assert.Empty(st, result.Banner)
		assert.Less(st, time.Since(start), 500*time.Millisecond)
	})
}

func TestGrab(t *testing.T) {
	ctx := context.Background()
	s := scanner.NewTCPScanner()

	t.Run("returns trimmed banner", func(st *testing.T) {
		port := test_util.ListenTCP(st, "HELLO\n")

		banner := s.Grab(ctx, "127.0.0.1", port, time.Second)

		assert.Equal(st, "HELLO", banner)
	})

	t.Run("drops undecodable bytes", func(st *testing.T) {
		port := test_util.ListenTCP(st, "\xff SSH-2.0-OpenSSH\xfe\r\n")

		banner := s.Grab(ctx, "127.0.0.1", port, time.Second)

		assert.Equal(st, "SSH-2.0-OpenSSH", banner)
	})

	t.Run("returns empty banner for silent services", func(st *testing.T) {
		port := test_util.ListenTCP(st, "")

		start := time.Now()

		banner := s.Grab(ctx, "127.0.0.1", port, 50*time.Millisecond)

		assert.Empty(st, banner)
		assert.Less(st, time.Since(start), time.Second)
	})

	t.Run("returns empty banner for closed ports", func(st *testing.T) {
		port := test_util.ClosedPort(st)

		banner := s.Grab(ctx, "127.0.0.1", port, time.Second)

		assert.Empty(st, banner)
	})

	t.Run("reads at most 1024 bytes", func(st *testing.T) {
		long := make([]byte, 2048)

		for i := range long {
			long[i] = 'a'
		}

		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		dialer := mock_scanner.NewMockDialer(ctrl)

		dialer.EXPECT().
			DialContext(gomock.Any(), "tcp", "10.0.0.1:25").
			Return(test_util.PipeConn(string(long)), nil)

		piped := scanner.NewTCPScanner(scanner.WithDialer(dialer))

		banner := piped.Grab(ctx, "10.0.0.1", 25, time.Second)

		assert.Len(st, banner, 1024)
	})
}
