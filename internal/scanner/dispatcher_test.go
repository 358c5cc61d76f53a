package scanner_test

import (
	"context"
	"errors"
	"net"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/robgonnella/portsweep/internal/exception"
	mock_scanner "github.com/robgonnella/portsweep/internal/mock/scanner"
	mock_target "github.com/robgonnella/portsweep/internal/mock/target"
	"github.com/robgonnella/portsweep/internal/scanner"
	"github.com/robgonnella/portsweep/internal/test_util"
	"github.com/stretchr/testify/assert"
)

var errRefused = errors.New("connect: connection refused")

// 22 refused, 80 open with banner, 443 open and silent
func scenarioDialer(ctrl *gomock.Controller) *mock_scanner.MockDialer {
	dialer := mock_scanner.NewMockDialer(ctrl)

	dialer.EXPECT().
		DialContext(gomock.Any(), "tcp", gomock.Any()).
		DoAndReturn(func(ctx context.Context, network, address string) (net.Conn, error) {
			switch address {
			case "10.0.0.1:80":
				return test_util.PipeConn("SSH-OK\r\n"), nil
			case "10.0.0.1:443":
				return test_util.PipeConn(""), nil
			default:
				return nil, errRefused
			}
		}).
		AnyTimes()

	return dialer
}

func assertSortedAndComplete(t *testing.T, requested []int, report *scanner.Report) {
	assert.Len(t, report.Results, len(requested))

	seen := map[int]bool{}

	for i, r := range report.Results {
		assert.False(t, seen[r.Port], "duplicate port %d", r.Port)
		seen[r.Port] = true

		if i > 0 {
			assert.Less(t, report.Results[i-1].Port, r.Port)
		}
	}

	for _, p := range requested {
		assert.True(t, seen[p], "missing port %d", p)
	}
}

func TestScanValidation(t *testing.T) {
	s := scanner.NewTCPScanner()

	valid := scanner.Request{
		Target:      "127.0.0.1",
		Ports:       []int{80},
		Concurrency: 1,
		Timeout:     time.Second,
	}

	t.Run("rejects empty port set", func(st *testing.T) {
		req := valid
		req.Ports = []int{}

		_, err := s.Scan(context.Background(), req)

		assert.ErrorIs(st, err, exception.ErrNoPorts)
	})

	t.Run("rejects non positive concurrency", func(st *testing.T) {
		req := valid
		req.Concurrency = 0

		_, err := s.Scan(context.Background(), req)

		assert.ErrorIs(st, err, exception.ErrInvalidConcurrency)
	})

	t.Run("rejects non positive timeout", func(st *testing.T) {
		req := valid
		req.Timeout = 0

		_, err := s.Scan(context.Background(), req)

		assert.ErrorIs(st, err, exception.ErrInvalidTimeout)
	})

	t.Run("rejects empty target", func(st *testing.T) {
		req := valid
		req.Target = ""

		_, err := s.Scan(context.Background(), req)

		assert.ErrorIs(st, err, exception.ErrNoTarget)
	})

	t.Run("rejects out of range ports", func(st *testing.T) {
		req := valid
		req.Ports = []int{80, 70000}

		_, err := s.Scan(context.Background(), req)

		assert.Error(st, err)
	})
}

func TestScan(t *testing.T) {
	ctx := context.Background()

	t.Run("produces expected report for mixed ports", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		s := scanner.NewTCPScanner(scanner.WithDialer(scenarioDialer(ctrl)))

		report, err := s.Scan(ctx, scanner.Request{
			Target:      "10.0.0.1",
			Ports:       []int{22, 80, 443},
			Concurrency: 10,
			Timeout:     50 * time.Millisecond,
			GrabBanner:  true,
		})

		assert.NoError(st, err)
		assert.True(st, report.Resolved)
		assert.Equal(st, "10.0.0.1", report.Address)
		assert.Equal(st, []scanner.PortResult{
			{Port: 22, Status: scanner.StatusClosed, Banner: ""},
			{Port: 80, Status: scanner.StatusOpen, Banner: "SSH-OK"},
			{Port: 443, Status: scanner.StatusOpen, Banner: ""},
		}, report.Results)
		assert.Equal(st, 2, len(report.Open()))
	})

	t.Run("skips banners when not requested", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		s := scanner.NewTCPScanner(scanner.WithDialer(scenarioDialer(ctrl)))

		report, err := s.Scan(ctx, scanner.Request{
			Target:      "10.0.0.1",
			Ports:       []int{80},
			Concurrency: 1,
			Timeout:     50 * time.Millisecond,
		})

		assert.NoError(st, err)
		assert.Equal(st, []scanner.PortResult{
			{Port: 80, Status: scanner.StatusOpen},
		}, report.Results)
	})

	t.Run("randomized order yields identical report", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		s := scanner.NewTCPScanner(scanner.WithDialer(scenarioDialer(ctrl)))

		requested := []int{}

		for p := 1; p <= 100; p++ {
			requested = append(requested, p)
		}

		requested = append(requested, 443)

		req := scanner.Request{
			Target:      "10.0.0.1",
			Ports:       requested,
			Concurrency: 7,
			Timeout:     50 * time.Millisecond,
			GrabBanner:  true,
		}

		ordered, err := s.Scan(ctx, req)

		assert.NoError(st, err)

		req.Randomize = true

		randomized, err := s.Scan(ctx, req)

		assert.NoError(st, err)
		assertSortedAndComplete(st, requested, randomized)
		assert.Equal(st, ordered.Results, randomized.Results)
	})

	t.Run("never exceeds concurrency limit", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		var inFlight int32
		var maxInFlight int32

		limit := 4
		requested := []int{}

		for p := 1000; p < 1040; p++ {
			requested = append(requested, p)
		}

		dialer := mock_scanner.NewMockDialer(ctrl)

		dialer.EXPECT().
			DialContext(gomock.Any(), "tcp", gomock.Any()).
			DoAndReturn(func(ctx context.Context, network, address string) (net.Conn, error) {
				current := atomic.AddInt32(&inFlight, 1)

				for {
					seen := atomic.LoadInt32(&maxInFlight)

					if current <= seen || atomic.CompareAndSwapInt32(&maxInFlight, seen, current) {
						break
					}
				}

				time.Sleep(5 * time.Millisecond)

				atomic.AddInt32(&inFlight, -1)

				return nil, errRefused
			}).
			Times(len(requested))

		s := scanner.NewTCPScanner(scanner.WithDialer(dialer))

		report, err := s.Scan(ctx, scanner.Request{
			Target:      "10.0.0.1",
			Ports:       requested,
			Concurrency: limit,
			Timeout:     time.Second,
			Randomize:   true,
		})

		assert.NoError(st, err)
		assertSortedAndComplete(st, requested, report)
		assert.LessOrEqual(st, atomic.LoadInt32(&maxInFlight), int32(limit))
		assert.Greater(st, atomic.LoadInt32(&maxInFlight), int32(0))
	})

	t.Run("collapses duplicate ports", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		s := scanner.NewTCPScanner(scanner.WithDialer(scenarioDialer(ctrl)))

		report, err := s.Scan(ctx, scanner.Request{
			Target:      "10.0.0.1",
			Ports:       []int{22, 22, 80, 22},
			Concurrency: 2,
			Timeout:     50 * time.Millisecond,
		})

		assert.NoError(st, err)
		assertSortedAndComplete(st, []int{22, 80}, report)
	})

	t.Run("marks every port closed for unresolvable targets", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		dialer := mock_scanner.NewMockDialer(ctrl)
		resolver := mock_target.NewMockResolver(ctrl)

		resolver.EXPECT().
			LookupHost(gomock.Any(), "missing.test").
			Return(nil, errors.New("no such host"))

		s := scanner.NewTCPScanner(
			scanner.WithDialer(dialer),
			scanner.WithResolver(resolver),
		)

		report, err := s.Scan(ctx, scanner.Request{
			Target:      "missing.test",
			Ports:       []int{443, 22, 80},
			Concurrency: 2,
			Timeout:     time.Second,
		})

		assert.NoError(st, err)
		assert.False(st, report.Resolved)
		assert.Equal(st, []scanner.PortResult{
			{Port: 22, Status: scanner.StatusClosed},
			{Port: 80, Status: scanner.StatusClosed},
			{Port: 443, Status: scanner.StatusClosed},
		}, report.Results)
	})

	t.Run("resolves hostnames once", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		resolver := mock_target.NewMockResolver(ctrl)

		resolver.EXPECT().
			LookupHost(gomock.Any(), "scan.test").
			Return([]string{"10.0.0.1"}, nil).
			Times(1)

		s := scanner.NewTCPScanner(
			scanner.WithDialer(scenarioDialer(ctrl)),
			scanner.WithResolver(resolver),
		)

		report, err := s.Scan(ctx, scanner.Request{
			Target:      "scan.test",
			Ports:       []int{22, 80, 443},
			Concurrency: 3,
			Timeout:     50 * time.Millisecond,
			GrabBanner:  true,
		})

		assert.NoError(st, err)
		assert.Equal(st, "scan.test", report.Target)
		assert.Equal(st, "10.0.0.1", report.Address)
		assert.Equal(st, "SSH-OK", report.Results[1].Banner)
	})

	t.Run("uses caller resolved address without lookup", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		// no LookupHost expectation
		resolver := mock_target.NewMockResolver(ctrl)

		s := scanner.NewTCPScanner(
			scanner.WithDialer(scenarioDialer(ctrl)),
			scanner.WithResolver(resolver),
		)

		report, err := s.Scan(ctx, scanner.Request{
			Target:      "scan.test",
			Address:     "10.0.0.1",
			Ports:       []int{80},
			Concurrency: 1,
			Timeout:     50 * time.Millisecond,
			GrabBanner:  true,
		})

		assert.NoError(st, err)
		assert.True(st, report.Resolved)
		assert.Equal(st, "scan.test", report.Target)
		assert.Equal(st, "10.0.0.1", report.Address)
		assert.Equal(st, []scanner.PortResult{
			{Port: 80, Status: scanner.StatusOpen, Banner: "SSH-OK"},
		}, report.Results)
	})

	t.Run("reports every port when aborted", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		// no DialContext expectation: an aborted scan never dials
		dialer := mock_scanner.NewMockDialer(ctrl)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		s := scanner.NewTCPScanner(scanner.WithDialer(dialer))

		requested := []int{1, 2, 3, 4, 5, 6, 7, 8}

		report, err := s.Scan(canceled, scanner.Request{
			Target:      "10.0.0.1",
			Ports:       requested,
			Concurrency: 2,
			Timeout:     time.Second,
		})

		assert.NoError(st, err)
		assertSortedAndComplete(st, requested, report)
		assert.Empty(st, report.Open())
	})

	t.Run("streams results to listener as they complete", func(st *testing.T) {
		ctrl := gomock.NewController(st)

		defer ctrl.Finish()

		listener := make(chan scanner.PortResult, 3)

		s := scanner.NewTCPScanner(
			scanner.WithDialer(scenarioDialer(ctrl)),
			scanner.WithListener(listener),
		)

		_, err := s.Scan(ctx, scanner.Request{
			Target:      "10.0.0.1",
			Ports:       []int{22, 80, 443},
			Concurrency: 3,
			Timeout:     50 * time.Millisecond,
		})

		close(listener)

		assert.NoError(st, err)

		streamed := []int{}

		for r := range listener {
			streamed = append(streamed, r.Port)
		}

		sort.Ints(streamed)

		assert.Equal(st, []int{22, 80, 443}, streamed)
	})

	t.Run("scans real loopback listeners", func(st *testing.T) {
		open := test_util.ListenTCP(st, "HELLO\n")
		requested := []int{open}

		for i := 0; i < 3; i++ {
			requested = append(requested, test_util.ClosedPort(st))
		}

		s := scanner.NewTCPScanner()

		report, err := s.Scan(ctx, scanner.Request{
			Target:      "127.0.0.1",
			Ports:       requested,
			Concurrency: 2,
			Timeout:     time.Second,
			GrabBanner:  true,
			Randomize:   true,
		})

		assert.NoError(st, err)

		for _, r := range report.Results {
			if r.Port == open {
				assert.Equal(st, scanner.StatusOpen, r.Status)
				assert.Equal(st, "HELLO", r.Banner)
			} else {
				assert.Equal(st, scanner.StatusClosed, r.Status)
			}
		}
	})
}
