package scanner

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/robgonnella/portsweep/internal/target"
	"golang.org/x/sync/semaphore"
)

// Scan probes every port of req against a single host and returns a report
// with exactly one result per unique requested port, sorted by port. At most
// req.Concurrency probes are in flight at any time. Only structurally invalid
// requests return an error: an unresolvable target produces a report where
// every port is closed.
func (s *TCPScanner) Scan(ctx context.Context, req Request) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	report := &Report{
		Target:    req.Target,
		StartedAt: time.Now(),
	}

	ports := uniquePorts(req.Ports)

	if req.Randomize {
		rand.Shuffle(len(ports), func(i, j int) {
			ports[i], ports[j] = ports[j], ports[i]
		})
	}

	address := req.Address

	if address == "" {
		resolved, err := target.Resolve(ctx, s.resolver, req.Target)

		if err != nil {
			s.log.Warn().Err(err).Str("target", req.Target).Msg("marking all ports closed")
		}

		address = resolved
	}

	if address != "" {
		report.Address = address
		report.Resolved = true
	}

	s.log.Info().
		Str("target", req.Target).
		Str("address", report.Address).
		Int("ports", len(ports)).
		Int("concurrency", req.Concurrency).
		Bool("randomize", req.Randomize).
		Msg("Scanning target")

	// one slot per port
	completed := make(chan PortResult, len(ports))

	go s.dispatch(ctx, req, report, ports, completed)

	results := make([]PortResult, 0, len(ports))

	for len(results) < len(ports) {
		res := <-completed

		results = append(results, res)

		if s.listener != nil {
			s.listener <- res
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Port < results[j].Port
	})

	report.Results = results
	report.Elapsed = time.Since(report.StartedAt)

	s.log.Info().
		Str("target", req.Target).
		Int("open", len(report.Open())).
		Dur("elapsed", report.Elapsed).
		Msg("Scan complete")

	return report, nil
}

// dispatch submits one work item per port, blocking while the pool is full
func (s *TCPScanner) dispatch(
	ctx context.Context,
	req Request,
	report *Report,
	ports []int,
	completed chan<- PortResult,
) {
	sem := semaphore.NewWeighted(int64(req.Concurrency))

	for _, port := range ports {
		if !report.Resolved {
			completed <- PortResult{Port: port, Status: StatusClosed}
			continue
		}

		// Acquire does not check ctx while slots are free
		if ctx.Err() != nil {
			completed <- PortResult{Port: port, Status: StatusClosed}
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			completed <- PortResult{Port: port, Status: StatusClosed}
			continue
		}

		go func(p int) {
			defer sem.Release(1)
			completed <- s.probe(ctx, report.Address, p, req.Timeout, req.GrabBanner)
		}(port)
	}
}

func uniquePorts(ports []int) []int {
	seen := make(map[int]struct{}, len(ports))
	result := make([]int, 0, len(ports))

	for _, p := range ports {
		if _, ok := seen[p]; ok {
			continue
		}

		seen[p] = struct{}{}
		result = append(result, p)
	}

	return result
}
