package scanner

import (
	"time"

	"github.com/robgonnella/portsweep/internal/exception"
)

// Status reachability of a single port
type Status string

const (
	// StatusOpen a connection was established
	StatusOpen Status = "open"
	// StatusClosed refused, timed out, unreachable or otherwise not connectable
	StatusClosed Status = "closed"
)

// PortResult the outcome of probing a single port
type PortResult struct {
	Port   int    `json:"port"`
	Status Status `json:"status"`
	Banner string `json:"banner"`
}

// Request represents everything needed to scan one host
type Request struct {
	Target      string
	// Address of Target resolved by the caller. Target is not looked up
	// again when set.
	Address     string
	Ports       []int
	Concurrency int
	Timeout     time.Duration
	GrabBanner  bool
	Randomize   bool
}

// Validate rejects structurally invalid requests
func (r Request) Validate() error {
	if r.Target == "" {
		return exception.ErrNoTarget
	}

	if len(r.Ports) == 0 {
		return exception.ErrNoPorts
	}

	if r.Concurrency <= 0 {
		return exception.ErrInvalidConcurrency
	}

	if r.Timeout <= 0 {
		return exception.ErrInvalidTimeout
	}

	for _, p := range r.Ports {
		if p < 0 || p > 65535 {
			return exception.NewInputError("ports", "port outside 0-65535")
		}
	}

	return nil
}

// Report holds one result per requested port sorted ascending by port
type Report struct {
	Target    string
	Address   string
	Resolved  bool
	StartedAt time.Time
	Elapsed   time.Duration
	Results   []PortResult
}

// Open returns only the open results of the report
func (r *Report) Open() []PortResult {
	open := []PortResult{}

	for _, res := range r.Results {
		if res.Status == StatusOpen {
			open = append(open, res)
		}
	}

	return open
}
