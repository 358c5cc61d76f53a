package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/robgonnella/portsweep/internal/history"
	"github.com/robgonnella/portsweep/internal/logger"
	"github.com/robgonnella/portsweep/internal/ports"
	"github.com/robgonnella/portsweep/internal/report"
	"github.com/robgonnella/portsweep/internal/scanner"
	"github.com/robgonnella/portsweep/internal/target"
)

// Job represents a single invocation of the scan command
type Job struct {
	Targets   []string
	Ports     string
	Threads   int
	Timeout   time.Duration
	Grab      bool
	Randomize bool
	Format    report.Format
	Output    string
	Stdout    bool
	Save      bool
}

// Result everything produced by a job
type Result struct {
	Reports    []*scanner.Report
	OutputPath string
	Archived   []*history.Record
}

// Core represents our core data structure
type Core struct {
	scanner  scanner.Scanner
	resolver target.Resolver
	history  history.Service
	stdout   io.Writer
	log      logger.Logger
}

// New returns new core module. historyService may be nil when archiving is
// unavailable.
func New(
	scanner scanner.Scanner,
	resolver target.Resolver,
	historyService history.Service,
	stdout io.Writer,
) *Core {
	return &Core{
		scanner:  scanner,
		resolver: resolver,
		history:  historyService,
		stdout:   stdout,
		log:      logger.Scoped("core"),
	}
}

// Run validates job input, scans every target in turn, then reports and
// optionally archives the results
func (c *Core) Run(ctx context.Context, job Job) (*Result, error) {
	portSet, err := ports.Parse(job.Ports)

	if err != nil {
		return nil, err
	}

	hosts, err := target.Expand(job.Targets...)

	if err != nil {
		return nil, err
	}

	addresses := make([]string, len(hosts))

	for i, host := range hosts {
		address, err := target.Resolve(ctx, c.resolver, host)

		if err != nil {
			return nil, err
		}

		addresses[i] = address
	}

	if job.Save && c.history == nil {
		return nil, errors.New("scan history is unavailable")
	}

	result := &Result{
		Reports:  []*scanner.Report{},
		Archived: []*history.Record{},
	}

	for i, host := range hosts {
		rep, err := c.scanner.Scan(ctx, scanner.Request{
			Target:      host,
			Address:     addresses[i],
			Ports:       portSet,
			Concurrency: job.Threads,
			Timeout:     job.Timeout,
			GrabBanner:  job.Grab,
			Randomize:   job.Randomize,
		})

		if err != nil {
			return nil, err
		}

		result.Reports = append(result.Reports, rep)
	}

	reporter := report.New(job.Format)

	if job.Stdout {
		if err := reporter.Print(c.stdout, result.Reports); err != nil {
			return result, fmt.Errorf("failed to print results: %w", err)
		}
	}

	if job.Output != "" {
		dest, err := reporter.WriteFile(job.Output, result.Reports)

		if err != nil {
			return result, fmt.Errorf("failed to save results: %w", err)
		}

		result.OutputPath = dest

		c.log.Info().Str("path", dest).Msg("Results saved")
	}

	if job.Save {
		for _, rep := range result.Reports {
			record, err := c.history.Save(rep)

			if err != nil {
				return result, fmt.Errorf("failed to archive results: %w", err)
			}

			result.Archived = append(result.Archived, record)
		}
	}

	return result, nil
}
