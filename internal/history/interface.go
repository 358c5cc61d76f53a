package history

import (
	"time"

	"github.com/robgonnella/portsweep/internal/scanner"
)

//go:generate mockgen -destination=../mock/history/mock_history.go -package=mock_history . Repo,Service

// Record represents an archived scan report
type Record struct {
	ID        string
	Target    string
	Address   string
	ScannedAt time.Time
	Elapsed   time.Duration
	Results   []scanner.PortResult
}

// Open returns the number of open ports in the record
func (r *Record) Open() int {
	count := 0

	for _, res := range r.Results {
		if res.Status == scanner.StatusOpen {
			count++
		}
	}

	return count
}

// Report converts the record back into a scan report
func (r *Record) Report() *scanner.Report {
	return &scanner.Report{
		Target:    r.Target,
		Address:   r.Address,
		Resolved:  r.Address != "",
		StartedAt: r.ScannedAt,
		Elapsed:   r.Elapsed,
		Results:   r.Results,
	}
}

// Repo interface representing access to archived reports
type Repo interface {
	Get(id string) (*Record, error)
	GetAll() ([]*Record, error)
	Create(record *Record) (*Record, error)
	Delete(id string) error
}

// Service interface for archiving and browsing finished scans
type Service interface {
	Save(report *scanner.Report) (*Record, error)
	List() ([]*Record, error)
	Get(id string) (*Record, error)
	Delete(id string) error
}
