package history

import (
	"github.com/robgonnella/portsweep/internal/logger"
	"github.com/robgonnella/portsweep/internal/scanner"
)

// HistoryService represents our history.Service implementation
type HistoryService struct {
	repo Repo
	log  logger.Logger
}

// NewService returns a new instance of HistoryService
func NewService(repo Repo) *HistoryService {
	return &HistoryService{
		repo: repo,
		log:  logger.Scoped("history"),
	}
}

// Save archives a finished report
func (s *HistoryService) Save(report *scanner.Report) (*Record, error) {
	record, err := s.repo.Create(&Record{
		Target:    report.Target,
		Address:   report.Address,
		ScannedAt: report.StartedAt,
		Elapsed:   report.Elapsed,
		Results:   report.Results,
	})

	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("id", record.ID).
		Str("target", record.Target).
		Msg("archived scan report")

	return record, nil
}

// List returns every archived report
func (s *HistoryService) List() ([]*Record, error) {
	return s.repo.GetAll()
}

// Get returns a single archived report
func (s *HistoryService) Get(id string) (*Record, error) {
	return s.repo.Get(id)
}

// Delete removes an archived report
func (s *HistoryService) Delete(id string) error {
	return s.repo.Delete(id)
}
