package storage

import "niche-research/models"

// PersistenceSink is the interface the research pipeline writes through.
type PersistenceSink interface {
	CreateRun(run *models.ResearchRun) error
	SaveListing(runID string, l *models.ScoredListing) error
	CompleteRun(run *models.ResearchRun) error
	Close() error
}

// RunReader is the read side served by the HTTP API.
type RunReader interface {
	ListRuns(limit int) ([]*models.ResearchRun, error)
	GetRun(id string) (*models.ResearchRun, error)
	ListingsForRun(id string) ([]*models.ScoredListing, error)
}

// RawListingWriter is the interface for dumping unscored scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}
