package services

import (
	"github.com/bonocatalog/backend/internal/models"
	"github.com/bonocatalog/backend/pkg/stage"
)

// StatusService reads a job's metadata and derives the normalized status
// record served to polling clients.
type StatusService struct {
	store *StoreService
}

func NewStatusService(store *StoreService) *StatusService {
	return &StatusService{store: store}
}

// GetStatus returns the reconciled status for a job. Unknown identifiers
// surface as NotFound, which handlers keep distinct from any pipeline stage.
func (s *StatusService) GetStatus(jobID string) (*models.StatusRecord, error) {
	job, err := s.store.ReadMetadata(jobID)
	if err != nil {
		return nil, err
	}
	return Reconcile(job), nil
}

// Reconcile maps a stored metadata record, including legacy records written
// before the structured status existed, onto a fully populated status record.
func Reconcile(job *models.Job) *models.StatusRecord {
	if job.Status != nil && job.Status.Stage.Valid() {
		rec := *job.Status
		rec.Progress = stage.Clamp(rec.Progress)
		if rec.Stage == stage.Complete {
			rec.Progress = 100
		}
		if rec.TotalItems == 0 {
			rec.TotalItems = len(job.Images)
		}
		if rec.Message == "" {
			rec.Message = defaultMessage(rec.Stage)
		}
		return &rec
	}

	// Legacy record: a bare complete marker, or generated images present
	// without any status ever written, means generation already finished.
	if job.Complete || len(job.GeneratedImages) > 0 {
		return &models.StatusRecord{
			Stage:      stage.Complete,
			Progress:   100,
			Message:    defaultMessage(stage.Complete),
			TotalItems: len(job.Images),
		}
	}

	// No status at all: the job namespace exists, so ingestion finished and
	// generation is the only phase that could be underway.
	return &models.StatusRecord{
		Stage:      stage.Generating,
		Progress:   50,
		Message:    defaultMessage(stage.Generating),
		TotalItems: len(job.Images),
	}
}

func defaultMessage(s stage.Stage) string {
	switch s {
	case stage.Uploading:
		return "Uploading images..."
	case stage.Generating:
		return "Generating model images..."
	case stage.Assembling:
		return "Assembling catalog..."
	case stage.Complete:
		return "Generation complete!"
	case stage.Error:
		return "Generation failed"
	}
	return ""
}
