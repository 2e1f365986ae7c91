package services

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bonocatalog/backend/internal/config"
	"github.com/bonocatalog/backend/internal/models"
	"github.com/bonocatalog/backend/pkg/imageutil"
	"github.com/bonocatalog/backend/pkg/stage"
	"github.com/bonocatalog/backend/pkg/validation"
)

// IngestGarment is one (image, side tag) pair from a multipart submission.
type IngestGarment struct {
	Name string
	Data []byte
	Side string
}

// IngestInput is a fully parsed client submission.
type IngestInput struct {
	Category        string
	BrandName       string
	Tagline         string
	CollectionTitle string
	Notes           string
	LogoName        string
	LogoData        []byte
	Garments        []IngestGarment
}

// IngestService converts a client submission into a new persisted job and
// hands it off to the generation service.
type IngestService struct {
	cfg        *config.Config
	store      *StoreService
	generation *GenerationService
}

func NewIngestService(cfg *config.Config, store *StoreService, generation *GenerationService) *IngestService {
	return &IngestService{cfg: cfg, store: store, generation: generation}
}

// Ingest validates the submission, materializes a job namespace, persists the
// logo and garment images in submission order, and asynchronously notifies
// the generation service. Validation failures abort before anything touches
// disk, so no partial namespace is ever left behind.
func (s *IngestService) Ingest(in *IngestInput) (*models.Job, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	job := &models.Job{
		ID:              uuid.New().String(),
		Category:        normalizeCategory(in.Category, s.cfg.DefaultCategory),
		BrandName:       validation.SanitizeString(in.BrandName),
		Tagline:         validation.SanitizeString(in.Tagline),
		CollectionTitle: validation.SanitizeString(in.CollectionTitle),
		Notes:           validation.SanitizeString(in.Notes),
		Images:          []models.GarmentImage{},
		CreatedAt:       time.Now().UTC(),
		Status: &models.StatusRecord{
			Stage:      stage.Uploading,
			Progress:   0,
			Message:    "Uploading images...",
			TotalItems: len(in.Garments),
		},
	}

	if err := s.store.Create(job); err != nil {
		return nil, err
	}

	if len(in.LogoData) > 0 {
		name := "logo" + imageutil.ExtOf(in.LogoName)
		path, _, err := s.store.WriteAsset(job.ID, name, bytes.NewReader(in.LogoData))
		if err != nil {
			return nil, err
		}
		job.LogoPath = path
	}

	for i, g := range in.Garments {
		side := models.NormalizeSide(g.Side)
		stored := fmt.Sprintf("garment_%d_%s%s", i, side, imageutil.ExtOf(g.Name))
		path, _, err := s.store.WriteAsset(job.ID, stored, bytes.NewReader(g.Data))
		if err != nil {
			return nil, err
		}
		job.Images = append(job.Images, models.GarmentImage{
			Name: validation.SanitizeFilename(g.Name),
			Path: path,
			Side: side,
		})
	}

	if err := s.store.Save(job); err != nil {
		return nil, err
	}

	log.Printf("Job %s ingested: %d garment images, brand=%q", job.ID, len(job.Images), job.BrandName)

	// Best-effort hand-off; the response only confirms persistence.
	s.generation.TriggerAsync(job)

	return job, nil
}

func (s *IngestService) validate(in *IngestInput) error {
	if !validation.ValidateBrandName(in.BrandName) {
		return models.NewValidationError("brand_name is required")
	}
	if len(in.Garments) == 0 {
		return models.NewValidationError("at least one garment image is required")
	}
	if len(in.Garments) > s.cfg.MaxGarmentImages {
		return models.NewValidationError(fmt.Sprintf("too many images: maximum %d per job", s.cfg.MaxGarmentImages))
	}
	for _, g := range in.Garments {
		if !imageutil.IsImage(g.Data) {
			return models.NewValidationError(fmt.Sprintf("file %q is not a supported image", g.Name))
		}
	}
	if len(in.LogoData) > 0 && !imageutil.IsImage(in.LogoData) {
		return models.NewValidationError("logo is not a supported image")
	}
	return nil
}

func normalizeCategory(category, fallback string) string {
	if validation.ValidateCategory(category) {
		return category
	}
	return fallback
}
