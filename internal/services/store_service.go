package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bonocatalog/backend/internal/config"
	"github.com/bonocatalog/backend/internal/models"
	"github.com/bonocatalog/backend/pkg/stage"
)

const (
	metadataFile = "metadata.json"
	uploadsDir   = "uploads"
)

// StoreService persists job metadata and binary assets on the local
// filesystem, one directory per job identifier. Metadata writes are whole-file
// replacements via tmp + fsync + rename, so a concurrent reader sees either
// the previous or the new record, never a torn one.
type StoreService struct {
	cfg *config.Config
}

func NewStoreService(cfg *config.Config) (*StoreService, error) {
	if err := os.MkdirAll(filepath.Join(cfg.DataDir, "jobs"), 0o755); err != nil {
		return nil, err
	}
	return &StoreService{cfg: cfg}, nil
}

// JobDir returns the namespace directory for a job identifier.
func (s *StoreService) JobDir(jobID string) string {
	return filepath.Join(s.cfg.DataDir, "jobs", jobID)
}

// Create allocates a fresh job namespace and writes the initial metadata
// record with stage uploading. A pre-existing namespace means the identifier
// generator produced a duplicate, which must surface as a collision rather
// than silently reusing the directory.
func (s *StoreService) Create(job *models.Job) error {
	if err := checkJobID(job.ID); err != nil {
		return err
	}
	dir := s.JobDir(job.ID)
	if _, err := os.Stat(dir); err == nil {
		return models.NewCollisionError(fmt.Sprintf("job namespace already exists: %s", job.ID))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, uploadsDir), 0o755); err != nil {
		return err
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == nil {
		job.Status = &models.StatusRecord{
			Stage:    stage.Uploading,
			Progress: 0,
			Message:  "Uploading images...",
		}
	}
	return s.writeMetadata(job)
}

// ReadMetadata loads the full metadata record for a job.
func (s *StoreService) ReadMetadata(jobID string) (*models.Job, error) {
	if err := checkJobID(jobID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.JobDir(jobID), metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.NewNotFoundError(fmt.Sprintf("job not found: %s", jobID))
		}
		return nil, err
	}
	var job models.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("corrupt metadata for job %s: %w", jobID, err)
	}
	return &job, nil
}

// WriteAsset streams binary content into the job's uploads directory under
// relativeName and returns the absolute path. Existing content under the same
// name is overwritten.
func (s *StoreService) WriteAsset(jobID, relativeName string, r io.Reader) (string, int64, error) {
	if err := checkJobID(jobID); err != nil {
		return "", 0, err
	}
	dir := s.JobDir(jobID)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", 0, models.NewNotFoundError(fmt.Sprintf("job not found: %s", jobID))
		}
		return "", 0, err
	}
	if relativeName == "" || strings.Contains(relativeName, "..") {
		return "", 0, models.NewValidationError("invalid asset name")
	}

	absPath := filepath.Join(dir, uploadsDir, filepath.FromSlash(relativeName))
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", 0, err
	}

	tmp := absPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(tmp)
		return "", 0, err
	}
	if err := f.Sync(); err != nil {
		_ = os.Remove(tmp)
		return "", 0, err
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return "", 0, err
	}
	return absPath, n, nil
}

// UpdateStatus replaces the status portion of the metadata record. This is
// the one channel through which the generation service reports progress back
// into the store.
func (s *StoreService) UpdateStatus(jobID string, status *models.StatusRecord) error {
	if status == nil {
		return models.NewValidationError("status record is required")
	}
	job, err := s.ReadMetadata(jobID)
	if err != nil {
		return err
	}
	job.Status = status
	return s.writeMetadata(job)
}

// Save replaces the whole metadata record for an existing job.
func (s *StoreService) Save(job *models.Job) error {
	if err := checkJobID(job.ID); err != nil {
		return err
	}
	if _, err := os.Stat(s.JobDir(job.ID)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.NewNotFoundError(fmt.Sprintf("job not found: %s", job.ID))
		}
		return err
	}
	return s.writeMetadata(job)
}

func (s *StoreService) writeMetadata(job *models.Job) error {
	path := filepath.Join(s.JobDir(job.ID), metadataFile)
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// checkJobID rejects identifiers that could escape the jobs root. Unknown but
// well-formed identifiers surface later as NotFound.
func checkJobID(jobID string) error {
	if jobID == "" || strings.ContainsAny(jobID, `/\`) || strings.Contains(jobID, "..") {
		return models.NewNotFoundError("invalid job identifier")
	}
	return nil
}
