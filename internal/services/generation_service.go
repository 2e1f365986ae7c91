package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/bonocatalog/backend/internal/config"
	"github.com/bonocatalog/backend/internal/models"
)

// GenerationService is the HTTP client for the external AI generation
// service. The service is opaque: it receives a job description, produces
// model images on its own schedule, and reports progress back through the
// job store's status channel.
type GenerationService struct {
	cfg    *config.Config
	client *http.Client
}

func NewGenerationService(cfg *config.Config) *GenerationService {
	return &GenerationService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.GenerationTimeout},
	}
}

// Trigger notifies the generation service of a newly ingested job.
func (s *GenerationService) Trigger(ctx context.Context, job *models.Job) error {
	payload, err := json.Marshal(map[string]any{
		"jobId":    job.ID,
		"metadata": job,
	})
	if err != nil {
		return err
	}

	url := strings.TrimRight(s.cfg.GenerationURL, "/") + "/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return models.NewUpstreamError(fmt.Sprintf("generation service unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return models.NewUpstreamError(fmt.Sprintf("generation service returned %d: %s", resp.StatusCode, string(body)))
	}
	return nil
}

// TriggerAsync dispatches the notification best-effort in the background.
// Failures are logged and dropped: ingestion only promises persistence, not
// that generation started. The caller must treat those as independent facts.
func (s *GenerationService) TriggerAsync(job *models.Job) {
	go func() {
		if err := s.Trigger(context.Background(), job); err != nil {
			log.Printf("Generation trigger failed for job %s: %v", job.ID, err)
		}
	}()
}
