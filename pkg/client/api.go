// Package client holds the client side of the catalog pipeline: a thin HTTP
// wrapper around the backend API, the polling controller that tracks a job to
// a terminal outcome, and the pre-submission image working set.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bonocatalog/backend/internal/models"
)

// SubmittedImage is one garment file queued for submission.
type SubmittedImage struct {
	Path string
	Name string
	Side string
}

// Submission is everything a job submission carries.
type Submission struct {
	Category        string
	BrandName       string
	Tagline         string
	CollectionTitle string
	Notes           string
	LogoPath        string
	Images          []SubmittedImage
}

// APIClient talks to the backend over HTTP.
type APIClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// SubmitJob uploads the submission as multipart form data and returns the
// new job identifier.
func (c *APIClient) SubmitJob(ctx context.Context, sub *Submission) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeSubmission(mw, sub))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/v1/jobs", pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", models.NewUpstreamError(fmt.Sprintf("submission failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", decodeError(resp)
	}

	var out struct {
		JobID string `json:"jobId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", models.NewUpstreamError(fmt.Sprintf("malformed submission response: %v", err))
	}
	return out.JobID, nil
}

func writeSubmission(mw *multipart.Writer, sub *Submission) error {
	defer mw.Close()

	fields := map[string]string{
		"category":         sub.Category,
		"brand_name":       sub.BrandName,
		"tagline":          sub.Tagline,
		"collection_title": sub.CollectionTitle,
		"notes":            sub.Notes,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return err
		}
	}

	for i, img := range sub.Images {
		if err := mw.WriteField(fmt.Sprintf("type_%d", i), img.Side); err != nil {
			return err
		}
		if err := writeFilePart(mw, fmt.Sprintf("image_%d", i), img.Name, img.Path); err != nil {
			return err
		}
	}

	if sub.LogoPath != "" {
		if err := writeFilePart(mw, "logo", filepath.Base(sub.LogoPath), sub.LogoPath); err != nil {
			return err
		}
	}
	return nil
}

func writeFilePart(mw *multipart.Writer, field, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := mw.CreateFormFile(field, name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

// JobStatus fetches the current status record for a job.
func (c *APIClient) JobStatus(ctx context.Context, jobID string) (*models.StatusRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/jobs/%s/status", c.BaseURL, jobID), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, models.NewUpstreamError(fmt.Sprintf("status request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var rec models.StatusRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, models.NewUpstreamError(fmt.Sprintf("malformed status response: %v", err))
	}
	return &rec, nil
}

// AssembleCatalog asks the backend to render the catalog PDF and returns the
// download URL.
func (c *APIClient) AssembleCatalog(ctx context.Context, jobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/v1/jobs/%s/catalog", c.BaseURL, jobID), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", models.NewUpstreamError(fmt.Sprintf("assembly request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	var out struct {
		PDFURL string `json:"pdfUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", models.NewUpstreamError(fmt.Sprintf("malformed assembly response: %v", err))
	}
	return out.PDFURL, nil
}

// DownloadCatalog streams the finished PDF to destPath.
func (c *APIClient) DownloadCatalog(ctx context.Context, jobID, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/v1/jobs/%s/download", c.BaseURL, jobID), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.NewUpstreamError(fmt.Sprintf("download failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

// decodeError rebuilds a typed error from the backend's error envelope.
func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	if body.Error == "" {
		body.Error = fmt.Sprintf("request failed with status %d", resp.StatusCode)
	}
	if body.Code == "" {
		if resp.StatusCode == http.StatusNotFound {
			body.Code = models.CodeNotFound
		} else {
			body.Code = models.CodeUpstream
		}
	}
	return &models.Error{Code: body.Code, Message: body.Error}
}
