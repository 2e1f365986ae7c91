package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bonocatalog/backend/internal/config"
	"github.com/bonocatalog/backend/internal/models"
	"github.com/bonocatalog/backend/internal/services"
	"github.com/bonocatalog/backend/pkg/stage"
)

type JobHandler struct {
	cfg     *config.Config
	ingest  *services.IngestService
	store   *services.StoreService
	status  *services.StatusService
	catalog *services.CatalogService
	drive   *services.DriveService
}

func NewJobHandler(cfg *config.Config, ingest *services.IngestService, store *services.StoreService, status *services.StatusService, catalog *services.CatalogService, drive *services.DriveService) *JobHandler {
	return &JobHandler{
		cfg:     cfg,
		ingest:  ingest,
		store:   store,
		status:  status,
		catalog: catalog,
		drive:   drive,
	}
}

// CreateJob accepts a multipart submission of garment images plus branding
// fields and creates a new generation job. Images arrive as image_0, image_1,
// ... with matching type_0, type_1, ... side tags; the scan stops at the
// first missing index, so the set is always contiguous.
func (h *JobHandler) CreateJob(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		respondError(c, models.NewValidationError("invalid multipart form"))
		return
	}

	in := &services.IngestInput{
		Category:        c.PostForm("category"),
		BrandName:       c.PostForm("brand_name"),
		Tagline:         c.PostForm("tagline"),
		CollectionTitle: c.PostForm("collection_title"),
		Notes:           c.PostForm("notes"),
	}

	for i := 0; ; i++ {
		header, err := c.FormFile(fmt.Sprintf("image_%d", i))
		if err != nil {
			break
		}
		data, err := readFormFile(header.Open())
		if err != nil {
			respondError(c, models.NewValidationError(fmt.Sprintf("could not read image_%d", i)))
			return
		}
		in.Garments = append(in.Garments, services.IngestGarment{
			Name: header.Filename,
			Data: data,
			Side: c.PostForm(fmt.Sprintf("type_%d", i)),
		})
	}

	if logoHeader, err := c.FormFile("logo"); err == nil {
		data, err := readFormFile(logoHeader.Open())
		if err != nil {
			respondError(c, models.NewValidationError("could not read logo"))
			return
		}
		in.LogoName = logoHeader.Filename
		in.LogoData = data
	}

	job, err := h.ingest.Ingest(in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"jobId":   job.ID,
		"message": "Images uploaded successfully. Generation started.",
	})
}

// GetStatus serves the reconciled status record for polling clients.
func (h *JobHandler) GetStatus(c *gin.Context) {
	rec, err := h.status.GetStatus(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// statusUpdate is the write-back payload posted by the generation service as
// it works through a job.
type statusUpdate struct {
	Stage           stage.Stage             `json:"stage" binding:"required"`
	Progress        int                     `json:"progress"`
	Message         string                  `json:"message"`
	CurrentItem     int                     `json:"currentItem"`
	TotalItems      int                     `json:"totalItems"`
	Error           string                  `json:"error"`
	GeneratedImages []models.GeneratedImage `json:"generatedImages"`
}

// UpdateStatus applies a status report from the generation service. Stage
// transitions only move forward; a stale or out-of-order report is rejected
// so a completed job can never regress.
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	var upd statusUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, models.NewValidationError("invalid status payload"))
		return
	}
	if !upd.Stage.Valid() {
		respondError(c, models.NewValidationError(fmt.Sprintf("unknown stage %q", upd.Stage)))
		return
	}

	jobID := c.Param("id")
	job, err := h.store.ReadMetadata(jobID)
	if err != nil {
		respondError(c, err)
		return
	}

	current := services.Reconcile(job).Stage
	if current != upd.Stage && !stage.CanAdvance(current, upd.Stage) {
		respondError(c, models.NewValidationError(fmt.Sprintf("cannot move job from %s to %s", current, upd.Stage)))
		return
	}

	job.Status = &models.StatusRecord{
		Stage:       upd.Stage,
		Progress:    stage.Clamp(upd.Progress),
		Message:     upd.Message,
		CurrentItem: upd.CurrentItem,
		TotalItems:  upd.TotalItems,
		Error:       upd.Error,
	}
	if len(upd.GeneratedImages) > 0 {
		job.GeneratedImages = upd.GeneratedImages
	}
	if upd.Stage == stage.Complete {
		job.Complete = true
	}

	if err := h.store.Save(job); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.Reconcile(job))
}

// AssembleCatalog renders the PDF catalog for a finished job.
func (h *JobHandler) AssembleCatalog(c *gin.Context) {
	job, err := h.catalog.AssembleJob(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pdfUrl":  fmt.Sprintf("/api/v1/jobs/%s/download", job.ID),
		"pdfPath": job.PDFPath,
	})
}

// Download streams the assembled catalog PDF.
func (h *JobHandler) Download(c *gin.Context) {
	job, err := h.store.ReadMetadata(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if job.PDFPath == "" {
		respondError(c, models.NewNotFoundError("catalog has not been assembled yet"))
		return
	}
	c.FileAttachment(job.PDFPath, fmt.Sprintf("%s_catalog.pdf", job.ID))
}

// DriveUpload publishes the assembled catalog to the shared drive bucket.
func (h *JobHandler) DriveUpload(c *gin.Context) {
	if h.drive == nil {
		respondError(c, models.NewUpstreamError("drive upload is not configured"))
		return
	}

	jobID := c.Param("id")
	job, err := h.store.ReadMetadata(jobID)
	if err != nil {
		respondError(c, err)
		return
	}
	if job.PDFPath == "" {
		respondError(c, models.NewValidationError("catalog has not been assembled yet"))
		return
	}

	fileID, url, err := h.drive.UploadCatalog(c.Request.Context(), job)
	if err != nil {
		respondError(c, err)
		return
	}

	job.DriveFileID = fileID
	job.DriveURL = url
	if err := h.store.Save(job); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fileId": fileID,
		"url":    url,
	})
}

func readFormFile(f multipart.File, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var apiErr *models.Error
	if !errors.As(err, &apiErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch apiErr.Code {
	case models.CodeValidation:
		status = http.StatusBadRequest
	case models.CodeNotFound:
		status = http.StatusNotFound
	case models.CodeCollision:
		status = http.StatusConflict
	case models.CodeUpstream:
		status = http.StatusBadGateway
	case models.CodeTimeout:
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{
		"error": apiErr.Message,
		"code":  apiErr.Code,
	})
}
